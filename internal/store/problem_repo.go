package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/sheetz/internal/problem"
)

var problemSelectColumns = []string{
	"id", "subject", "chapter_path", "difficulty", "correct_rate",
	"exam_year", "exam_month", "exam_type", "number", "tags",
	"image_url", "answer_image_url",
}

// problemRepo implements ProblemRepo.
type problemRepo struct {
	db *sql.DB
}

func (r *problemRepo) Upsert(ctx context.Context, problems []problem.Problem) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, p := range problems {
		if err := p.Validate(); err != nil {
			return 0, err
		}
		chapters, err := marshalStrings(p.ChapterPath)
		if err != nil {
			return 0, err
		}
		tags, err := marshalStrings(p.Tags)
		if err != nil {
			return 0, err
		}

		q, args := builder().Insert("problems").
			Columns("id", "subject", "chapter_path", "chapter_key", "difficulty", "correct_rate",
				"exam_year", "exam_month", "exam_type", "number", "tags",
				"image_url", "answer_image_url", "updated_at").
			Values(p.ID, p.Subject, chapters, problem.ChapterKey(p.ChapterPath), p.Difficulty, p.CorrectRate,
				p.ExamYear, p.ExamMonth, p.ExamType, p.Number, tags,
				p.ImageURL, p.AnswerImageURL, now).
			OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
			Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, fmt.Errorf("upsert problem %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(problems), nil
}

func (r *problemRepo) Get(ctx context.Context, ids []string) ([]problem.Problem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := builder().Select(problemSelectColumns...).
		From(entsql.Table("problems")).
		Where(entsql.In("id", toAny(ids)...))

	found, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]problem.Problem, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]problem.Problem, 0, len(ids))
	var missing []string
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, p)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Entity: "problem", IDs: missing}
	}
	return out, nil
}

func (r *problemRepo) Query(ctx context.Context, f problem.Filter) ([]problem.Problem, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	sel := builder().Select(problemSelectColumns...).
		From(entsql.Table("problems")).
		OrderBy("id")

	if len(f.Subjects) > 0 {
		sel.Where(entsql.In("subject", toAny(f.Subjects)...))
	}
	if len(f.ChapterPrefix) > 0 {
		sel.Where(entsql.HasPrefix("chapter_key", problem.ChapterKey(f.ChapterPrefix)))
	}
	if f.MinDifficulty > 0 {
		sel.Where(entsql.GTE("difficulty", f.MinDifficulty))
	}
	if f.MaxDifficulty > 0 {
		sel.Where(entsql.LTE("difficulty", f.MaxDifficulty))
	}
	if f.MinCorrectRate != nil || f.MaxCorrectRate != nil {
		sel.Where(entsql.GTE("correct_rate", 0))
	}
	if f.MinCorrectRate != nil {
		sel.Where(entsql.GTE("correct_rate", *f.MinCorrectRate))
	}
	if f.MaxCorrectRate != nil {
		sel.Where(entsql.LTE("correct_rate", *f.MaxCorrectRate))
	}
	if len(f.ExamYears) > 0 {
		years := make([]any, len(f.ExamYears))
		for i, y := range f.ExamYears {
			years[i] = y
		}
		sel.Where(entsql.In("exam_year", years...))
	}
	if len(f.ExamTypes) > 0 {
		sel.Where(entsql.In("exam_type", toAny(f.ExamTypes)...))
	}
	for _, t := range f.Tags {
		quoted, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode tag: %w", err)
		}
		sel.Where(entsql.Contains("tags", string(quoted)))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	return r.query(ctx, sel)
}

func (r *problemRepo) Count(ctx context.Context) (int, error) {
	q, args := builder().Select(entsql.Count("*")).From(entsql.Table("problems")).Query()
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count problems: %w", err)
	}
	return n, nil
}

func (r *problemRepo) Facets(ctx context.Context) (problem.Facets, error) {
	var f problem.Facets
	var err error
	if f.Subjects, err = r.distinct(ctx, "subject"); err != nil {
		return f, err
	}
	if f.ExamTypes, err = r.distinct(ctx, "exam_type"); err != nil {
		return f, err
	}
	paths, err := r.distinct(ctx, "chapter_path")
	if err != nil {
		return f, err
	}
	for _, raw := range paths {
		path, err := unmarshalStrings(raw)
		if err != nil {
			return f, fmt.Errorf("chapter_path: %w", err)
		}
		if len(path) > 0 {
			f.Chapters = append(f.Chapters, path)
		}
	}
	return f, nil
}

// distinct returns the sorted non-empty values of column.
func (r *problemRepo) distinct(ctx context.Context, column string) ([]string, error) {
	q, args := builder().Select(column).Distinct().
		From(entsql.Table("problems")).
		Where(entsql.NEQ(column, "")).
		OrderBy(column).
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *problemRepo) query(ctx context.Context, sel *entsql.Selector) ([]problem.Problem, error) {
	q, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	defer rows.Close()

	var out []problem.Problem
	for rows.Next() {
		var (
			p              problem.Problem
			chapters, tags string
		)
		if err := rows.Scan(&p.ID, &p.Subject, &chapters, &p.Difficulty, &p.CorrectRate,
			&p.ExamYear, &p.ExamMonth, &p.ExamType, &p.Number, &tags,
			&p.ImageURL, &p.AnswerImageURL); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		if p.ChapterPath, err = unmarshalStrings(chapters); err != nil {
			return nil, fmt.Errorf("problem %s chapter_path: %w", p.ID, err)
		}
		if p.Tags, err = unmarshalStrings(tags); err != nil {
			return nil, fmt.Errorf("problem %s tags: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate problems: %w", err)
	}
	return out, nil
}

func marshalStrings(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func unmarshalStrings(s string) ([]string, error) {
	var out []string
	if s == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
