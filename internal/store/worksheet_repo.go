package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/sheetz/internal/problem"
)

var worksheetSelectColumns = []string{
	"id", "title", "author", "problem_ids", "include_answers", "show_badges", "sort_key", "created_at",
}

// worksheetRepo implements WorksheetRepo.
type worksheetRepo struct {
	db *sql.DB
}

func (r *worksheetRepo) Create(ctx context.Context, ws Worksheet) (Worksheet, error) {
	if ws.Title == "" {
		return Worksheet{}, fmt.Errorf("worksheet title is required")
	}
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = time.Now().UTC()
	}
	if ws.SortKey == "" {
		ws.SortKey = problem.SortNone
	}
	ids, err := marshalStrings(ws.ProblemIDs)
	if err != nil {
		return Worksheet{}, err
	}

	q, args := builder().Insert("worksheets").
		Columns(worksheetSelectColumns...).
		Values(ws.ID, ws.Title, ws.Author, ids, ws.IncludeAnswers, ws.ShowBadges, string(ws.SortKey), ws.CreatedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return Worksheet{}, fmt.Errorf("save worksheet: %w", err)
	}
	return ws, nil
}

func (r *worksheetRepo) Get(ctx context.Context, id string) (*Worksheet, error) {
	q, args := builder().Select(worksheetSelectColumns...).
		From(entsql.Table("worksheets")).
		Where(entsql.EQ("id", id)).
		Query()

	ws, err := scanWorksheet(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "worksheet", IDs: []string{id}}
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *worksheetRepo) List(ctx context.Context, limit int) ([]Worksheet, error) {
	sel := builder().Select(worksheetSelectColumns...).
		From(entsql.Table("worksheets")).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query worksheets: %w", err)
	}
	defer rows.Close()

	var out []Worksheet
	for rows.Next() {
		ws, err := scanWorksheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worksheets: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorksheet(row rowScanner) (Worksheet, error) {
	var (
		ws      Worksheet
		ids     string
		sortKey string
	)
	err := row.Scan(&ws.ID, &ws.Title, &ws.Author, &ids, &ws.IncludeAnswers, &ws.ShowBadges, &sortKey, &ws.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Worksheet{}, err
	}
	if err != nil {
		return Worksheet{}, fmt.Errorf("scan worksheet: %w", err)
	}
	ws.SortKey = problem.SortKey(sortKey)
	if ws.ProblemIDs, err = unmarshalStrings(ids); err != nil {
		return Worksheet{}, fmt.Errorf("worksheet %s problem_ids: %w", ws.ID, err)
	}
	return ws, nil
}
