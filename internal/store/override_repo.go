package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/sheetz/internal/problem"
)

// overrideRepo implements OverrideRepo. It also satisfies the worksheet
// generator's override lookup.
type overrideRepo struct {
	db *sql.DB
}

func (r *overrideRepo) Set(ctx context.Context, kind problem.ResourceKind, id, url string) error {
	if id == "" || url == "" {
		return fmt.Errorf("override needs a resource id and a url")
	}
	q, args := builder().Insert("overrides").
		Columns("kind", "resource_id", "url", "updated_at").
		Values(string(kind), id, url, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("kind", "resource_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	return nil
}

func (r *overrideRepo) Delete(ctx context.Context, kind problem.ResourceKind, id string) (bool, error) {
	q, args := builder().Delete("overrides").
		Where(entsql.And(entsql.EQ("kind", string(kind)), entsql.EQ("resource_id", id))).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}
	return n > 0, nil
}

func (r *overrideRepo) List(ctx context.Context) ([]Override, error) {
	q, args := builder().Select("kind", "resource_id", "url", "updated_at").
		From(entsql.Table("overrides")).
		OrderBy("kind", "resource_id").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		var (
			o    Override
			kind string
		)
		if err := rows.Scan(&kind, &o.ResourceID, &o.URL, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.Kind = problem.ResourceKind(kind)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}
	return out, nil
}

func (r *overrideRepo) Override(ctx context.Context, kind problem.ResourceKind, id string) (string, bool, error) {
	q, args := builder().Select("url").
		From(entsql.Table("overrides")).
		Where(entsql.And(entsql.EQ("kind", string(kind)), entsql.EQ("resource_id", id))).
		Query()

	var url string
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup override %s/%s: %w", kind, id, err)
	}
	return url, true, nil
}
