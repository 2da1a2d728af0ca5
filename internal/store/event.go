package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// eventSequence names the counter shared by every event table, so an LLM
// call and a generation can be ordered against each other.
const eventSequence = "events"

// sequenceCounter hands out monotonic numbers from a row of the sequences
// table.
type sequenceCounter struct {
	mu   sync.Mutex
	db   *sql.DB
	name string
}

func newSequenceCounter(ctx context.Context, db *sql.DB, name string) (*sequenceCounter, error) {
	q, args := builder().Insert("sequences").
		Columns("name", "next_val").
		Values(name, 1).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("seed sequence %q: %w", name, err)
	}
	return &sequenceCounter{db: db, name: name}, nil
}

// Next returns the current value and advances the counter.
func (c *sequenceCounter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer tx.Rollback()

	sel, selArgs := builder().Select("next_val").
		From(entsql.Table("sequences")).
		Where(entsql.EQ("name", c.name)).
		Query()
	var cur int64
	if err := tx.QueryRowContext(ctx, sel, selArgs...).Scan(&cur); err != nil {
		return 0, fmt.Errorf("read sequence %q: %w", c.name, err)
	}

	upd, updArgs := builder().Update("sequences").
		Set("next_val", cur+1).
		Where(entsql.EQ("name", c.name)).
		Query()
	if _, err := tx.ExecContext(ctx, upd, updArgs...); err != nil {
		return 0, fmt.Errorf("advance sequence %q: %w", c.name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("advance sequence %q: %w", c.name, err)
	}
	return cur, nil
}
