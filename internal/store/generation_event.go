package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var generationEventColumns = []string{
	"id", "sequence", "timestamp", "worksheet_id", "request_id", "token",
	"problems", "answers", "pages", "bytes", "placeholders", "duration_ms",
	"success", "error_message",
}

func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := builder().Insert("generation_events").
		Columns(generationEventColumns[1:]...).
		Values(seqNum, time.Now().UTC(), data.WorksheetID, data.RequestID, int64(data.Token),
			data.Problems, data.Answers, data.Pages, data.Bytes, data.Placeholders, data.DurationMs,
			data.Success, data.ErrorMessage).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEventRecord, error) {
	sel := builder().Select(generationEventColumns...).From(entsql.Table("generation_events"))
	applyQueryOpts(sel, opts)
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	defer rows.Close()

	var out []GenerationEventRecord
	for rows.Next() {
		var (
			e     GenerationEventRecord
			token int64
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.WorksheetID, &e.RequestID, &token,
			&e.Problems, &e.Answers, &e.Pages, &e.Bytes, &e.Placeholders, &e.DurationMs,
			&e.Success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan generation event: %w", err)
		}
		e.Token = uint64(token)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation events: %w", err)
	}
	return out, nil
}
