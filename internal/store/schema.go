package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entsql "entgo.io/ent/dialect/sql"
)

// Table and column declarations. Every event table shares the sequence and
// timestamp columns so events can be ordered across types.

var (
	problemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString, Default: ""},
		{Name: "chapter_path", Type: field.TypeString, Default: "[]", Comment: "JSON array of chapter names"},
		{Name: "chapter_key", Type: field.TypeString, Default: "", Comment: "Chapter path with every segment terminated by /"},
		{Name: "difficulty", Type: field.TypeInt, Default: 0},
		{Name: "correct_rate", Type: field.TypeFloat64, Default: -1},
		{Name: "exam_year", Type: field.TypeInt, Default: 0},
		{Name: "exam_month", Type: field.TypeInt, Default: 0},
		{Name: "exam_type", Type: field.TypeString, Default: ""},
		{Name: "number", Type: field.TypeInt, Default: 0},
		{Name: "tags", Type: field.TypeString, Default: "[]", Comment: "JSON array of tags"},
		{Name: "image_url", Type: field.TypeString},
		{Name: "answer_image_url", Type: field.TypeString, Default: ""},
		{Name: "updated_at", Type: field.TypeTime},
	}
	problemsTable = &schema.Table{
		Name:       "problems",
		Columns:    problemsColumns,
		PrimaryKey: []*schema.Column{problemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "problem_subject", Columns: []*schema.Column{problemsColumns[1]}},
			{Name: "problem_chapter_key", Columns: []*schema.Column{problemsColumns[3]}},
			{Name: "problem_difficulty", Columns: []*schema.Column{problemsColumns[4]}},
			{Name: "problem_exam_year", Columns: []*schema.Column{problemsColumns[6]}},
		},
	}

	worksheetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "author", Type: field.TypeString, Default: ""},
		{Name: "problem_ids", Type: field.TypeString, Comment: "JSON array of problem ids in worksheet order"},
		{Name: "include_answers", Type: field.TypeBool, Default: true},
		{Name: "show_badges", Type: field.TypeBool, Default: false},
		{Name: "sort_key", Type: field.TypeString, Default: "order"},
		{Name: "created_at", Type: field.TypeTime},
	}
	worksheetsTable = &schema.Table{
		Name:       "worksheets",
		Columns:    worksheetsColumns,
		PrimaryKey: []*schema.Column{worksheetsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "worksheet_created_at", Columns: []*schema.Column{worksheetsColumns[7]}},
		},
	}

	overridesColumns = []*schema.Column{
		{Name: "kind", Type: field.TypeString},
		{Name: "resource_id", Type: field.TypeString},
		{Name: "url", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeTime},
	}
	overridesTable = &schema.Table{
		Name:       "overrides",
		Columns:    overridesColumns,
		PrimaryKey: []*schema.Column{overridesColumns[0], overridesColumns[1]},
	}

	llmRequestEventsColumns = append(eventColumns(),
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Default: ""},
	)
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: append(eventIndexes("llmrequestevent", llmRequestEventsColumns),
			&schema.Index{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		),
	}

	generationEventsColumns = append(eventColumns(),
		&schema.Column{Name: "worksheet_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_id", Type: field.TypeString},
		&schema.Column{Name: "token", Type: field.TypeUint64},
		&schema.Column{Name: "problems", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "answers", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "pages", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "bytes", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "placeholders", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
	)
	generationEventsTable = &schema.Table{
		Name:       "generation_events",
		Columns:    generationEventsColumns,
		PrimaryKey: []*schema.Column{generationEventsColumns[0]},
		Indexes: append(eventIndexes("generationevent", generationEventsColumns),
			&schema.Index{Name: "generationevent_worksheet_id", Columns: []*schema.Column{generationEventsColumns[3]}},
		),
	}

	sequencesColumns = []*schema.Column{
		{Name: "name", Type: field.TypeString},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	sequencesTable = &schema.Table{
		Name:       "sequences",
		Columns:    sequencesColumns,
		PrimaryKey: []*schema.Column{sequencesColumns[0]},
	}

	tables = []*schema.Table{
		sequencesTable,
		problemsTable,
		worksheetsTable,
		overridesTable,
		llmRequestEventsTable,
		generationEventsTable,
	}
)

// eventColumns returns the id, sequence and timestamp columns every event
// table starts with.
func eventColumns() []*schema.Column {
	return []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
}

func eventIndexes(prefix string, cols []*schema.Column) []*schema.Index {
	return []*schema.Index{
		{Name: prefix + "_sequence", Columns: []*schema.Column{cols[1]}},
		{Name: prefix + "_timestamp", Columns: []*schema.Column{cols[2]}},
	}
}

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
