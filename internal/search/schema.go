package search

import (
	"github.com/abhisek/sheetz/internal/llm"
	"github.com/abhisek/sheetz/internal/problem"
)

func stringList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

func sortKeyEnum() []any {
	keys := problem.SortKeys
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

// FilterSchema defines the JSON schema for interpreting a search request.
// Every property is required so providers with strict structured output
// accept it; "no constraint" is expressed with empty arrays, 0 or -1.
var FilterSchema = &llm.Schema{
	Name:        "problem-filter",
	Description: "Search criteria for selecting problems from a problem bank",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subjects":       stringList("Subjects to include. Empty for any subject."),
			"chapter_prefix": stringList("Chapter path from the top level down, e.g. [\"Algebra\", \"Quadratics\"]. Empty for any chapter."),
			"min_difficulty": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     5,
				"description": "Lowest difficulty level 1-5, or 0 for no lower bound",
			},
			"max_difficulty": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     5,
				"description": "Highest difficulty level 1-5, or 0 for no upper bound",
			},
			"min_correct_rate": map[string]any{
				"type":        "number",
				"minimum":     -1,
				"maximum":     100,
				"description": "Lowest correct rate in percent, or -1 for no lower bound",
			},
			"max_correct_rate": map[string]any{
				"type":        "number",
				"minimum":     -1,
				"maximum":     100,
				"description": "Highest correct rate in percent, or -1 for no upper bound",
			},
			"exam_years": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "Exam years to include. Empty for any year.",
			},
			"exam_types": stringList("Exam types to include, e.g. \"CSAT\" or \"mock\". Empty for any."),
			"tags":       stringList("Tags every result must carry. Empty for no tag constraint."),
			"limit": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Maximum number of problems requested, or 0 when unspecified",
			},
			"sort": map[string]any{
				"type":        "string",
				"enum":        sortKeyEnum(),
				"description": "Ordering of the results. \"order\" keeps the bank order.",
			},
			"descending": map[string]any{
				"type":        "boolean",
				"description": "Reverse the sort order",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "One short sentence restating the interpreted request",
			},
		},
		"required": []any{
			"subjects", "chapter_prefix", "min_difficulty", "max_difficulty",
			"min_correct_rate", "max_correct_rate", "exam_years", "exam_types",
			"tags", "limit", "sort", "descending", "summary",
		},
		"additionalProperties": false,
	},
}
