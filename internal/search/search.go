// Package search turns a natural-language request into a problem filter
// with an LLM and runs it against the problem bank.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/sheetz/internal/llm"
	"github.com/abhisek/sheetz/internal/problem"
)

// Purpose labels search calls in the LLM event log.
const Purpose = "problem-search"

// ErrEmptyQuery is returned for a blank request.
var ErrEmptyQuery = errors.New("search query is empty")

// Bank is the slice of the problem store the searcher needs.
type Bank interface {
	Query(ctx context.Context, f problem.Filter) ([]problem.Problem, error)
	Facets(ctx context.Context) (problem.Facets, error)
}

// Interpretation is the structured reading of a request.
type Interpretation struct {
	Filter     problem.Filter
	Sort       problem.SortKey
	Descending bool
	Summary    string
}

// Result is an interpreted request with its matching problems, sorted.
type Result struct {
	Query string
	Interpretation
	Problems []problem.Problem
}

// Searcher implements AI problem search.
type Searcher struct {
	provider llm.Provider
	bank     Bank
	config   Config
}

// New creates a Searcher.
func New(provider llm.Provider, bank Bank, cfg Config) *Searcher {
	return &Searcher{provider: provider, bank: bank, config: cfg}
}

// filterOutput is the raw LLM response.
type filterOutput struct {
	Subjects       []string `json:"subjects"`
	ChapterPrefix  []string `json:"chapter_prefix"`
	MinDifficulty  int      `json:"min_difficulty"`
	MaxDifficulty  int      `json:"max_difficulty"`
	MinCorrectRate float64  `json:"min_correct_rate"`
	MaxCorrectRate float64  `json:"max_correct_rate"`
	ExamYears      []int    `json:"exam_years"`
	ExamTypes      []string `json:"exam_types"`
	Tags           []string `json:"tags"`
	Limit          int      `json:"limit"`
	Sort           string   `json:"sort"`
	Descending     bool     `json:"descending"`
	Summary        string   `json:"summary"`
}

// Interpret asks the LLM to translate query into search criteria.
func (s *Searcher) Interpret(ctx context.Context, query string) (*Interpretation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	ctx = llm.WithPurpose(ctx, Purpose)

	facets, err := s.bank.Facets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bank facets: %w", err)
	}

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(query, facets),
		Schema:      FilterSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM search failed: %w", err)
	}

	var raw filterOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return raw.interpretation()
}

func (o filterOutput) interpretation() (*Interpretation, error) {
	f := problem.Filter{
		Subjects:      nonEmpty(o.Subjects),
		ChapterPrefix: nonEmpty(o.ChapterPrefix),
		MinDifficulty: o.MinDifficulty,
		MaxDifficulty: o.MaxDifficulty,
		ExamYears:     o.ExamYears,
		ExamTypes:     nonEmpty(o.ExamTypes),
		Tags:          nonEmpty(o.Tags),
		Limit:         o.Limit,
	}
	if o.MinCorrectRate >= 0 {
		v := o.MinCorrectRate
		f.MinCorrectRate = &v
	}
	if o.MaxCorrectRate >= 0 {
		v := o.MaxCorrectRate
		f.MaxCorrectRate = &v
	}
	if len(f.ExamYears) == 0 {
		f.ExamYears = nil
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("LLM returned an unusable filter: %w", err)
	}

	key, err := problem.ParseSortKey(o.Sort)
	if err != nil {
		key = problem.SortNone
	}
	return &Interpretation{
		Filter:     f,
		Sort:       key,
		Descending: o.Descending,
		Summary:    strings.TrimSpace(o.Summary),
	}, nil
}

// Search interprets query and returns the matching problems in the
// requested order.
func (s *Searcher) Search(ctx context.Context, query string) (*Result, error) {
	in, err := s.Interpret(ctx, query)
	if err != nil {
		return nil, err
	}
	if in.Filter.Limit == 0 && s.config.DefaultLimit > 0 {
		in.Filter.Limit = s.config.DefaultLimit
	}

	problems, err := s.bank.Query(ctx, in.Filter)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	return &Result{
		Query:          query,
		Interpretation: *in,
		Problems:       problem.Sort(problems, in.Sort, in.Descending),
	}, nil
}

func nonEmpty(s []string) []string {
	var out []string
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
