package worksheet

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/sheetz/internal/problem"
)

// BuildFile describes a worksheet in YAML:
//
//	title: Quadratics review
//	author: Ms. Kim
//	problems: [2023-06-21, 2022-11-14]
//	sort: difficulty
//	include_answers: true
//	badges: true
//
// Either problems or filter selects the content.
type BuildFile struct {
	Title          string          `yaml:"title"`
	Author         string          `yaml:"author,omitempty"`
	Problems       []string        `yaml:"problems,omitempty"`
	Filter         *problem.Filter `yaml:"filter,omitempty"`
	Sort           string          `yaml:"sort,omitempty"`
	Descending     bool            `yaml:"descending,omitempty"`
	IncludeAnswers *bool           `yaml:"include_answers,omitempty"`
	Badges         bool            `yaml:"badges,omitempty"`
	Output         string          `yaml:"output,omitempty"`
}

// ProblemSource looks problems up by id or filter.
type ProblemSource interface {
	Get(ctx context.Context, ids []string) ([]problem.Problem, error)
	Query(ctx context.Context, f problem.Filter) ([]problem.Problem, error)
}

// LoadBuildFile reads and validates a build file. Unknown keys are errors.
func LoadBuildFile(path string) (*BuildFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build file: %w", err)
	}
	return ParseBuildFile(data)
}

// ParseBuildFile decodes a build file document.
func ParseBuildFile(data []byte) (*BuildFile, error) {
	var bf BuildFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return nil, fmt.Errorf("parse build file: %w", err)
	}
	if err := bf.Validate(); err != nil {
		return nil, err
	}
	return &bf, nil
}

// Validate checks that the file selects content in exactly one way.
func (bf *BuildFile) Validate() error {
	if bf.Title == "" {
		return fmt.Errorf("build file: title is required")
	}
	switch {
	case len(bf.Problems) > 0 && bf.Filter != nil:
		return fmt.Errorf("build file: use either problems or filter, not both")
	case len(bf.Problems) == 0 && bf.Filter == nil:
		return fmt.Errorf("build file: problems or filter is required")
	}
	if bf.Filter != nil {
		if err := bf.Filter.Validate(); err != nil {
			return fmt.Errorf("build file: %w", err)
		}
	}
	if _, err := problem.ParseSortKey(bf.Sort); err != nil {
		return fmt.Errorf("build file: %w", err)
	}
	return nil
}

// Answers reports whether the answer key is included. Defaults to true.
func (bf *BuildFile) Answers() bool {
	return bf.IncludeAnswers == nil || *bf.IncludeAnswers
}

// Resolve loads the selected problems and applies the sort rule.
func (bf *BuildFile) Resolve(ctx context.Context, src ProblemSource) ([]problem.Problem, error) {
	var (
		ps  []problem.Problem
		err error
	)
	if len(bf.Problems) > 0 {
		ps, err = src.Get(ctx, bf.Problems)
	} else {
		ps, err = src.Query(ctx, *bf.Filter)
	}
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}
	key, err := problem.ParseSortKey(bf.Sort)
	if err != nil {
		return nil, err
	}
	return problem.Sort(ps, key, bf.Descending), nil
}

// Request converts the build file into a generation request.
func (bf *BuildFile) Request(tracker *Tracker, problems []problem.Problem) Request {
	req := NewRequest(tracker, bf.Title, bf.Author, problems)
	req.IncludeAnswers = bf.Answers()
	req.ShowBadges = bf.Badges
	return req
}
