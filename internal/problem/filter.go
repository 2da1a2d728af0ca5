package problem

import (
	"fmt"
	"slices"
	"strings"
)

// Filter selects problems from the bank. Zero values mean "any".
type Filter struct {
	Subjects []string `json:"subjects,omitempty" yaml:"subjects,omitempty"`

	// ChapterPrefix matches problems whose chapter path starts with it.
	ChapterPrefix []string `json:"chapter_prefix,omitempty" yaml:"chapter_prefix,omitempty"`

	MinDifficulty int `json:"min_difficulty,omitempty" yaml:"min_difficulty,omitempty"`
	MaxDifficulty int `json:"max_difficulty,omitempty" yaml:"max_difficulty,omitempty"`

	// MinCorrectRate and MaxCorrectRate bound the correct rate in percent.
	// Problems without a recorded rate never match a bounded filter.
	MinCorrectRate *float64 `json:"min_correct_rate,omitempty" yaml:"min_correct_rate,omitempty"`
	MaxCorrectRate *float64 `json:"max_correct_rate,omitempty" yaml:"max_correct_rate,omitempty"`

	ExamYears []int    `json:"exam_years,omitempty" yaml:"exam_years,omitempty"`
	ExamTypes []string `json:"exam_types,omitempty" yaml:"exam_types,omitempty"`

	// Tags requires every listed tag to be present.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Validate rejects inverted or out-of-range bounds.
func (f Filter) Validate() error {
	if f.MinDifficulty < 0 || f.MaxDifficulty > 5 {
		return fmt.Errorf("difficulty bounds must be within 1-5")
	}
	if f.MaxDifficulty > 0 && f.MinDifficulty > f.MaxDifficulty {
		return fmt.Errorf("min difficulty %d exceeds max %d", f.MinDifficulty, f.MaxDifficulty)
	}
	if f.MinCorrectRate != nil && f.MaxCorrectRate != nil && *f.MinCorrectRate > *f.MaxCorrectRate {
		return fmt.Errorf("min correct rate %.1f exceeds max %.1f", *f.MinCorrectRate, *f.MaxCorrectRate)
	}
	if f.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

// Matches reports whether p satisfies every criterion of f. Limit is not
// considered.
func (f Filter) Matches(p Problem) bool {
	if len(f.Subjects) > 0 && !slices.Contains(f.Subjects, p.Subject) {
		return false
	}
	if !hasPrefix(p.ChapterPath, f.ChapterPrefix) {
		return false
	}
	if f.MinDifficulty > 0 && p.Difficulty < f.MinDifficulty {
		return false
	}
	if f.MaxDifficulty > 0 && p.Difficulty > f.MaxDifficulty {
		return false
	}
	if f.MinCorrectRate != nil && (!p.HasCorrectRate() || p.CorrectRate < *f.MinCorrectRate) {
		return false
	}
	if f.MaxCorrectRate != nil && (!p.HasCorrectRate() || p.CorrectRate > *f.MaxCorrectRate) {
		return false
	}
	if len(f.ExamYears) > 0 && !slices.Contains(f.ExamYears, p.ExamYear) {
		return false
	}
	if len(f.ExamTypes) > 0 && !slices.Contains(f.ExamTypes, p.ExamType) {
		return false
	}
	for _, t := range f.Tags {
		if !slices.Contains(p.Tags, t) {
			return false
		}
	}
	return true
}

// ChapterKey encodes a chapter path for prefix matching in storage.
// Every segment is terminated so "Alg" never matches "Algebra".
func ChapterKey(path []string) string {
	var b strings.Builder
	for _, s := range path {
		b.WriteString(s)
		b.WriteString("/")
	}
	return b.String()
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	return slices.Equal(path[:len(prefix)], prefix)
}

// Facets lists the distinct values present in a problem bank.
type Facets struct {
	Subjects  []string
	Chapters  [][]string
	ExamTypes []string
}
