package problem

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey names an ordering applied to a selection.
type SortKey string

const (
	// SortNone keeps the selection order.
	SortNone        SortKey = "order"
	SortDifficulty  SortKey = "difficulty"
	SortChapter     SortKey = "chapter"
	SortCorrectRate SortKey = "correct-rate"
	SortExam        SortKey = "exam-year"
)

// SortKeys lists every supported key.
var SortKeys = []SortKey{SortNone, SortDifficulty, SortChapter, SortCorrectRate, SortExam}

// ParseSortKey validates a user-supplied sort key. An empty string means
// SortNone.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNone, nil
	}
	k := SortKey(strings.ToLower(s))
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// Sort returns a copy of problems ordered by key. The sort is stable, so
// ties keep their selection order. Descending reverses the primary key
// only.
func Sort(problems []Problem, key SortKey, descending bool) []Problem {
	out := slices.Clone(problems)
	cmp := comparator(key)
	if cmp == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Problem) int {
		c := cmp(a, b)
		if descending {
			return -c
		}
		return c
	})
	return out
}

func comparator(key SortKey) func(a, b Problem) int {
	switch key {
	case SortDifficulty:
		return func(a, b Problem) int { return a.Difficulty - b.Difficulty }
	case SortChapter:
		return func(a, b Problem) int {
			return slices.Compare(a.ChapterPath, b.ChapterPath)
		}
	case SortCorrectRate:
		// Unknown rates sort last.
		return func(a, b Problem) int {
			switch {
			case !a.HasCorrectRate() && !b.HasCorrectRate():
				return 0
			case !a.HasCorrectRate():
				return 1
			case !b.HasCorrectRate():
				return -1
			case a.CorrectRate < b.CorrectRate:
				return -1
			case a.CorrectRate > b.CorrectRate:
				return 1
			}
			return 0
		}
	case SortExam:
		return func(a, b Problem) int {
			if c := a.ExamYear - b.ExamYear; c != 0 {
				return c
			}
			if c := a.ExamMonth - b.ExamMonth; c != 0 {
				return c
			}
			return a.Number - b.Number
		}
	default:
		return nil
	}
}
