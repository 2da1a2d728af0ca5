package docdef

import (
	"fmt"

	"github.com/abhisek/sheetz/internal/layout"
	"github.com/abhisek/sheetz/internal/problem"
)

// BadgeFor builds the metadata row for a problem. number is the 1-based
// position on the worksheet. Missing metadata is left blank.
func BadgeFor(p problem.Problem, number int) *layout.Badge {
	b := &layout.Badge{
		Number:      number,
		Difficulty:  p.Difficulty,
		ChapterPath: p.Chapter(),
		ExamLabel:   p.ExamLabel(),
	}
	if p.HasCorrectRate() {
		b.CorrectRate = fmt.Sprintf("%.0f%%", p.CorrectRate)
	}
	if len(p.Tags) > 0 {
		b.Tags = append([]string(nil), p.Tags...)
	}
	return b
}

// Badges builds one badge per problem in order.
func Badges(problems []problem.Problem) []*layout.Badge {
	out := make([]*layout.Badge, len(problems))
	for i, p := range problems {
		out[i] = BadgeFor(p, i+1)
	}
	return out
}
