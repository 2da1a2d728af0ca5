package search

import (
	"fmt"
	"strings"

	"github.com/abhisek/sheetz/internal/problem"
)

const maxPromptChapters = 80

const systemPrompt = `You translate an instructor's request for practice problems into search criteria for a problem bank.

Rules:
- Only constrain what the request asks for. Leave every other field at its "no constraint" value.
- Difficulty is an integer from 1 (easiest) to 5 (hardest). "Hard" means 4-5, "easy" means 1-2.
- Correct rate is the percentage of students who solved the problem. "Killer" or "low correct rate" problems are below 30.
- Chapter paths are written from the most general chapter down, using the bank's own chapter names when they are given.
- Use "limit" only when the request names a number of problems.
- Pick "sort" from the allowed values. Use "order" when the request does not ask for an ordering.`

// buildUserMessage adds the bank's vocabulary, when known, to the request.
func buildUserMessage(query string, facets problem.Facets) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Request: %s\n", strings.TrimSpace(query))

	if len(facets.Subjects) > 0 {
		fmt.Fprintf(&b, "\nSubjects in the bank: %s\n", strings.Join(facets.Subjects, ", "))
	}
	if len(facets.Chapters) > 0 {
		b.WriteString("\nChapters in the bank:\n")
		for i, c := range facets.Chapters {
			if i == maxPromptChapters {
				fmt.Fprintf(&b, "- (%d more)\n", len(facets.Chapters)-i)
				break
			}
			fmt.Fprintf(&b, "- %s\n", strings.Join(c, " > "))
		}
	}
	if len(facets.ExamTypes) > 0 {
		fmt.Fprintf(&b, "\nExam types in the bank: %s\n", strings.Join(facets.ExamTypes, ", "))
	}

	return b.String()
}
