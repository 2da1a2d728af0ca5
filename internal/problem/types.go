package problem

import (
	"fmt"
	"strings"
)

// Problem is one entry of the problem bank.
type Problem struct {
	// ID uniquely identifies the problem, e.g. "2023-06-math-21".
	ID string `json:"id" yaml:"id"`

	Subject string `json:"subject" yaml:"subject"`

	// ChapterPath lists chapters from the root of the curriculum tree,
	// e.g. ["Calculus", "Derivatives", "Chain rule"].
	ChapterPath []string `json:"chapter_path,omitempty" yaml:"chapter_path,omitempty"`

	// Difficulty ranges from 1 (easy) to 5 (hard). Zero means unknown.
	Difficulty int `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`

	// CorrectRate is the percentage of examinees who answered correctly.
	// Negative means unknown.
	CorrectRate float64 `json:"correct_rate" yaml:"correct_rate"`

	ExamYear  int      `json:"exam_year,omitempty" yaml:"exam_year,omitempty"`
	ExamMonth int      `json:"exam_month,omitempty" yaml:"exam_month,omitempty"`
	ExamType  string   `json:"exam_type,omitempty" yaml:"exam_type,omitempty"`
	Number    int      `json:"number,omitempty" yaml:"number,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// ImageURL is the displayable problem image reference.
	ImageURL string `json:"image_url" yaml:"image_url"`

	// AnswerImageURL is the optional worked-answer image reference.
	AnswerImageURL string `json:"answer_image_url,omitempty" yaml:"answer_image_url,omitempty"`
}

// Chapter returns the chapter path joined for display.
func (p Problem) Chapter() string {
	return strings.Join(p.ChapterPath, " > ")
}

// ExamLabel returns a short exam description such as "2023.06 Mock".
// Empty when no exam metadata is known.
func (p Problem) ExamLabel() string {
	var parts []string
	switch {
	case p.ExamYear > 0 && p.ExamMonth > 0:
		parts = append(parts, fmt.Sprintf("%d.%02d", p.ExamYear, p.ExamMonth))
	case p.ExamYear > 0:
		parts = append(parts, fmt.Sprintf("%d", p.ExamYear))
	}
	if p.ExamType != "" {
		parts = append(parts, p.ExamType)
	}
	if p.Number > 0 {
		parts = append(parts, fmt.Sprintf("#%d", p.Number))
	}
	return strings.Join(parts, " ")
}

// HasCorrectRate reports whether a correct rate is recorded.
func (p Problem) HasCorrectRate() bool {
	return p.CorrectRate >= 0
}

// Validate checks required fields and value ranges.
func (p Problem) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("problem id is required")
	}
	if p.ImageURL == "" {
		return fmt.Errorf("problem %s: image_url is required", p.ID)
	}
	if p.Difficulty < 0 || p.Difficulty > 5 {
		return fmt.Errorf("problem %s: difficulty %d out of range 1-5", p.ID, p.Difficulty)
	}
	if p.CorrectRate > 100 {
		return fmt.Errorf("problem %s: correct_rate %.1f exceeds 100", p.ID, p.CorrectRate)
	}
	return nil
}
