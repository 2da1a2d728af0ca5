package pdfrender

import (
	"errors"
	"fmt"
)

// ErrEmptyPDF is returned when the backend finished without producing any
// bytes. Re-rendering may succeed.
var ErrEmptyPDF = errors.New("PDF blob is empty")

// InitError is returned when the renderer could not be initialized.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("PDF library failed to load: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// RenderError is returned when the backend failed or produced bytes that do
// not parse as a PDF.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("could not render PDF: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a render failure the user can retry by
// generating again.
func IsRetryable(err error) bool {
	var ie *InitError
	var re *RenderError
	return errors.Is(err, ErrEmptyPDF) || errors.As(err, &ie) || errors.As(err, &re)
}
