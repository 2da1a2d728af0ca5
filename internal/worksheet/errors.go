package worksheet

import (
	"fmt"

	"github.com/abhisek/sheetz/internal/problem"
)

// OverrideError is returned when the edited-content lookup fails. It aborts
// the generation; no PDF is rendered.
type OverrideError struct {
	Kind       problem.ResourceKind
	ResourceID string
	Err        error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("could not fetch override data for %s %s: %v", e.Kind, e.ResourceID, e.Err)
}

func (e *OverrideError) Unwrap() error {
	return e.Err
}
