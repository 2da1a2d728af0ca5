package store

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports ids that have no stored row.
type NotFoundError struct {
	Entity string
	IDs    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(e.IDs, ", "))
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
