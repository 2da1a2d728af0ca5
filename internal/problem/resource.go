package problem

import "fmt"

// ResourceKind distinguishes the two images a problem can carry.
type ResourceKind string

const (
	ResourceProblem ResourceKind = "problem"
	ResourceAnswer  ResourceKind = "answer"
)

// ParseResourceKind validates a user-supplied kind.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch k := ResourceKind(s); k {
	case ResourceProblem, ResourceAnswer:
		return k, nil
	}
	return "", fmt.Errorf("unknown resource kind %q (want problem or answer)", s)
}
