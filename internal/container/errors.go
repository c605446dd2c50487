package container

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrStructuralIntegrity is matched by every rejected tree mutation
var ErrStructuralIntegrity = errors.New("structural integrity violation")

var (
	ErrCycle           = errors.New("would create a cycle")
	ErrDetachRoot      = errors.New("cannot detach root")
	ErrNotFound        = errors.New("container not in tree")
	ErrAlreadyAttached = errors.New("container already has a parent")
	ErrInvalidNesting  = errors.New("invalid container nesting")
)

// StructuralError describes a rejected tree mutation. Nothing is mutated
// when one is returned.
type StructuralError struct {
	Op     string
	ID     uuid.UUID
	Reason error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Reason)
}

// Unwrap lets errors.Is match both the category and the reason
func (e *StructuralError) Unwrap() []error {
	return []error{ErrStructuralIntegrity, e.Reason}
}

func structural(op string, c *Container, reason error) error {
	var id uuid.UUID
	if c != nil {
		id = c.ID
	}
	return &StructuralError{Op: op, ID: id, Reason: reason}
}
