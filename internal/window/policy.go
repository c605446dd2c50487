// Package window implements the window state machine and the commands that
// add, remove and move windows in the container tree.
package window

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/types"
)

var (
	// ErrPolicyRejection marks transitions refused by configuration
	ErrPolicyRejection = errors.New("rejected by policy")
	ErrAlreadyManaged  = errors.New("window is already managed")
	ErrNotTiling       = errors.New("window is not tiling")
	ErrInvalidState    = errors.New("invalid window state")
)

// Policy decides whether a window may enter a state. The user config
// implements it; it must not mutate anything.
type Policy interface {
	CheckTransition(w, monitor *container.Container, target types.WindowState) error
}

// AllowAll is a Policy that permits every transition
type AllowAll struct{}

// CheckTransition always returns nil
func (AllowAll) CheckTransition(*container.Container, *container.Container, types.WindowState) error {
	return nil
}

// PolicyError is returned when a Policy refuses a transition. The tree is
// left untouched.
type PolicyError struct {
	WindowID uuid.UUID
	Target   types.WindowState
	Reason   error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("window %s cannot become %s: %v", e.WindowID, e.Target, e.Reason)
}

func (e *PolicyError) Unwrap() []error {
	return []error{ErrPolicyRejection, e.Reason}
}

func checkPolicy(p Policy, tree *container.Tree, w *container.Container, target types.WindowState) error {
	if p == nil {
		return nil
	}
	if err := p.CheckTransition(w, tree.MonitorOf(w), target); err != nil {
		return &PolicyError{WindowID: w.ID, Target: target, Reason: err}
	}
	return nil
}
