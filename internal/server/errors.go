package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/window"
	"github.com/yourusername/tilewm/internal/wm"
)

var (
	ErrOutboxFull         = errors.New("outbound queue full")
	ErrTooManyConnections = errors.New("too many connections")
	ErrShuttingDown       = errors.New("server shutting down")
)

// ProtocolError is a message that could not be decoded as a request. The
// offending connection is closed; others are unaffected.
type ProtocolError struct {
	ConnID string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on connection %s: %v", e.ConnID, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ConnectionError ends a single connection: a transport failure, a client
// too slow to drain its outbox, or a subscription that fell behind.
type ConnectionError struct {
	ConnID string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.ConnID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// errorCode maps a command or query failure to its wire code
func errorCode(err error) string {
	switch {
	case errors.Is(err, command.ErrInvalidCommand):
		return models.CodeInvalidCommand
	case errors.Is(err, window.ErrPolicyRejection):
		return models.CodePolicyRejection
	case errors.Is(err, container.ErrNotFound),
		errors.Is(err, state.ErrUnknownID),
		errors.Is(err, state.ErrNoFocus),
		errors.Is(err, state.ErrNotAWindow),
		errors.Is(err, state.ErrUnknownMonitor),
		errors.Is(err, command.ErrUnknownHandle):
		return models.CodeNotFound
	case errors.Is(err, container.ErrStructuralIntegrity):
		return models.CodeStructural
	case errors.Is(err, wm.ErrInternal):
		return models.CodeInternal
	case errors.Is(err, wm.ErrStopped),
		errors.Is(err, ErrShuttingDown),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return models.CodeUnavailable
	}
	return models.CodeCommandFailed
}

// closeReason labels a connection error for metrics
func closeReason(err error) string {
	var perr *ProtocolError
	switch {
	case errors.As(err, &perr):
		return "protocol"
	case errors.Is(err, ErrOutboxFull), errors.Is(err, events.ErrOverflow):
		return "slow_consumer"
	}
	return "transport"
}
