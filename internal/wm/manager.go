// Package wm runs the single writer that owns WmState. Commands and
// snapshot queries from every connection are serialized through one
// bounded queue and applied on the goroutine executing Run.
package wm

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/metrics"
	"github.com/yourusername/tilewm/internal/state"
)

var (
	// ErrStopped is returned once Run has exited
	ErrStopped = errors.New("window manager stopped")
	// ErrInternal wraps a recovered panic
	ErrInternal = errors.New("internal error")
)

// Responder receives a command's outcome on the writer goroutine, after the
// command is applied and before its events are published. It must not
// block.
type Responder func(command.Result, error)

type request struct {
	cmd     command.Command
	respond Responder

	query func(*state.WmState)
	done  chan error
}

// Options configures a Manager
type Options struct {
	Config *config.Config
	Bus    *events.Bus
	// Driver receives every redraw batch; nil discards them.
	Driver    layout.Driver
	QueueSize int
}

// Manager owns WmState and the command Env
type Manager struct {
	st     *state.WmState
	env    *command.Env
	bus    *events.Bus
	driver layout.Driver
	queue  chan request
	done   chan struct{}
	log    zerolog.Logger
}

// New creates a Manager with an empty tree. Nothing runs until Run.
func New(opts Options) *Manager {
	size := opts.QueueSize
	if size <= 0 {
		size = config.DefaultCommandQueue
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus(events.DefaultBuffer)
	}
	return &Manager{
		st:     state.NewWmState(),
		env:    command.NewEnv(opts.Config),
		bus:    bus,
		driver: opts.Driver,
		queue:  make(chan request, size),
		done:   make(chan struct{}),
		log:    logging.With("wm"),
	}
}

// Bus returns the bus events are published on
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

// Done is closed when Run returns
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Run applies queued requests until ctx is cancelled. Requests still queued
// at that point fail with ErrStopped.
func (m *Manager) Run(ctx context.Context) error {
	m.log.Info().Int("queue", cap(m.queue)).Msg("window manager started")

	for {
		select {
		case <-ctx.Done():
			close(m.done)
			m.reject()
			m.log.Info().Msg("window manager stopped")
			return nil
		case req := <-m.queue:
			if req.query != nil {
				req.done <- m.runQuery(req.query)
				continue
			}
			m.handle(ctx, req)
		}
	}
}

func (m *Manager) reject() {
	for {
		select {
		case req := <-m.queue:
			if req.query != nil {
				req.done <- ErrStopped
			} else {
				req.respond(nil, ErrStopped)
			}
		default:
			return
		}
	}
}

// Submit queues cmd, blocking while the queue is full. respond is called
// exactly once unless Submit returns an error.
func (m *Manager) Submit(ctx context.Context, cmd command.Command, respond Responder) error {
	if respond == nil {
		respond = func(command.Result, error) {}
	}
	select {
	case <-m.done:
		return ErrStopped
	default:
	}

	select {
	case m.queue <- request{cmd: cmd, respond: respond}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrStopped
	}
}

// Execute submits cmd and waits for its outcome
func (m *Manager) Execute(ctx context.Context, cmd command.Command) (command.Result, error) {
	type reply struct {
		res command.Result
		err error
	}
	ch := make(chan reply, 1)
	err := m.Submit(ctx, cmd, func(res command.Result, err error) {
		ch <- reply{res, err}
	})
	if err != nil {
		return nil, err
	}

	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		select {
		case r := <-ch:
			return r.res, r.err
		default:
			return nil, ErrStopped
		}
	}
}

// Query runs fn on the writer goroutine and waits for it. fn sees a
// consistent state between commands and must copy out what it needs.
func (m *Manager) Query(ctx context.Context, fn func(*state.WmState)) error {
	done := make(chan error, 1)
	select {
	case m.queue <- request{query: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrStopped
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	}
}

func (m *Manager) handle(ctx context.Context, req request) {
	name := string(req.cmd.Name())
	start := time.Now()
	cp := m.st.Checkpoint()

	res, err := m.apply(req.cmd)
	metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		// A failed command leaves WmState as it was before it ran.
		m.st.Rollback(cp)

		result := "error"
		if errors.Is(err, ErrInternal) {
			result = "panic"
		}
		metrics.CommandsTotal.WithLabelValues(name, result).Inc()
		m.log.Warn().Err(err).Str("command", name).Msg("command failed")
		req.respond(nil, err)
		return
	}

	metrics.CommandsTotal.WithLabelValues(name, "ok").Inc()
	evts := m.st.TakeEvents()
	req.respond(res, nil)
	m.bus.Publish(evts...)

	m.log.Debug().
		Str("command", name).
		Int("events", len(evts)).
		Dur("took", time.Since(start)).
		Msg("command applied")

	m.flush(ctx)
}

func (m *Manager) apply(cmd command.Command) (res command.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
			m.log.Error().
				Str("command", string(cmd.Name())).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("command panicked")
		}
	}()
	return command.Execute(m.st, m.env, cmd)
}

func (m *Manager) runQuery(fn func(*state.WmState)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
			m.log.Error().Interface("panic", r).Msg("query panicked")
		}
	}()
	fn(m.st)
	return nil
}

// flush hands the drained ledger to the driver
func (m *Manager) flush(ctx context.Context) {
	batch := m.st.PendingSync.Drain()
	metrics.RedrawBatchSize.Observe(float64(len(batch)))
	if len(batch) == 0 || m.driver == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Int("containers", len(batch)).Msg("layout driver panicked")
		}
	}()
	if err := m.driver.Apply(ctx, m.st.Tree, batch); err != nil {
		m.log.Error().Err(err).Int("containers", len(batch)).Msg("layout driver failed")
	}
}
