package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/metrics"
	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/state"
)

// Conn is one client connection. The reader goroutine decodes and
// dispatches requests; the writer goroutine owns every write to the socket
// and drains a bounded outbox fed by responses and subscribed events.
type Conn struct {
	id      string
	srv     *Server
	log     zerolog.Logger
	out     chan *models.MessageEnvelope
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	ws       *websocket.Conn
	sub      *events.Subscription
	draining bool
	stopped  bool
	graceful bool
	closeErr error

	done       chan struct{}
	writerDone chan struct{}
	inflight   sync.WaitGroup

	// forwarded is closed when the current subscription's forwarder has
	// queued its last event. Only the reader touches it.
	forwarded chan struct{}
}

func newConn(s *Server) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Conn{
		id:         id,
		srv:        s,
		log:        s.log.With().Str("conn", id[:8]).Logger(),
		out:        make(chan *models.MessageEnvelope, s.opts.OutboundQueue),
		limiter:    rate.NewLimiter(rate.Limit(s.opts.MessagesPerSecond), s.opts.Burst),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// serve runs the connection until the client leaves, the connection fails,
// or the server shuts down
func (c *Conn) serve(ws *websocket.Conn, remote string) {
	c.mu.Lock()
	c.ws = ws
	draining := c.draining
	c.mu.Unlock()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		c.extendReadDeadline(ws)
		return nil
	})

	go c.writeLoop(ws)
	c.log.Info().Str("remote", remote).Msg("client connected")

	if !draining {
		c.readLoop(ws)
	}

	c.waitInflight()
	c.stop(nil, true)
	<-c.writerDone
	c.unsubscribe()
	_ = ws.Close()

	c.mu.Lock()
	reason := c.closeErr
	c.mu.Unlock()
	ev := c.log.Info()
	if reason != nil {
		ev = c.log.Warn().Err(reason)
	}
	ev.Msg("client disconnected")
}

func (c *Conn) isDraining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draining
}

// extendReadDeadline pushes the read deadline out by pongWait unless the
// reader is being stopped
func (c *Conn) extendReadDeadline(ws *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.draining {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// stopReading makes the reader return without touching the socket's write
// side, so queued responses still go out.
func (c *Conn) stopReading() {
	c.mu.Lock()
	c.draining = true
	ws := c.ws
	c.mu.Unlock()
	if ws != nil {
		_ = ws.SetReadDeadline(time.Now())
	}
}

// stop ends the connection once. A graceful stop flushes the outbox and
// sends a close frame; otherwise the socket is closed right away. err is
// nil for ordinary disconnects.
func (c *Conn) stop(err error, graceful bool) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.graceful = graceful
	c.closeErr = err
	c.mu.Unlock()

	if err != nil {
		metrics.ConnectionErrors.WithLabelValues(closeReason(err)).Inc()
	}
	close(c.done)
	c.cancel()
}

// waitInflight waits for responses to commands already submitted, unless
// the connection is already stopped or the server is forcing shutdown
func (c *Conn) waitInflight() {
	idle := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(idle)
	}()
	select {
	case <-idle:
	case <-c.done:
	case <-c.srv.force:
	}
}

func (c *Conn) unsubscribe() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !c.isDraining() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.stop(&ConnectionError{ConnID: c.id, Err: err}, false)
			}
			return
		}
		if err := c.limiter.Wait(c.ctx); err != nil {
			return
		}
		if !c.handleMessage(data) {
			return
		}
		// Waiting on a command may have outlasted the last pong.
		c.extendReadDeadline(ws)
	}
}

// handleMessage decodes one inbound message. It returns false when the
// message was not a valid request and the connection is closing.
func (c *Conn) handleMessage(data []byte) bool {
	var env models.MessageEnvelope
	err := json.Unmarshal(data, &env)
	if err == nil {
		err = env.Validate()
	}
	if err == nil && env.Type != models.TypeRequest {
		err = fmt.Errorf("%w: clients may only send requests, got %q", models.ErrMalformed, env.Type)
	}
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("invalid").Inc()
		id := ""
		if env.Request != nil {
			id = env.Request.ID
		}
		c.send(models.NewErrorResponse(id, models.CodeProtocol, err.Error()))
		c.stop(&ProtocolError{ConnID: c.id, Err: err}, true)
		return false
	}

	c.dispatch(env.Request)
	return true
}

func (c *Conn) dispatch(req *models.Request) {
	switch req.Method {
	case models.MethodMonitors:
		metrics.MessagesTotal.WithLabelValues(req.Method).Inc()
		var snap *models.MonitorsResult
		c.query(req.ID, func(st *state.WmState) { snap = Monitors(st) }, func() interface{} { return snap })

	case models.MethodWindows:
		metrics.MessagesTotal.WithLabelValues(req.Method).Inc()
		var snap *models.WindowsResult
		c.query(req.ID, func(st *state.WmState) { snap = Windows(st) }, func() interface{} { return snap })

	case models.MethodCommand:
		metrics.MessagesTotal.WithLabelValues(req.Method).Inc()
		c.command(req)

	case models.MethodSubscribe:
		metrics.MessagesTotal.WithLabelValues(req.Method).Inc()
		c.subscribe(req)

	default:
		metrics.MessagesTotal.WithLabelValues("unknown").Inc()
		c.send(models.NewErrorResponse(req.ID, models.CodeUnknownMethod, fmt.Sprintf("unknown method %q", req.Method)))
	}
}

// query builds the snapshot on the manager goroutine and encodes it here
func (c *Conn) query(id string, fn func(*state.WmState), result func() interface{}) {
	if err := c.srv.backend.Query(c.ctx, fn); err != nil {
		c.send(models.NewErrorResponse(id, errorCode(err), err.Error()))
		return
	}
	m, err := models.ToMap(result())
	if err != nil {
		c.send(models.NewErrorResponse(id, models.CodeInternal, err.Error()))
		return
	}
	c.send(models.NewResponse(id, m))
}

func (c *Conn) command(req *models.Request) {
	cmd, err := command.FromParams(req.Params)
	if err != nil {
		c.send(models.NewErrorResponse(req.ID, models.CodeInvalidCommand, err.Error()))
		return
	}

	id := req.ID
	replied := make(chan struct{})
	c.inflight.Add(1)
	err = c.srv.backend.Submit(c.ctx, cmd, func(res command.Result, err error) {
		if err != nil {
			c.send(models.NewErrorResponse(id, errorCode(err), err.Error()))
		} else {
			c.send(models.NewResponse(id, res))
		}
		close(replied)
		c.inflight.Done()
	})
	if err != nil {
		c.inflight.Done()
		c.send(models.NewErrorResponse(id, errorCode(err), err.Error()))
		return
	}

	// Replies leave in request order, so the next request is not read
	// until this one is answered.
	select {
	case <-replied:
	case <-c.done:
	}
}

func (c *Conn) subscribe(req *models.Request) {
	var params models.SubscribeParams
	if err := models.Remarshal(req.Params, &params); err != nil {
		c.send(models.NewErrorResponse(req.ID, models.CodeInvalidParams, err.Error()))
		return
	}
	filter, err := events.ParseFilter(params.Events)
	if err != nil {
		c.send(models.NewErrorResponse(req.ID, models.CodeInvalidParams, err.Error()))
		return
	}

	// The new subscription replaces the old one atomically and exists
	// before the response is queued, so every event reaches the client once.
	c.mu.Lock()
	old := c.sub
	c.mu.Unlock()
	sub := c.srv.backend.Bus().Replace(old, filter)
	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	// Events the old subscription already holds go out before the response.
	if c.forwarded != nil {
		select {
		case <-c.forwarded:
		case <-c.done:
			return
		}
	}

	kinds := params.Events
	if len(kinds) == 0 {
		kinds = []string{"*"}
	}
	c.send(models.NewResponse(req.ID, map[string]interface{}{"events": kinds}))

	c.forwarded = make(chan struct{})
	go c.forward(sub, c.forwarded)
}

// forward copies events from sub to the outbox until sub ends
func (c *Conn) forward(sub *events.Subscription, done chan<- struct{}) {
	defer close(done)
	for p := range sub.C() {
		data, err := models.ToMap(p.Event)
		if err != nil {
			c.log.Error().Err(err).Str("kind", string(p.Event.Kind())).Msg("failed to encode event")
			continue
		}
		c.send(models.NewEvent(string(p.Event.Kind()), p.Seq, data, p.Time))
	}
	if err := sub.Err(); errors.Is(err, events.ErrOverflow) {
		c.stop(&ConnectionError{ConnID: c.id, Err: err}, false)
	}
}

// send queues msg without blocking. A full outbox means the client is not
// keeping up, and the connection is dropped.
func (c *Conn) send(msg *models.MessageEnvelope) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.out <- msg:
	default:
		c.stop(&ConnectionError{ConnID: c.id, Err: ErrOutboxFull}, false)
	}
}

func (c *Conn) write(ws *websocket.Conn, msg *models.MessageEnvelope) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(msg)
}

func (c *Conn) writeLoop(ws *websocket.Conn) {
	defer close(c.writerDone)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out:
			if err := c.write(ws, msg); err != nil {
				c.stop(&ConnectionError{ConnID: c.id, Err: err}, false)
				_ = ws.Close()
				return
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop(&ConnectionError{ConnID: c.id, Err: err}, false)
				_ = ws.Close()
				return
			}

		case <-c.done:
			c.mu.Lock()
			graceful, reason := c.graceful, c.closeErr
			c.mu.Unlock()
			if !graceful {
				_ = ws.Close()
				return
			}
			c.flush(ws)
			c.writeClose(ws, reason)
			return
		}
	}
}

// flush writes whatever is still queued
func (c *Conn) flush(ws *websocket.Conn) {
	for {
		select {
		case msg := <-c.out:
			if err := c.write(ws, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) writeClose(ws *websocket.Conn, reason error) {
	code, text := websocket.CloseNormalClosure, ""
	var perr *ProtocolError
	switch {
	case errors.As(reason, &perr):
		code, text = websocket.CloseProtocolError, "protocol error"
	case c.srv.isClosing():
		code, text = websocket.CloseGoingAway, "server shutting down"
	}
	msg := websocket.FormatCloseMessage(code, text)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	// Bound the wait for the client's answering close frame.
	_ = ws.SetReadDeadline(time.Now().Add(writeWait))
}
