package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/tilewm/internal/models"
)

// ErrClosed is returned for requests on a closed connection
var ErrClosed = errors.New("connection closed")

const eventBuffer = 256

// Connection manages the WebSocket connection to the window manager. One
// goroutine reads every inbound message, handing responses to the waiting
// request by ID and events to the Events channel.
type Connection struct {
	address string
	timeout time.Duration

	mu      sync.Mutex
	writeMu sync.Mutex
	ws      *websocket.Conn
	pending map[string]chan *models.Response
	events  chan *models.Event
	done    chan struct{}
	err     error
}

// NewConnection creates a new connection instance
func NewConnection(address string, timeout time.Duration) *Connection {
	return &Connection{
		address: address,
		timeout: timeout,
		pending: make(map[string]chan *models.Response),
	}
}

// Connect dials the server and starts the reader
func (c *Connection) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.address, Path: "/"}
	dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
	ws, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}

	c.mu.Lock()
	c.ws = ws
	c.events = make(chan *models.Event, eventBuffer)
	c.done = make(chan struct{})
	c.err = nil
	c.mu.Unlock()

	go c.readLoop(ws)
	return nil
}

// Close sends a close frame and closes the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return nil
	}

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()

	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	return ws.Close()
}

// IsConnected returns true if the connection is established
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Events returns the channel events are delivered on. It is closed when the
// connection ends.
func (c *Connection) Events() <-chan *models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

// Err reports why the connection ended
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SendRequest sends a request and waits for the response with its ID
func (c *Connection) SendRequest(ctx context.Context, req *models.MessageEnvelope) (*models.Response, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := req.Request.ID
	ch := make(chan *models.Response, 1)

	c.mu.Lock()
	ws, done := c.ws, c.done
	if ws == nil {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	_ = ws.SetWriteDeadline(time.Now().Add(c.timeout))
	err := ws.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("request cancelled or timed out: %w", ctx.Err())
	case resp := <-ch:
		return resp, nil
	case <-done:
		// The server may answer and close in one go.
		select {
		case resp := <-ch:
			return resp, nil
		default:
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		return nil, ErrClosed
	}
}

func (c *Connection) readLoop(ws *websocket.Conn) {
	var err error
	defer func() {
		c.mu.Lock()
		if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			c.err = err
		}
		close(c.events)
		close(c.done)
		c.mu.Unlock()
	}()

	for {
		var env models.MessageEnvelope
		if err = ws.ReadJSON(&env); err != nil {
			return
		}

		switch env.Type {
		case models.TypeResponse:
			if env.Response == nil {
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[env.Response.ID]
			c.mu.Unlock()
			if ok {
				ch <- env.Response
			} else if env.Response.ID == "" && env.Response.Error != nil {
				// Protocol errors carry no request ID; the server closes next.
				c.mu.Lock()
				c.err = responseError(env.Response)
				c.mu.Unlock()
			}
		case models.TypeEvent:
			if env.Event == nil {
				continue
			}
			// A consumer that stops reading loses events rather than
			// stalling responses.
			select {
			case c.events <- env.Event:
			default:
			}
		}
	}
}
