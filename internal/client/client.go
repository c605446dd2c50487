// Package client talks to a running tilewm over its WebSocket IPC.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/models"
)

const (
	DefaultAddress = config.DefaultAddress
	DefaultTimeout = 30 * time.Second
)

// ServerError is an error response from the server
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s: %s", e.Code, e.Message)
}

func responseError(r *models.Response) error {
	return &ServerError{Code: r.Error.Code, Message: r.Error.Message}
}

// Client is the main tilewm client
type Client struct {
	conn *Connection
}

// NewClient creates a new client for the server at address (host:port)
func NewClient(address string, timeout time.Duration) *Client {
	if address == "" {
		address = DefaultAddress
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		conn: NewConnection(address, timeout),
	}
}

// Connect establishes connection to the server
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// request is a helper to send a request and get the response
func (c *Client) request(ctx context.Context, method string, params map[string]interface{}) (map[string]interface{}, error) {
	if !c.conn.IsConnected() {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	req := models.NewRequest(uuid.New().String(), method, params)
	resp, err := c.conn.SendRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}
	return resp.Result, nil
}

// Monitors retrieves the container tree below every monitor
func (c *Client) Monitors(ctx context.Context) (*models.MonitorsResult, error) {
	result, err := c.request(ctx, models.MethodMonitors, nil)
	if err != nil {
		return nil, err
	}
	var out models.MonitorsResult
	if err := models.Remarshal(result, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Windows retrieves every managed window
func (c *Client) Windows(ctx context.Context) (*models.WindowsResult, error) {
	result, err := c.request(ctx, models.MethodWindows, nil)
	if err != nil {
		return nil, err
	}
	var out models.WindowsResult
	if err := models.Remarshal(result, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Command runs cmd and returns its result
func (c *Client) Command(ctx context.Context, cmd command.Command) (map[string]interface{}, error) {
	params, err := command.ToParams(cmd)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, models.MethodCommand, params)
}

// Subscribe asks for events of the given kinds, or all kinds when none are
// given, and returns the channel they arrive on. A later Subscribe replaces
// the filter.
func (c *Client) Subscribe(ctx context.Context, kinds ...string) (<-chan *models.Event, error) {
	params := map[string]interface{}{}
	if len(kinds) > 0 {
		params["events"] = kinds
	}
	if _, err := c.request(ctx, models.MethodSubscribe, params); err != nil {
		return nil, err
	}
	return c.conn.Events(), nil
}

// Err reports why the connection ended, once the event channel is closed
func (c *Client) Err() error {
	return c.conn.Err()
}

// CallMethod sends a generic request with the given method and parameters
func (c *Client) CallMethod(ctx context.Context, method string, params map[string]interface{}) (map[string]interface{}, error) {
	return c.request(ctx, method, params)
}
