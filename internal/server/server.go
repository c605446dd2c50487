// Package server exposes the window manager over WebSocket. Each client
// connection gets its own reader and writer goroutine; commands go to the
// single writer in package wm, and events reach subscribers through the
// event bus.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/metrics"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/wm"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// Backend is the window manager as seen by the server
type Backend interface {
	Submit(ctx context.Context, cmd command.Command, respond wm.Responder) error
	Query(ctx context.Context, fn func(*state.WmState)) error
	Bus() *events.Bus
}

// Options configures the server
type Options struct {
	Address           string
	MaxConnections    int
	OutboundQueue     int
	MessagesPerSecond float64
	Burst             int
}

// OptionsFromConfig reads server options from the IPC config section
func OptionsFromConfig(cfg config.IPCConfig) Options {
	return Options{
		Address:           cfg.Address,
		MaxConnections:    cfg.MaxConnections,
		OutboundQueue:     cfg.OutboundQueue,
		MessagesPerSecond: cfg.MessagesPerSecond,
		Burst:             cfg.Burst,
	}
}

func (o *Options) applyDefaults() {
	if o.Address == "" {
		o.Address = config.DefaultAddress
	}
	if o.MaxConnections <= 0 {
		o.MaxConnections = config.DefaultMaxConnections
	}
	if o.OutboundQueue <= 0 {
		o.OutboundQueue = config.DefaultOutboundQueue
	}
	if o.MessagesPerSecond <= 0 {
		o.MessagesPerSecond = config.DefaultMessagesPerSecond
	}
	if o.Burst <= 0 {
		o.Burst = config.DefaultBurst
	}
}

// Server accepts WebSocket clients on one HTTP listener, which also serves
// /metrics and /healthz.
type Server struct {
	opts     Options
	backend  Backend
	engine   *gin.Engine
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	running  bool
	closing  bool
	force    chan struct{}
	wg       sync.WaitGroup
}

// New creates a server. Call Run, or Listen and Serve, to start it.
func New(backend Backend, opts Options) *Server {
	opts.applyDefaults()
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		opts:    opts,
		backend: backend,
		conns:   make(map[*Conn]struct{}),
		force:   make(chan struct{}),
		log:     logging.With("ipc"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.logRequests())
	engine.GET("/", s.handleWebSocket)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": s.Len()})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine = engine

	s.httpSrv = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// checkOrigin accepts non-browser clients, which send no Origin, and pages
// served from this machine.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Listen binds the configured address
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Address, err)
	}
	s.listener = ln
	s.running = true
	s.log.Info().Str("address", ln.Addr().String()).Msg("IPC server listening")
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Shutdown
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server is not listening")
	}

	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run listens and serves until ctx is cancelled, then shuts down within
// grace.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	if err := s.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown stops accepting connections, stops reading from open ones, lets
// requests already submitted finish, and closes every connection with a
// close frame. Connections still open when ctx ends are dropped.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	conns := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	s.log.Info().Int("connections", len(conns)).Msg("IPC server shutting down")
	err := s.httpSrv.Shutdown(ctx)

	for _, c := range conns {
		c.stopReading()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		close(s.force)
		for _, c := range conns {
			c.stop(&ConnectionError{ConnID: c.id, Err: ErrShuttingDown}, false)
		}
		<-done
		if err == nil {
			err = ctx.Err()
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.log.Info().Msg("IPC server stopped")
	return err
}

// Len returns the number of open connections
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) handleWebSocket(c *gin.Context) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrShuttingDown.Error()})
		return
	}
	if len(s.conns) >= s.opts.MaxConnections {
		s.mu.Unlock()
		metrics.ConnectionErrors.WithLabelValues("limit").Inc()
		s.log.Warn().Int("max", s.opts.MaxConnections).Msg("connection refused: limit reached")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrTooManyConnections.Error()})
		return
	}
	// Reserve the slot before upgrading so concurrent upgrades respect the limit.
	conn := newConn(s)
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		conn.cancel()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		metrics.Connections.Dec()
		s.wg.Done()
	}()
	metrics.Connections.Inc()

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		s.log.Warn().Err(err).Str("remote", c.Request.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	conn.serve(ws, c.Request.RemoteAddr)
}
