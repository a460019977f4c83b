// Package server exposes the query and ingestion surfaces over HTTP JSON
// and a WebSocket that also pushes a frame after every store commit.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/query"
)

// Config holds HTTP server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string // WebSocket and CORS origins; empty allows localhost only
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server serves one query.Service.
type Server struct {
	svc     *query.Service
	cfg     Config
	router  chi.Router
	metrics *metrics
	logger  *zap.SugaredLogger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	httpServer     *http.Server
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	hubOnce        sync.Once
	broadcastDrops atomic.Int64
	state          atomic.Int32
}

// New creates a server over svc. Commits on the service's store are
// counted and pushed to WebSocket clients.
func New(svc *query.Service, cfg Config, log *zap.SugaredLogger) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		svc:        svc,
		cfg:        cfg,
		metrics:    newMetrics(),
		logger:     logger.OrNop(log),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.router = s.routes()
	s.startHub()
	svc.Store().OnCommit(s.onCommit)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// startHub runs the client registry loop once.
func (s *Server) startHub() {
	s.hubOnce.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run()
		}()
	})
}

// run owns client registration until the server context ends.
func (s *Server) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case c := <-s.register:
			s.handleClientRegister(c)
		case c := <-s.unregister:
			s.handleClientUnregister(c)
		}
	}
}

// handleClientRegister handles a new client connection
func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients,
		)
		client.close()
		return
	}
	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	s.metrics.clients.Set(float64(total))
	s.logger.Infow("Client connected", "client_id", client.id, "total_clients", total)
}

// handleClientUnregister handles a client disconnection
func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	total := len(s.clients)
	s.mu.Unlock()

	client.close()
	s.metrics.clients.Set(float64(total))
	s.logger.Infow("Client disconnected", "client_id", client.id, "total_clients", total)
}
