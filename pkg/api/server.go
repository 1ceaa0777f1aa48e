// Package api is the localhost control surface of the screensaver: a
// WebSocket that accepts navigation and lifecycle messages and broadcasts
// each transition, plus health and metrics endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

var apiLog = log.Component("API")

const writeTimeout = 5 * time.Second

// Controller receives the navigation commands.
type Controller interface {
	Forward()
	Back()
	TogglePause()
}

// Hooks are the lifecycle callbacks. Any of them may be nil.
type Hooks struct {
	CloseAll    func()
	ShowPreview func()
	IsShowing   func() bool
}

// Message is the envelope of every WebSocket message.
type Message struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

// PhotoEvent is broadcast on every transition.
type PhotoEvent struct {
	Slot   int    `json:"slot"`
	URL    string `json:"url"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Server represents the local WebSocket server.
type Server struct {
	addr       string
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader

	// WebSocket management
	clients   map[*websocket.Conn]*client
	clientsMu sync.Mutex

	ctrlMu sync.RWMutex
	ctrl   Controller
	hooks  Hooks
}

// NewServer creates a new API server listening on addr once started.
func NewServer(addr string) *Server {
	if addr == "" {
		addr = config.DefaultAPIAddr
	}
	s := &Server{
		addr: addr,
		mux:  http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]*client),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.enableCORS(s.handleHealth))
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.Handle("/metrics", promhttp.Handler())
}

// enableCORS adds CORS headers to the handler.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Allow extensions to access localhost
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// SetController sets where navigation messages go. It may change when a new
// session replaces the old one.
func (s *Server) SetController(ctrl Controller) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	s.ctrl = ctrl
}

// SetHooks sets the lifecycle callbacks.
func (s *Server) SetHooks(h Hooks) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	s.hooks = h
}

func (s *Server) controller() (Controller, Hooks) {
	s.ctrlMu.RLock()
	defer s.ctrlMu.RUnlock()
	return s.ctrl, s.hooks
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	apiLog.Printf("listening on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the server and disconnects every client.
func (s *Server) Stop(ctx context.Context) error {
	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Broadcast sends msg to all connected clients. Clients that cannot be
// written to are dropped.
func (s *Server) Broadcast(msg Message) {
	s.clientsMu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.clientsMu.Unlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			apiLog.Printf("failed to broadcast to client: %v", err)
			s.drop(c.conn)
		}
	}
}

// BroadcastPhoto announces a transition.
func (s *Server) BroadcastPhoto(ev PhotoEvent) {
	s.Broadcast(Message{Type: TypePhoto, Value: ev})
}

func (s *Server) drop(conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[conn]; ok {
		conn.Close()
		delete(s.clients, conn)
	}
}
