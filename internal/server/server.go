// Package server exposes the table engine over HTTP and streams room events
// over websockets.
package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/lox/holdem-rooms/internal/hub"
	"github.com/lox/holdem-rooms/internal/table"
)

// APIPrefix is the path prefix for every JSON endpoint.
const APIPrefix = "/api/v1"

const (
	readHeaderTimeout = 5 * time.Second
	maxBodyBytes      = 64 << 10
)

// Server routes HTTP requests to the engine.
type Server struct {
	engine *table.Engine
	hub    *hub.Hub
	logger *log.Logger
	router *mux.Router
	http   *http.Server
}

// New builds a server with every route registered.
func New(engine *table.Engine, h *hub.Hub, logger *log.Logger) *Server {
	s := &Server{
		engine: engine,
		hub:    h,
		logger: logger.WithPrefix("http"),
		router: mux.NewRouter(),
	}
	s.routes()
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix(APIPrefix).Subrouter()
	api.Use(s.logRequests)

	api.HandleFunc("/rooms", s.handleListRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", s.handleDeleteRoom).Methods(http.MethodDelete)
	api.HandleFunc("/rooms/{id}/join", s.handleJoin).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/leave", s.handleLeave).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/action", s.handleAction).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/next_phase", s.handleNextPhase).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/end", s.handleEnd).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/ws", s.handleWebSocket).Methods(http.MethodGet)

	api.HandleFunc("/players", s.handleCreatePlayer).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", s.handleGetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", s.handleDeletePlayer).Methods(http.MethodDelete)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until Shutdown is called. It returns nil
// after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Listening", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown stops accepting requests, closes websocket subscribers and waits
// for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path,
			"status", rw.status, "duration", time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack hands the connection to the websocket upgrader.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
