// Package admin serves health, metrics and command endpoints over HTTP.
// Handlers never touch the registry: they read the published Status and
// enqueue commands for the game loop.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/l1jgo/teams/internal/command"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// replyTimeout bounds how long POST /commands waits for the game loop.
const replyTimeout = 5 * time.Second

type Server struct {
	Router *mux.Router
	server *http.Server
	queue  *command.Queue
	board  *Board
	log    *zap.Logger
}

func NewServer(addr string, queue *command.Queue, board *Board, log *zap.Logger) *Server {
	router := mux.NewRouter()
	s := &Server{
		Router: router,
		queue:  queue,
		board:  board,
		log:    log,
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
	router.Use(s.loggingMiddleware)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/commands", s.handleCommand).Methods(http.MethodPost)
	return s
}

// ListenAndServe blocks until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("admin server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("admin server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("admin request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.board.Load()
	code := http.StatusOK
	if !st.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

type commandRequest struct {
	Actor string `json:"actor"`
	Line  string `json:"line"`
}

// POST /commands
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Line == "" {
		writeError(w, http.StatusBadRequest, "line is required")
		return
	}

	done := make(chan command.Result, 1)
	ok := s.queue.Submit(command.Request{
		Actor: req.Actor,
		Level: command.LevelAdmin,
		Line:  req.Line,
		Reply: func(res command.Result) { done <- res },
	})
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "command queue full")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), replyTimeout)
	defer cancel()
	select {
	case res := <-done:
		code := http.StatusOK
		if res.Error != "" {
			code = http.StatusUnprocessableEntity
		}
		writeJSON(w, code, res)
	case <-ctx.Done():
		writeError(w, http.StatusGatewayTimeout, "game loop did not answer in time")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
