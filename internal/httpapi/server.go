package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/babybot/internal/config"
	"github.com/antoniostano/babybot/internal/memory"
	"github.com/antoniostano/babybot/internal/observability"
	"github.com/antoniostano/babybot/internal/session"
)

// MemoryReader is the read side of the conversation memory.
type MemoryReader interface {
	ContextWindow(userID string, size int) []memory.Exchange
	Users() int
	Window() int
}

// Server exposes health, metrics and read-only inspection endpoints.
type Server struct {
	cfg      config.Config
	memory   MemoryReader
	sessions *session.Manager
	metrics  *observability.Metrics
	ready    atomic.Bool
}

func New(cfg config.Config, mem MemoryReader, sessions *session.Manager, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		memory:   mem,
		sessions: sessions,
		metrics:  metrics,
	}
}

// SetReady flips /readyz once the chat gateway is connected.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/perf/latency", s.handlePerfLatency)
	r.Get("/v1/voice/sessions", s.handleListVoiceSessions)

	// Stored conversations are private; the route stays closed until a token
	// is configured.
	r.Group(func(r chi.Router) {
		r.Use(s.requireOpsToken)
		r.Get("/v1/memory/{userID}", s.handleMemoryWindow)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"memory_backend": s.cfg.MemoryBackend,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "starting"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) requireOpsToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.OpsAPIToken
		if token == "" {
			respondError(w, http.StatusForbidden, "disabled", "set OPS_API_TOKEN to enable this endpoint")
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="babybot"`)
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type memoryWindowResponse struct {
	UserID    string            `json:"user_id"`
	Window    int               `json:"window"`
	Exchanges []memory.Exchange `json:"exchanges"`
}

func (s *Server) handleMemoryWindow(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "memory store not configured")
		return
	}
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "missing user id")
		return
	}

	window := s.memory.Window()
	if raw := strings.TrimSpace(r.URL.Query().Get("window")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_window", "window must be a positive integer")
			return
		}
		window = n
	}

	respondJSON(w, http.StatusOK, memoryWindowResponse{
		UserID:    userID,
		Window:    window,
		Exchanges: s.memory.ContextWindow(userID, window),
	})
}

func (s *Server) handleListVoiceSessions(w http.ResponseWriter, _ *http.Request) {
	if s.sessions == nil {
		respondJSON(w, http.StatusOK, map[string]any{"active": 0, "sessions": []any{}})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"active":   s.sessions.ActiveCount(),
		"sessions": s.sessions.List(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
