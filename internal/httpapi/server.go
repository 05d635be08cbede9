package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/agent"
	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/config"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/logging"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/observability"
	"github.com/ent0n29/flightdesk/internal/session"
)

// Chat runs chat turns and exposes the persisted conversation state.
type Chat interface {
	HandleMessage(ctx context.Context, req agent.Request) (agent.Response, error)
	State(ctx context.Context, conversationID string) (conversation.State, bool, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, userEmail, query string, limit int) ([]memory.Turn, error)
}

// Deps are the services behind the REST surface. Memory and Embedder may be
// nil, in which case the memory routes report unavailable.
type Deps struct {
	Sessions  *session.Manager
	Chat      Chat
	Backend   booking.Backend
	Memory    memory.Store
	Embedder  memory.Embedder
	Retriever Retriever
	Metrics   *observability.Metrics
	Log       logrus.FieldLogger
}

type Server struct {
	cfg       config.Config
	sessions  *session.Manager
	chat      Chat
	backend   booking.Backend
	memory    memory.Store
	embedder  memory.Embedder
	retriever Retriever
	metrics   *observability.Metrics
	log       logrus.FieldLogger
	upgrader  websocket.Upgrader
}

func New(cfg config.Config, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	return &Server{
		cfg:       cfg,
		sessions:  deps.Sessions,
		chat:      deps.Chat,
		backend:   deps.Backend,
		memory:    deps.Memory,
		embedder:  deps.Embedder,
		retriever: deps.Retriever,
		metrics:   deps.Metrics,
		log:       deps.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				return originAllowed(cfg.AllowedOrigins, origin, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)
	r.Delete("/v1/perf/latency", s.handlePerfReset)

	r.Post("/v1/chat/message", s.handleChatMessage)
	r.Get("/v1/chat/ws", s.handleChatWS)
	r.Get("/v1/conversations/{id}/state", s.handleConversationState)
	r.Post("/v1/conversations/{id}/end", s.handleEndConversation)

	r.Post("/v1/flights/search", s.handleSearchFlights)
	r.Get("/v1/flights/offers/{id}", s.handleGetOffer)
	r.Get("/v1/airports/search", s.handleAirportSearch)

	r.Post("/v1/bookings", s.handleCreateBooking)
	r.Get("/v1/bookings/{id}", s.handleGetBooking)
	r.Post("/v1/bookings/{id}/cancel", s.handleCancelBooking)
	r.Get("/v1/users/{email}/bookings", s.handleListBookings)

	r.Post("/v1/memory/save", s.handleMemorySave)
	r.Post("/v1/memory/retrieve", s.handleMemoryRetrieve)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"llm_provider": s.cfg.LLMProvider,
		"backend_mode": s.cfg.BackendMode,
		"memory_store": storeMode(s.cfg.DatabaseURL, "postgres"),
		"state_store":  storeMode(s.cfg.RedisURL, "redis"),
	})
}

func (s *Server) handleConversationState(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" || s.chat == nil {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "missing conversation id")
		return
	}
	state, ok, err := s.chat.State(r.Context(), id)
	if err != nil {
		s.log.WithError(err).WithField("conversation_id", id).Error("state load failed")
		respondError(w, http.StatusInternalServerError, "state_unavailable", "conversation state unavailable")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "conversation_not_found", "no state for conversation")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleEndConversation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "missing conversation id")
		return
	}
	conv, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}
	s.observeConversation("ended")
	respondJSON(w, http.StatusOK, conv)
}

func (s *Server) observeConversation(event string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ConversationEvents.WithLabelValues(event).Inc()
	s.metrics.ActiveConversations.Set(float64(s.sessions.ActiveCount()))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func originAllowed(allowed []string, origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if strings.EqualFold(u.Host, host) {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(origin, "/")) {
			return true
		}
	}
	return false
}

func storeMode(dsn, durable string) string {
	if strings.TrimSpace(dsn) == "" {
		return "in-memory"
	}
	return durable
}
