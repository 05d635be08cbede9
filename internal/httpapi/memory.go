package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/flightdesk/internal/memory"
)

type memorySaveRequest struct {
	UserEmail      string      `json:"user_email"`
	ConversationID string      `json:"conversation_id"`
	Role           memory.Role `json:"role"`
	Text           string      `json:"text"`
}

type memoryRetrieveRequest struct {
	UserEmail string `json:"user_email"`
	Query     string `json:"query"`
	Limit     int    `json:"limit"`
}

func (s *Server) handleMemorySave(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "memory store not configured")
		return
	}
	var req memorySaveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON memory turn")
		return
	}
	req.UserEmail = strings.ToLower(strings.TrimSpace(req.UserEmail))
	if req.UserEmail == "" || strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_email and text are required")
		return
	}
	if req.Role != memory.RoleUser && req.Role != memory.RoleAssistant {
		respondError(w, http.StatusBadRequest, "invalid_role", "role must be user or assistant")
		return
	}

	turn := memory.Turn{
		ID:             uuid.NewString(),
		UserEmail:      req.UserEmail,
		ConversationID: req.ConversationID,
		Role:           req.Role,
		Text:           req.Text,
		CreatedAt:      time.Now().UTC(),
	}
	if s.embedder != nil {
		turn.Embedding = s.embedder.Embed(r.Context(), turn.Text)
	}
	if err := s.memory.SaveTurn(r.Context(), turn); err != nil {
		s.log.WithError(err).Error("memory save failed")
		s.metrics.ObserveMemoryWrite(memory.WriteFailed)
		respondError(w, http.StatusInternalServerError, "memory_unavailable", "memory store unavailable")
		return
	}
	s.metrics.ObserveMemoryWrite(memory.WriteSaved)
	respondJSON(w, http.StatusCreated, turn)
}

func (s *Server) handleMemoryRetrieve(w http.ResponseWriter, r *http.Request) {
	if s.retriever == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "memory store not configured")
		return
	}
	var req memoryRetrieveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON retrieve request")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_email is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.MemoryContextLimit
	}
	turns, err := s.retriever.Retrieve(r.Context(), email, req.Query, req.Limit)
	if err != nil {
		s.log.WithError(err).Error("memory retrieve failed")
		respondError(w, http.StatusInternalServerError, "memory_unavailable", "memory store unavailable")
		return
	}
	if turns == nil {
		turns = []memory.Turn{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"turns": turns, "count": len(turns)})
}
