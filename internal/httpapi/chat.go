package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/flightdesk/internal/agent"
	"github.com/ent0n29/flightdesk/internal/protocol"
)

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON chat message")
		return
	}
	if s.chat == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "chat not configured")
		return
	}
	resp, err := s.chat.HandleMessage(r.Context(), req)
	if errors.Is(err, agent.ErrEmptyMessage) {
		respondError(w, http.StatusBadRequest, "empty_message", err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("chat turn failed")
		respondError(w, http.StatusInternalServerError, "turn_failed", "the message could not be processed, please retry")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleChatWS carries chat turns over one websocket. Turns on a connection
// run one at a time in arrival order.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "chat not configured")
		return
	}
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	userEmail := strings.TrimSpace(r.URL.Query().Get("user_email"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.observeConversation("ws_connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan any, 64)
	outbound := make(chan any, 64)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		s.runChat(ctx, conversationID, userEmail, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					s.countWS("write_error", msg)
					cancel()
					return
				}
				s.countWS("outbound", msg)
			}
		}
	}()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			errEvent := protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				Code:      "invalid_client_message",
				Retryable: false,
				Detail:    err.Error(),
			}
			select {
			case outbound <- errEvent:
			default:
				// Keep websocket writes single-threaded; drop if the queue is full.
				s.countWS("dropped", errEvent)
			}
			continue
		}

		s.countWS("inbound", parsed)
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
	s.observeConversation("ws_disconnected")
}

// runChat consumes parsed client messages until inbound closes.
func (s *Server) runChat(ctx context.Context, conversationID, userEmail string, inbound <-chan any, outbound chan<- any) {
	send := func(msg any) {
		select {
		case <-ctx.Done():
		case outbound <- msg:
		}
	}
	send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, ConversationID: conversationID, Code: "connected"})

	for msg := range inbound {
		switch m := msg.(type) {
		case protocol.ClientMessage:
			if m.ConversationID != "" {
				conversationID = m.ConversationID
			}
			if m.UserEmail != "" {
				userEmail = m.UserEmail
			}
			resp, err := s.chat.HandleMessage(ctx, agent.Request{
				Message:        m.Message,
				UserEmail:      userEmail,
				ConversationID: conversationID,
			})
			if err != nil {
				if ctx.Err() == nil {
					s.log.WithError(err).WithField("conversation_id", conversationID).Error("chat turn failed")
				}
				send(protocol.ErrorEvent{
					Type:           protocol.TypeErrorEvent,
					ConversationID: conversationID,
					Code:           "turn_failed",
					Retryable:      true,
					Detail:         "the message could not be processed, please retry",
				})
				continue
			}
			conversationID = resp.ConversationID
			send(protocol.AssistantMessage{
				Type:           protocol.TypeAssistantMessage,
				ConversationID: resp.ConversationID,
				Text:           resp.Response,
				Intent:         string(resp.Metadata.Intent),
				Confidence:     resp.Metadata.Confidence,
				Phase:          string(resp.Metadata.Phase),
				BookingID:      resp.Metadata.BookingID,
			})
		case protocol.ClientControl:
			switch m.Action {
			case protocol.ActionPing:
				if conversationID != "" {
					_ = s.sessions.Touch(conversationID)
				}
				send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, ConversationID: conversationID, Code: "pong"})
			case protocol.ActionEnd:
				if conversationID != "" {
					if _, err := s.sessions.End(conversationID); err == nil {
						s.observeConversation("ended")
					}
				}
				send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, ConversationID: conversationID, Code: "conversation_ended"})
			}
		}
	}
}

func (s *Server) countWS(direction string, msg any) {
	if s.metrics == nil {
		return
	}
	if t, ok := protocol.TypeOf(msg); ok {
		s.metrics.WSMessages.WithLabelValues(direction, string(t)).Inc()
	}
}
