package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageChat(t *testing.T) {
	raw := []byte(`{"type":"client_message","conversation_id":"c1","user_email":"jane@example.com","message":"flights to goa"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	chat, ok := msg.(ClientMessage)
	if !ok {
		t.Fatalf("message type = %T, want ClientMessage", msg)
	}
	if chat.ConversationID != "c1" || chat.Message != "flights to goa" {
		t.Fatalf("unexpected client message: %+v", chat)
	}
}

func TestParseClientMessageRejectsEmptyText(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"client_message","message":"   "}`)); err == nil {
		t.Fatalf("ParseClientMessage() error = nil, want error")
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageControl(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"client_control","conversation_id":"c1","action":"end"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	control, ok := msg.(ClientControl)
	if !ok {
		t.Fatalf("message type = %T, want ClientControl", msg)
	}
	if control.Action != ActionEnd {
		t.Fatalf("Action = %q, want %q", control.Action, ActionEnd)
	}

	if _, err := ParseClientMessage([]byte(`{"type":"client_control","action":"dance"}`)); err == nil {
		t.Fatalf("ParseClientMessage() error = nil for unknown action")
	}
}

func TestParseClientMessageInvalidJSON(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":`)); err == nil {
		t.Fatalf("ParseClientMessage() error = nil, want error")
	}
}

func TestTypeOf(t *testing.T) {
	got, ok := TypeOf(AssistantMessage{Type: TypeAssistantMessage})
	if !ok || got != TypeAssistantMessage {
		t.Fatalf("TypeOf() = %q, %v", got, ok)
	}
	if _, ok := TypeOf("plain string"); ok {
		t.Fatalf("TypeOf() ok = true for non-protocol value")
	}
}
