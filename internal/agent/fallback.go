package agent

import (
	"context"
	"strings"
	"time"

	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/memory"
)

const chatContextTurns = 3

// Fallback answers general questions with the chat prompt. Any model failure
// degrades to a fixed reply.
func (h *Handlers) Fallback(ctx context.Context, t *Turn) Reply {
	if h.llm == nil {
		return answer(llm.CannedReply)
	}
	history := t.History
	if len(history) > chatContextTurns {
		history = history[len(history)-chatContextTurns:]
	}
	req, err := h.prompts.Build(llm.KindChat, llm.ChatData{
		Context: chatContext(history),
		Message: t.Message,
	}, t.Message)
	if err != nil {
		h.log.WithError(err).Error("chat prompt render failed")
		return answer(llm.CannedReply)
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()
	start := time.Now()
	text, err := h.llm.Complete(ctx, req)
	h.metrics.ObserveUpstream("llm", "chat", time.Since(start), llmCode(err))
	if err != nil {
		h.log.WithError(err).Warn("chat completion failed")
		return answer(llm.CannedReply)
	}
	if text = strings.TrimSpace(text); text == "" {
		return answer(llm.CannedReply)
	}
	return answer(text)
}

func chatContext(history []memory.Turn) string {
	if len(history) == 0 {
		return ""
	}
	return llm.Transcript(history)
}
