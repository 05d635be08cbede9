// Package agent runs one chat turn: it recovers state, classifies the
// message, routes it to a task handler and persists the outcome.
package agent

import (
	"context"

	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/intent"
	"github.com/ent0n29/flightdesk/internal/memory"
)

// Turn is what a handler sees. Handlers mutate State in place; the
// orchestrator persists it afterwards.
type Turn struct {
	ConversationID string
	UserEmail      string
	Message        string
	History        []memory.Turn
	State          *conversation.State
	Intent         intent.Result
}

// Outcome labels a handler result for metrics.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeClarify Outcome = "clarify"
	OutcomeBooked  Outcome = "booked"
	OutcomeFailed  Outcome = "failed"
)

// Reply is the user-visible text plus its outcome.
type Reply struct {
	Text    string
	Outcome Outcome
}

func answer(text string) Reply  { return Reply{Text: text, Outcome: OutcomeOK} }
func clarify(text string) Reply { return Reply{Text: text, Outcome: OutcomeClarify} }
func apology(text string) Reply { return Reply{Text: text, Outcome: OutcomeFailed} }

// Handler serves one intent.
type Handler func(ctx context.Context, t *Turn) Reply

type route struct {
	name    string
	handler Handler
}

// Router maps each intent to exactly one handler. Unregistered intents go to
// the fallback.
type Router struct {
	routes   map[intent.Intent]route
	fallback route
}

func NewRouter(fallback Handler) *Router {
	return &Router{
		routes:   make(map[intent.Intent]route),
		fallback: route{name: "fallback", handler: fallback},
	}
}

func (r *Router) Register(i intent.Intent, name string, h Handler) {
	r.routes[i] = route{name: name, handler: h}
}

// Route returns the handler name and handler for i.
func (r *Router) Route(i intent.Intent) (string, Handler) {
	if rt, ok := r.routes[i]; ok {
		return rt.name, rt.handler
	}
	return r.fallback.name, r.fallback.handler
}
