package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/intent"
	"github.com/ent0n29/flightdesk/internal/logging"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/observability"
	"github.com/ent0n29/flightdesk/internal/recovery"
	"github.com/ent0n29/flightdesk/internal/session"
)

const (
	retrieveTimeout     = 3 * time.Second
	defaultContextLimit = 10
)

var ErrEmptyMessage = errors.New("message is required")

// Request is one inbound chat message.
type Request struct {
	Message        string `json:"message"`
	UserEmail      string `json:"user_email,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type Metadata struct {
	Intent     intent.Intent      `json:"intent"`
	Confidence float64            `json:"confidence"`
	Phase      conversation.Phase `json:"phase"`
	BookingID  string             `json:"booking_id,omitempty"`
}

// Response is the reply to one chat message.
type Response struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	Metadata       Metadata `json:"metadata"`
}

type Retriever interface {
	Retrieve(ctx context.Context, userEmail, query string, limit int) ([]memory.Turn, error)
}

type Writer interface {
	Enqueue(turns ...memory.Turn) error
}

type Classifier interface {
	Classify(ctx context.Context, message, userEmail string, turns []memory.Turn, slots conversation.Slots) (intent.Result, bool)
}

// Deps wires an Orchestrator. Retriever and Writer are optional.
type Deps struct {
	Sessions     *session.Manager
	States       conversation.Store
	Retriever    Retriever
	Writer       Writer
	Classifier   Classifier
	Router       *Router
	Metrics      *observability.Metrics
	Log          logrus.FieldLogger
	ContextLimit int
}

// Orchestrator runs chat turns end to end.
type Orchestrator struct {
	sessions     *session.Manager
	states       conversation.Store
	retriever    Retriever
	writer       Writer
	classifier   Classifier
	router       *Router
	metrics      *observability.Metrics
	log          logrus.FieldLogger
	contextLimit int
	now          func() time.Time
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.ContextLimit <= 0 {
		d.ContextLimit = defaultContextLimit
	}
	return &Orchestrator{
		sessions:     d.Sessions,
		states:       d.States,
		retriever:    d.Retriever,
		writer:       d.Writer,
		classifier:   d.Classifier,
		router:       d.Router,
		metrics:      d.Metrics,
		log:          d.Log,
		contextLimit: d.ContextLimit,
		now:          time.Now,
	}
}

// HandleMessage runs one turn. Only an empty message or a state store
// failure is returned as an error; everything else degrades into the reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, ErrEmptyMessage
	}
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	turnStart := time.Now()

	conv, created := o.sessions.Resolve(req.ConversationID, email)
	if created {
		o.observeConversation("started")
	}
	if email == "" {
		email = conv.UserEmail
	}
	log := logging.WithTurn(o.log, conv.ID, email)
	_ = o.sessions.StartTurn(conv.ID, uuid.NewString())
	defer func() { _ = o.sessions.FinishTurn(conv.ID) }()

	stage := time.Now()
	history := o.retrieve(ctx, log, email, message)
	o.metrics.ObserveTurnStage(observability.StageMemoryRetrieve, time.Since(stage))

	stage = time.Now()
	state, found, err := o.states.Load(ctx, conv.ID)
	if err != nil {
		return Response{}, err
	}
	if !found {
		state = conversation.NewState(conv.ID, email)
		o.metrics.ObserveTurnIndicator(observability.IndicatorStateCreated)
	}
	if state.Slots == nil {
		state.Slots = conversation.Slots{}
	}
	if state.UserEmail == "" {
		state.UserEmail = email
	}
	o.metrics.ObserveTurnStage(observability.StageStateLoad, time.Since(stage))

	stage = time.Now()
	if fillFromHistory(&state, history) {
		o.metrics.ObserveTurnIndicator(observability.IndicatorStateRecovered)
	}
	o.metrics.ObserveTurnStage(observability.StageRecovery, time.Since(stage))

	stage = time.Now()
	result, fromModel := o.classifier.Classify(ctx, message, email, history, state.Slots)
	o.metrics.ObserveTurnStage(observability.StageClassify, time.Since(stage))
	if !fromModel && o.metrics != nil {
		o.metrics.ClassifierFallbacks.Inc()
		o.metrics.ObserveTurnIndicator(observability.IndicatorClassifierFallback)
	}
	intent.MergeSlots(state.Slots, result.Slots)

	name, handler := o.router.Route(result.Intent)
	turn := &Turn{
		ConversationID: conv.ID,
		UserEmail:      email,
		Message:        message,
		History:        history,
		State:          &state,
		Intent:         result,
	}
	stage = time.Now()
	reply := handler(ctx, turn)
	o.metrics.ObserveTurnStage(observability.StageHandler, time.Since(stage))
	if o.metrics != nil {
		o.metrics.Turns.WithLabelValues(string(result.Intent)).Inc()
		o.metrics.HandlerOutcomes.WithLabelValues(name, string(reply.Outcome)).Inc()
	}
	log.WithFields(logrus.Fields{
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"handler":    name,
		"outcome":    reply.Outcome,
	}).Info("turn handled")

	state.Phase = state.DerivePhase()
	state.UpdatedAt = o.now().UTC()
	if err := o.states.Save(ctx, state); err != nil {
		log.WithError(err).Error("state save failed")
	}

	o.remember(log, conv.ID, email, message, reply.Text)
	o.metrics.ObserveTurnStage(observability.StageTurnTotal, time.Since(turnStart))

	return Response{
		Response:       reply.Text,
		ConversationID: conv.ID,
		Metadata: Metadata{
			Intent:     result.Intent,
			Confidence: result.Confidence,
			Phase:      state.Phase,
			BookingID:  state.BookingID,
		},
	}, nil
}

// State returns the persisted record for a conversation.
func (o *Orchestrator) State(ctx context.Context, conversationID string) (conversation.State, bool, error) {
	return o.states.Load(ctx, conversationID)
}

func (o *Orchestrator) retrieve(ctx context.Context, log logrus.FieldLogger, email, message string) []memory.Turn {
	if o.retriever == nil || email == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, retrieveTimeout)
	defer cancel()
	turns, err := o.retriever.Retrieve(ctx, email, message, o.contextLimit)
	if err != nil {
		log.WithError(err).Warn("memory retrieve failed, continuing without history")
		o.metrics.ObserveTurnIndicator(observability.IndicatorHistoryUnavailable)
		return nil
	}
	return turns
}

func (o *Orchestrator) remember(log logrus.FieldLogger, conversationID, email, message, reply string) {
	if o.writer == nil || email == "" {
		return
	}
	now := o.now().UTC()
	err := o.writer.Enqueue(
		memory.Turn{ID: uuid.NewString(), UserEmail: email, ConversationID: conversationID, Role: memory.RoleUser, Text: message, CreatedAt: now},
		memory.Turn{ID: uuid.NewString(), UserEmail: email, ConversationID: conversationID, Role: memory.RoleAssistant, Text: reply, CreatedAt: now.Add(time.Millisecond)},
	)
	if err != nil {
		log.WithError(err).Warn("memory write-back dropped")
	}
}

func (o *Orchestrator) observeConversation(event string) {
	if o.metrics == nil {
		return
	}
	o.metrics.ConversationEvents.WithLabelValues(event).Inc()
	o.metrics.ActiveConversations.Set(float64(o.sessions.ActiveCount()))
}

// fillFromHistory adds what recovery finds in history without overwriting
// anything the state already knows. It reports whether anything was added.
func fillFromHistory(state *conversation.State, history []memory.Turn) bool {
	if len(history) == 0 {
		return false
	}
	proj := recovery.Project(history)
	added := false
	for key, v := range proj.Slots {
		if v != nil && !state.Slots.Has(key) {
			state.Slots.Set(key, *v)
			added = true
		}
	}
	before := state.Fields
	state.Fields.FillFrom(proj.Fields)
	if state.Fields != before {
		added = true
	}
	if state.SelectedOffer == nil && state.BookingID == "" && len(state.SearchResults) == 0 && proj.OfferID != "" && !state.Slots.Has(conversation.SlotOfferID) {
		state.Slots.Set(conversation.SlotOfferID, proj.OfferID)
		added = true
	}
	return added
}
