// Package intent classifies a user message into one of a closed set of
// booking intents and proposes slot updates.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/logging"
	"github.com/ent0n29/flightdesk/internal/memory"
)

// Intent is a classification label.
type Intent string

const (
	FlightSearch   Intent = "flight_search"
	OfferSelection Intent = "offer_selection"
	SlotFilling    Intent = "slot_filling"
	Payment        Intent = "payment"
	BookingInquiry Intent = "booking_inquiry"
	General        Intent = "general"
)

// All lists every valid intent.
var All = []Intent{FlightSearch, OfferSelection, SlotFilling, Payment, BookingInquiry, General}

// Valid reports whether i is in the closed set.
func (i Intent) Valid() bool {
	for _, v := range All {
		if v == i {
			return true
		}
	}
	return false
}

// DefaultConfidence is used when the model omits a confidence.
const DefaultConfidence = 0.5

// Result is a validated classification.
type Result struct {
	Intent     Intent             `json:"intent"`
	Slots      conversation.Slots `json:"slots"`
	Confidence float64            `json:"confidence"`
}

// Fallback is the fail-closed result used whenever classification fails.
func Fallback() Result {
	return Result{Intent: General, Slots: conversation.Slots{}, Confidence: DefaultConfidence}
}

const (
	classifyTimeout = 10 * time.Second
	contextTurns    = 3
)

// Classifier asks the LLM for an intent and validates the answer.
type Classifier struct {
	client  llm.Client
	prompts *llm.Catalogue
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewClassifier(client llm.Client, prompts *llm.Catalogue, log logrus.FieldLogger) *Classifier {
	if prompts == nil {
		prompts = llm.DefaultCatalogue()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Classifier{client: client, prompts: prompts, log: log, now: time.Now}
}

// Classify never fails: any error is logged and mapped to Fallback. The
// boolean reports whether the result came from the model.
func (c *Classifier) Classify(ctx context.Context, message, userEmail string, turns []memory.Turn, slots conversation.Slots) (Result, bool) {
	if len(turns) > contextTurns {
		turns = turns[len(turns)-contextTurns:]
	}
	data := llm.IntentData{
		Today:   c.now().Format("2006-01-02"),
		Context: llm.Transcript(turns),
		Slots:   knownSlotsJSON(slots),
		Message: message,
		Email:   userEmail,
	}
	req, err := c.prompts.Build(llm.KindIntent, data, message)
	if err != nil {
		c.log.WithError(err).Error("intent prompt render failed")
		return Fallback(), false
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()
	raw, err := c.client.Complete(ctx, req)
	if err != nil {
		c.log.WithError(err).Warn("intent classification failed, using fallback")
		return Fallback(), false
	}

	res, err := decodeResult(raw)
	if err != nil {
		c.log.WithError(err).WithField("raw", logging.Preview(raw)).Warn("intent payload rejected, using fallback")
		return Fallback(), false
	}
	return res, true
}

var errNoObject = errors.New("no JSON object in reply")

// decodeResult is the single validation boundary for model output. It
// accepts code fences and surrounding prose, then enforces the closed intent
// set, a [0,1] confidence and scalar slot values.
func decodeResult(raw string) (Result, error) {
	body := llm.JSONObject(raw)
	if body == "" {
		return Result{}, errNoObject
	}

	var payload struct {
		Intent     *string                    `json:"intent"`
		Slots      map[string]json.RawMessage `json:"slots"`
		Confidence *float64                   `json:"confidence"`
	}
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("decode intent payload: %w", err)
	}
	if payload.Intent == nil {
		return Result{}, errors.New("intent missing")
	}
	intent := Intent(strings.ToLower(strings.TrimSpace(*payload.Intent)))
	if !intent.Valid() {
		return Result{}, fmt.Errorf("unknown intent %q", *payload.Intent)
	}

	confidence := DefaultConfidence
	if payload.Confidence != nil {
		confidence = *payload.Confidence
		if confidence < 0 || confidence > 1 {
			return Result{}, fmt.Errorf("confidence %v out of range", confidence)
		}
	}

	slots := conversation.Slots{}
	for key, rawValue := range payload.Slots {
		if !conversation.IsSlotKey(key) {
			continue
		}
		value, isNull, err := scalar(rawValue)
		if err != nil {
			return Result{}, fmt.Errorf("slot %s: %w", key, err)
		}
		if isNull {
			slots[key] = nil
			continue
		}
		slots.Set(key, value)
	}
	return Result{Intent: intent, Slots: slots, Confidence: confidence}, nil
}

// scalar decodes a slot value that must be a string, number or null.
func scalar(raw json.RawMessage) (string, bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, err
	}
	switch x := v.(type) {
	case nil:
		return "", true, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "null") {
			return "", true, nil
		}
		return s, false, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), false, nil
	default:
		return "", false, fmt.Errorf("unsupported value type %T", v)
	}
}

// MergeSlots folds a classification into accumulated slots. A non-null value
// overwrites; a null for a key never seen records it as known-empty; a null
// for a key that already holds a value is ignored.
func MergeSlots(dst, src conversation.Slots) {
	for key, v := range src {
		if v != nil && *v != "" && !strings.EqualFold(*v, "null") {
			dst.Set(key, *v)
			continue
		}
		dst.MarkEmpty(key)
	}
}

func knownSlotsJSON(slots conversation.Slots) string {
	known := map[string]string{}
	for k, v := range slots {
		if v != nil && *v != "" {
			known[k] = *v
		}
	}
	if len(known) == 0 {
		return ""
	}
	b, err := json.MarshalIndent(known, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
