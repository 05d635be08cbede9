package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/logging"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/observability"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

const (
	extractTimeout      = 15 * time.Second
	extractContextTurns = 5
)

// Extractor pulls passenger fields out of a message. Structured answers are
// parsed locally; everything else goes to the model, with the local parser
// as the fallback.
type Extractor struct {
	client  llm.Client
	prompts *llm.Catalogue
	metrics *observability.Metrics
	log     logrus.FieldLogger
}

func NewExtractor(client llm.Client, prompts *llm.Catalogue, metrics *observability.Metrics, log logrus.FieldLogger) *Extractor {
	if prompts == nil {
		prompts = llm.DefaultCatalogue()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Extractor{client: client, prompts: prompts, metrics: metrics, log: log}
}

// Extract returns current updated with whatever message provides. Explicit
// "field: value" answers and model output replace existing values; words
// picked out of a loose sentence only fill fields that are still empty.
func (e *Extractor) Extract(ctx context.Context, message string, history []memory.Turn, current passenger.Fields) passenger.Fields {
	explicit := passenger.FromKeyValue(message)
	loose := passenger.FromFreeForm(message)
	merge := func(f passenger.Fields) passenger.Fields {
		f.Overwrite(explicit)
		f.FillFrom(loose)
		return f
	}

	if passenger.LooksStructured(message) {
		if merged := merge(current); merged.Complete() {
			return merged
		}
	}

	got, err := e.fromModel(ctx, message, history, current)
	if err != nil {
		e.log.WithError(err).Warn("field extraction via llm failed, using regex fallback")
		return merge(current)
	}
	out := current
	out.Overwrite(got)
	return merge(out)
}

var errNoFields = errors.New("extraction reply carried no booking_fields")

func (e *Extractor) fromModel(ctx context.Context, message string, history []memory.Turn, current passenger.Fields) (passenger.Fields, error) {
	if e.client == nil {
		return passenger.Fields{}, errors.New("no llm client")
	}
	if len(history) > extractContextTurns {
		history = history[len(history)-extractContextTurns:]
	}
	known, _ := json.MarshalIndent(current, "", "  ")
	req, err := e.prompts.Build(llm.KindExtract, llm.ExtractData{
		Fields:  string(known),
		Context: llm.Transcript(history),
		Message: message,
	}, message)
	if err != nil {
		return passenger.Fields{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()
	start := time.Now()
	raw, err := e.client.Complete(ctx, req)
	e.metrics.ObserveUpstream("llm", "extract", time.Since(start), llmCode(err))
	if err != nil {
		return passenger.Fields{}, err
	}
	return decodeFields(raw)
}

// decodeFields validates an extraction reply. Values that fail format checks
// are dropped rather than trusted.
func decodeFields(raw string) (passenger.Fields, error) {
	body := llm.JSONObject(raw)
	if body == "" {
		return passenger.Fields{}, errors.New("no JSON object in extraction reply")
	}
	var payload struct {
		BookingFields map[string]any `json:"booking_fields"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return passenger.Fields{}, err
	}
	if payload.BookingFields == nil {
		return passenger.Fields{}, errNoFields
	}

	var f passenger.Fields
	if name := str(payload.BookingFields[passenger.KeyFullName]); name != "" {
		f.FullName = name
	}
	if email := str(payload.BookingFields[passenger.KeyEmail]); passenger.ValidEmail(email) {
		f.Email = email
	}
	if phone := passenger.DigitsOnly(str(payload.BookingFields[passenger.KeyPhone])); passenger.ValidPhone(phone) {
		f.Phone = phone
	}
	return f, nil
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if strings.EqualFold(s, "null") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func llmCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
