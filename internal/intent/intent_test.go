package intent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/llm/offline"
	"github.com/ent0n29/flightdesk/internal/memory"
)

type stubClient struct {
	reply string
	err   error
	last  llm.Request
}

func (s *stubClient) Complete(_ context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.reply, s.err
}

func TestClassifyValidReply(t *testing.T) {
	stub := &stubClient{reply: "```json\n{\"intent\": \"flight_search\", \"slots\": {\"origin\": \"HYD\", \"adults\": 2, \"email\": null, \"seat\": \"12A\"}, \"confidence\": 0.9}\n```"}
	c := NewClassifier(stub, nil, nil)

	res, ok := c.Classify(context.Background(), "from HYD with 2 adults", "a@example.com", nil, nil)
	if !ok {
		t.Fatalf("Classify() fell back on a valid reply")
	}
	if res.Intent != FlightSearch || res.Confidence != 0.9 {
		t.Fatalf("Classify() = %+v", res)
	}
	if res.Slots.Get("origin") != "HYD" || res.Slots.Get("adults") != "2" {
		t.Fatalf("slots = %v", res.Slots)
	}
	if v, present := res.Slots["email"]; !present || v != nil {
		t.Fatalf("email slot should be present and null")
	}
	if _, present := res.Slots["seat"]; present {
		t.Fatalf("unknown slot keys must be dropped")
	}
}

func TestClassifyFailsClosed(t *testing.T) {
	cases := map[string]*stubClient{
		"client error":        {err: errors.New("upstream 503")},
		"not json":            {reply: "I think the user wants flights"},
		"unknown intent":      {reply: `{"intent": "refund", "slots": {}}`},
		"confidence too high": {reply: `{"intent": "payment", "confidence": 1.7}`},
		"slots not object":    {reply: `{"intent": "payment", "slots": ["HYD"]}`},
		"nested slot value":   {reply: `{"intent": "payment", "slots": {"origin": {"code": "HYD"}}}`},
		"missing intent":      {reply: `{"slots": {}}`},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			res, ok := NewClassifier(stub, nil, nil).Classify(context.Background(), "hi", "", nil, nil)
			if ok {
				t.Fatalf("Classify() ok = true, want fallback")
			}
			if res.Intent != General || len(res.Slots) != 0 || res.Confidence != 0.5 {
				t.Fatalf("Classify() = %+v, want {general, {}, 0.5}", res)
			}
		})
	}
}

func TestClassifyDefaultsConfidence(t *testing.T) {
	stub := &stubClient{reply: `Sure: {"intent": "payment", "slots": {}} hope that helps`}
	res, ok := NewClassifier(stub, nil, nil).Classify(context.Background(), "proceed", "", nil, nil)
	if !ok || res.Intent != Payment || res.Confidence != DefaultConfidence {
		t.Fatalf("Classify() = %+v, %v", res, ok)
	}
}

func TestClassifyPromptCarriesContextAndSlots(t *testing.T) {
	stub := &stubClient{reply: `{"intent": "general"}`}
	c := NewClassifier(stub, nil, nil)
	c.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	turns := []memory.Turn{
		{Role: memory.RoleUser, Text: "turn one"},
		{Role: memory.RoleAssistant, Text: "turn two"},
		{Role: memory.RoleUser, Text: "turn three"},
		{Role: memory.RoleAssistant, Text: "turn four"},
	}
	slots := conversation.Slots{}
	slots.Set("origin", "HYD")
	slots.MarkEmpty("destination")

	c.Classify(context.Background(), "tomorrow", "a@example.com", turns, slots)

	p := stub.last.Prompt
	if strings.Contains(p, "turn one") || !strings.Contains(p, "ASSISTANT: turn four") {
		t.Fatalf("prompt should carry only the last three turns:\n%s", p)
	}
	if !strings.Contains(p, `"origin": "HYD"`) || strings.Contains(p, `"destination"`+": null") {
		t.Fatalf("prompt should list only known slots:\n%s", p)
	}
	if !strings.Contains(p, "Today is 2024-06-01") {
		t.Fatalf("prompt missing current date:\n%s", p)
	}
	if stub.last.Kind != llm.KindIntent || stub.last.Input != "tomorrow" {
		t.Fatalf("request = %+v", stub.last)
	}
}

func TestMergeSlotsPreservesExisting(t *testing.T) {
	dst := conversation.Slots{}
	dst.Set("origin", "HYD")
	dst.Set("destination", "VTZ")

	src := conversation.Slots{}
	src["origin"] = nil
	src.Set("destination", "null")
	src.Set("departure_date", "2024-06-01")
	src["adults"] = nil

	MergeSlots(dst, src)

	if dst.Get("origin") != "HYD" || dst.Get("destination") != "VTZ" {
		t.Fatalf("existing slots overwritten: %v", dst)
	}
	if dst.Get("departure_date") != "2024-06-01" {
		t.Fatalf("departure_date = %q", dst.Get("departure_date"))
	}
	if v, ok := dst["adults"]; !ok || v != nil {
		t.Fatalf("adults should be recorded as known-empty")
	}
}

func TestMergeSlotsOverwritesWithNewValue(t *testing.T) {
	dst := conversation.Slots{}
	dst.Set("origin", "HYD")
	src := conversation.Slots{}
	src.Set("origin", "DEL")
	MergeSlots(dst, src)
	if dst.Get("origin") != "DEL" {
		t.Fatalf("origin = %q, want DEL", dst.Get("origin"))
	}
}

func TestFallbackDoesNotDisturbSlots(t *testing.T) {
	dst := conversation.Slots{}
	dst.Set("origin", "HYD")
	MergeSlots(dst, Fallback().Slots)
	if len(dst) != 1 || dst.Get("origin") != "HYD" {
		t.Fatalf("slots = %v, want unchanged", dst)
	}
}

func TestOfflineClientRoundTrip(t *testing.T) {
	c := NewClassifier(offline.New(), nil, nil)
	res, ok := c.Classify(context.Background(), "flights from delhi to mumbai on 2024-07-01", "", nil, nil)
	if !ok || res.Intent != FlightSearch {
		t.Fatalf("Classify() = %+v, %v", res, ok)
	}
	if res.Slots.Get("origin") != "DEL" || res.Slots.Get("destination") != "BOM" {
		t.Fatalf("slots = %v", res.Slots)
	}
}
