package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/flightdesk/internal/agent"
	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/config"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/intent"
	"github.com/ent0n29/flightdesk/internal/inventory"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/observability"
	"github.com/ent0n29/flightdesk/internal/protocol"
	"github.com/ent0n29/flightdesk/internal/session"
)

type echoChat struct {
	sessions *session.Manager
	states   map[string]conversation.State
}

func (c *echoChat) HandleMessage(_ context.Context, req agent.Request) (agent.Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return agent.Response{}, agent.ErrEmptyMessage
	}
	conv, _ := c.sessions.Resolve(req.ConversationID, req.UserEmail)
	st := conversation.NewState(conv.ID, req.UserEmail)
	c.states[conv.ID] = st
	return agent.Response{
		Response:       "echo: " + req.Message,
		ConversationID: conv.ID,
		Metadata:       agent.Metadata{Intent: intent.General, Confidence: 0.5, Phase: st.Phase},
	}, nil
}

func (c *echoChat) State(_ context.Context, id string) (conversation.State, bool, error) {
	st, ok := c.states[id]
	return st, ok, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	cfg := config.Config{
		AllowedOrigins:     []string{"*"},
		USDToINRRate:       83,
		MemoryContextLimit: 10,
		LLMProvider:        "mock",
		BackendMode:        "local",
	}
	sessions := session.NewManager(2 * time.Minute)
	store := memory.NewInMemoryStore()
	metrics := observability.NewMetrics("test_httpapi_" + strings.ToLower(t.Name()))
	srv := New(cfg, Deps{
		Sessions:  sessions,
		Chat:      &echoChat{sessions: sessions, states: map[string]conversation.State{}},
		Backend:   inventory.NewService(inventory.NewMemoryStore(), inventory.NewMockGenerator(), 83, nil),
		Memory:    store,
		Retriever: memory.NewRetriever(store, nil),
		Metrics:   metrics,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, sessions
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return res
}

func decode(t *testing.T, res *http.Response, out any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		var payload map[string]any
		decode(t, res, &payload)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, res.StatusCode)
		}
		if path == "/readyz" && payload["memory_store"] != "in-memory" {
			t.Fatalf("memory_store = %v, want in-memory", payload["memory_store"])
		}
	}
}

func TestChatMessageAndConversationLifecycle(t *testing.T) {
	ts, sessions := newTestServer(t)

	res := postJSON(t, ts.URL+"/v1/chat/message", map[string]string{"message": "hello", "user_email": "jane@example.com"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var resp agent.Response
	decode(t, res, &resp)
	if resp.Response != "echo: hello" || resp.ConversationID == "" {
		t.Fatalf("response = %+v", resp)
	}

	stateRes, err := http.Get(ts.URL + "/v1/conversations/" + resp.ConversationID + "/state")
	if err != nil {
		t.Fatalf("GET state error = %v", err)
	}
	var st conversation.State
	decode(t, stateRes, &st)
	if stateRes.StatusCode != http.StatusOK || st.ConversationID != resp.ConversationID {
		t.Fatalf("state status = %d body = %+v", stateRes.StatusCode, st)
	}

	endRes := postJSON(t, ts.URL+"/v1/conversations/"+resp.ConversationID+"/end", nil)
	endRes.Body.Close()
	if endRes.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d, want 200", endRes.StatusCode)
	}
	if sessions.ActiveCount() != 0 {
		t.Fatalf("ActiveCount() = %d, want 0", sessions.ActiveCount())
	}
}

func TestChatMessageRejectsEmpty(t *testing.T) {
	ts, _ := newTestServer(t)
	res := postJSON(t, ts.URL+"/v1/chat/message", map[string]string{"message": " "})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestMissingConversationState(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Get(ts.URL + "/v1/conversations/nope/state")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}

func TestFlightAndBookingRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	res := postJSON(t, ts.URL+"/v1/flights/search", booking.SearchRequest{Origin: "hyderabad", Destination: "BOM", DepartureDate: "2025-07-01"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d, want 200", res.StatusCode)
	}
	var search searchResponse
	decode(t, res, &search)
	if search.Count != 15 || search.Offers[0].Origin != "HYD" || search.Offers[0].Currency != booking.CurrencyINR {
		t.Fatalf("search = count %d first %+v", search.Count, search.Offers[0])
	}
	offerID := search.Offers[0].OfferID

	offerRes, err := http.Get(ts.URL + "/v1/flights/offers/" + strings.ToLower(offerID))
	if err != nil {
		t.Fatalf("GET offer error = %v", err)
	}
	offerRes.Body.Close()
	if offerRes.StatusCode != http.StatusOK {
		t.Fatalf("offer status = %d, want 200", offerRes.StatusCode)
	}

	createRes := postJSON(t, ts.URL+"/v1/bookings", booking.CreateRequest{
		OfferID:    offerID,
		UserEmail:  "jane@example.com",
		Passengers: []booking.Passenger{{FullName: "Jane Doe", Email: "jane@example.com", Phone: "98765 43210"}},
	})
	if createRes.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", createRes.StatusCode)
	}
	var created booking.Booking
	decode(t, createRes, &created)
	if created.BookingID == "" || created.TotalAmount != search.Offers[0].Price {
		t.Fatalf("created = %+v", created)
	}

	listRes, err := http.Get(ts.URL + "/v1/users/jane@example.com/bookings")
	if err != nil {
		t.Fatalf("GET bookings error = %v", err)
	}
	var list bookingsResponse
	decode(t, listRes, &list)
	if list.Count != 1 || list.Bookings[0].BookingID != created.BookingID {
		t.Fatalf("list = %+v", list)
	}

	cancelRes := postJSON(t, ts.URL+"/v1/bookings/"+created.BookingID+"/cancel", nil)
	cancelRes.Body.Close()
	if cancelRes.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", cancelRes.StatusCode)
	}
	again := postJSON(t, ts.URL+"/v1/bookings/"+created.BookingID+"/cancel", nil)
	again.Body.Close()
	if again.StatusCode != http.StatusConflict {
		t.Fatalf("second cancel status = %d, want 409", again.StatusCode)
	}
}

func TestBackendErrorStatuses(t *testing.T) {
	ts, _ := newTestServer(t)

	res := postJSON(t, ts.URL+"/v1/flights/search", booking.SearchRequest{Origin: "HYD", Destination: "BOM", DepartureDate: "01/07/2025"})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date status = %d, want 400", res.StatusCode)
	}

	res, err := http.Get(ts.URL + "/v1/bookings/does-not-exist")
	if err != nil {
		t.Fatalf("GET booking error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing booking status = %d, want 404", res.StatusCode)
	}
}

func TestAirportSearch(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Get(ts.URL + "/v1/airports/search?query=mum&limit=3")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	var payload struct {
		Airports []struct {
			Code string `json:"code"`
		} `json:"airports"`
	}
	decode(t, res, &payload)
	found := false
	for _, a := range payload.Airports {
		if a.Code == "BOM" {
			found = true
		}
	}
	if !found {
		t.Fatalf("airports = %+v, want BOM", payload.Airports)
	}
}

func TestMemorySaveAndRetrieve(t *testing.T) {
	ts, _ := newTestServer(t)

	bad := postJSON(t, ts.URL+"/v1/memory/save", map[string]string{"user_email": "a@b.co", "role": "system", "text": "x"})
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad role status = %d, want 400", bad.StatusCode)
	}

	for _, text := range []string{"first", "second"} {
		res := postJSON(t, ts.URL+"/v1/memory/save", map[string]string{"user_email": "A@B.co", "role": "user", "text": text})
		res.Body.Close()
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("save status = %d, want 201", res.StatusCode)
		}
		time.Sleep(2 * time.Millisecond)
	}

	res := postJSON(t, ts.URL+"/v1/memory/retrieve", map[string]any{"user_email": "a@b.co", "limit": 5})
	var payload struct {
		Turns []memory.Turn `json:"turns"`
		Count int           `json:"count"`
	}
	decode(t, res, &payload)
	if payload.Count != 2 || payload.Turns[0].Text != "first" || payload.Turns[1].Text != "second" {
		t.Fatalf("turns = %+v, want chronological first, second", payload.Turns)
	}
}

func TestChatWebSocket(t *testing.T) {
	ts, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws?user_email=jane@example.com"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello protocol.SystemEvent
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("ReadJSON(connected) error = %v", err)
	}
	if hello.Code != "connected" {
		t.Fatalf("first event = %+v, want connected", hello)
	}

	if err := conn.WriteJSON(protocol.ClientMessage{Type: protocol.TypeClientMessage, Message: "hi there"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var reply protocol.AssistantMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON(reply) error = %v", err)
	}
	if reply.Type != protocol.TypeAssistantMessage || reply.Text != "echo: hi there" || reply.ConversationID == "" {
		t.Fatalf("reply = %+v", reply)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	var bad protocol.ErrorEvent
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("ReadJSON(error) error = %v", err)
	}
	if bad.Code != "invalid_client_message" {
		t.Fatalf("error event = %+v", bad)
	}
}

func TestOriginAllowed(t *testing.T) {
	if !originAllowed(nil, "http://localhost:8080", "localhost:8080") {
		t.Fatalf("same-host origin rejected")
	}
	if originAllowed([]string{"http://app.test"}, "http://evil.test", "localhost:8080") {
		t.Fatalf("unlisted origin accepted")
	}
	if !originAllowed([]string{"http://app.test/"}, "http://app.test", "localhost:8080") {
		t.Fatalf("listed origin rejected")
	}
}

func TestPerfLatencyWindow(t *testing.T) {
	cfg := config.Config{AllowedOrigins: []string{"*"}}
	metrics := observability.NewMetrics("test_httpapi_perf")
	metrics.ObserveTurnStage(observability.StageClassify, 120*time.Millisecond)
	ts := httptest.NewServer(New(cfg, Deps{Sessions: session.NewManager(time.Minute), Metrics: metrics}).Router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/perf/latency")
	if err != nil {
		t.Fatalf("GET latency error = %v", err)
	}
	var snap observability.TurnStageSnapshot
	decode(t, res, &snap)
	if len(snap.Stages) != 1 || snap.Stages[0].Stage != observability.StageClassify {
		t.Fatalf("stages = %+v, want one classify stage", snap.Stages)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/perf/latency", nil)
	delRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE latency error = %v", err)
	}
	delRes.Body.Close()
	if delRes.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", delRes.StatusCode)
	}
	if got := metrics.SnapshotTurnStages(); len(got.Stages) != 0 {
		t.Fatalf("stages after reset = %+v, want none", got.Stages)
	}
}
