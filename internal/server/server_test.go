package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/strategy"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	return startServerWith(t, Config{
		Seed:   42,
		Engine: strategy.Config{SkipOwnBetNarrowing: true},
		Logger: testLogger(),
	})
}

func startServerWith(t *testing.T, cfg Config) (*Server, string) {
	t.Helper()
	srv := New(cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func request(t *testing.T, conn *websocket.Conn, typ MessageType, id string, data any) *Message {
	t.Helper()
	msg := map[string]any{"type": typ, "requestId": id}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, conn.WriteJSON(msg))
	return receive(t, conn)
}

func receive(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	return &reply
}

func payload[T any](t *testing.T, msg *Message, want MessageType) T {
	t.Helper()
	require.Equal(t, want, msg.Type, "data: %s", msg.Data)
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := New(Config{Logger: testLogger()})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	_, url := startServer(t)
	conn := dial(t, url)

	reply := request(t, conn, MessageTypeEvaluate, "e1", EvaluateData{Cards: []string{"As", "Ad", "Ks", "Kd", "2c"}})
	assert.Equal(t, "e1", reply.RequestID)
	got := payload[EvaluationData](t, reply, MessageTypeEvaluation)
	assert.Equal(t, "Two Pair", got.Category)
	assert.Equal(t, 2, got.Rank)

	reply = request(t, conn, MessageTypeEvaluate, "e2", EvaluateData{Cards: []string{"As", "Ad"}})
	assert.Equal(t, "e2", reply.RequestID)
	assert.Equal(t, ErrCodeInvalidCards, payload[ErrorData](t, reply, MessageTypeError).Code)
}

func TestCompare(t *testing.T) {
	t.Parallel()
	_, url := startServer(t)
	conn := dial(t, url)

	reply := request(t, conn, MessageTypeCompare, "c1", CompareData{
		First:  []string{"Ah", "Kh", "Qh", "Jh", "Th"},
		Second: []string{"9c", "9d", "9h", "9s", "2c"},
	})
	got := payload[ComparisonData](t, reply, MessageTypeComparison)
	assert.Equal(t, "Straight Flush", got.First)
	assert.Equal(t, "Four of a Kind", got.Second)
	assert.Equal(t, "first", got.Outcome)

	reply = request(t, conn, MessageTypeCompare, "c2", CompareData{
		First:  []string{"2c", "3d", "Ts", "Jh", "Qd", "Kc", "Ac"},
		Second: []string{"2h", "3s", "Ts", "Jh", "Qd", "Kc", "Ac"},
	})
	assert.Equal(t, "tie", payload[ComparisonData](t, reply, MessageTypeComparison).Outcome)
}

func TestDecide(t *testing.T) {
	t.Parallel()
	_, url := startServer(t)
	conn := dial(t, url)

	started := payload[HandStartedData](t, request(t, conn, MessageTypeNewHand, "h1", nil), MessageTypeHandStarted)
	assert.Equal(t, 1326, started.RangeSize)

	reply := request(t, conn, MessageTypeDecide, "d1", DecideData{
		Hole:          []string{"As", "Ad"},
		CurrentBet:    2,
		OwnBet:        1,
		Pot:           3,
		OwnStack:      199,
		OpponentStack: 198,
	})
	got := payload[DecisionData](t, reply, MessageTypeDecision)
	assert.NotEqual(t, "fold", got.Action)
	assert.Equal(t, "Pre-flop", got.Round)
	assert.NotEmpty(t, got.Reasoning)
	// combos holding either ace are gone
	assert.Equal(t, 1225, got.RangeSize)

	started = payload[HandStartedData](t, request(t, conn, MessageTypeNewHand, "h2", nil), MessageTypeHandStarted)
	assert.Equal(t, 1326, started.RangeSize)
}

func TestConnectionsHaveSeparateEngines(t *testing.T) {
	t.Parallel()
	srv, url := startServer(t)
	a, b := dial(t, url), dial(t, url)

	decide := func(conn *websocket.Conn, hole ...string) DecisionData {
		return payload[DecisionData](t, request(t, conn, MessageTypeDecide, "", DecideData{
			Hole: hole, CurrentBet: 2, OwnBet: 1, Pot: 3, OwnStack: 199, OpponentStack: 198,
		}), MessageTypeDecision)
	}

	assert.Equal(t, 1225, decide(a, "As", "Ad").RangeSize)
	assert.Equal(t, 1225, decide(b, "Ks", "Kd").RangeSize)
	assert.Equal(t, 2, srv.Connections())
}

func TestDecideRejectsBadSituations(t *testing.T) {
	t.Parallel()
	_, url := startServer(t)
	conn := dial(t, url)

	tests := []struct {
		name string
		data DecideData
		code string
	}{
		{"bad card", DecideData{Hole: []string{"Zz", "Ad"}, Pot: 3, OwnStack: 10}, ErrCodeInvalidCards},
		{"two board cards", DecideData{Hole: []string{"As", "Ad"}, Board: []string{"2c", "3c"}, Pot: 3, OwnStack: 10}, ErrCodeInvalidSituation},
		{"duplicate card", DecideData{Hole: []string{"As", "Ad"}, Board: []string{"As", "3c", "4c"}, Pot: 3, OwnStack: 10}, ErrCodeInvalidSituation},
		{"own bet above current", DecideData{Hole: []string{"As", "Ad"}, CurrentBet: 2, OwnBet: 4, Pot: 6, OwnStack: 10}, ErrCodeInvalidSituation},
	}
	for _, tt := range tests {
		reply := request(t, conn, MessageTypeDecide, tt.name, tt.data)
		assert.Equal(t, tt.name, reply.RequestID)
		assert.Equal(t, tt.code, payload[ErrorData](t, reply, MessageTypeError).Code, tt.name)
	}
}

func TestProtocolErrors(t *testing.T) {
	t.Parallel()
	_, url := startServer(t)
	conn := dial(t, url)

	reply := request(t, conn, MessageType("shuffle"), "x", nil)
	assert.Equal(t, ErrCodeUnknownType, payload[ErrorData](t, reply, MessageTypeError).Code)

	reply = request(t, conn, MessageTypeDecide, "y", "not an object")
	assert.Equal(t, ErrCodeInvalidMessage, payload[ErrorData](t, reply, MessageTypeError).Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	assert.Equal(t, ErrCodeInvalidMessage, payload[ErrorData](t, receive(t, conn), MessageTypeError).Code)

	// still serving after the bad frame
	reply = request(t, conn, MessageTypeNewHand, "z", nil)
	assert.Equal(t, MessageTypeHandStarted, reply.Type)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	_, url := startServerWith(t, Config{
		Seed:              1,
		RequestsPerSecond: 1,
		Burst:             2,
		Clock:             clock,
		Logger:            testLogger(),
	})
	conn := dial(t, url)

	cards := EvaluateData{Cards: []string{"As", "Ad", "Ks", "Kd", "2c"}}
	payload[EvaluationData](t, request(t, conn, MessageTypeEvaluate, "1", cards), MessageTypeEvaluation)
	payload[EvaluationData](t, request(t, conn, MessageTypeEvaluate, "2", cards), MessageTypeEvaluation)

	reply := request(t, conn, MessageTypeEvaluate, "3", cards)
	assert.Equal(t, "3", reply.RequestID)
	assert.Equal(t, ErrCodeRateLimited, payload[ErrorData](t, reply, MessageTypeError).Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock.Advance(time.Second).MustWait(ctx)
	payload[EvaluationData](t, request(t, conn, MessageTypeEvaluate, "4", cards), MessageTypeEvaluation)
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	srv, url := startServer(t)
	conn := dial(t, url)
	m := srv.Metrics()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.connections) == 1
	}, 5*time.Second, 10*time.Millisecond)

	reply := request(t, conn, MessageTypeDecide, "d1", DecideData{
		Hole:          []string{"As", "Ah"},
		CurrentBet:    2,
		OwnBet:        1,
		Pot:           3,
		OwnStack:      199,
		OpponentStack: 198,
	})
	d := payload[DecisionData](t, reply, MessageTypeDecision)
	request(t, conn, "shuffle", "x", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("decide")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(ErrCodeUnknownType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("Pre-flop", d.Action)))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "headsup_decision_confidence_count 1")
	assert.Contains(t, w.Body.String(), "headsup_connections 1")
}
