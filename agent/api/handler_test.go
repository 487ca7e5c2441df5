package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gatewayx "github.com/tanpawarit/Chative-Policy-Gateway/agent/agents/gateway"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

type fakeGateway struct {
	reply gatewayx.Reply
	err   error
	wait  bool
	calls []AskRequest
}

func (f *fakeGateway) HandleMessage(ctx context.Context, sessionID string, text string) (gatewayx.Reply, error) {
	f.calls = append(f.calls, AskRequest{Query: text, SessionID: sessionID})
	if f.wait {
		<-ctx.Done()
		return gatewayx.Reply{}, &contractx.CollaboratorError{Agent: "eBay Guest Agent", Err: ctx.Err()}
	}
	return f.reply, f.err
}

type fakeReadiness struct{ err error }

func (f fakeReadiness) Ready(context.Context) error { return f.err }

func newTestRouter(gw MessageHandler, ready ReadinessChecker, rl *RateLimiter, cfg Config) http.Handler {
	return NewHandler(gw, ready, rl, cfg).Router(zerolog.Nop())
}

func postAsk(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAskSuccess(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{reply: gatewayx.Reply{
		Response:      "Thank you. Please provide your 5-digit zip code to complete authentication.",
		Agent:         "Authentication Agent",
		AgentType:     contractx.AgentTypeAuthentication,
		Needs:         statex.AwaitingZip,
		Authenticated: false,
	}}
	rec := postAsk(t, newTestRouter(gw, nil, nil, Config{}), `{"query":"1234567890","session_id":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "Authentication Agent", body["agent"])
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, "zip", body["needs"])
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "s1", gw.calls[0].SessionID)
}

func TestAskOmitsEmptyNeeds(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{reply: gatewayx.Reply{Response: "answer", Agent: "eBay Authenticated Agent", Authenticated: true}}
	rec := postAsk(t, newTestRouter(gw, nil, nil, Config{}), `{"query":"returns?","session_id":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	_, ok := body["needs"]
	assert.False(t, ok)
	assert.Equal(t, true, body["authenticated"])
}

func TestAskMissingFields(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing query":   `{"session_id":"s1"}`,
		"missing session": `{"query":"hi"}`,
		"blank query":     `{"query":"   ","session_id":"s1"}`,
		"malformed json":  `{"query":`,
		"empty body":      ``,
	}
	for name, body := range cases {
		name, body := name, body
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gw := &fakeGateway{}
			rec := postAsk(t, newTestRouter(gw, nil, nil, Config{}), body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, msgMissingFields, decodeBody(t, rec)["error"])
			assert.Empty(t, gw.calls)
		})
	}
}

func TestAskCollaboratorFailure(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: &contractx.CollaboratorError{Agent: "eBay Authenticated Agent", Err: errors.New("connection refused")}}
	rec := postAsk(t, newTestRouter(gw, nil, nil, Config{}), `{"query":"order?","session_id":"s1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "eBay Authenticated Agent Error: connection refused", decodeBody(t, rec)["error"])
}

func TestAskInternalFailureHidesCause(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: fmt.Errorf("%w: dial tcp", contractx.ErrDirectory)}
	rec := postAsk(t, newTestRouter(gw, nil, nil, Config{}), `{"query":"98109","session_id":"s1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternal, decodeBody(t, rec)["error"])
}

func TestAskTimeout(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{wait: true}
	rec := postAsk(t, newTestRouter(gw, nil, nil, Config{RequestTimeout: 20 * time.Millisecond}), `{"query":"hi","session_id":"s1"}`)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, msgTimeout, decodeBody(t, rec)["error"])
}

func TestAskRateLimited(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, time.Minute)
	t.Cleanup(rl.Close)

	gw := &fakeGateway{reply: gatewayx.Reply{Response: "ok", Agent: "Authentication Agent"}}
	h := newTestRouter(gw, nil, rl, Config{})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, postAsk(t, h, `{"query":"hi","session_id":"s1"}`).Code)
	}
	rec := postAsk(t, h, `{"query":"hi","session_id":"s1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, msgRateLimited, decodeBody(t, rec)["error"])
	assert.Len(t, gw.calls, 2)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(&fakeGateway{}, nil, nil, Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(&fakeGateway{}, fakeReadiness{}, nil, Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])

	rec = httptest.NewRecorder()
	newTestRouter(&fakeGateway{}, fakeReadiness{err: errors.New("model mistral not found")}, nil, Config{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "model mistral not found", decodeBody(t, rec)["error"])
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(&fakeGateway{}, nil, nil, Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChecksStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("directory unreachable")
	checks := Checks{fakeReadiness{}, nil, fakeReadiness{err: boom}, fakeReadiness{err: errors.New("unreached")}}
	assert.ErrorIs(t, checks.Ready(context.Background()), boom)
	assert.NoError(t, Checks{fakeReadiness{}}.Ready(context.Background()))
}
