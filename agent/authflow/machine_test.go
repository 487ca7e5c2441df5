package authflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	directoryx "github.com/tanpawarit/Chative-Policy-Gateway/agent/directory"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

type failingDirectory struct{ err error }

func (f failingDirectory) Contains(context.Context, string) (bool, error) {
	return false, f.err
}

func newTestMachine(t *testing.T, cfg Config) *Machine {
	t.Helper()
	m, err := New(directoryx.Default(), cfg)
	require.NoError(t, err)
	return m
}

func freshState() statex.SessionState {
	return *statex.NewSessionState("s1", time.Unix(0, 0))
}

func step(t *testing.T, m *Machine, st statex.SessionState, u string) (statex.SessionState, Outcome) {
	t.Helper()
	next, out, err := m.Step(context.Background(), st, u)
	require.NoError(t, err)
	return next, out
}

func TestNewRequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{})
	require.Error(t, err)
}

func TestScenarioPhoneThenZip(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, out := step(t, m, freshState(), "my number is 1234567890")
	assert.Equal(t, DecisionReprompt, out.Decision)
	assert.Equal(t, statex.AwaitingZip, out.Needs)
	assert.Contains(t, out.Message, "zip code")
	assert.Equal(t, "1234567890", st.Phone)
	assert.Equal(t, statex.AwaitingZip, st.Awaiting)
	assert.True(t, st.Started)
	assert.False(t, st.Authenticated)

	st, out = step(t, m, st, "98109")
	assert.Equal(t, DecisionGranted, out.Decision)
	assert.True(t, strings.HasPrefix(out.Message, "Authentication successful."))
	assert.True(t, st.Authenticated)
	assert.Equal(t, statex.AwaitingNone, st.Awaiting)
	assert.Equal(t, "98109", st.Zip)
	require.NoError(t, st.Validate())
}

func TestScenarioJointMismatchResets(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, out := step(t, m, freshState(), "1234567890 00000")
	assert.Equal(t, DecisionReject, out.Decision)
	assert.Equal(t, msgMismatch, out.Message)
	assert.True(t, st.IsInitial(), "state = %+v", st)
}

func TestScenarioJointMatchGrants(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, out := step(t, m, freshState(), "it's 9876543210 and 12345")
	assert.Equal(t, DecisionGranted, out.Decision)
	assert.True(t, st.Authenticated)
}

func TestScenarioRefusalWhileAwaitingZip(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, _ := step(t, m, freshState(), "1234567890")
	require.Equal(t, statex.AwaitingZip, st.Awaiting)

	st, out := step(t, m, st, "I don't have it")
	assert.Equal(t, DecisionReject, out.Decision)
	assert.Equal(t, msgRefused, out.Message)
	assert.True(t, st.IsInitial())
}

func TestScenarioFirstTurnCapturesContext(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, out := step(t, m, freshState(), "what is the return policy?")
	assert.Equal(t, DecisionReprompt, out.Decision)
	assert.Equal(t, statex.AwaitingPhone, out.Needs)
	assert.Contains(t, out.Message, "phone number")
	assert.Equal(t, "ebay return policy", st.InitialQueryContext)
	assert.True(t, st.Started)
	assert.Equal(t, statex.AwaitingNone, st.Awaiting)

	// The captured question is echoed back once authentication succeeds.
	st, _ = step(t, m, st, "1234567890")
	st, out = step(t, m, st, "98109")
	assert.Equal(t, DecisionGranted, out.Decision)
	assert.Contains(t, out.Message, "ebay return policy")
	assert.True(t, st.Authenticated)
}

func TestAuthenticatedSessionProceeds(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st := freshState()
	st.Authenticated, st.Phone, st.Zip, st.Started = true, "1234567890", "98109", true

	for _, u := range []string{"how do I sell?", "1234567890 00000", "I don't have it"} {
		next, out := step(t, m, st, u)
		assert.Equal(t, DecisionProceedAuthenticated, out.Decision, u)
		assert.Empty(t, out.Message)
		assert.Equal(t, st, next, u)
	}
}

func TestRepromptIsIdempotentWhileAwaitingPhone(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st := freshState()
	st.Zip, st.Awaiting, st.Started = "98109", statex.AwaitingPhone, true

	next1, out1 := step(t, m, st, "hmm, what?")
	next2, out2 := step(t, m, next1, "hmm, what?")

	assert.Equal(t, out1, out2)
	assert.Equal(t, msgInvalidPhone, out1.Message)
	assert.Equal(t, statex.AwaitingPhone, out1.Needs)
	assert.Equal(t, st, next1)
	assert.Equal(t, st, next2)
}

func TestZipFirstThenPhone(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, out := step(t, m, freshState(), "zip is 98109")
	assert.Equal(t, statex.AwaitingPhone, out.Needs)
	assert.Equal(t, msgAskPhone, out.Message)
	assert.Equal(t, "98109", st.Zip)
	assert.Equal(t, statex.AwaitingPhone, st.Awaiting)

	st, out = step(t, m, st, "1234567890")
	assert.Equal(t, DecisionGranted, out.Decision)
	assert.True(t, st.Authenticated)
}

func TestAwaitingZipRoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	base := freshState()
	base.Phone, base.Awaiting, base.Started = "1234567890", statex.AwaitingZip, true

	granted, out := step(t, m, base, "98109")
	assert.Equal(t, DecisionGranted, out.Decision)
	assert.True(t, granted.Authenticated)

	rejected, out := step(t, m, base, "12345")
	assert.Equal(t, DecisionReject, out.Decision)
	assert.True(t, rejected.IsInitial())
	assert.Equal(t, base.SessionID, rejected.SessionID)
}

func TestInvalidZipRepromptsWithoutChange(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st := freshState()
	st.Phone, st.Awaiting, st.Started = "1234567890", statex.AwaitingZip, true

	next, out := step(t, m, st, "it's 9810")
	assert.Equal(t, DecisionReprompt, out.Decision)
	assert.Equal(t, msgInvalidZip, out.Message)
	assert.Equal(t, statex.AwaitingZip, out.Needs)
	assert.Equal(t, st, next)
}

func TestRefusalWhileAwaitingPhone(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st := freshState()
	st.Zip, st.Awaiting, st.Started = "98109", statex.AwaitingPhone, true

	next, out := step(t, m, st, "wrong number, sorry")
	assert.Equal(t, DecisionReject, out.Decision)
	assert.True(t, next.IsInitial())
}

func TestRefusalIgnoredWhenIdle(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	_, out := step(t, m, freshState(), "I don't have an account")
	assert.Equal(t, DecisionReprompt, out.Decision)
	assert.Equal(t, statex.AwaitingPhone, out.Needs)
}

func TestIdleRepromptAfterStart(t *testing.T) {
	t.Parallel()

	st := freshState()
	st.Started = true

	m := newTestMachine(t, Config{})
	next, out := step(t, m, st, "just tell me")
	assert.Equal(t, DecisionReprompt, out.Decision)
	assert.Equal(t, msgIdlePhone, out.Message)
	assert.Equal(t, st, next)

	fallback := newTestMachine(t, Config{GuestFallback: true})
	next, out = step(t, fallback, st, "just tell me")
	assert.Equal(t, DecisionProceedGuest, out.Decision)
	assert.Equal(t, statex.AwaitingPhone, out.Needs)
	assert.Equal(t, st, next)
}

func TestRejectedSessionStartsOver(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st, _ := step(t, m, freshState(), "1234567890 00000")
	require.True(t, st.IsInitial())

	st, out := step(t, m, st, "hello there")
	assert.Equal(t, DecisionReprompt, out.Decision)
	assert.Equal(t, "hello there", st.InitialQueryContext)
}

func TestDirectoryErrorLeavesStateToCaller(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	m, err := New(failingDirectory{err: boom}, Config{})
	require.NoError(t, err)

	_, _, err = m.Step(context.Background(), freshState(), "1234567890 98109")
	require.ErrorIs(t, err, boom)
}

func TestInvalidAwaitingIsReported(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{})

	st := freshState()
	st.Awaiting = "email"
	_, _, err := m.Step(context.Background(), st, "hi")
	require.ErrorIs(t, err, contractx.ErrInvalidState)
}

func TestPlatformNameInMessages(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, Config{Platform: "Etsy"})

	st, _ := step(t, m, freshState(), "what is the refund policy")
	assert.Equal(t, "etsy refund policy", st.InitialQueryContext)

	_, out := step(t, m, freshState(), "1234567890 98109")
	assert.Contains(t, out.Message, "Etsy-related")
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "proceed_guest", DecisionProceedGuest.String())
	assert.True(t, DecisionProceedAuthenticated.Forwards())
	assert.False(t, DecisionGranted.Forwards())
}
