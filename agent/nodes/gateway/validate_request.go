package gatewaynode

import (
	"errors"
	"strings"
	"time"

	authflowx "github.com/tanpawarit/Chative-Policy-Gateway/agent/authflow"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

var (
	ErrInvalidMessage = errors.New("query is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply         string
	Authenticated bool
	Agent         contractx.AgentType
	Decision      authflowx.Decision
	Needs         statex.Awaiting
	// Err is the turn failure, if any. Nothing was committed when it is set.
	Err error
}

// GraphState is threaded through every node of one turn. Nodes record domain
// failures in Err and later nodes pass the state through untouched.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	// Session is the committed snapshot; Next is the candidate for this turn.
	Session *statex.SessionState
	Next    statex.SessionState
	Outcome authflowx.Outcome

	Agent contractx.AgentType
	Reply string
	Err   error
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
