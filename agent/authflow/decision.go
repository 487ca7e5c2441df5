package authflow

import (
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

// Decision tells the gateway what to do with a turn.
type Decision int

const (
	// DecisionReprompt replies directly, usually asking for a credential.
	DecisionReprompt Decision = iota
	// DecisionGranted replies with the authentication success message.
	DecisionGranted
	// DecisionReject replies with a failure; the session was reset this turn.
	DecisionReject
	// DecisionProceedAuthenticated forwards the utterance to the authenticated assistant.
	DecisionProceedAuthenticated
	// DecisionProceedGuest forwards the utterance to the guest assistant.
	DecisionProceedGuest
)

func (d Decision) String() string {
	switch d {
	case DecisionReprompt:
		return "reprompt"
	case DecisionGranted:
		return "granted"
	case DecisionReject:
		return "reject"
	case DecisionProceedAuthenticated:
		return "proceed_authenticated"
	case DecisionProceedGuest:
		return "proceed_guest"
	default:
		return "unknown"
	}
}

// Forwards reports whether the turn goes to an assistant.
func (d Decision) Forwards() bool {
	return d == DecisionProceedAuthenticated || d == DecisionProceedGuest
}

// Outcome is the single result of one transition. Message is empty when the
// decision forwards to an assistant.
type Outcome struct {
	Decision Decision
	Message  string
	Needs    statex.Awaiting
}
