// Package authflow decides, turn by turn, how far a session has progressed
// through phone + zip authentication.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	credentialx "github.com/tanpawarit/Chative-Policy-Gateway/agent/credential"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

type Config struct {
	// Platform is used in reply text and query-context phrases.
	Platform string
	// GuestFallback forwards idle, credential-free utterances of an already
	// started session to the guest assistant instead of re-asking for a phone.
	GuestFallback bool
}

type Machine struct {
	directory     contractx.Directory
	platform      string
	guestFallback bool
}

func New(directory contractx.Directory, cfg Config) (*Machine, error) {
	if directory == nil {
		return nil, errors.New("credential directory is required")
	}
	platform := strings.TrimSpace(cfg.Platform)
	if platform == "" {
		platform = "eBay"
	}
	return &Machine{
		directory:     directory,
		platform:      platform,
		guestFallback: cfg.GuestFallback,
	}, nil
}

// Step applies one utterance to st and returns the next state. st is taken by
// value and never modified in place. On error the caller must keep st.
func (m *Machine) Step(ctx context.Context, st statex.SessionState, utterance string) (statex.SessionState, Outcome, error) {
	if st.Authenticated {
		return st, Outcome{Decision: DecisionProceedAuthenticated}, nil
	}

	switch st.Awaiting {
	case statex.AwaitingPhone:
		return m.stepAwaitingPhone(ctx, st, utterance)
	case statex.AwaitingZip:
		return m.stepAwaitingZip(ctx, st, utterance)
	case statex.AwaitingNone:
		return m.stepIdle(ctx, st, utterance)
	default:
		return st, Outcome{}, fmt.Errorf("%w: awaiting=%q", contractx.ErrInvalidState, st.Awaiting)
	}
}

func (m *Machine) stepAwaitingPhone(ctx context.Context, st statex.SessionState, u string) (statex.SessionState, Outcome, error) {
	if credentialx.IsRefusal(u) {
		return reject(st, msgRefused)
	}
	phone, ok := credentialx.ExtractPhone(u)
	if !ok {
		return st, Outcome{Decision: DecisionReprompt, Message: msgInvalidPhone, Needs: statex.AwaitingPhone}, nil
	}
	st.Phone = phone
	st.Started = true
	if st.Zip != "" {
		return m.validate(ctx, st)
	}
	st.Awaiting = statex.AwaitingZip
	return st, Outcome{Decision: DecisionReprompt, Message: msgAskZip, Needs: statex.AwaitingZip}, nil
}

func (m *Machine) stepAwaitingZip(ctx context.Context, st statex.SessionState, u string) (statex.SessionState, Outcome, error) {
	if credentialx.IsRefusal(u) {
		return reject(st, msgRefused)
	}
	zip, ok := credentialx.ExtractZip(u)
	if !ok {
		return st, Outcome{Decision: DecisionReprompt, Message: msgInvalidZip, Needs: statex.AwaitingZip}, nil
	}
	st.Zip = zip
	st.Started = true
	if st.Phone != "" {
		return m.validate(ctx, st)
	}
	st.Awaiting = statex.AwaitingPhone
	return st, Outcome{Decision: DecisionReprompt, Message: msgAskPhone, Needs: statex.AwaitingPhone}, nil
}

func (m *Machine) stepIdle(ctx context.Context, st statex.SessionState, u string) (statex.SessionState, Outcome, error) {
	phone, hasPhone := credentialx.ExtractPhone(u)
	zip, hasZip := credentialx.ExtractZip(u)

	switch {
	case hasPhone && hasZip:
		st.Phone, st.Zip = phone, zip
		st.Started = true
		return m.validate(ctx, st)
	case hasPhone:
		st.Phone = phone
		st.Awaiting = statex.AwaitingZip
		st.Started = true
		return st, Outcome{Decision: DecisionReprompt, Message: msgAskZip, Needs: statex.AwaitingZip}, nil
	case hasZip:
		st.Zip = zip
		st.Awaiting = statex.AwaitingPhone
		st.Started = true
		return st, Outcome{Decision: DecisionReprompt, Message: msgAskPhone, Needs: statex.AwaitingPhone}, nil
	case !st.Started:
		st.Started = true
		st.InitialQueryContext = credentialx.QueryContext(u, m.platform)
		return st, Outcome{
			Decision: DecisionReprompt,
			Message:  firstTurnMessage(st.InitialQueryContext),
			Needs:    statex.AwaitingPhone,
		}, nil
	case m.guestFallback:
		return st, Outcome{Decision: DecisionProceedGuest, Needs: statex.AwaitingPhone}, nil
	default:
		return st, Outcome{Decision: DecisionReprompt, Message: msgIdlePhone, Needs: statex.AwaitingPhone}, nil
	}
}

// validate checks the held pair. A miss resets the whole session so the next
// utterance starts collection from scratch.
func (m *Machine) validate(ctx context.Context, st statex.SessionState) (statex.SessionState, Outcome, error) {
	ok, err := m.directory.Contains(ctx, credentialx.Key(st.Phone, st.Zip))
	if err != nil {
		return statex.SessionState{}, Outcome{}, err
	}
	if !ok {
		return reject(st, msgMismatch)
	}

	initialContext := st.InitialQueryContext
	st.Authenticated = true
	st.Awaiting = statex.AwaitingNone
	st.Started = true
	st.InitialQueryContext = ""
	return st, Outcome{Decision: DecisionGranted, Message: grantedMessage(m.platform, initialContext)}, nil
}

func reject(st statex.SessionState, msg string) (statex.SessionState, Outcome, error) {
	st.Reset()
	return st, Outcome{Decision: DecisionReject, Message: msg}, nil
}
