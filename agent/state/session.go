package state

import (
	"errors"
	"fmt"
	"time"

	credentialx "github.com/tanpawarit/Chative-Policy-Gateway/agent/credential"
)

// Awaiting names the credential the gateway explicitly asked for on the
// previous turn.
type Awaiting string

const (
	AwaitingNone  Awaiting = ""
	AwaitingPhone Awaiting = "phone"
	AwaitingZip   Awaiting = "zip"
)

func (a Awaiting) Valid() bool {
	switch a {
	case AwaitingNone, AwaitingPhone, AwaitingZip:
		return true
	default:
		return false
	}
}

// SessionState tracks authentication progress for one conversation. It holds
// no reference types, so a plain value copy is a deep copy.
type SessionState struct {
	SessionID string `json:"session_id"`

	Authenticated bool     `json:"authenticated"`
	Phone         string   `json:"phone,omitempty"`
	Zip           string   `json:"zip,omitempty"`
	Awaiting      Awaiting `json:"awaiting,omitempty"`

	// Started is false until the session has seen its first utterance.
	Started             bool   `json:"started"`
	InitialQueryContext string `json:"initial_query_context,omitempty"`

	// Version is the compare-and-swap token maintained by Store.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNilSessionState   = errors.New("session state is nil")
	ErrInvalidAwaiting   = errors.New("invalid awaiting value")
	ErrAuthIncomplete    = errors.New("authenticated session is missing credentials")
	ErrAwaitingAfterAuth = errors.New("authenticated session must not await credentials")
	ErrMalformedPhone    = errors.New("stored phone is not 10 digits")
	ErrMalformedZip      = errors.New("stored zip is not 5 digits")
)

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Reset returns the session to its not-yet-started, unauthenticated values.
// Identity and the version token are kept.
func (s *SessionState) Reset() {
	s.Authenticated = false
	s.Phone = ""
	s.Zip = ""
	s.Awaiting = AwaitingNone
	s.Started = false
	s.InitialQueryContext = ""
}

// HasCredentials reports whether both halves of the credential pair are held.
func (s *SessionState) HasCredentials() bool {
	return s.Phone != "" && s.Zip != ""
}

// IsInitial reports whether the session carries no authentication progress.
func (s *SessionState) IsInitial() bool {
	return !s.Authenticated && s.Phone == "" && s.Zip == "" &&
		s.Awaiting == AwaitingNone && !s.Started && s.InitialQueryContext == ""
}

func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if !s.Awaiting.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAwaiting, s.Awaiting)
	}
	if s.Phone != "" && !credentialx.ValidPhone(s.Phone) {
		return ErrMalformedPhone
	}
	if s.Zip != "" && !credentialx.ValidZip(s.Zip) {
		return ErrMalformedZip
	}
	if s.Authenticated {
		if !s.HasCredentials() {
			return ErrAuthIncomplete
		}
		if s.Awaiting != AwaitingNone {
			return ErrAwaitingAfterAuth
		}
	}
	return nil
}
