// Package directory holds the table of credential pairs a session may
// authenticate with.
package directory

import (
	"context"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	credentialx "github.com/tanpawarit/Chative-Policy-Gateway/agent/credential"
)

// DefaultEntries is the compiled-in directory.
var DefaultEntries = []string{
	credentialx.Key("1234567890", "98109"),
	credentialx.Key("9876543210", "12345"),
}

// Static is an immutable in-memory directory. It is safe for concurrent use.
type Static struct {
	entries map[string]struct{}
}

var _ contractx.Directory = (*Static)(nil)

func NewStatic(keys ...string) *Static {
	entries := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		entries[k] = struct{}{}
	}
	return &Static{entries: entries}
}

// Default returns the compiled-in directory.
func Default() *Static {
	return NewStatic(DefaultEntries...)
}

func (s *Static) Contains(_ context.Context, key string) (bool, error) {
	_, ok := s.entries[key]
	return ok, nil
}

func (s *Static) Len() int {
	return len(s.entries)
}
