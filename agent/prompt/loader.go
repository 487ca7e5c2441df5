package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/guest.txt
	guestRaw string

	//go:embed template/authenticated.txt
	authenticatedRaw string
)

// PromptSet holds loaded prompt content. Templates use the FString
// placeholder {platform}.
type PromptSet struct {
	Guest         string
	Authenticated string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Guest:         strings.TrimSpace(guestRaw),
		Authenticated: strings.TrimSpace(authenticatedRaw),
	}
}
