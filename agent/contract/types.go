package contract

import "strings"

type AgentType string

const (
	AgentTypeAuthentication AgentType = "authentication"
	AgentTypeGuest          AgentType = "guest"
	AgentTypeAuthenticated  AgentType = "authenticated"
)

// DisplayName is the agent label returned to clients, e.g. "eBay Guest Agent".
func (a AgentType) DisplayName(platform string) string {
	platform = strings.TrimSpace(platform)
	switch a {
	case AgentTypeGuest:
		return strings.TrimSpace(platform + " Guest Agent")
	case AgentTypeAuthenticated:
		return strings.TrimSpace(platform + " Authenticated Agent")
	default:
		return "Authentication Agent"
	}
}

type ToolRequest struct {
	ID   string         `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	ID     string `json:"id,omitempty"`
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
