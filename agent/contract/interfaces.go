package contract

import "context"

// Assistant answers a free-text question. Implementations may block on the
// network and must honor ctx cancellation.
type Assistant interface {
	Answer(ctx context.Context, query string) (string, error)
}

type Registry interface {
	Guest() Assistant
	Authenticated() Assistant
}

// Directory is the read-only table of valid "{phone}-{zip}" keys.
type Directory interface {
	Contains(ctx context.Context, key string) (bool, error)
}

type ToolGateway interface {
	Execute(ctx context.Context, agentType AgentType, reqs []ToolRequest) ([]ToolResult, error)
}
