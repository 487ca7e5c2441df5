package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Catalog binds tool schemas and executors to a searcher. Both assistants
// share the same tool set.
type Catalog struct {
	searcher Searcher
}

var _ contractx.ToolGateway = (*Catalog)(nil)

func NewCatalog(searcher Searcher) *Catalog {
	return &Catalog{searcher: searcher}
}

func (c *Catalog) BuildForAgent(agentType contractx.AgentType) ([]*schema.ToolInfo, Executor) {
	return c.infosForAgent(agentType), c.NewExecutor(agentType)
}

func (c *Catalog) NewExecutor(agentType contractx.AgentType) Executor {
	fallback := DefaultExecutor(agentType)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch {
		case tool == ToolWebSearch && c.searcher != nil && agentType != contractx.AgentTypeAuthentication:
			return c.executeWebSearch(ctx, tool, args)
		default:
			return fallback(ctx, tool, args)
		}
	}
}

// Execute runs each request in order. Tool failures are reported in
// ToolResult.Error; the returned error is reserved for ctx cancellation.
func (c *Catalog) Execute(ctx context.Context, agentType contractx.AgentType, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	exec := c.NewExecutor(agentType)
	out := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := exec(ctx, req.Tool, req.Args)
		if err != nil {
			return out, err
		}
		res.ID = req.ID
		out = append(out, res)
	}
	return out, nil
}

func DefaultExecutor(agentType contractx.AgentType) Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", tool, agentType),
		}, nil
	}
}

func (c *Catalog) executeWebSearch(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return contractx.ToolResult{Tool: tool, Error: "query is required"}, nil
	}

	results, err := c.searcher.Search(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contractx.ToolResult{}, ctxErr
		}
		return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
	}
	return contractx.ToolResult{Tool: tool, Result: FormatResults(query, results)}, nil
}

func (c *Catalog) infosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	if c.searcher == nil {
		return nil
	}
	switch agentType {
	case contractx.AgentTypeGuest, contractx.AgentTypeAuthenticated:
		return []*schema.ToolInfo{
			{
				Name: ToolWebSearch,
				Desc: "Search the web for current policy pages, help articles, and other public information.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"query": {Type: schema.String, Desc: "Search query", Required: true},
				}),
			},
		}
	default:
		return nil
	}
}
