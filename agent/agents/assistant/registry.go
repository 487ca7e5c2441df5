package assistant

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	llmx "github.com/tanpawarit/Chative-Policy-Gateway/agent/llm"
	promptx "github.com/tanpawarit/Chative-Policy-Gateway/agent/prompt"
	toolx "github.com/tanpawarit/Chative-Policy-Gateway/agent/tool"
)

type registryImpl struct {
	guest         contractx.Assistant
	authenticated contractx.Assistant
}

func (r *registryImpl) Guest() contractx.Assistant {
	return r.guest
}

func (r *registryImpl) Authenticated() contractx.Assistant {
	return r.authenticated
}

// NewRegistry builds the guest and authenticated assistants. A nil searcher
// leaves both without tools.
func NewRegistry(ctx context.Context, cfg llmx.Config, searcher toolx.Searcher, platform string) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	platform = strings.TrimSpace(platform)
	prompts := promptx.LoadPromptSet()
	catalog := toolx.NewCatalog(searcher)

	build := func(agentType contractx.AgentType, systemPrompt string) (contractx.Assistant, error) {
		modelCfg := cfg.OllamaFor(agentType)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		infos, _ := catalog.BuildForAgent(agentType)
		return newAssistant(ctx, agentType, chatModel, systemPrompt, platform, infos, catalog, cfg.MaxStepsFor(agentType))
	}

	guest, err := build(contractx.AgentTypeGuest, prompts.Guest)
	if err != nil {
		return nil, err
	}
	authenticated, err := build(contractx.AgentTypeAuthenticated, prompts.Authenticated)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		guest:         guest,
		authenticated: authenticated,
	}, nil
}
