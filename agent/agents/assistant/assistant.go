package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

type assistantImpl struct {
	agentType    contractx.AgentType
	platform     string
	maxSteps     int
	promptRunner compose.Runnable[map[string]any, []*schema.Message]
	modelRunner  compose.Runnable[[]*schema.Message, *schema.Message]
	tools        contractx.ToolGateway
}

var _ contractx.Assistant = (*assistantImpl)(nil)

func newAssistant(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	platform string,
	tools []*schema.ToolInfo,
	gateway contractx.ToolGateway,
	maxSteps int,
) (*assistantImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, agentType)
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("%w: max steps must be positive for agent=%s", contractx.ErrValidation, agentType)
	}

	promptRunner, err := compilePromptGraph(ctx, systemPrompt, "assistant."+string(agentType)+".prompt_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile prompt graph: %v", contractx.ErrModelInvoke, err)
	}

	boundModel := chatModel
	if len(tools) > 0 {
		if gateway == nil {
			return nil, fmt.Errorf("%w: tools bound without a tool gateway for agent=%s", contractx.ErrValidation, agentType)
		}
		boundModel, err = chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, agentType, err)
		}
	}

	modelRunner, err := compileModelGraph(ctx, boundModel, "assistant."+string(agentType)+".model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile model graph: %v", contractx.ErrModelInvoke, err)
	}

	return &assistantImpl{
		agentType:    agentType,
		platform:     platform,
		maxSteps:     maxSteps,
		promptRunner: promptRunner,
		modelRunner:  modelRunner,
		tools:        gateway,
	}, nil
}

// Answer runs the tool loop until the model replies without tool calls.
func (a *assistantImpl) Answer(ctx context.Context, query string) (string, error) {
	messages, err := a.promptRunner.Invoke(ctx, map[string]any{
		"platform": a.platform,
		"input":    query,
	})
	if err != nil {
		return "", fmt.Errorf("%w: format prompt: %v", contractx.ErrModelInvoke, err)
	}

	logger := zerolog.Ctx(ctx).With().Str("agent", string(a.agentType)).Logger()

	for step := 1; step <= a.maxSteps; step++ {
		msg, err := a.modelRunner.Invoke(ctx, messages)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if msg == nil {
			return "", fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
		}

		if len(msg.ToolCalls) == 0 {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				return "", fmt.Errorf("%w: assistant reply is empty", contractx.ErrSchemaViolation)
			}
			return content, nil
		}

		reqs, err := toToolRequests(msg.ToolCalls, step)
		if err != nil {
			return "", err
		}
		if a.tools == nil {
			return "", fmt.Errorf("%w: agent=%s has no tools", contractx.ErrSchemaViolation, a.agentType)
		}

		logger.Debug().Int("step", step).Int("tool_calls", len(reqs)).Msg("assistant requested tools")

		results, err := a.tools.Execute(ctx, a.agentType, reqs)
		if err != nil {
			return "", err
		}

		messages = append(messages, assistantToolCallMessage(msg, reqs))
		for _, res := range results {
			messages = append(messages, schema.ToolMessage(renderToolResult(res), res.ID))
		}
	}

	return "", fmt.Errorf("%w: agent=%s steps=%d", contractx.ErrStepLimit, a.agentType, a.maxSteps)
}

// assistantToolCallMessage copies msg with the call ids used for the tool
// replies, so that every tool message can be matched to its call.
func assistantToolCallMessage(msg *schema.Message, reqs []contractx.ToolRequest) *schema.Message {
	calls := make([]schema.ToolCall, len(msg.ToolCalls))
	copy(calls, msg.ToolCalls)
	for i := range calls {
		calls[i].ID = reqs[i].ID
	}
	return &schema.Message{
		Role:      schema.Assistant,
		Content:   msg.Content,
		ToolCalls: calls,
	}
}

func toToolRequests(calls []schema.ToolCall, step int) ([]contractx.ToolRequest, error) {
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for i, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		id := strings.TrimSpace(call.ID)
		if id == "" {
			id = fmt.Sprintf("call_%d_%d", step, i)
		}

		reqs = append(reqs, contractx.ToolRequest{
			ID:   id,
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}

func renderToolResult(res contractx.ToolResult) string {
	if res.Error != "" {
		return "error: " + res.Error
	}
	switch v := res.Result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}
