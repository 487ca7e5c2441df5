package gatewaynode

import (
	"context"
	"fmt"
	"strings"

	authflowx "github.com/tanpawarit/Chative-Policy-Gateway/agent/authflow"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

func DispatchAssistant(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	platform string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Err != nil {
		return in, nil
	}

	assistant, agentType, err := pickAssistant(in.Outcome.Decision, models)
	if err != nil {
		in.Err = err
		return in, nil
	}

	in.Agent = agentType
	answer, err := assistant.Answer(ctx, in.Text)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = fmt.Errorf("%w: empty answer", contractx.ErrSchemaViolation)
	}
	if err != nil {
		in.Err = &contractx.CollaboratorError{Agent: agentType.DisplayName(platform), Err: err}
		return in, nil
	}

	in.Reply = strings.TrimSpace(answer)
	return in, nil
}

func pickAssistant(decision authflowx.Decision, models contractx.Registry) (contractx.Assistant, contractx.AgentType, error) {
	var (
		assistant contractx.Assistant
		agentType contractx.AgentType
	)
	switch decision {
	case authflowx.DecisionProceedAuthenticated:
		assistant, agentType = models.Authenticated(), contractx.AgentTypeAuthenticated
	case authflowx.DecisionProceedGuest:
		assistant, agentType = models.Guest(), contractx.AgentTypeGuest
	default:
		return nil, "", fmt.Errorf("%w: decision=%s does not forward", contractx.ErrInvalidState, decision)
	}
	if assistant == nil {
		return nil, "", fmt.Errorf("%w: no assistant registered for agent=%s", contractx.ErrValidation, agentType)
	}
	return assistant, agentType, nil
}
