package gatewaynode

import (
	"context"
	"fmt"

	authflowx "github.com/tanpawarit/Chative-Policy-Gateway/agent/authflow"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

func Authenticate(ctx context.Context, in *GraphState, machine *authflowx.Machine) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Err != nil {
		return in, nil
	}
	if in.Session == nil {
		in.Err = fmt.Errorf("%w: session was not loaded", contractx.ErrInvalidState)
		return in, nil
	}

	next, outcome, err := machine.Step(ctx, *in.Session, in.Text)
	if err != nil {
		in.Err = err
		return in, nil
	}

	in.Next = next
	in.Outcome = outcome
	if !outcome.Decision.Forwards() {
		in.Agent = contractx.AgentTypeAuthentication
		in.Reply = outcome.Message
	}
	return in, nil
}

// Route picks the node that follows authentication.
func Route(in *GraphState, dispatchNode, commitNode, finalizeNode string) string {
	switch {
	case in == nil || in.Err != nil:
		return finalizeNode
	case in.Outcome.Decision.Forwards():
		return dispatchNode
	default:
		return commitNode
	}
}
