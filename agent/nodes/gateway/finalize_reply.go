package gatewaynode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Err != nil {
		return GraphOutput{Err: in.Err, Agent: in.Agent, Decision: in.Outcome.Decision}, nil
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{Err: fmt.Errorf("%w: %s returned an empty reply", contractx.ErrSchemaViolation, in.Agent)}, nil
	}
	return GraphOutput{
		Reply:         reply,
		Authenticated: in.Next.Authenticated,
		Agent:         in.Agent,
		Decision:      in.Outcome.Decision,
		Needs:         in.Outcome.Needs,
	}, nil
}
