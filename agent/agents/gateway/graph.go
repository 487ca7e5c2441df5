package gateway

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/Chative-Policy-Gateway/agent/nodes/gateway"
)

const (
	nodeLoadOrCreateState = "load_or_create_state"
	nodeAuthenticate      = "authenticate"
	nodeDispatchAssistant = "dispatch_assistant"
	nodeCommitState       = "commit_state"
	nodeFinalizeReply     = "finalize_reply"
)

func (g *Gateway) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[*nodex.GraphState, nodex.GraphOutput], error) {
	graph := compose.NewGraph[*nodex.GraphState, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodeLoadOrCreateState,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateState(ctx, in, g.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeLoadOrCreateState, err)
	}

	if err := graph.AddLambdaNode(nodeAuthenticate,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Authenticate(ctx, in, g.machine)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeAuthenticate, err)
	}

	if err := graph.AddLambdaNode(nodeDispatchAssistant,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchAssistant(ctx, in, g.models, g.platform)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeDispatchAssistant, err)
	}

	if err := graph.AddLambdaNode(nodeCommitState,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CommitState(ctx, in, g.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeCommitState, err)
	}

	if err := graph.AddLambdaNode(nodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReply, err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.Route(in, nodeDispatchAssistant, nodeCommitState, nodeFinalizeReply), nil
		},
		map[string]bool{
			nodeDispatchAssistant: true,
			nodeCommitState:       true,
			nodeFinalizeReply:     true,
		},
	)
	if err := graph.AddBranch(nodeAuthenticate, branch); err != nil {
		return nil, fmt.Errorf("add branch after %s: %w", nodeAuthenticate, err)
	}

	edges := [][2]string{
		{compose.START, nodeLoadOrCreateState},
		{nodeLoadOrCreateState, nodeAuthenticate},
		{nodeDispatchAssistant, nodeCommitState},
		{nodeCommitState, nodeFinalizeReply},
		{nodeFinalizeReply, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("gateway.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile gateway graph: %w", err)
	}
	return runner, nil
}
