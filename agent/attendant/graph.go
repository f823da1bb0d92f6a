package attendant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (a *Attendant) compileTurnGraph(ctx context.Context) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*turnState, error) {
			return validateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return a.loadSession(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("policy_hint",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return derivePolicyHint(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node policy_hint: %w", err)
	}

	if err := graph.AddLambdaNode("agent_loop",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return a.runAgentLoop(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node agent_loop: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (GraphOutput, error) {
			return finalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_session"},
		{"load_session", "policy_hint"},
		{"policy_hint", "agent_loop"},
		{"agent_loop", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("attendant.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile attendant graph: %w", err)
	}
	return runner, nil
}
