// Package attendant runs the conversation: it routes each customer
// message through the tool-calling model, executes the requested tools
// against the session, and produces the next reply plus a read-only
// snapshot for the UI.
package attendant

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	promptx "github.com/graphmind/pastelaria/agent/prompt"
	statex "github.com/graphmind/pastelaria/agent/state"
	toolx "github.com/graphmind/pastelaria/agent/tool"
)

const apologyReply = "Desculpe, tive um problema técnico agora. Pode repetir, por favor?"

type Config struct {
	MaxToolDepth int `split_words:"true" default:"4"`
}

// GraphInput is one raw turn from the UI boundary.
type GraphInput struct {
	SessionID string
	Text      string
}

// GraphOutput is the finished turn.
type GraphOutput = contractx.Reply

// turnState is threaded through the turn graph. The session reference
// is only held for the duration of the turn.
type turnState struct {
	sessionID string
	text      string

	sess      *statex.Session
	policy    string
	replyText string
}

// Attendant owns one compiled turn graph and the session registry.
type Attendant struct {
	registry *statex.Registry
	executor toolx.Executor

	chatModel einomodel.ToolCallingChatModel
	toolModel einomodel.ToolCallingChatModel

	turnRunner compose.Runnable[GraphInput, GraphOutput]

	prompts      promptx.PromptSet
	maxToolDepth int
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	registry *statex.Registry,
	executor toolx.Executor,
	toolInfos []*schema.ToolInfo,
	prompts promptx.PromptSet,
	cfg Config,
) (*Attendant, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: session registry is required", contractx.ErrValidation)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: tool executor is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(prompts.System) == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrPromptMissing)
	}

	toolModel, err := chatModel.WithTools(toolInfos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	maxDepth := cfg.MaxToolDepth
	if maxDepth <= 0 {
		maxDepth = 4
	}

	a := &Attendant{
		registry:     registry,
		executor:     executor,
		chatModel:    chatModel,
		toolModel:    toolModel,
		prompts:      prompts,
		maxToolDepth: maxDepth,
	}

	turnRunner, err := a.compileTurnGraph(ctx)
	if err != nil {
		return nil, err
	}
	a.turnRunner = turnRunner

	return a, nil
}

// HandleMessage runs one full turn: the user message is appended to the
// session history, the model decides on tools, tools execute in request
// order, and the final assistant text comes back with a state snapshot.
func (a *Attendant) HandleMessage(ctx context.Context, sessionID string, text string) (contractx.Reply, error) {
	out, err := a.turnRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return contractx.Reply{}, err
	}
	return out, nil
}

// Reset discards the session's cart, profile, and history and returns
// the fresh snapshot.
func (a *Attendant) Reset(sessionID string) contractx.Snapshot {
	return a.registry.Reset(sessionID).Snapshot()
}

// Snapshot returns the current read-only view of an existing session.
func (a *Attendant) Snapshot(sessionID string) (contractx.Snapshot, bool) {
	sess, ok := a.registry.Get(sessionID)
	if !ok {
		return contractx.Snapshot{}, false
	}
	return sess.Snapshot(), true
}
