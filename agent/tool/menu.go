package tool

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

const menuUnavailableMsg = "Não consegui consultar o cardápio agora."

func executeMenu(ctx context.Context, deps Deps, _ *statex.Session, args map[string]any) contractx.ToolResult {
	question := stringArg(args, "question")
	if question == "" {
		return contractx.ToolResult{Tool: ToolMenu, Error: "Preciso de uma pergunta sobre o cardápio."}
	}
	if deps.Menu == nil {
		return contractx.ToolResult{Tool: ToolMenu, Error: menuUnavailableMsg}
	}

	answer, err := deps.Menu.Answer(ctx, question)
	if err != nil {
		log.Warn().Err(err).Str("question", question).Msg("tool: menu answer failed")
		return contractx.ToolResult{Tool: ToolMenu, Error: menuUnavailableMsg}
	}
	return contractx.ToolResult{Tool: ToolMenu, Result: answer}
}
