package attendant

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/graphmind/pastelaria/agent/contract"
)

const forcedReplyHint = "Limite de ferramentas atingido neste turno. Responda ao cliente agora com os resultados parciais acima, sem chamar mais ferramentas."

// runAgentLoop is the bounded decide/execute cycle of one turn. Each
// iteration submits the working transcript to the tool-bound model;
// tool calls execute sequentially in request order, each result going
// back into the transcript before the next decision. Model failures
// degrade to a fixed apology and never take the session down.
func (a *Attendant) runAgentLoop(ctx context.Context, st *turnState) (*turnState, error) {
	messages := make([]*schema.Message, 0, len(st.sess.History)+2)
	messages = append(messages, schema.SystemMessage(a.prompts.System))
	if st.policy != "" {
		messages = append(messages, schema.SystemMessage(st.policy))
	}
	messages = append(messages, st.sess.History...)

	for depth := 0; depth < a.maxToolDepth; depth++ {
		msg, err := a.toolModel.Generate(ctx, messages)
		if err != nil {
			log.Warn().Err(err).Str("session_id", st.sessionID).Msg("attendant: model decision failed")
			st.replyText = apologyReply
			return st, nil
		}
		if msg == nil || len(msg.ToolCalls) == 0 {
			st.replyText = messageText(msg)
			return st, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, a.executeToolCall(ctx, st, call))
		}
	}

	// Tool budget exhausted mid-chain. Force a final answer over the
	// partial results instead of letting the model keep chaining.
	log.Warn().Str("session_id", st.sessionID).Int("max_depth", a.maxToolDepth).
		Msg("attendant: tool depth exceeded, forcing reply")

	messages = append(messages, schema.SystemMessage(forcedReplyHint))
	msg, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Warn().Err(err).Str("session_id", st.sessionID).Msg("attendant: forced reply failed")
		st.replyText = apologyReply
		return st, nil
	}
	st.replyText = messageText(msg)
	return st, nil
}

// executeToolCall runs one requested tool against the session and wraps
// the outcome as the tool message the model sees next. Malformed
// arguments become a tool-level error result, not a turn failure.
func (a *Attendant) executeToolCall(ctx context.Context, st *turnState, call schema.ToolCall) *schema.Message {
	name := strings.TrimSpace(call.Function.Name)

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("attendant: invalid tool arguments")
			return toolMessage(contractx.ToolResult{
				Tool:  name,
				Error: "Não entendi os parâmetros dessa ação. Pode repetir o pedido?",
			}, call.ID)
		}
	}

	result := a.executor(ctx, st.sess, name, args)
	log.Debug().Str("session_id", st.sessionID).Str("tool", name).
		Bool("failed", result.Error != "").Msg("attendant: tool executed")
	return toolMessage(result, call.ID)
}

func toolMessage(result contractx.ToolResult, callID string) *schema.Message {
	encoded, err := json.Marshal(result)
	if err != nil {
		encoded = []byte(`{"error":"resultado indisponível"}`)
	}
	return schema.ToolMessage(string(encoded), callID, schema.WithToolName(result.Tool))
}

func messageText(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	return strings.TrimSpace(msg.Content)
}
