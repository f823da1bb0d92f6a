// Package cypher answers natural-language menu questions by generating
// a read-only Cypher query, running it against the graph store, and
// summarizing the rows back into prose.
package cypher

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	promptx "github.com/graphmind/pastelaria/agent/prompt"
)

const (
	generationFallback = "Não consegui gerar uma consulta Cypher para essa pergunta."
	queryFallback      = "Não consegui consultar o cardápio agora. Pode tentar de novo?"
	emptyResultContext = "Nenhum registro encontrado."
)

// Matches fenced code blocks with an optional cypher language tag. The
// model sometimes emits prose around the query; the last block wins.
var fencedBlockRe = regexp.MustCompile("(?is)```(?:cypher)?(.*?)```")

// QA turns questions about the menu into graph answers.
type QA struct {
	generationRunner compose.Runnable[map[string]any, *schema.Message]
	answerRunner     compose.Runnable[map[string]any, *schema.Message]
	graph            contractx.GraphStore
	prompts          promptx.PromptSet
}

func New(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	graph contractx.GraphStore,
	prompts promptx.PromptSet,
) (*QA, error) {
	if graph == nil {
		return nil, fmt.Errorf("%w: graph store is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(prompts.CypherGeneration) == "" || strings.TrimSpace(prompts.CypherAnswer) == "" {
		return nil, fmt.Errorf("%w: cypher prompts are required", contractx.ErrPromptMissing)
	}

	generationRunner, err := compileMessageGraph(ctx, chatModel,
		"Você gera consultas Cypher de leitura para FalkorDB. Responda apenas com a consulta.",
		"cypher.generation_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile cypher generation graph: %v", contractx.ErrModelInvoke, err)
	}

	answerRunner, err := compileMessageGraph(ctx, chatModel,
		"Você responde perguntas sobre um grafo de conhecimento com base nos resultados fornecidos.",
		"cypher.answer_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile cypher answer graph: %v", contractx.ErrModelInvoke, err)
	}

	return &QA{
		generationRunner: generationRunner,
		answerRunner:     answerRunner,
		graph:            graph,
		prompts:          prompts,
	}, nil
}

// Answer resolves a menu question end to end. Store and model failures
// degrade to customer-facing fallback text instead of surfacing errors,
// so the tool layer can hand the string straight to the conversation.
func (q *QA) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", contractx.ErrValidation)
	}

	schemaDescription, err := q.graph.SchemaDescription(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cypher: schema description unavailable")
		schemaDescription = ""
	}

	genMsg, err := q.generationRunner.Invoke(ctx, map[string]any{
		"input": fmt.Sprintf(q.prompts.CypherGeneration, schemaDescription, question),
	})
	if err != nil {
		return "", fmt.Errorf("%w: cypher generation: %v", contractx.ErrModelInvoke, err)
	}

	query := extractCypher(messageContent(genMsg))
	if query == "" {
		return generationFallback, nil
	}

	log.Debug().Str("query", query).Msg("cypher: executing generated query")
	rows, err := q.graph.Query(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("cypher: query execution failed")
		return queryFallback, nil
	}

	resultContext := emptyResultContext
	if len(rows) > 0 {
		encoded, err := json.Marshal(rows)
		if err != nil {
			return "", fmt.Errorf("%w: marshal query rows: %v", contractx.ErrValidation, err)
		}
		resultContext = string(encoded)
	}

	answerMsg, err := q.answerRunner.Invoke(ctx, map[string]any{
		"input": fmt.Sprintf(q.prompts.CypherAnswer, question, query, resultContext),
	})
	if err != nil {
		return "", fmt.Errorf("%w: cypher answer: %v", contractx.ErrModelInvoke, err)
	}

	answer := strings.TrimSpace(messageContent(answerMsg))
	if answer == "" {
		return "", fmt.Errorf("%w: answer message is empty", contractx.ErrSchemaViolation)
	}
	return answer, nil
}

func compileMessageGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}

// extractCypher pulls the query out of the model response. Fenced
// blocks are preferred; without one, the whole trimmed text is used.
func extractCypher(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	blocks := fencedBlockRe.FindAllStringSubmatch(text, -1)
	if len(blocks) > 0 {
		return strings.TrimSpace(blocks[len(blocks)-1][1])
	}
	return strings.TrimSpace(text)
}

func messageContent(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	return msg.Content
}
