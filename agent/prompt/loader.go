package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/cypher_generation.txt
	cypherGenerationRaw string

	//go:embed template/cypher_answer.txt
	cypherAnswerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	System           string
	CypherGeneration string
	CypherAnswer     string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:           strings.TrimSpace(systemRaw),
		CypherGeneration: strings.TrimSpace(cypherGenerationRaw),
		CypherAnswer:     strings.TrimSpace(cypherAnswerRaw),
	}
}
