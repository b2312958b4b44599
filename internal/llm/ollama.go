package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

// NewOllamaPlanner creates a planner backed by a local Ollama model. Output is
// constrained to JSON so the reply parses as a plan.
func NewOllamaPlanner(baseURL, model string, maxTokens int) (*LangChainPlanner, error) {
	m, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama planner: %w", err)
	}
	return NewLangChainPlanner(m, maxTokens), nil
}
