package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainPlanner adapts any langchaingo chat model to Planner.
type LangChainPlanner struct {
	model     llms.Model
	maxTokens int
}

// NewLangChainPlanner wraps model. maxTokens <= 0 leaves the provider default.
func NewLangChainPlanner(model llms.Model, maxTokens int) *LangChainPlanner {
	return &LangChainPlanner{model: model, maxTokens: maxTokens}
}

// NewAnthropicPlanner creates a planner backed by the Anthropic messages API.
func NewAnthropicPlanner(model, apiKey string, maxTokens int) (*LangChainPlanner, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic planner: ANTHROPIC_API_KEY is required")
	}
	m, err := anthropic.New(anthropic.WithModel(model), anthropic.WithToken(apiKey))
	if err != nil {
		return nil, fmt.Errorf("anthropic planner: %w", err)
	}
	return NewLangChainPlanner(m, maxTokens), nil
}

// NewOpenAIPlanner creates a planner backed by the OpenAI chat API.
func NewOpenAIPlanner(model, apiKey string, maxTokens int) (*LangChainPlanner, error) {
	if apiKey == "" {
		return nil, errors.New("openai planner: OPENAI_API_KEY is required")
	}
	m, err := openai.New(openai.WithModel(model), openai.WithToken(apiKey))
	if err != nil {
		return nil, fmt.Errorf("openai planner: %w", err)
	}
	return NewLangChainPlanner(m, maxTokens), nil
}

// Complete implements Planner. Text from all choices is concatenated, the
// way multi-block assistant content is joined.
func (p *LangChainPlanner) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	var opts []llms.CallOption
	if p.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.maxTokens))
	}

	resp, err := p.model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("generate content: %w", ctx.Err())
		}
		return "", NewTransientError(fmt.Errorf("generate content: %w", err))
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", NewFatalError(errors.New("generate content: no choices returned"))
	}

	var b strings.Builder
	for _, c := range resp.Choices {
		if c != nil {
			b.WriteString(c.Content)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
