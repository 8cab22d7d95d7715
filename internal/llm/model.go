// Package llm wraps langchaingo models for the direct completion paths that
// do not need an assistant thread: agent tasks and one-shot summaries.
package llm

import (
	"context"
	"fmt"

	"github.com/projectica-ai/projectica/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate with system: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return response.Choices[0].Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// RunAgentTask executes a task with a custom agent's persona. The agent's
// stored instructions become the system prompt.
func (m *Model) RunAgentTask(ctx context.Context, instructions, task string) (string, error) {
	if instructions == "" {
		instructions = "You are a helpful project assistant."
	}

	userPrompt := fmt.Sprintf(`Task:
%s

Response:`, task)

	return m.GenerateWithSystem(ctx, instructions, userPrompt)
}

// SummarizeAnalysis condenses a long market analysis into key findings for
// display in the project dashboard.
func (m *Model) SummarizeAnalysis(ctx context.Context, analysis string) (string, error) {
	systemPrompt := `You are a market research analyst. Summarize the provided analysis into
3-5 key findings. Keep any numbered citations like [1] intact and attached to
the claims they support.`

	userPrompt := fmt.Sprintf(`Analysis:
%s

Key findings:`, analysis)

	return m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
}
