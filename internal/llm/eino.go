package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
)

// Trailer appended to every user prompt so the model answers with a single
// JSON object matching the requested schema.
const jsonInstruction = "\n\nRespond with a single JSON object only, strictly following the requested schema. No markdown, no commentary."

// ChatGenerator adapts an eino chat model to the Generator contract.
type ChatGenerator struct {
	model model.BaseChatModel
	log   zerolog.Logger
}

// NewChatGenerator builds the configured provider's chat model.
func NewChatGenerator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ChatGenerator, error) {
	var (
		cm  model.BaseChatModel
		err error
	)

	switch cfg.LLMProvider {
	case "openai":
		maxTokens := cfg.MaxTokens
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: &maxTokens,
		})
	case "deepseek":
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.LLMProvider, err)
	}

	return &ChatGenerator{model: cm, log: log}, nil
}

// Generate makes a single call. The caller's goroutine blocks on network I/O;
// sibling producers run on their own goroutines and are unaffected.
func (g *ChatGenerator) Generate(ctx context.Context, req Request) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(req.System),
		schema.UserMessage(req.User + jsonInstruction),
	}

	out, err := g.model.Generate(ctx, msgs,
		model.WithTemperature(req.Temperature),
		model.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if out == nil || out.Content == "" {
		return "", fmt.Errorf("chat completion: empty response")
	}

	g.log.Debug().Int("chars", len(out.Content)).Msg("model response received")
	return out.Content, nil
}
