package generator

import (
	"context"
	"errors"
	"fmt"
)

// LLMClient is implemented by every model backend, including MockLLM.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings carries llm.* from the config file.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// ErrUnsupportedProvider is returned by NewLLM for unknown provider names.
var ErrUnsupportedProvider = errors.New("llm provider not supported")

// NewLLM builds the client named by cfg.Provider: openai, deepseek (an
// OpenAI-compatible endpoint, so base_url is required), gemini, or mock.
// An empty provider means mock.
func NewLLM(ctx context.Context, cfg *LLMSettings) (LLMClient, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	switch cfg.Provider {
	case "openai", "deepseek":
		if cfg.Provider == "deepseek" && cfg.BaseURL == "" {
			return nil, errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		llm, err := NewOpenAILLMFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "gemini":
		llm, err := NewGeminiLLMFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "mock", "":
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}
