package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"jurissearch-backend/config"
)

// NewGenerator builds the generator named by cfg.Provider
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	switch provider {
	case "", "gemini":
		g, err := NewGeminiGenerator(cfg.APIKey, cfg.Model,
			GeminiWithBaseURL(cfg.BaseURL),
			GeminiWithHTTPClient(&http.Client{Timeout: timeout}),
			GeminiWithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return g, nil

	case "gemini-sdk":
		g, err := NewSDKGenerator(ctx, cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return g, nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "claude":
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewClaudeGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		// Ollama ignores the key but the client requires one
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIGenerator(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
