package llm

import (
	"context"
	"errors"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeMaxTokens = 4096

// ClaudeGenerator talks to the Anthropic messages API
type ClaudeGenerator struct {
	client *anthropic.Client
	model  string
}

// NewClaudeGenerator creates an Anthropic client. An empty baseURL uses the public API.
func NewClaudeGenerator(apiKey, model, baseURL string) *ClaudeGenerator {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeGenerator{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// Generate sends a single user message
func (g *ClaudeGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt := req.Prompt
	if req.Schema != nil {
		prompt += schemaInstruction(req.Schema)
	}

	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(g.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   claudeMaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return &GenerateResponse{
			Text:         *resp.Content[0].Text,
			FinishReason: string(resp.StopReason),
		}, nil
	}
	return nil, errors.New("no response content")
}
