package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// SDKGenerator uses the generative-ai-go client. The SDK path has no search
// grounding, so Search requests are answered ungrounded.
type SDKGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewSDKGenerator creates a Gemini generator backed by the Go SDK
func NewSDKGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*SDKGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &SDKGenerator{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Close releases the underlying client
func (g *SDKGenerator) Close() error {
	return g.client.Close()
}

// Generate sends req through the SDK
func (g *SDKGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := g.client.GenerativeModel(g.model)
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toSDKSchema(req.Schema)
	}
	if req.Search {
		g.logger.Debug("search grounding unavailable on sdk provider", zap.String("model", g.model))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no response candidates or content")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	return &GenerateResponse{
		Text:         text.String(),
		FinishReason: candidate.FinishReason.String(),
	}, nil
}

func toSDKSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        sdkType(s.Type),
		Description: s.Description,
		Items:       toSDKSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSDKSchema(prop)
		}
	}
	return out
}

func sdkType(t string) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeInteger:
		return genai.TypeInteger
	case TypeNumber:
		return genai.TypeNumber
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
