package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jurissearch-backend/config"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"cases":[]}`, `{"cases":[]}`},
		{"```json\n{\"cases\":[]}\n```", `{"cases":[]}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  plain text  ", "plain text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFences(tt.in))
	}
}

func TestSchemaInstructionEmbedsSchema(t *testing.T) {
	s := &Schema{Type: TypeObject, Required: []string{"cases"}}
	out := schemaInstruction(s)
	assert.Contains(t, out, `"type":"OBJECT"`)
	assert.Contains(t, out, `"required":["cases"]`)
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	ctx := context.Background()

	g, err := NewGenerator(ctx, config.LLMConfig{Provider: "gemini", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, g)

	g, err = NewGenerator(ctx, config.LLMConfig{Provider: "OpenAI", APIKey: "k", Model: "gpt-4o-mini"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, g)

	g, err = NewGenerator(ctx, config.LLMConfig{Provider: "claude", APIKey: "k", Model: "claude-3-5-haiku-latest"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeGenerator{}, g)

	g, err = NewGenerator(ctx, config.LLMConfig{Provider: "ollama", Model: "llama3"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, g)
}

func TestNewGeneratorErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewGenerator(ctx, config.LLMConfig{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewGenerator(ctx, config.LLMConfig{Provider: "openai"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewGenerator(ctx, config.LLMConfig{Provider: "watson", APIKey: "k"}, nil)
	assert.ErrorContains(t, err, "unsupported llm provider")
}

type closingGenerator struct {
	closed bool
}

func (g *closingGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{}, nil
}

func (g *closingGenerator) Close() error {
	g.closed = true
	return nil
}

type plainGenerator struct{}

func (plainGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{}, nil
}

func TestCloseReleasesClosers(t *testing.T) {
	gen := &closingGenerator{}
	require.NoError(t, Close(gen))
	assert.True(t, gen.closed)

	assert.NoError(t, Close(plainGenerator{}))
}
