// Package llm wraps the hosted generative-AI providers behind a single
// Generator interface. Providers that cannot honour a request option
// (search grounding, native response schemas) degrade instead of failing.
package llm

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Schema types, in the provider's dialect
const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
	TypeNumber  = "NUMBER"
	TypeBoolean = "BOOLEAN"
)

// Schema declares the JSON shape a structured response must follow
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// GenerateRequest is one prompt sent to a provider
type GenerateRequest struct {
	Prompt      string
	Schema      *Schema
	Temperature *float32
	// Search asks the provider to ground the answer in web search results
	Search bool
}

// GroundingChunk is a web source the provider reported for a grounded answer
type GroundingChunk struct {
	Title string
	URI   string
}

// GenerateResponse is the provider's answer
type GenerateResponse struct {
	Text         string
	Grounding    []GroundingChunk
	FinishReason string
}

// Generator sends a prompt to a hosted model
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Close releases gen if it holds a client connection
func Close(gen Generator) error {
	if closer, ok := gen.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Temperature returns a pointer for GenerateRequest.Temperature
func Temperature(t float32) *float32 {
	return &t
}

// StripCodeFences removes a surrounding markdown code fence, if any
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}

// schemaInstruction renders a schema as a prompt suffix for providers
// without native schema support.
func schemaInstruction(schema *Schema) string {
	data, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	return "\n\nRespond with JSON only, matching this schema:\n" + string(data)
}
