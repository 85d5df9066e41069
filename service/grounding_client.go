package service

import (
	"context"
	"fmt"

	"jurissearch-backend/llm"
	"jurissearch-backend/models"
)

// GroundingClient asks the provider for the web sources behind a topic
type GroundingClient struct {
	generator llm.Generator
	opts      clientOptions
}

// NewGroundingClient creates a grounding client on top of generator
func NewGroundingClient(generator llm.Generator, opts ...ClientOption) *GroundingClient {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &GroundingClient{generator: generator, opts: o}
}

// Sources returns the http(s) grounding links reported for topic, or an
// empty slice on any failure.
func (c *GroundingClient) Sources(ctx context.Context, topic string) []models.GroundingSource {
	safeTopic, err := GuardTopic(topic)
	if err != nil {
		c.opts.reporter.Suppressed(ctx, "grounding", topic, err)
		return []models.GroundingSource{}
	}

	resp, err := c.generator.Generate(ctx, llm.GenerateRequest{
		Prompt: fmt.Sprintf("Official case law databases and legal journals for %s.", safeTopic),
		Search: true,
	})
	if err != nil {
		c.opts.reporter.Suppressed(ctx, "grounding", topic, fmt.Errorf("%w: %v", ErrProviderFailure, err))
		return []models.GroundingSource{}
	}
	if resp == nil {
		c.opts.reporter.Suppressed(ctx, "grounding", topic, errEmptyResponse)
		return []models.GroundingSource{}
	}

	return SanitizeGrounding(resp.Grounding)
}
