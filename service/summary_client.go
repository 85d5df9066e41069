package service

import (
	"context"
	"fmt"
	"strings"

	"jurissearch-backend/llm"
	"jurissearch-backend/models"
)

const (
	SummaryPending     = "Strategic briefing pending additional data."
	SummaryInterrupted = "Analysis protocol interrupted due to security constraints."
)

// SummaryClient writes the executive strategic summary for a research session
type SummaryClient struct {
	generator llm.Generator
	opts      clientOptions
}

// NewSummaryClient creates a summary client on top of generator
func NewSummaryClient(generator llm.Generator, opts ...ClientOption) *SummaryClient {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SummaryClient{generator: generator, opts: o}
}

// Summarize returns a three-sentence strategic summary. Any failure,
// including a rejected topic, yields SummaryInterrupted.
func (c *SummaryClient) Summarize(ctx context.Context, topic string, wins, losses []models.CaseStudy) string {
	safeTopic, err := GuardTopic(topic)
	if err != nil {
		c.opts.reporter.Suppressed(ctx, "summary", topic, err)
		return SummaryInterrupted
	}

	resp, err := c.generator.Generate(ctx, llm.GenerateRequest{
		Prompt: buildSummaryPrompt(safeTopic, wins, losses),
	})
	if err != nil {
		c.opts.reporter.Suppressed(ctx, "summary", topic, fmt.Errorf("%w: %v", ErrProviderFailure, err))
		return SummaryInterrupted
	}
	if resp == nil {
		c.opts.reporter.Suppressed(ctx, "summary", topic, errEmptyResponse)
		return SummaryInterrupted
	}

	summary := resp.Text
	if summary == "" {
		summary = SummaryPending
	}
	return StripScripts(summary)
}

func joinCaseNames(cases []models.CaseStudy) string {
	names := make([]string, 0, len(cases))
	for _, c := range cases {
		names = append(names, SanitizeCaseName(c.Name))
	}
	return strings.Join(names, ", ")
}

func buildSummaryPrompt(safeTopic string, wins, losses []models.CaseStudy) string {
	return fmt.Sprintf(`ROLE: You are a legal strategy consultant.
Topic: %s

Context data:
- Wins: %s
- Losses: %s

Provide a 3-sentence executive strategic summary of the current legal landscape for this topic.
Format: "The landscape is... Key risks include... The optimal strategy involves..."`,
		safeTopic, joinCaseNames(wins), joinCaseNames(losses))
}
