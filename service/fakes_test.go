package service

import (
	"context"
	"sync"

	"jurissearch-backend/llm"
	"jurissearch-backend/models"
)

type fakeGenerator struct {
	mu       sync.Mutex
	requests []llm.GenerateRequest
	respond  func(req llm.GenerateRequest) (*llm.GenerateResponse, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.respond == nil {
		return &llm.GenerateResponse{}, nil
	}
	return f.respond(req)
}

func (f *fakeGenerator) calls() []llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.GenerateRequest{}, f.requests...)
}

func textResponse(text string) func(llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return func(llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Text: text}, nil
	}
}

type suppressedFailure struct {
	op    string
	topic string
	err   error
}

type recordingReporter struct {
	mu       sync.Mutex
	failures []suppressedFailure
}

func (r *recordingReporter) Suppressed(ctx context.Context, op string, topic string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, suppressedFailure{op: op, topic: topic, err: err})
}

func (r *recordingReporter) all() []suppressedFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]suppressedFailure{}, r.failures...)
}

// stubSearcher, stubSources and stubSummarizer drive the orchestrator without
// going through the llm clients
type stubSearcher struct {
	mu    sync.Mutex
	calls int
	won   []models.CaseStudy
	lost  []models.CaseStudy
	panic bool
}

func (s *stubSearcher) Search(ctx context.Context, topic string, outcome models.Outcome) []models.CaseStudy {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panic {
		panic("search exploded")
	}
	if outcome == models.OutcomeWon {
		return s.won
	}
	return s.lost
}

func (s *stubSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSources struct {
	sources []models.GroundingSource
}

func (s *stubSources) Sources(ctx context.Context, topic string) []models.GroundingSource {
	return s.sources
}

type stubSummarizer struct {
	text   string
	calls  int
	wins   int
	losses int
}

func (s *stubSummarizer) Summarize(ctx context.Context, topic string, wins, losses []models.CaseStudy) string {
	s.calls++
	s.wins = len(wins)
	s.losses = len(losses)
	return s.text
}
