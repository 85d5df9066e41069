package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jurissearch-backend/llm"
	"jurissearch-backend/models"
	"jurissearch-backend/repository"
)

// System log lines shown while a session runs
const (
	LogInitializing = "Initializing uplink..."
	LogOpening      = "Opening public judicial channels..."
	LogQuerying     = "Querying Justia & CourtListener repositories..."
	LogSynthesizing = "Data retrieved. Synthesizing strategic briefing..."
	LogComplete     = "Protocol complete. Results visualized."
)

var errPanicked = errors.New("research call panicked")

// SessionStore persists research sessions. Get returns
// repository.ErrNotFound for unknown IDs.
type SessionStore interface {
	Create(ctx context.Context, session *models.ResearchSession) error
	Get(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error)
	Update(ctx context.Context, session *models.ResearchSession) error
	List(ctx context.Context, limit int) ([]*models.ResearchSession, error)
}

// CaseSearcher retrieves precedents; failures yield an empty slice
type CaseSearcher interface {
	Search(ctx context.Context, topic string, outcome models.Outcome) []models.CaseStudy
}

// SourceFinder retrieves grounding links; failures yield an empty slice
type SourceFinder interface {
	Sources(ctx context.Context, topic string) []models.GroundingSource
}

// Summarizer writes the strategic summary; failures yield fallback text
type Summarizer interface {
	Summarize(ctx context.Context, topic string, wins, losses []models.CaseStudy) string
}

// ResearchService runs research sessions: validation, the provider
// fan-out, the summary and the session state machine.
type ResearchService struct {
	store     SessionStore
	research  CaseSearcher
	grounding SourceFinder
	summary   Summarizer
	briefings *BriefingArchive
	logger    *zap.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]slot
}

// slot tracks a session this process is working on. A session is claimed
// when it is moved into searching and running once ProcessResearch starts.
type slot int

const (
	slotClaimed slot = iota
	slotRunning
)

// ResearchServiceOption is a functional option for ResearchService
type ResearchServiceOption func(*ResearchService)

// ResearchWithStore sets the session store
func ResearchWithStore(store SessionStore) ResearchServiceOption {
	return func(s *ResearchService) {
		s.store = store
	}
}

// ResearchWithResearchClient sets the precedent search client
func ResearchWithResearchClient(c CaseSearcher) ResearchServiceOption {
	return func(s *ResearchService) {
		s.research = c
	}
}

// ResearchWithGroundingClient sets the grounding source client
func ResearchWithGroundingClient(c SourceFinder) ResearchServiceOption {
	return func(s *ResearchService) {
		s.grounding = c
	}
}

// ResearchWithSummaryClient sets the summary client
func ResearchWithSummaryClient(c Summarizer) ResearchServiceOption {
	return func(s *ResearchService) {
		s.summary = c
	}
}

// ResearchWithGenerator builds the research, grounding and summary clients
// on one generator
func ResearchWithGenerator(gen llm.Generator, opts ...ClientOption) ResearchServiceOption {
	return func(s *ResearchService) {
		s.research = NewResearchClient(gen, opts...)
		s.grounding = NewGroundingClient(gen, opts...)
		s.summary = NewSummaryClient(gen, opts...)
	}
}

// ResearchWithBriefings sets the archive completed briefings are saved to
func ResearchWithBriefings(a *BriefingArchive) ResearchServiceOption {
	return func(s *ResearchService) {
		s.briefings = a
	}
}

// ResearchWithLogger sets the logger
func ResearchWithLogger(logger *zap.Logger) ResearchServiceOption {
	return func(s *ResearchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewResearchService creates a new research service
func NewResearchService(opts ...ResearchServiceOption) *ResearchService {
	s := &ResearchService{
		logger:   zap.NewNop(),
		inflight: make(map[uuid.UUID]slot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ResearchService) checkDependencies() error {
	switch {
	case s.store == nil:
		return errors.New("session store not set")
	case s.research == nil:
		return errors.New("research client not set")
	case s.grounding == nil:
		return errors.New("grounding client not set")
	case s.summary == nil:
		return errors.New("summary client not set")
	}
	return nil
}

// StartResearch validates topic and creates a session in the searching
// state. It returns immediately; ProcessResearch does the provider work.
// A rejected topic returns a *ValidationError and no provider is called.
func (s *ResearchService) StartResearch(ctx context.Context, topic string) (*models.ResearchSession, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}
	if err := s.checkDependencies(); err != nil {
		return nil, err
	}

	session := models.NewResearchSession(topic)
	if !s.claim(session.ID) {
		return nil, ErrSessionBusy
	}
	if err := s.begin(session); err != nil {
		s.release(session.ID)
		return nil, err
	}
	if err := s.store.Create(ctx, session); err != nil {
		s.release(session.ID)
		return nil, fmt.Errorf("failed to create research session: %w", err)
	}

	s.logger.Info("research session started", zap.String("session_id", session.ID.String()))
	return session.Clone(), nil
}

// Resubmit starts a new round on an existing idle, completed or failed
// session. An empty topic reuses the session's current topic. A session
// stored as searching or analyzing that no run in this process owns was
// interrupted and is restarted.
func (s *ResearchService) Resubmit(ctx context.Context, id uuid.UUID, topic string) (_ *models.ResearchSession, err error) {
	if err := s.checkDependencies(); err != nil {
		return nil, err
	}
	if !s.claim(id) {
		return nil, ErrSessionBusy
	}
	defer func() {
		if err != nil {
			s.release(id)
		}
	}()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = session.Topic
	}
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}
	if session.Status.IsBusy() {
		if err := session.Transition(models.StatusIdle); err != nil {
			return nil, err
		}
	}

	session.Topic = topic
	if err := s.begin(session); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update research session: %w", err)
	}
	return session.Clone(), nil
}

// begin moves a session into searching with cleared results and seed logs
func (s *ResearchService) begin(session *models.ResearchSession) error {
	if err := session.Transition(models.StatusSearching); err != nil {
		return err
	}
	session.ResetResults()
	session.Logs = models.SessionLogs{LogInitializing, LogOpening}
	return nil
}

// ProcessResearch runs the provider calls for a session in the searching
// state. The two research calls and the grounding call run concurrently;
// the summary runs after all three return. It takes over the claim made by
// StartResearch or Resubmit and releases it when done.
func (s *ResearchService) ProcessResearch(ctx context.Context, id uuid.UUID) (err error) {
	if err := s.checkDependencies(); err != nil {
		return err
	}
	if !s.run(id) {
		return ErrSessionBusy
	}
	defer s.release(id)

	session, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if session.Status != models.StatusSearching {
		return fmt.Errorf("%w: session is %s", models.ErrInvalidTransition, session.Status)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("research session panicked",
				zap.String("session_id", id.String()),
				zap.Any("panic", r),
			)
			s.fail(session, models.StatusError)
			err = fmt.Errorf("%w: %v", errPanicked, r)
		}
	}()

	session.AddLog(LogQuerying)
	if err := s.store.Update(ctx, session); err != nil {
		s.fail(session, models.StatusIdle)
		return fmt.Errorf("failed to update research session: %w", err)
	}

	topic := session.Topic
	var (
		wins, losses []models.CaseStudy
		sources      []models.GroundingSource
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered(func() {
		wins = s.research.Search(gctx, topic, models.OutcomeWon)
	}))
	g.Go(recovered(func() {
		losses = s.research.Search(gctx, topic, models.OutcomeLost)
	}))
	g.Go(recovered(func() {
		sources = s.grounding.Sources(gctx, topic)
	}))
	if err := g.Wait(); err != nil {
		s.logger.Error("research call panicked",
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
		s.fail(session, models.StatusError)
		return err
	}

	if err := ctx.Err(); err != nil {
		s.fail(session, models.StatusIdle)
		return err
	}

	session.AddLog(LogSynthesizing)
	if err := session.Transition(models.StatusAnalyzing); err != nil {
		return err
	}
	if err := s.store.Update(ctx, session); err != nil {
		s.fail(session, models.StatusIdle)
		return fmt.Errorf("failed to update research session: %w", err)
	}

	summary := s.summary.Summarize(ctx, topic, wins, losses)

	session.Wins = nonNilCases(wins)
	session.Losses = nonNilCases(losses)
	session.Sources = nonNilSources(sources)
	session.StrategicSummary = summary

	if session.HasResults() {
		if err := session.Transition(models.StatusCompleted); err != nil {
			return err
		}
		session.AddLog(LogComplete)
		s.archive(ctx, session)
	} else {
		session.Message = models.MessageNoPrecedents
		if err := session.Transition(models.StatusIdle); err != nil {
			return err
		}
	}

	if err := s.store.Update(ctx, session); err != nil {
		s.fail(session, models.StatusIdle)
		return fmt.Errorf("failed to update research session: %w", err)
	}

	s.logger.Info("research session finished",
		zap.String("session_id", id.String()),
		zap.String("status", string(session.Status)),
		zap.Int("wins", len(session.Wins)),
		zap.Int("losses", len(session.Losses)),
		zap.Int("sources", len(session.Sources)),
	)
	return nil
}

// Research runs a whole session synchronously and returns its final state
func (s *ResearchService) Research(ctx context.Context, topic string) (*models.ResearchSession, error) {
	session, err := s.StartResearch(ctx, topic)
	if err != nil {
		return nil, err
	}
	if err := s.ProcessResearch(ctx, session.ID); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, session.ID)
}

// GetSession returns a session by ID. A session stored as searching or
// analyzing that no run in this process owns is ended as interrupted.
func (s *ResearchService) GetSession(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error) {
	if s.store == nil {
		return nil, errors.New("session store not set")
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status.IsBusy() && !s.held(id) {
		return s.recoverInterrupted(ctx, id)
	}
	return session, nil
}

// recoverInterrupted moves an orphaned busy session to idle. The slot lock
// is held throughout so no run can claim the session while it is reset.
func (s *ResearchService) recoverInterrupted(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, owned := s.inflight[id]; owned || !session.Status.IsBusy() {
		return session, nil
	}
	s.fail(session, models.StatusIdle)
	return session, nil
}

// RecentSessions returns the newest sessions first
func (s *ResearchService) RecentSessions(ctx context.Context, limit int) ([]*models.ResearchSession, error) {
	if s.store == nil {
		return nil, errors.New("session store not set")
	}
	sessions, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list research sessions: %w", err)
	}
	return sessions, nil
}

// Briefing returns the markdown briefing for a session. The archived copy
// is preferred; sessions with results but no archive are rendered on demand.
func (s *ResearchService) Briefing(ctx context.Context, id uuid.UUID) (string, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return "", err
	}

	if s.briefings != nil && session.BriefingPath != "" {
		markdown, err := s.briefings.Load(ctx, session.BriefingPath)
		if err == nil {
			return markdown, nil
		}
		if !errors.Is(err, ErrBriefingNotFound) {
			return "", err
		}
	}

	if session.Status != models.StatusCompleted || !session.HasResults() {
		return "", ErrBriefingNotFound
	}
	return RenderBriefing(session), nil
}

func (s *ResearchService) load(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load research session: %w", err)
	}
	return session, nil
}

// archive saves the briefing for a completed session. Failures are logged
// and leave BriefingPath empty.
func (s *ResearchService) archive(ctx context.Context, session *models.ResearchSession) {
	if s.briefings == nil {
		return
	}
	key, err := s.briefings.Save(ctx, session)
	if err != nil {
		s.logger.Warn("failed to archive briefing",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		return
	}
	session.BriefingPath = key
}

// fail records a connection failure on the session. It writes with a fresh
// context because the request context may be the cause.
func (s *ResearchService) fail(session *models.ResearchSession, status models.SearchStatus) {
	s.logger.Warn("research session interrupted",
		zap.String("session_id", session.ID.String()),
		zap.String("status", string(status)),
	)
	session.Message = models.MessageConnectionFailed
	if err := session.Transition(status); err != nil {
		s.logger.Error("failed to record session failure", zap.Error(err))
		return
	}
	if err := s.store.Update(context.Background(), session); err != nil {
		s.logger.Error("failed to record session failure",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
	}
}

// recovered turns a panic in fn into an error for the errgroup
func recovered(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", errPanicked, r)
			}
		}()
		fn()
		return nil
	}
}

// claim reserves id for a run that is about to start
func (s *ResearchService) claim(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.inflight[id]; taken {
		return false
	}
	s.inflight[id] = slotClaimed
	return true
}

// run marks id as running. It fails only when another run is active.
func (s *ResearchService) run(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, taken := s.inflight[id]; taken && state == slotRunning {
		return false
	}
	s.inflight[id] = slotRunning
	return true
}

func (s *ResearchService) held(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, taken := s.inflight[id]
	return taken
}

func (s *ResearchService) release(id uuid.UUID) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func nonNilCases(cases []models.CaseStudy) models.CaseStudies {
	if cases == nil {
		return models.CaseStudies{}
	}
	return cases
}

func nonNilSources(sources []models.GroundingSource) models.GroundingSources {
	if sources == nil {
		return models.GroundingSources{}
	}
	return sources
}
