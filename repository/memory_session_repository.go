package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jurissearch-backend/models"
)

// MemorySessionRepository keeps sessions in a map. Sessions are copied on
// the way in and out so callers never share state with the store.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.ResearchSession
}

// NewMemorySessionRepository creates an empty in-memory repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]*models.ResearchSession)}
}

// Create stores a new session
func (r *MemorySessionRepository) Create(ctx context.Context, session *models.ResearchSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	normalize(session)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

// Get retrieves a session by ID
func (r *MemorySessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

// Update replaces a stored session
func (r *MemorySessionRepository) Update(ctx context.Context, session *models.ResearchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return ErrNotFound
	}
	session.UpdatedAt = time.Now().UTC()
	normalize(session)
	r.sessions[session.ID] = session.Clone()
	return nil
}

// List returns the most recently created sessions first
func (r *MemorySessionRepository) List(ctx context.Context, limit int) ([]*models.ResearchSession, error) {
	r.mu.RLock()
	out := make([]*models.ResearchSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}
