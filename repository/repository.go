// Package repository persists research sessions in memory, Postgres or SQLite.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"jurissearch-backend/config"
	"jurissearch-backend/models"
)

// ErrNotFound is returned when no session exists for an ID
var ErrNotFound = errors.New("session not found")

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 20

func listLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return DefaultListLimit
	}
	return limit
}

// normalize replaces nil slices so stored sessions always encode as [] rather than null
func normalize(s *models.ResearchSession) {
	if s.Wins == nil {
		s.Wins = models.CaseStudies{}
	}
	if s.Losses == nil {
		s.Losses = models.CaseStudies{}
	}
	if s.Sources == nil {
		s.Sources = models.GroundingSources{}
	}
	if s.Logs == nil {
		s.Logs = models.SessionLogs{}
	}
}

// SessionRepository is implemented by every session backend
type SessionRepository interface {
	Create(ctx context.Context, session *models.ResearchSession) error
	Get(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error)
	Update(ctx context.Context, session *models.ResearchSession) error
	List(ctx context.Context, limit int) ([]*models.ResearchSession, error)
}

// Open connects the backend selected by cfg.Driver. The returned close
// function releases its connections.
func Open(ctx context.Context, cfg config.StoreConfig) (SessionRepository, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemorySessionRepository(), func() {}, nil

	case "sqlite":
		repo, err := NewSQLiteSessionRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		return NewPostgresSessionRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
