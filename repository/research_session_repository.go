package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jurissearch-backend/models"
)

// PostgresSessionSchema creates the research_sessions table
const PostgresSessionSchema = `
CREATE TABLE IF NOT EXISTS research_sessions (
	id UUID PRIMARY KEY,
	topic TEXT NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'idle',
	wins JSONB NOT NULL DEFAULT '[]'::jsonb,
	losses JSONB NOT NULL DEFAULT '[]'::jsonb,
	sources JSONB NOT NULL DEFAULT '[]'::jsonb,
	strategic_summary TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	logs JSONB NOT NULL DEFAULT '[]'::jsonb,
	briefing_path TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_research_sessions_status ON research_sessions(status);
CREATE INDEX IF NOT EXISTS idx_research_sessions_created_at ON research_sessions(created_at DESC);
`

const sessionColumns = `id, topic, status, wins, losses, sources, strategic_summary, message,
	logs, briefing_path, created_at, updated_at, completed_at`

// PostgresSessionRepository handles database operations for research sessions
type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new research session repository
func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Create inserts a new research session
func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.ResearchSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	normalize(session)

	query := `
		INSERT INTO research_sessions (
			id, topic, status, wins, losses, sources, strategic_summary,
			message, logs, briefing_path, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		session.ID,
		session.Topic,
		session.Status,
		session.Wins,
		session.Losses,
		session.Sources,
		session.StrategicSummary,
		session.Message,
		session.Logs,
		session.BriefingPath,
		session.CompletedAt,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
}

// Get retrieves a research session by ID
func (r *PostgresSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM research_sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Update writes the full state of a research session
func (r *PostgresSessionRepository) Update(ctx context.Context, session *models.ResearchSession) error {
	normalize(session)
	session.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE research_sessions SET
			topic = $2,
			status = $3,
			wins = $4,
			losses = $5,
			sources = $6,
			strategic_summary = $7,
			message = $8,
			logs = $9,
			briefing_path = $10,
			completed_at = $11,
			updated_at = $12
		WHERE id = $1`

	tag, err := r.db.Exec(
		ctx, query,
		session.ID,
		session.Topic,
		session.Status,
		session.Wins,
		session.Losses,
		session.Sources,
		session.StrategicSummary,
		session.Message,
		session.Logs,
		session.BriefingPath,
		session.CompletedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recently created sessions first
func (r *PostgresSessionRepository) List(ctx context.Context, limit int) ([]*models.ResearchSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM research_sessions ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*models.ResearchSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*models.ResearchSession, error) {
	session := &models.ResearchSession{}
	err := row.Scan(
		&session.ID,
		&session.Topic,
		&session.Status,
		&session.Wins,
		&session.Losses,
		&session.Sources,
		&session.StrategicSummary,
		&session.Message,
		&session.Logs,
		&session.BriefingPath,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	normalize(session)
	return session, nil
}
