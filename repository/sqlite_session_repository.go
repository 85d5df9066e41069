package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"jurissearch-backend/models"
)

const sqliteSessionSchema = `
CREATE TABLE IF NOT EXISTS research_sessions (
	id                TEXT PRIMARY KEY,
	topic             TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'idle',
	wins              TEXT NOT NULL DEFAULT '[]',
	losses            TEXT NOT NULL DEFAULT '[]',
	sources           TEXT NOT NULL DEFAULT '[]',
	strategic_summary TEXT NOT NULL DEFAULT '',
	message           TEXT NOT NULL DEFAULT '',
	logs              TEXT NOT NULL DEFAULT '[]',
	briefing_path     TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	completed_at      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_research_sessions_created_at ON research_sessions(created_at);
`

// sqliteTimeFormat has a fixed width so text ordering matches time ordering
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteSessionRow is the on-disk shape: JSON arrays and fixed-width UTC times as text
type sqliteSessionRow struct {
	ID               string `db:"id"`
	Topic            string `db:"topic"`
	Status           string `db:"status"`
	Wins             string `db:"wins"`
	Losses           string `db:"losses"`
	Sources          string `db:"sources"`
	StrategicSummary string `db:"strategic_summary"`
	Message          string `db:"message"`
	Logs             string `db:"logs"`
	BriefingPath     string `db:"briefing_path"`
	CreatedAt        string `db:"created_at"`
	UpdatedAt        string `db:"updated_at"`
	CompletedAt      string `db:"completed_at"`
}

// SQLiteSessionRepository stores sessions in a single SQLite file
type SQLiteSessionRepository struct {
	db *sqlx.DB
}

// NewSQLiteSessionRepository opens (or creates) the database at dbPath
func NewSQLiteSessionRepository(dbPath string) (*SQLiteSessionRepository, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSessionRepository{db: db}, nil
}

// Close closes the database
func (r *SQLiteSessionRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new session
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *models.ResearchSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	row, err := toSQLiteRow(session)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO research_sessions (
			id, topic, status, wins, losses, sources, strategic_summary,
			message, logs, briefing_path, created_at, updated_at, completed_at
		) VALUES (
			:id, :topic, :status, :wins, :losses, :sources, :strategic_summary,
			:message, :logs, :briefing_path, :created_at, :updated_at, :completed_at
		)`, row)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SQLiteSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.ResearchSession, error) {
	var row sqliteSessionRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM research_sessions WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return row.toSession()
}

// Update writes the full state of a session
func (r *SQLiteSessionRepository) Update(ctx context.Context, session *models.ResearchSession) error {
	session.UpdatedAt = time.Now().UTC()

	row, err := toSQLiteRow(session)
	if err != nil {
		return err
	}

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE research_sessions SET
			topic = :topic,
			status = :status,
			wins = :wins,
			losses = :losses,
			sources = :sources,
			strategic_summary = :strategic_summary,
			message = :message,
			logs = :logs,
			briefing_path = :briefing_path,
			updated_at = :updated_at,
			completed_at = :completed_at
		WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recently created sessions first
func (r *SQLiteSessionRepository) List(ctx context.Context, limit int) ([]*models.ResearchSession, error) {
	var rows []sqliteSessionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM research_sessions ORDER BY created_at DESC LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]*models.ResearchSession, 0, len(rows))
	for _, row := range rows {
		session, err := row.toSession()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func toSQLiteRow(s *models.ResearchSession) (*sqliteSessionRow, error) {
	normalize(s)

	row := &sqliteSessionRow{
		ID:               s.ID.String(),
		Topic:            s.Topic,
		Status:           string(s.Status),
		StrategicSummary: s.StrategicSummary,
		Message:          s.Message,
		BriefingPath:     s.BriefingPath,
		CreatedAt:        s.CreatedAt.UTC().Format(sqliteTimeFormat),
		UpdatedAt:        s.UpdatedAt.UTC().Format(sqliteTimeFormat),
	}
	if s.CompletedAt != nil {
		row.CompletedAt = s.CompletedAt.UTC().Format(sqliteTimeFormat)
	}

	for _, f := range []struct {
		dst *string
		src any
	}{
		{&row.Wins, s.Wins},
		{&row.Losses, s.Losses},
		{&row.Sources, s.Sources},
		{&row.Logs, s.Logs},
	} {
		data, err := json.Marshal(f.src)
		if err != nil {
			return nil, fmt.Errorf("marshal session: %w", err)
		}
		*f.dst = string(data)
	}
	return row, nil
}

func (row sqliteSessionRow) toSession() (*models.ResearchSession, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}

	s := &models.ResearchSession{
		ID:               id,
		Topic:            row.Topic,
		Status:           models.SearchStatus(row.Status),
		StrategicSummary: row.StrategicSummary,
		Message:          row.Message,
		BriefingPath:     row.BriefingPath,
	}
	if err := s.Wins.Scan(row.Wins); err != nil {
		return nil, fmt.Errorf("decode wins: %w", err)
	}
	if err := s.Losses.Scan(row.Losses); err != nil {
		return nil, fmt.Errorf("decode losses: %w", err)
	}
	if err := s.Sources.Scan(row.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if err := s.Logs.Scan(row.Logs); err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}

	if s.CreatedAt, err = time.Parse(sqliteTimeFormat, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(sqliteTimeFormat, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if row.CompletedAt != "" {
		completed, err := time.Parse(sqliteTimeFormat, row.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		s.CompletedAt = &completed
	}
	normalize(s)
	return s, nil
}
