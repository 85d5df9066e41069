package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SearchStatus represents the state of a research session
type SearchStatus string

const (
	StatusIdle      SearchStatus = "idle"
	StatusSearching SearchStatus = "searching"
	StatusAnalyzing SearchStatus = "analyzing"
	StatusCompleted SearchStatus = "completed"
	StatusError     SearchStatus = "error"
)

// User-visible messages. Internal error detail is never surfaced.
const (
	MessageNoPrecedents     = "Repository scan complete. No high-confidence precedents found for this specific query."
	MessageConnectionFailed = "Network interrupt. Judicial archive connection failed."
)

// MaxSessionLogs is the number of system log lines kept per session
const MaxSessionLogs = 5

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the allowed status changes.
// idle and completed accept a new submission; searching fans out the
// provider calls; analyzing runs the summary after the join.
var transitions = map[SearchStatus][]SearchStatus{
	StatusIdle:      {StatusSearching},
	StatusCompleted: {StatusSearching},
	StatusSearching: {StatusAnalyzing, StatusIdle, StatusError},
	StatusAnalyzing: {StatusCompleted, StatusIdle, StatusError},
	StatusError:     {StatusSearching},
}

// CanTransitionTo reports whether the status may change to next
func (s SearchStatus) CanTransitionTo(next SearchStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsBusy reports whether provider calls are in flight
func (s SearchStatus) IsBusy() bool {
	return s == StatusSearching || s == StatusAnalyzing
}

// SessionLogs is the short system log shown while a search runs, newest first
type SessionLogs []string

// Value implements driver.Valuer for JSONB
func (l SessionLogs) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(SessionLogs{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *SessionLogs) Scan(value interface{}) error {
	bytes, ok := jsonBytes(value)
	if !ok {
		*l = make(SessionLogs, 0)
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// ResearchSession represents one submission and everything returned for it
type ResearchSession struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Topic            string           `json:"topic" db:"topic"`
	Status           SearchStatus     `json:"status" db:"status"`
	Wins             CaseStudies      `json:"wins" db:"wins"`
	Losses           CaseStudies      `json:"losses" db:"losses"`
	Sources          GroundingSources `json:"sources" db:"sources"`
	StrategicSummary string           `json:"strategic_summary" db:"strategic_summary"`
	Message          string           `json:"message,omitempty" db:"message"`
	Logs             SessionLogs      `json:"logs" db:"logs"`
	BriefingPath     string           `json:"briefing_path,omitempty" db:"briefing_path"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// NewResearchSession creates an idle session for topic
func NewResearchSession(topic string) *ResearchSession {
	now := time.Now().UTC()
	return &ResearchSession{
		ID:        uuid.New(),
		Topic:     topic,
		Status:    StatusIdle,
		Wins:      CaseStudies{},
		Losses:    CaseStudies{},
		Sources:   GroundingSources{},
		Logs:      SessionLogs{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the session to next, enforcing the transition table
func (s *ResearchSession) Transition(next SearchStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	s.UpdatedAt = time.Now().UTC()
	if next == StatusCompleted {
		completed := s.UpdatedAt
		s.CompletedAt = &completed
	}
	return nil
}

// AddLog prepends msg to the session log, keeping the newest MaxSessionLogs lines
func (s *ResearchSession) AddLog(msg string) {
	logs := append(SessionLogs{msg}, s.Logs...)
	if len(logs) > MaxSessionLogs {
		logs = logs[:MaxSessionLogs]
	}
	s.Logs = logs
}

// ResetResults clears everything a previous submission returned
func (s *ResearchSession) ResetResults() {
	s.Wins = CaseStudies{}
	s.Losses = CaseStudies{}
	s.Sources = GroundingSources{}
	s.StrategicSummary = ""
	s.Message = ""
	s.BriefingPath = ""
	s.CompletedAt = nil
}

// HasResults reports whether at least one precedent was returned
func (s *ResearchSession) HasResults() bool {
	return len(s.Wins) > 0 || len(s.Losses) > 0
}

// RiskFactor summarizes exposure from the number of unfavorable precedents
func (s *ResearchSession) RiskFactor() string {
	if len(s.Losses) > 3 {
		return "Critical"
	}
	return "Moderate"
}

// Clone returns a deep copy of the session
func (s *ResearchSession) Clone() *ResearchSession {
	c := *s
	c.Wins = append(CaseStudies{}, s.Wins...)
	c.Losses = append(CaseStudies{}, s.Losses...)
	c.Sources = append(GroundingSources{}, s.Sources...)
	c.Logs = append(SessionLogs{}, s.Logs...)
	if s.CompletedAt != nil {
		completed := *s.CompletedAt
		c.CompletedAt = &completed
	}
	return &c
}
