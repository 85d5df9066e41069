package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to SearchStatus
		allowed  bool
	}{
		{StatusIdle, StatusSearching, true},
		{StatusIdle, StatusCompleted, false},
		{StatusSearching, StatusAnalyzing, true},
		{StatusSearching, StatusIdle, true},
		{StatusSearching, StatusCompleted, false},
		{StatusAnalyzing, StatusCompleted, true},
		{StatusAnalyzing, StatusIdle, true},
		{StatusCompleted, StatusSearching, true},
		{StatusCompleted, StatusIdle, false},
		{StatusError, StatusSearching, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestResearchSessionTransition(t *testing.T) {
	s := NewResearchSession("Contract Law")
	require.Equal(t, StatusIdle, s.Status)

	require.NoError(t, s.Transition(StatusSearching))
	require.NoError(t, s.Transition(StatusAnalyzing))
	require.NoError(t, s.Transition(StatusCompleted))
	require.NotNil(t, s.CompletedAt)

	err := s.Transition(StatusAnalyzing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, s.Status)
}

func TestResearchSessionAddLogKeepsNewestFive(t *testing.T) {
	s := NewResearchSession("topic")
	for _, msg := range []string{"one", "two", "three", "four", "five", "six"} {
		s.AddLog(msg)
	}

	assert.Equal(t, SessionLogs{"six", "five", "four", "three", "two"}, s.Logs)
}

func TestResearchSessionRiskFactor(t *testing.T) {
	s := NewResearchSession("topic")
	s.Losses = CaseStudies{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.Equal(t, "Moderate", s.RiskFactor())

	s.Losses = append(s.Losses, CaseStudy{Name: "d"})
	assert.Equal(t, "Critical", s.RiskFactor())
}

func TestResearchSessionCloneIsIndependent(t *testing.T) {
	s := NewResearchSession("topic")
	s.Wins = CaseStudies{{Name: "Original"}}

	c := s.Clone()
	c.Wins[0].Name = "Changed"
	c.AddLog("only on clone")

	assert.Equal(t, "Original", s.Wins[0].Name)
	assert.Empty(t, s.Logs)
}

func TestCaseStudyCitationText(t *testing.T) {
	withCitation := CaseStudy{Name: "Roe v. Doe", Year: "2001", Citation: "123 F.3d 456"}
	assert.Equal(t, "123 F.3d 456", withCitation.CitationText())

	without := CaseStudy{Name: "Roe v. Doe", Year: "2001"}
	assert.Equal(t, "Roe v. Doe (2001)", without.CitationText())
}

func TestCaseStudiesScan(t *testing.T) {
	var cases CaseStudies
	require.NoError(t, cases.Scan([]byte(`[{"name":"A v. B","confidenceScore":70}]`)))
	require.Len(t, cases, 1)
	assert.Equal(t, "A v. B", cases[0].Name)
	assert.Equal(t, 70, cases[0].ConfidenceScore)

	require.NoError(t, cases.Scan(nil))
	assert.NotNil(t, cases)
	assert.Empty(t, cases)
}

func TestCaseStudyJSONOmitsEmptyCitation(t *testing.T) {
	data, err := json.Marshal(CaseStudy{Name: "A v. B"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "citation")
	assert.Contains(t, string(data), `"strategicImplication"`)
}
