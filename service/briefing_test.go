package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jurissearch-backend/models"
	"jurissearch-backend/storage"
)

func briefingSession() *models.ResearchSession {
	s := models.NewResearchSession("AI Liability Law")
	s.Status = models.StatusCompleted
	s.Wins = models.CaseStudies{sampleWin}
	s.Losses = models.CaseStudies{{
		Name:            "Smith v. Algo Corp",
		URL:             FallbackURL("Smith v. Algo Corp"),
		Year:            "2019",
		Jurisdiction:    "D. Del.",
		Citation:        "12 F. Supp. 3d 45",
		ConfidenceScore: 70,
	}}
	s.Sources = models.GroundingSources{{Title: "CourtListener", URI: "https://www.courtlistener.com/"}}
	s.StrategicSummary = "The landscape is evolving. Key risks include <script>x</script> strict liability."
	return s
}

func TestRenderBriefing(t *testing.T) {
	md := RenderBriefing(briefingSession())

	assert.True(t, strings.HasPrefix(md, "# Strategy Briefing: AI Liability Law\n"))
	assert.Contains(t, md, "Risk factor: **Moderate**")
	assert.Contains(t, md, "## Executive Summary")
	assert.Contains(t, md, "## Success Precedents")
	assert.Contains(t, md, "## Risk Precedents")
	assert.Contains(t, md, "### [Doe v. Robotics Inc](https://www.courtlistener.com/opinion/1/)")
	assert.Contains(t, md, "**Citation:** Doe v. Robotics Inc (2021)")
	assert.Contains(t, md, "**Citation:** 12 F. Supp. 3d 45")
	assert.Contains(t, md, "**Confidence:** 88%")
	assert.Contains(t, md, "- [CourtListener](https://www.courtlistener.com/)")
	assert.True(t, strings.HasSuffix(md, Disclaimer+"\n"))
	assert.NotContains(t, md, "<script>")
}

func TestRenderBriefingOmitsEmptySections(t *testing.T) {
	s := models.NewResearchSession("Contract Law")
	s.Message = models.MessageNoPrecedents

	md := RenderBriefing(s)
	assert.NotContains(t, md, "## Success Precedents")
	assert.NotContains(t, md, "## Grounding Sources")
	assert.Contains(t, md, "> Repository scan complete.")
}

func TestBriefingHTML(t *testing.T) {
	html, err := BriefingHTML(RenderBriefing(briefingSession()))
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Strategy Briefing: AI Liability Law</h1>")
	assert.Contains(t, html, `<a href="https://www.courtlistener.com/opinion/1/">Doe v. Robotics Inc</a>`)
	assert.NotContains(t, html, "<script>")

	html, err = BriefingHTML("raw <script>alert(1)</script> html\n\n[x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "javascript:")
}

func TestBriefingArchive(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	archive := NewBriefingArchive(local)

	s := briefingSession()
	key, err := archive.Save(context.Background(), s)
	require.NoError(t, err)

	md, err := archive.Load(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, RenderBriefing(s), md)

	_, err = archive.Load(context.Background(), "briefings/"+uuid.NewString()+"/briefing.md")
	assert.ErrorIs(t, err, ErrBriefingNotFound)
}
