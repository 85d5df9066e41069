package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"jurissearch-backend/models"
	"jurissearch-backend/storage"
)

// Disclaimer is shown on every rendered briefing
const Disclaimer = "AI-Generated Content - Verify with Legal Counsel"

const briefingFilename = "briefing.md"

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `&lt;`,
	">", `&gt;`,
	"#", `\#`,
	"|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}

// RenderBriefing renders a session as a markdown strategy briefing
func RenderBriefing(session *models.ResearchSession) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Strategy Briefing: %s\n\n", escapeMarkdown(session.Topic))
	fmt.Fprintf(&b, "_Status: %s | Risk factor: **%s** | %d success, %d risk precedents_\n\n",
		session.Status, session.RiskFactor(), len(session.Wins), len(session.Losses))

	if session.StrategicSummary != "" {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(escapeMarkdown(session.StrategicSummary))
		b.WriteString("\n\n")
	}
	if session.Message != "" {
		b.WriteString("> ")
		b.WriteString(escapeMarkdown(session.Message))
		b.WriteString("\n\n")
	}

	writeCases(&b, models.OutcomeWon, session.Wins)
	writeCases(&b, models.OutcomeLost, session.Losses)

	if len(session.Sources) > 0 {
		b.WriteString("## Grounding Sources\n\n")
		for _, src := range session.Sources {
			fmt.Fprintf(&b, "- [%s](%s)\n", escapeMarkdown(src.Title), src.URI)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(Disclaimer)
	b.WriteString("\n")
	return b.String()
}

func writeCases(b *strings.Builder, outcome models.Outcome, cases []models.CaseStudy) {
	if len(cases) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", outcome.Label())
	for _, c := range cases {
		fmt.Fprintf(b, "### [%s](%s)\n\n", escapeMarkdown(c.Name), c.URL)
		fmt.Fprintf(b, "- **Jurisdiction:** %s (%s)\n", escapeMarkdown(c.Jurisdiction), escapeMarkdown(c.Year))
		fmt.Fprintf(b, "- **Citation:** %s\n", escapeMarkdown(c.CitationText()))
		fmt.Fprintf(b, "- **Confidence:** %d%%\n\n", c.ConfidenceScore)
		if c.Summary != "" {
			fmt.Fprintf(b, "%s\n\n", escapeMarkdown(c.Summary))
		}
		if c.Takeaway != "" {
			fmt.Fprintf(b, "**Takeaway:** %s\n\n", escapeMarkdown(c.Takeaway))
		}
		if c.StrategicImplication != "" {
			fmt.Fprintf(b, "**Strategic implication:** %s\n\n", escapeMarkdown(c.StrategicImplication))
		}
	}
}

// BriefingHTML converts a markdown briefing to HTML. Raw HTML in the
// source is dropped by the renderer.
func BriefingHTML(markdown string) (string, error) {
	var out bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &out); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return out.String(), nil
}

// BriefingArchive stores rendered briefings in a storage backend
type BriefingArchive struct {
	storage storage.Storage
}

// NewBriefingArchive creates an archive on top of store
func NewBriefingArchive(store storage.Storage) *BriefingArchive {
	return &BriefingArchive{storage: store}
}

// Save renders and uploads the briefing for session, returning its key
func (a *BriefingArchive) Save(ctx context.Context, session *models.ResearchSession) (string, error) {
	markdown := RenderBriefing(session)
	key, err := a.storage.Upload(ctx, session.ID, briefingFilename, strings.NewReader(markdown))
	if err != nil {
		return "", fmt.Errorf("failed to archive briefing: %w", err)
	}
	return key, nil
}

// Load returns the archived markdown stored at key
func (a *BriefingArchive) Load(ctx context.Context, key string) (string, error) {
	rc, err := a.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrBriefingNotFound
		}
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read briefing: %w", err)
	}
	return string(data), nil
}
