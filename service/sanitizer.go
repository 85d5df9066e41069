package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"jurissearch-backend/llm"
	"jurissearch-backend/models"
)

const (
	searchFallbackBase = "https://www.google.com/search?q="
	defaultSourceTitle = "Archive Entry"
)

var (
	httpURIPattern        = regexp.MustCompile(`^https?://`)
	sourceTitleDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-.]`)
	caseNameDisallowed    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	scriptBlock           = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
)

// FallbackURL builds a web search link for a case without a verifiable source
func FallbackURL(caseName string) string {
	return searchFallbackBase + encodeURIComponent(caseName)
}

// encodeURIComponent escapes s the way browsers do for query components:
// spaces become %20, not '+'.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SanitizeCase replaces a missing or non-http URL with the search fallback
// and clamps the confidence score to 0-100.
func SanitizeCase(c models.CaseStudy) models.CaseStudy {
	if !strings.HasPrefix(c.URL, "http") {
		c.URL = FallbackURL(c.Name)
	}
	c.ConfidenceScore = ClampConfidence(c.ConfidenceScore)
	return c
}

// SanitizeCases applies SanitizeCase to every record
func SanitizeCases(cases []models.CaseStudy) []models.CaseStudy {
	out := make([]models.CaseStudy, 0, len(cases))
	for _, c := range cases {
		out = append(out, SanitizeCase(c))
	}
	return out
}

// ClampConfidence bounds a confidence score to 0-100
func ClampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// SanitizeSourceTitle keeps alphanumerics, whitespace, hyphens and periods
func SanitizeSourceTitle(title string) string {
	if title == "" {
		title = defaultSourceTitle
	}
	return sourceTitleDisallowed.ReplaceAllString(title, "")
}

// SanitizeGrounding keeps http(s) sources and cleans their titles
func SanitizeGrounding(chunks []llm.GroundingChunk) []models.GroundingSource {
	sources := make([]models.GroundingSource, 0, len(chunks))
	for _, chunk := range chunks {
		if !httpURIPattern.MatchString(chunk.URI) {
			continue
		}
		sources = append(sources, models.GroundingSource{
			Title: SanitizeSourceTitle(chunk.Title),
			URI:   chunk.URI,
		})
	}
	return sources
}

// SanitizeCaseName strips a case name to alphanumerics and whitespace so it
// can be placed back into a prompt.
func SanitizeCaseName(name string) string {
	return caseNameDisallowed.ReplaceAllString(name, "")
}

// StripScripts removes <script> blocks from generated text
func StripScripts(text string) string {
	return scriptBlock.ReplaceAllString(text, "")
}

type caseEnvelope struct {
	Cases *[]models.CaseStudy `json:"cases"`
}

// DecodeCases parses a structured research response of the form {"cases": [...]}
func DecodeCases(text string) ([]models.CaseStudy, error) {
	clean := llm.StripCodeFences(text)
	if clean == "" {
		clean = `{"cases": []}`
	}

	var env caseEnvelope
	if err := json.Unmarshal([]byte(clean), &env); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrProviderFailure, err)
	}
	if env.Cases == nil {
		return nil, fmt.Errorf("%w: malformed data structure", ErrProviderFailure)
	}
	return *env.Cases, nil
}
