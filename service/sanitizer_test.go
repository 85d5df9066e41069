package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jurissearch-backend/llm"
	"jurissearch-backend/models"
)

func TestFallbackURL(t *testing.T) {
	got := FallbackURL("Roe v. Wade & Co")
	assert.Equal(t, "https://www.google.com/search?q=Roe%20v.%20Wade%20%26%20Co", got)

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "Roe v. Wade & Co", parsed.Query().Get("q"))
}

func TestSanitizeCaseReplacesUnverifiableURLs(t *testing.T) {
	tests := []struct {
		url  string
		keep bool
	}{
		{"https://law.justia.com/cases/1", true},
		{"http://example.gov/opinion", true},
		{"", false},
		{"justia.com/cases/federal", false},
		{"javascript:alert(1)", false},
		{"ftp://files.example.com", false},
	}

	for _, tt := range tests {
		c := SanitizeCase(models.CaseStudy{Name: "Doe v. Roe", URL: tt.url, ConfidenceScore: 50})
		if tt.keep {
			assert.Equal(t, tt.url, c.URL)
		} else {
			assert.Equal(t, FallbackURL("Doe v. Roe"), c.URL, "url %q", tt.url)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0, ClampConfidence(-5))
	assert.Equal(t, 42, ClampConfidence(42))
	assert.Equal(t, 100, ClampConfidence(250))

	cases := SanitizeCases([]models.CaseStudy{{Name: "A", URL: "https://a.example", ConfidenceScore: 140}})
	assert.Equal(t, 100, cases[0].ConfidenceScore)
}

func TestSanitizeGrounding(t *testing.T) {
	got := SanitizeGrounding([]llm.GroundingChunk{
		{Title: "Justia <b>Cases</b>!", URI: "https://law.justia.com/"},
		{Title: "", URI: "http://www.courtlistener.com/"},
		{Title: "Bad", URI: "javascript:alert(1)"},
		{Title: "Relative", URI: "/wiki/Law"},
		{Title: "Ftp", URI: "ftp://example.com"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, models.GroundingSource{Title: "Justia bCasesb", URI: "https://law.justia.com/"}, got[0])
	assert.Equal(t, models.GroundingSource{Title: "Archive Entry", URI: "http://www.courtlistener.com/"}, got[1])

	assert.NotNil(t, SanitizeGrounding(nil))
}

func TestSanitizeSourceTitleAllowedCharacters(t *testing.T) {
	assert.Equal(t, "U.S. Courts - Opinions 2024", SanitizeSourceTitle("U.S. Courts - Opinions (2024)"))
	assert.Equal(t, "Archive Entry", SanitizeSourceTitle(""))
}

func TestSanitizeCaseName(t *testing.T) {
	assert.Equal(t, "Doe v Roe Inc", SanitizeCaseName("Doe v. Roe, Inc."))
	assert.Equal(t, "ignore", SanitizeCaseName("<ignore>"))
}

func TestStripScripts(t *testing.T) {
	in := "The landscape is stable.<script type=\"text/javascript\">\nalert('x')\n</script> Key risks include <SCRIPT>bad()</SCRIPT>drift."
	assert.Equal(t, "The landscape is stable. Key risks include drift.", StripScripts(in))
}

func TestDecodeCases(t *testing.T) {
	cases, err := DecodeCases("```json\n{\"cases\":[{\"name\":\"A v. B\",\"url\":\"x\",\"confidenceScore\":80}]}\n```")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "A v. B", cases[0].Name)
	assert.Equal(t, 80, cases[0].ConfidenceScore)

	cases, err = DecodeCases("")
	require.NoError(t, err)
	assert.Empty(t, cases)

	cases, err = DecodeCases(`{"cases":[]}`)
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestDecodeCasesMalformed(t *testing.T) {
	for _, text := range []string{
		`not json`,
		`{"results":[]}`,
		`{"cases":null}`,
		`{"cases":"none"}`,
		`[]`,
	} {
		_, err := DecodeCases(text)
		assert.ErrorIs(t, err, ErrProviderFailure, "text %q", text)
	}
}
