package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Outcome is the litigation result requested for a research call
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	return o == OutcomeWon || o == OutcomeLost
}

// Label returns the heading used for results of this outcome
func (o Outcome) Label() string {
	if o == OutcomeWon {
		return "Success Precedents"
	}
	return "Risk Precedents"
}

// Judgment describes the judgment the primary party received
func (o Outcome) Judgment() string {
	if o == OutcomeWon {
		return "SECURED A FAVORABLE JUDGMENT"
	}
	return "RECEIVED AN UNFAVORABLE JUDGMENT"
}

// CaseStudy represents a single precedent returned by the research provider
type CaseStudy struct {
	Name                 string `json:"name" toml:"name"`
	URL                  string `json:"url" toml:"url"`
	Summary              string `json:"summary" toml:"summary"`
	Year                 string `json:"year" toml:"year"`
	Jurisdiction         string `json:"jurisdiction" toml:"jurisdiction"`
	Citation             string `json:"citation,omitempty" toml:"citation"`
	Takeaway             string `json:"takeaway" toml:"takeaway"`
	StrategicImplication string `json:"strategicImplication" toml:"strategic_implication"`
	ConfidenceScore      int    `json:"confidenceScore" toml:"confidence_score"`
}

// CitationText returns the text copied when citing the case.
// Falls back to "Name (Year)" when no formal citation was returned.
func (c CaseStudy) CitationText() string {
	if c.Citation != "" {
		return c.Citation
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Year)
}

// GroundingSource is a citation link reported by the provider's search grounding
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// CaseStudies is a list of case studies stored as JSONB
type CaseStudies []CaseStudy

// Value implements driver.Valuer for JSONB
func (c CaseStudies) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(CaseStudies{})
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *CaseStudies) Scan(value interface{}) error {
	bytes, ok := jsonBytes(value)
	if !ok {
		*c = make(CaseStudies, 0)
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// GroundingSources is a list of grounding sources stored as JSONB
type GroundingSources []GroundingSource

// Value implements driver.Valuer for JSONB
func (g GroundingSources) Value() (driver.Value, error) {
	if g == nil {
		return json.Marshal(GroundingSources{})
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB
func (g *GroundingSources) Scan(value interface{}) error {
	bytes, ok := jsonBytes(value)
	if !ok {
		*g = make(GroundingSources, 0)
		return nil
	}
	return json.Unmarshal(bytes, g)
}

// jsonBytes normalizes the types pgx and database/sql return for JSON columns.
// The second result is false for NULL or empty values.
func jsonBytes(value interface{}) ([]byte, bool) {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil, false
	}
	if len(bytes) == 0 {
		return nil, false
	}
	return bytes, true
}
