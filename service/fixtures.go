package service

import (
	"strings"

	"jurissearch-backend/config"
	"jurissearch-backend/models"
)

// DemoTopic is the topic served by the built-in demo fixture
const DemoTopic = "Discrimination in Smart Contracts"

// Fixture is a canned research response for topics containing Topic
type Fixture struct {
	Topic string
	Won   []models.CaseStudy
	Lost  []models.CaseStudy
}

// FixtureSet holds canned responses checked before the provider is called
type FixtureSet struct {
	fixtures []Fixture
}

// NewFixtureSet builds a fixture set from config. The demo fixture comes
// first when enabled; configured fixtures follow in file order.
func NewFixtureSet(cfg *config.Config) *FixtureSet {
	set := &FixtureSet{}
	if cfg == nil {
		return set
	}
	if cfg.Research.DemoFixtures {
		set.fixtures = append(set.fixtures, DemoFixtures().fixtures...)
	}
	for _, fc := range cfg.Fixtures {
		set.Add(Fixture{Topic: fc.Topic, Won: fc.Won, Lost: fc.Lost})
	}
	return set
}

// DemoFixtures returns the set holding only the built-in demo fixture
func DemoFixtures() *FixtureSet {
	lost := models.CaseStudy{
		Name:                 "EquiWork DAO v. Turing Labor Systems",
		URL:                  "https://www.courtlistener.com/",
		Summary:              "A landmark dispute where a DAO's autonomous hiring protocol was found to systematically bias against candidates with gaps in employment history, violating algorithmic fairness statutes.",
		Year:                 "2024",
		Jurisdiction:         "U.S. District Court, N.D. Cal.",
		Citation:             "345 F. Supp. 3d 892",
		Takeaway:             "Smart contracts managing labor must undergo bias auditing equivalent to human HR practices.",
		StrategicImplication: "Companies using automated hiring contracts face strict liability for disparate impact, regardless of intent.",
		ConfidenceScore:      98,
	}

	won := lost
	won.Name = "Department of Fair Employment v. AutoCorp DAO"
	won.Summary = "State regulator successfully sued DAO for discriminatory wage-setting algorithms."
	won.Takeaway = "DAOs are not immune to state labor laws."

	return &FixtureSet{fixtures: []Fixture{{
		Topic: DemoTopic,
		Won:   []models.CaseStudy{won},
		Lost:  []models.CaseStudy{lost},
	}}}
}

// Add appends a fixture. Fixtures with an empty topic are ignored.
func (s *FixtureSet) Add(f Fixture) {
	if f.Topic == "" {
		return
	}
	s.fixtures = append(s.fixtures, f)
}

// Len returns the number of fixtures in the set
func (s *FixtureSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fixtures)
}

// Lookup returns the canned cases for outcome when topic contains a fixture
// topic. The first matching fixture wins.
func (s *FixtureSet) Lookup(topic string, outcome models.Outcome) ([]models.CaseStudy, bool) {
	if s == nil {
		return nil, false
	}
	for _, f := range s.fixtures {
		if !strings.Contains(topic, f.Topic) {
			continue
		}
		var cases []models.CaseStudy
		if outcome == models.OutcomeWon {
			cases = f.Won
		} else {
			cases = f.Lost
		}
		return append([]models.CaseStudy{}, cases...), true
	}
	return nil, false
}
