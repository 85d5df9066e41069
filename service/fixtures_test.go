package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jurissearch-backend/config"
	"jurissearch-backend/models"
)

func TestDemoFixtures(t *testing.T) {
	set := DemoFixtures()

	won, ok := set.Lookup("Discrimination in Smart Contracts", models.OutcomeWon)
	require.True(t, ok)
	require.Len(t, won, 1)
	assert.Equal(t, "Department of Fair Employment v. AutoCorp DAO", won[0].Name)
	assert.Equal(t, "DAOs are not immune to state labor laws.", won[0].Takeaway)

	lost, ok := set.Lookup("Discrimination in Smart Contracts", models.OutcomeLost)
	require.True(t, ok)
	require.Len(t, lost, 1)
	assert.Equal(t, "EquiWork DAO v. Turing Labor Systems", lost[0].Name)
	assert.Equal(t, "345 F. Supp. 3d 892", lost[0].Citation)
	assert.Equal(t, 98, lost[0].ConfidenceScore)
}

func TestFixtureLookupMatchesSubstring(t *testing.T) {
	set := DemoFixtures()

	_, ok := set.Lookup("Recent Discrimination in Smart Contracts rulings", models.OutcomeWon)
	assert.True(t, ok)

	_, ok = set.Lookup("discrimination in smart contracts", models.OutcomeWon)
	assert.False(t, ok, "match is case-sensitive")

	_, ok = set.Lookup("Contract Law", models.OutcomeLost)
	assert.False(t, ok)
}

func TestFixtureLookupReturnsCopies(t *testing.T) {
	set := DemoFixtures()
	won, _ := set.Lookup(DemoTopic, models.OutcomeWon)
	won[0].Name = "mutated"

	again, _ := set.Lookup(DemoTopic, models.OutcomeWon)
	assert.Equal(t, "Department of Fair Employment v. AutoCorp DAO", again[0].Name)
}

func TestNewFixtureSetFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Fixtures = []config.FixtureConfig{
		{Topic: "Neural Privacy Acts", Lost: []models.CaseStudy{{Name: "Mind v. Machine"}}},
		{Topic: ""},
	}

	set := NewFixtureSet(cfg)
	assert.Equal(t, 2, set.Len())

	lost, ok := set.Lookup("Neural Privacy Acts", models.OutcomeLost)
	require.True(t, ok)
	assert.Equal(t, "Mind v. Machine", lost[0].Name)

	won, ok := set.Lookup("Neural Privacy Acts", models.OutcomeWon)
	assert.True(t, ok)
	assert.Empty(t, won)

	cfg.Research.DemoFixtures = false
	set = NewFixtureSet(cfg)
	assert.Equal(t, 1, set.Len())
	_, ok = set.Lookup(DemoTopic, models.OutcomeWon)
	assert.False(t, ok)
}

func TestNilFixtureSet(t *testing.T) {
	var set *FixtureSet
	_, ok := set.Lookup(DemoTopic, models.OutcomeWon)
	assert.False(t, ok)
	assert.Equal(t, 0, set.Len())
}
