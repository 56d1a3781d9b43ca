package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCapabilities(t *testing.T) {
	note := "Kann nicht alleine gehen, sitzt im Rollstuhl. Hilfe beim Waschen, Anziehen und Essen nötig."

	modules := ScoreCapabilities(note)
	require.Len(t, modules, 2)

	mobility := modules[0]
	assert.Equal(t, 1, mobility.ID)
	assert.Equal(t, []string{"gehen", "rollstuhl"}, mobility.MatchedKeywords)
	assert.Equal(t, 6, mobility.Points)
	assert.Equal(t, 15, mobility.MaxPoints)
	assert.Equal(t, MostlyIndependent, mobility.Category)

	selfCare := modules[1]
	assert.Equal(t, 4, selfCare.ID)
	assert.Equal(t, []string{"waschen", "anziehen", "essen"}, selfCare.MatchedKeywords)
	assert.Equal(t, 9, selfCare.Points)
	assert.Equal(t, 30, selfCare.MaxPoints)
	assert.Equal(t, MostlyIndependent, selfCare.Category)
}

func TestScoreCapabilitiesCapsAtModuleMaximum(t *testing.T) {
	note := "Waschen, Anziehen, Essen, Trinken und Toilette nur mit Unterstützung. " +
		"Beim Gehen, Laufen und Stehen unsicher, Transfers schwer, Rollstuhl nach Sturz."

	modules := ScoreCapabilities(note)
	require.Len(t, modules, 2)

	// Six mobility keywords would be 18 points, capped at 15.
	assert.Equal(t, 1, modules[0].ID)
	assert.Equal(t, 15, modules[0].Points)
	assert.Equal(t, Dependent, modules[0].Category)

	assert.Equal(t, 4, modules[1].ID)
	assert.Equal(t, 15, modules[1].Points)
	assert.Equal(t, MostlyDependent, modules[1].Category)
}

func TestScoreCapabilitiesOmitsUnmatchedModules(t *testing.T) {
	assert.Empty(t, ScoreCapabilities("Ruhiger Nachmittag ohne Vorkommnisse."))
	assert.Empty(t, ScoreCapabilities(""))
}

func TestDependencyCategoryThresholds(t *testing.T) {
	tests := []struct {
		points int
		max    int
		want   DependencyCategory
	}{
		{0, 15, Independent},
		{3, 15, Independent},
		{6, 15, MostlyIndependent},
		{9, 15, MostlyDependent},
		{12, 15, Dependent},
		{15, 15, Dependent},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, dependencyCategory(tc.points, tc.max), "%d/%d", tc.points, tc.max)
	}
}

func TestCollectStructuredInfoMobility(t *testing.T) {
	entries := CollectStructuredInfo("Beim Gehen unsicher, benötigt Rollator.")
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, 2, entry.Topic)
	assert.Equal(t, "Mobilität und Beweglichkeit", entry.Title)
	assert.Equal(t, []string{"Sturzrisiko"}, entry.Risks)
	assert.Equal(t, "Selbstständigkeit erhalten", entry.Preference)
	assert.Contains(t, entry.PlannedMeasures, "Physiotherapie prüfen")
}

func TestCollectStructuredInfoNoMobilityMention(t *testing.T) {
	assert.Empty(t, CollectStructuredInfo("Bewohner isst gut und schläft ruhig."))
}
