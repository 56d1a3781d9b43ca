package safecare

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classifiedAt = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func testClassifier() *Classifier {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClassifier(logger)
	c.now = func() time.Time { return classifiedAt }
	return c
}

func TestClassifyPhysicalViolence(t *testing.T) {
	c := testClassifier()

	text := "Herr K. hat mich heute getreten und gekratzt."
	alert := c.Classify(text, false)

	assert.Equal(t, CategoryCriticalPhysical, alert.Category)
	assert.Equal(t, LevelCritical, alert.Level)
	assert.Equal(t, IncidentPhysicalViolence, alert.Type)
	assert.Equal(t, []string{"getreten", "gekratzt"}, alert.MatchedKeywords)
	assert.True(t, alert.RequiresIncidentReport)
	assert.True(t, alert.NotifyAuthority)
	assert.True(t, alert.NotifySupervisor)
	assert.True(t, alert.OfferSupport)
	assert.Equal(t, text, alert.OriginalText)
	assert.Equal(t, "Herr K. hat mich heute "+offensiveToken+" und "+offensiveToken+".", alert.SanitizedText)
	assert.Equal(t, classifiedAt, alert.Timestamp)
}

func TestClassifyPhysicalViolenceNeverDowngradedByDementia(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("Herr K. hat mich heute getreten und gekratzt.", true)

	assert.Equal(t, CategoryCriticalPhysical, alert.Category)
	assert.Equal(t, LevelCritical, alert.Level)
	assert.True(t, alert.DementiaContext)
	assert.True(t, alert.NotifyAuthority)
}

func TestClassifyThreatBeatsProfanity(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("Ich bring dich um, du Arschloch!", false)

	assert.Equal(t, CategoryEmergency, alert.Category)
	assert.Equal(t, LevelEmergency, alert.Level)
	assert.Equal(t, IncidentThreat, alert.Type)
	assert.Equal(t, []string{"bring dich um"}, alert.MatchedKeywords)
	assert.True(t, alert.NotifyAuthority)
	assert.Equal(t, "Ich "+offensiveToken+", du Arschloch!", alert.SanitizedText)
	assert.Contains(t, alert.Recommendation, "Polizei")
}

func TestClassifyPhysicalBeatsSexualized(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("Er hat mich geschlagen und Fotze genannt.", false)

	assert.Equal(t, CategoryCriticalPhysical, alert.Category)
	assert.Contains(t, alert.MatchedKeywords, "geschlagen")
	assert.NotContains(t, alert.MatchedKeywords, "fotze")
}

func TestClassifySexualizedLanguage(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("Bewohner nannte die Pflegerin eine Fotze.", false)

	assert.Equal(t, CategoryCriticalVerbal, alert.Category)
	assert.Equal(t, LevelCritical, alert.Level)
	assert.Equal(t, IncidentSexualHarassment, alert.Type)
	assert.False(t, alert.DementiaContext)
	assert.True(t, alert.RequiresIncidentReport)
	assert.True(t, alert.NotifyAuthority)
	assert.NotContains(t, alert.SanitizedText, "Fotze")
	assert.Contains(t, alert.SanitizedText, sexualizedToken)
}

func TestClassifySexualizedSoftensUnderDementia(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name          string
		text          string
		knownDementia bool
	}{
		{
			name: "DementiaFromText",
			text: "Bewohner mit Demenz nannte die Pflegerin eine Fotze.",
		},
		{
			name:          "DementiaFromFlag",
			text:          "Bewohner nannte die Pflegerin eine Fotze.",
			knownDementia: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alert := c.Classify(tc.text, tc.knownDementia)

			assert.Equal(t, CategoryCriticalVerbal, alert.Category)
			assert.Equal(t, LevelWarning, alert.Level)
			assert.True(t, alert.DementiaContext)
			assert.False(t, alert.NotifyAuthority)
			assert.True(t, alert.RequiresIncidentReport)
			assert.Contains(t, alert.Recommendation, "Demenzerkrankung")
			assert.Contains(t, alert.SanitizedText, sexualizedToken)
		})
	}
}

func TestClassifyNeglectKeepsWording(t *testing.T) {
	c := testClassifier()

	text := "Bewohner wurde tagelang nicht gewaschen und liegengelassen."
	alert := c.Classify(text, false)

	assert.Equal(t, CategoryCriticalPhysical, alert.Category)
	assert.Equal(t, LevelCritical, alert.Level)
	assert.Equal(t, IncidentNeglect, alert.Type)
	assert.Equal(t, []string{"nicht gewaschen", "liegengelassen"}, alert.MatchedKeywords)
	assert.Equal(t, text, alert.SanitizedText)
	assert.True(t, alert.RequiresIncidentReport)
	assert.False(t, alert.NotifyAuthority)
	assert.True(t, alert.NotifySupervisor)
	assert.False(t, alert.OfferSupport)
}

func TestClassifyNeglectBeatsProfanity(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("Scheiße, der Bewohner wurde nicht gewaschen.", false)

	assert.Equal(t, IncidentNeglect, alert.Type)
}

func TestClassifyVulgarLevels(t *testing.T) {
	c := testClassifier()

	plain := c.Classify("Alles Scheiße hier!", false)
	assert.Equal(t, CategoryVulgar, plain.Category)
	assert.Equal(t, LevelWarning, plain.Level)
	assert.Equal(t, IncidentVerbalAggression, plain.Type)
	assert.False(t, plain.RequiresIncidentReport)
	assert.False(t, plain.NotifySupervisor)
	assert.Equal(t, "Alles "+offensiveToken+" hier!", plain.SanitizedText)

	// Affect language inside a dementia context is informational only.
	dementia := c.Classify("Alles Scheiße hier!", true)
	assert.Equal(t, CategoryVulgar, dementia.Category)
	assert.Equal(t, LevelInfo, dementia.Level)
}

func TestClassifyHarmlessNeedsDementiaContext(t *testing.T) {
	c := testClassifier()

	// Without a dementia context the harmless rule must not fire; the
	// note falls through to the baseline result.
	plain := c.Classify("Er nannte mich dumm.", false)
	assert.Equal(t, CategoryHarmless, plain.Category)
	assert.Equal(t, LevelNone, plain.Level)
	assert.Empty(t, plain.MatchedKeywords)
	assert.Equal(t, "Er nannte mich dumm.", plain.SanitizedText)

	dementia := c.Classify("Er nannte mich dumm.", true)
	assert.Equal(t, CategoryHarmless, dementia.Category)
	assert.Equal(t, LevelNone, dementia.Level)
	assert.Equal(t, []string{"dumm"}, dementia.MatchedKeywords)
	assert.Equal(t, "Er nannte mich "+offensiveToken+".", dementia.SanitizedText)
	assert.True(t, dementia.DementiaContext)
	assert.False(t, dementia.RequiresIncidentReport)
	assert.Contains(t, dementia.Recommendation, "Validation")
}

func TestClassifyNoMatchPassesThrough(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("Bewohner war heute freundlich und kooperativ.", false)

	assert.Equal(t, CategoryHarmless, alert.Category)
	assert.Equal(t, LevelNone, alert.Level)
	assert.Equal(t, IncidentVerbalAggression, alert.Type)
	assert.Empty(t, alert.MatchedKeywords)
	assert.Equal(t, "Bewohner war heute freundlich und kooperativ.", alert.SanitizedText)
	assert.Equal(t, "Bewohner war heute freundlich und kooperativ.", alert.OriginalText)
	assert.False(t, alert.RequiresIncidentReport)
}

func TestClassifyEmptyText(t *testing.T) {
	c := testClassifier()

	alert := c.Classify("", false)
	assert.Equal(t, CategoryHarmless, alert.Category)
	assert.Equal(t, LevelNone, alert.Level)
	assert.Equal(t, classifiedAt, alert.Timestamp)
}

func TestViolenceAlertJSONUsesLabels(t *testing.T) {
	c := testClassifier()
	alert := c.Classify("Herr K. hat mich getreten.", false)

	data, err := json.Marshal(alert)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"critical_physical"`)
	assert.Contains(t, string(data), `"level":"critical"`)
	assert.Contains(t, string(data), `"incident_type":"physical_violence"`)

	var decoded ViolenceAlert
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, alert.Category, decoded.Category)
	assert.Equal(t, alert.Level, decoded.Level)
	assert.Equal(t, alert.Type, decoded.Type)
}

func TestParseViolenceCategory(t *testing.T) {
	for category, label := range map[ViolenceCategory]string{
		CategoryHarmless:         "harmless",
		CategoryVulgar:           "vulgar",
		CategoryCriticalVerbal:   "critical_verbal",
		CategoryCriticalPhysical: "critical_physical",
		CategoryEmergency:        "emergency",
	} {
		parsed, err := ParseViolenceCategory(label)
		require.NoError(t, err)
		assert.Equal(t, category, parsed)
		assert.Equal(t, label, category.String())
	}

	_, err := ParseViolenceCategory("mild")
	assert.Error(t, err)
}

func TestParseIncidentType(t *testing.T) {
	for incidentType, label := range map[IncidentType]string{
		IncidentVerbalAggression: "verbal_aggression",
		IncidentSexualHarassment: "sexual_harassment",
		IncidentPhysicalViolence: "physical_violence",
		IncidentThreat:           "threat",
		IncidentNeglect:          "neglect_suspicion",
	} {
		parsed, err := ParseIncidentType(label)
		require.NoError(t, err)
		assert.Equal(t, incidentType, parsed)
		assert.Equal(t, label, incidentType.String())
	}

	_, err := ParseIncidentType("mishap")
	assert.Error(t, err)
}
