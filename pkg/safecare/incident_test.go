package safecare

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var incidentNow = time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)

func TestBuildIncidentReport(t *testing.T) {
	c := testClassifier()
	alert := c.Classify("Herr K. hat mich getreten.", false)
	require.True(t, alert.RequiresIncidentReport)

	dictation := "Er hat mich getreten, ich habe Angst. Kollegin Maria hat es gesehen, Arzt gerufen. Prellung am Arm."
	report := BuildIncidentReport(alert, dictation, "Schwester Anna", "P-001", "Mustermann, Karl", incidentNow)

	assert.True(t, strings.HasPrefix(report.ID, "INC-20260314-150405-"))
	assert.Len(t, report.ID, len("INC-20060102-150405-")+8)
	assert.Equal(t, incidentNow, report.Timestamp)
	assert.Equal(t, "Schwester Anna", report.Reporter)
	assert.Equal(t, "P-001", report.SubjectID)
	assert.Equal(t, IncidentPhysicalViolence, report.Type)
	assert.Equal(t, "Bewohner zeigte körperlich aggressives Verhalten gegenüber Pflegekraft.", report.Description)

	assert.Equal(t, []string{"kollegin"}, report.Witnesses)
	assert.Equal(t, []string{"prellung"}, report.Injuries)
	assert.Equal(t, []string{"arzt gerufen"}, report.ImmediateActions)

	assert.NotContains(t, report.Statement, "ich habe Angst")
	assert.NotContains(t, report.Statement, "mich")
	assert.Contains(t, report.Statement, "die Pflegekraft")

	assert.True(t, report.FollowUpRequired)
	assert.Equal(t, incidentNow.Add(24*time.Hour), report.FollowUpDeadline)
	assert.True(t, report.AuthorityNotified)
	assert.True(t, report.SupervisorNotified)
}

func TestBuildIncidentReportDementiaContext(t *testing.T) {
	c := testClassifier()
	alert := c.Classify("Bewohner mit Demenz hat mich gebissen.", false)
	require.True(t, alert.DementiaContext)

	report := BuildIncidentReport(alert, "Er hat mich gebissen.", "Pfleger Tom", "P-002", "", incidentNow)

	assert.Equal(t, IncidentPhysicalViolence, report.Type)
	assert.Contains(t, report.Description, "demenziellen Erkrankung")
}

func TestFilterEmotions(t *testing.T) {
	tests := []struct {
		name      string
		dictation string
		want      string
	}{
		{
			name:      "EmotionPhraseRemoved",
			dictation: "Das war schrecklich und furchtbar.",
			want:      "Das war und .",
		},
		{
			name:      "FirstPersonObjectivated",
			dictation: "Er hat mich geschlagen.",
			want:      "Er hat die Pflegekraft geschlagen.",
		},
		{
			name:      "IchDoesNotFireInsideMich",
			dictation: "Ich sah, wie er mich anstarrte.",
			want:      "die Pflegekraft sah, wie er die Pflegekraft anstarrte.",
		},
		{
			name:      "WhitespaceCollapsed",
			dictation: "Ich habe Angst,   er hat mich geschlagen.",
			want:      ", er hat die Pflegekraft geschlagen.",
		},
		{
			name:      "Empty",
			dictation: "",
			want:      "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterEmotions(tc.dictation))
		})
	}
}

func TestSupportOptionsFor(t *testing.T) {
	assert.Len(t, SupportOptionsFor(IncidentThreat), 4)
	assert.Len(t, SupportOptionsFor(IncidentPhysicalViolence), 4)
	assert.Len(t, SupportOptionsFor(IncidentSexualHarassment), 3)
	assert.Len(t, SupportOptionsFor(IncidentNeglect), 1)
	assert.Nil(t, SupportOptionsFor(IncidentVerbalAggression))
}
