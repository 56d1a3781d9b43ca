package assessment

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testEngine() *Engine {
	engine := NewEngine(testLogger())
	engine.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return engine
}

func TestAnalyzeDetectsRestrictiveMeasure(t *testing.T) {
	engine := testEngine()

	result := engine.Analyze(
		"Patient sehr unruhig, nachts Bettgitter hochgezogen zur Sicherheit.",
		"P-001", "Mustermann, Karl", "Schwester Anna",
	)

	require.Len(t, result.Alerts, 1)
	alert := result.Alerts[0]
	assert.Equal(t, "bettgitter", alert.DetectedPhrase)
	assert.Equal(t, "BGH XII ZB 24/12 - § 239 StGB Freiheitsberaubung", alert.Citation)
	assert.Equal(t, RiskHigh, alert.Severity)
	assert.Equal(t, 24, alert.DeadlineHours)
	assert.Len(t, alert.ImmediateActions, 5)
	assert.Len(t, alert.Documentation, 5)
	assert.Len(t, alert.Alternatives, 3)
	assert.False(t, alert.AuthorizationPresent)
	assert.Nil(t, alert.AuthorizationDate)

	require.Len(t, result.Findings, 1)
	finding := result.Findings[0]
	assert.Equal(t, "FEM - bettgitter", finding.Name)
	assert.Equal(t, RiskCritical, finding.Level)
	assert.Equal(t, "FEM erkannt: 'bettgitter'", finding.Evidence)
	assert.Equal(t, "DVA-006", finding.PolicyRuleID)
	assert.Equal(t, StatusNonCompliant, finding.Status)
	assert.Equal(t, "bettgitter", finding.CoercionPhrase)

	require.Len(t, result.Checks, 1)
	assert.Equal(t, "DVA-006", result.Checks[0].RuleID)
	assert.False(t, result.Checks[0].Compliant)
	assert.Equal(t, "Heimleitung/Pflegedienstleitung", result.Checks[0].Responsible)

	assert.Equal(t, StatusNonCompliant, result.OverallCompliance)
	assert.True(t, result.ReviewRequired)
	assert.False(t, result.AuditReady)

	// Alert, check and finding are all unresolved, so every score
	// component is at zero.
	assert.Equal(t, 0.0, result.ComplianceScore)
}

func TestAnalyzeFallTriggersRiskAndPolicy(t *testing.T) {
	engine := testEngine()

	result := engine.Analyze(
		"Bewohnerin ist heute gestürzt, Prellung am linken Arm.",
		"P-002", "Schmidt, Erna", "Pfleger Tom",
	)

	assert.Empty(t, result.Alerts)

	require.Len(t, result.Findings, 1)
	finding := result.Findings[0]
	assert.Equal(t, "Sturz", finding.Name)
	assert.Equal(t, RiskHigh, finding.Level)
	assert.Equal(t, "Keyword gefunden: 'gestürzt'", finding.Evidence)
	assert.Equal(t, 24, finding.DeadlineHours)
	assert.Equal(t, "DVA-001", finding.PolicyRuleID)
	assert.Equal(t, StatusNeedsAttention, finding.Status)
	assert.Empty(t, finding.CoercionPhrase)

	require.Len(t, result.Checks, 1)
	check := result.Checks[0]
	assert.Equal(t, "DVA-001", check.RuleID)
	assert.Equal(t, "Sturzprophylaxe", check.Title)
	assert.Equal(t, []string{"Trigger erkannt: 'gestürzt'"}, check.Findings)
	assert.Equal(t, engine.now().Add(24*time.Hour), check.Deadline)

	assert.Equal(t, StatusNeedsAttention, result.OverallCompliance)
	assert.True(t, result.ReviewRequired)
	assert.Equal(t, 30.0, result.ComplianceScore)
}

func TestAnalyzeMediumFindingDeadline(t *testing.T) {
	engine := testEngine()

	result := engine.Analyze(
		"Bewohnerin trinkt zu wenig, Haut wirkt trocken.",
		"P-011", "Schmidt, Erna", "Pfleger Tom",
	)

	require.Len(t, result.Findings, 1)
	finding := result.Findings[0]
	assert.Equal(t, "Exsikkose", finding.Name)
	assert.Equal(t, RiskMedium, finding.Level)
	// Medium triggers carry the same 24h response deadline as high ones.
	assert.Equal(t, 24, finding.DeadlineHours)
}

func TestAnalyzeEmptyNote(t *testing.T) {
	engine := testEngine()

	result := engine.Analyze("", "P-003", "", "")

	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Findings)
	assert.Empty(t, result.Checks)
	assert.Empty(t, result.Modules)
	assert.Empty(t, result.InfoEntries)
	assert.Equal(t, StatusCompliant, result.OverallCompliance)
	assert.False(t, result.ReviewRequired)

	assert.Equal(t, 90.0, result.ComplianceScore)
	assert.False(t, result.AuditReady)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, RiskLow, result.Issues[0].Severity)
	assert.Equal(t, "Abschließende Prüfung durch Pflegedienstleitung fehlt", result.Issues[0].Message)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	engine := testEngine()
	note := "Patient gestürzt, Bettgitter angebracht, trinkt zu wenig."

	first := engine.Analyze(note, "P-004", "Test", "Autor")
	second := engine.Analyze(note, "P-004", "Test", "Autor")

	assert.Equal(t, first.Alerts, second.Alerts)
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Checks, second.Checks)
	assert.Equal(t, first.Modules, second.Modules)
	assert.Equal(t, first.ComplianceScore, second.ComplianceScore)
	assert.Equal(t, first.Issues, second.Issues)
}

func TestAnalyzeScoreNeverLeavesBounds(t *testing.T) {
	engine := testEngine()
	notes := []string{
		"",
		"   ",
		"Unauffälliger Tag, Bewohner wohlauf.",
		"Gestürzt, Dekubitus, Fieber, MRSA, trinkt zu wenig, starke Schmerzen.",
		"Bettgitter, fixiert, gefesselt, Gurte, Tür abgeschlossen, festgehalten, eingesperrt.",
		"Demenz, verwirrt, Medikamente, Wunde, Gewichtsverlust, Sturzrisiko.",
	}

	for _, note := range notes {
		result := engine.Analyze(note, "P-005", "", "")
		assert.GreaterOrEqual(t, result.ComplianceScore, 0.0, "note: %q", note)
		assert.LessOrEqual(t, result.ComplianceScore, 100.0, "note: %q", note)
	}
}

func TestMoreCoercionNeverRaisesScore(t *testing.T) {
	engine := testEngine()

	base := engine.Analyze("Bettgitter hochgezogen.", "P-006", "", "")
	worse := engine.Analyze("Bettgitter hochgezogen und Patient gefesselt.", "P-006", "", "")

	assert.Greater(t, len(worse.Alerts), len(base.Alerts))
	assert.LessOrEqual(t, worse.ComplianceScore, base.ComplianceScore)
}

func TestMutationsRecomputeUntilAuditReady(t *testing.T) {
	engine := testEngine()
	result := engine.Analyze(
		"Patient sehr unruhig, nachts Bettgitter hochgezogen.",
		"P-007", "Mustermann, Karl", "Schwester Anna",
	)
	require.Equal(t, 0.0, result.ComplianceScore)

	require.NoError(t, result.SetCoercionAuthorization(0, time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30.0, result.ComplianceScore)
	assert.True(t, result.Alerts[0].AuthorizationPresent)
	require.NotNil(t, result.Alerts[0].AuthorizationDate)

	require.NoError(t, result.MarkPolicyCheckCompleted(0))
	assert.Equal(t, 70.0, result.ComplianceScore)
	assert.Equal(t, StatusNonCompliant, result.OverallCompliance)

	// The coercion-derived CRITICAL finding still blocks readiness until
	// its actions are confirmed.
	assert.False(t, result.AuditReady)
	require.NoError(t, result.MarkFindingRemediated(0))
	assert.Equal(t, 90.0, result.ComplianceScore)

	result.SetReviewer("PDL Meier", time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, 100.0, result.ComplianceScore)
	assert.True(t, result.AuditReady)
	assert.Empty(t, result.Issues)
}

func TestMutationIndexOutOfRange(t *testing.T) {
	engine := testEngine()
	result := engine.Analyze("", "P-008", "", "")

	assert.Error(t, result.MarkFindingRemediated(0))
	assert.Error(t, result.SetCoercionAuthorization(0, time.Now()))
	assert.Error(t, result.MarkPolicyCheckCompleted(-1))
}

func TestReadinessIssueOrdering(t *testing.T) {
	engine := testEngine()
	result := engine.Analyze(
		"Bettgitter angebracht, Patient gestürzt.",
		"P-009", "", "",
	)

	// One issue per unauthorized measure, open check and open finding,
	// plus the missing review, ordered by concern.
	require.Len(t, result.Issues, 6)
	assert.Equal(t, RiskCritical, result.Issues[0].Severity)
	assert.Equal(t, "FEM 'bettgitter' ohne richterlichen Beschluss", result.Issues[0].Message)
	assert.Equal(t, RiskHigh, result.Issues[1].Severity)
	assert.Equal(t, "DVA-Verstoß: DVA-001 (Sturzprophylaxe) - Maßnahmen nicht umgesetzt", result.Issues[1].Message)
	assert.Equal(t, RiskHigh, result.Issues[2].Severity)
	assert.Equal(t, "DVA-Verstoß: DVA-006 (Freiheitsentziehende Maßnahmen) - Maßnahmen nicht umgesetzt", result.Issues[2].Message)
	assert.Equal(t, RiskMedium, result.Issues[3].Severity)
	assert.Equal(t, "Maßnahmen fehlen: FEM - bettgitter", result.Issues[3].Message)
	assert.Equal(t, RiskMedium, result.Issues[4].Severity)
	assert.Equal(t, "Maßnahmen fehlen: Sturz", result.Issues[4].Message)
	assert.Equal(t, RiskLow, result.Issues[5].Severity)
}

func TestResultJSONRoundTrip(t *testing.T) {
	engine := testEngine()
	result := engine.Analyze(
		"Patient gestürzt, Bettgitter angebracht, Hilfe beim Waschen.",
		"P-010", "Mustermann, Karl", "Schwester Anna",
	)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"critical"`)
	assert.Contains(t, string(data), `"overall_compliance":"non_compliant"`)

	var decoded AssessmentResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, result.ID, decoded.ID)
	assert.Equal(t, result.Findings, decoded.Findings)
	assert.Equal(t, result.Checks[0].RuleID, decoded.Checks[0].RuleID)
	assert.Equal(t, result.OverallCompliance, decoded.OverallCompliance)
	assert.Equal(t, result.ComplianceScore, decoded.ComplianceScore)
	assert.True(t, result.AdmittedAt.Equal(decoded.AdmittedAt))
}
