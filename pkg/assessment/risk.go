package assessment

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"careintake-server/pkg/matcher"
	"careintake-server/pkg/rules"
)

// RiskClassifier derives risk findings from an admission note. Coercion
// alerts are projected into CRITICAL findings first; the keyword trigger
// table follows, one finding per trigger at most (first matching keyword
// wins).
type RiskClassifier struct {
	logger *logrus.Entry
}

// NewRiskClassifier creates a risk classifier.
func NewRiskClassifier(logger *logrus.Logger) *RiskClassifier {
	return &RiskClassifier{
		logger: logger.WithField("component", "risk_classifier"),
	}
}

// Every table-derived finding carries the same response deadline.
const riskDeadlineHours = 24

// Classify builds the finding list for a note. The coercion-derived
// findings come first and are always CRITICAL, non-compliant and tied to
// the restrictive-measures policy rule; their recommended action is the
// joined immediate-action checklist of the source alert.
func (c *RiskClassifier) Classify(note string, alerts []CoercionAlert) []RiskFinding {
	var findings []RiskFinding

	for _, alert := range alerts {
		findings = append(findings, RiskFinding{
			Name:              "FEM - " + alert.DetectedPhrase,
			Level:             RiskCritical,
			Evidence:          fmt.Sprintf("FEM erkannt: '%s'", alert.DetectedPhrase),
			RecommendedAction: strings.Join(alert.ImmediateActions, "; "),
			DeadlineHours:     alert.DeadlineHours,
			PolicyRuleID:      rules.CoercionPolicyRuleID,
			Status:            StatusNonCompliant,
			CoercionPhrase:    alert.DetectedPhrase,
		})
	}

	for _, trigger := range rules.RiskTriggers {
		keyword, ok := matcher.ContainsAny(note, trigger.Keywords)
		if !ok {
			continue
		}

		level := severityLevel(trigger.Level)
		findings = append(findings, RiskFinding{
			Name:              trigger.Name,
			Level:             level,
			Evidence:          fmt.Sprintf("Keyword gefunden: '%s'", keyword),
			RecommendedAction: trigger.Action,
			DeadlineHours:     riskDeadlineHours,
			PolicyRuleID:      trigger.PolicyRuleID,
			Status:            StatusNeedsAttention,
		})

		c.logger.WithFields(logrus.Fields{
			"risk":    trigger.Name,
			"keyword": keyword,
			"level":   level.String(),
		}).Info("Risk trigger matched")
	}

	return findings
}
