package assessment

import (
	"github.com/sirupsen/logrus"

	"careintake-server/pkg/matcher"
	"careintake-server/pkg/rules"
)

// CoercionDetector scans admission notes for documented restrictive
// measures (FEM). Each rule pattern yields at most one alert per note, at
// the first match position.
type CoercionDetector struct {
	logger *logrus.Entry
}

// NewCoercionDetector creates a coercion detector.
func NewCoercionDetector(logger *logrus.Logger) *CoercionDetector {
	return &CoercionDetector{
		logger: logger.WithField("component", "coercion_detector"),
	}
}

// severityLevel maps rule-table severity labels onto the ordinal scale.
func severityLevel(label string) RiskLevel {
	if label == rules.SeverityHigh {
		return RiskHigh
	}
	return RiskMedium
}

// Detect returns one alert per matching coercion rule, in rule-table order.
// Alerts always start without authorization; the 24h deadline and the fixed
// action and documentation checklists are attached to every alert.
func (d *CoercionDetector) Detect(note string) []CoercionAlert {
	var alerts []CoercionAlert

	for _, rule := range rules.CoercionRules {
		phrase, ok := matcher.FindPattern(note, rule.Pattern)
		if !ok {
			continue
		}

		alerts = append(alerts, CoercionAlert{
			DetectedPhrase:       phrase,
			Citation:             rule.Citation,
			Severity:             severityLevel(rule.Severity),
			ImmediateActions:     append([]string(nil), rules.CoercionImmediateActions...),
			Alternatives:         append([]string(nil), rule.Alternatives...),
			DeadlineHours:        rules.CoercionDeadlineHours,
			Documentation:        append([]string(nil), rules.CoercionDocumentation...),
			AuthorizationPresent: false,
		})

		d.logger.WithFields(logrus.Fields{
			"phrase":   phrase,
			"citation": rule.Citation,
			"severity": severityLevel(rule.Severity).String(),
		}).Warn("Restrictive measure detected in admission note")
	}

	return alerts
}
