package assessment

import "fmt"

// Weighted audit score components. The weights sum to 100; an empty
// component scores its full weight, the review component scores all or
// nothing.
const (
	policyWeight   = 40.0
	coercionWeight = 30.0
	riskWeight     = 20.0
	reviewWeight   = 10.0
)

// ComputeScore derives the weighted audit score from the current state of
// the result, clamped to [0,100]. Every finding counts toward the risk
// component, coercion-derived ones included; an unauthorized measure
// therefore costs both the coercion and the risk share until its actions
// are confirmed.
func ComputeScore(r *AssessmentResult) float64 {
	score := 0.0

	if len(r.Checks) == 0 {
		score += policyWeight
	} else {
		resolved := 0
		for _, check := range r.Checks {
			if check.Compliant || check.Completed {
				resolved++
			}
		}
		score += policyWeight * float64(resolved) / float64(len(r.Checks))
	}

	if len(r.Alerts) == 0 {
		score += coercionWeight
	} else {
		authorized := 0
		for _, alert := range r.Alerts {
			if alert.AuthorizationPresent {
				authorized++
			}
		}
		score += coercionWeight * float64(authorized) / float64(len(r.Alerts))
	}

	if len(r.Findings) == 0 {
		score += riskWeight
	} else {
		remediated := 0
		for _, finding := range r.Findings {
			if finding.Remediated {
				remediated++
			}
		}
		score += riskWeight * float64(remediated) / float64(len(r.Findings))
	}

	if r.ReviewerName != "" && r.ReviewDate != nil {
		score += reviewWeight
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ComputeReadiness runs the strict audit readiness pass. A result is ready
// only when no issue remains; the list carries one severity-tagged issue
// per failing item, ordered by concern (coercion, then policy, then risk
// remediation, then the final review). Only HIGH and CRITICAL findings
// block readiness; lower levels affect the score alone. The review gate
// needs a reviewer name, the review date only counts toward the score.
func ComputeReadiness(r *AssessmentResult) (bool, []ReadinessIssue) {
	var issues []ReadinessIssue

	for _, alert := range r.Alerts {
		if !alert.AuthorizationPresent {
			issues = append(issues, ReadinessIssue{
				Severity: RiskCritical,
				Message:  fmt.Sprintf("FEM '%s' ohne richterlichen Beschluss", alert.DetectedPhrase),
			})
		}
	}

	for _, check := range r.Checks {
		if !check.Compliant && !check.Completed {
			issues = append(issues, ReadinessIssue{
				Severity: RiskHigh,
				Message:  fmt.Sprintf("DVA-Verstoß: %s (%s) - Maßnahmen nicht umgesetzt", check.RuleID, check.Title),
			})
		}
	}

	for _, finding := range r.Findings {
		if finding.Level >= RiskHigh && !finding.Remediated {
			issues = append(issues, ReadinessIssue{
				Severity: RiskMedium,
				Message:  fmt.Sprintf("Maßnahmen fehlen: %s", finding.Name),
			})
		}
	}

	if r.ReviewerName == "" {
		issues = append(issues, ReadinessIssue{
			Severity: RiskLow,
			Message:  "Abschließende Prüfung durch Pflegedienstleitung fehlt",
		})
	}

	return len(issues) == 0, issues
}
