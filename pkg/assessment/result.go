package assessment

import (
	"fmt"
	"time"

	"careintake-server/pkg/errors"
)

// Recompute re-derives score, readiness and the overall compliance verdict
// from the current state. Every mutator calls it; callers that modify the
// result directly must call it themselves before reading derived fields.
func (r *AssessmentResult) Recompute() {
	r.OverallCompliance = overallCompliance(r)
	r.ComplianceScore = ComputeScore(r)
	r.AuditReady, r.Issues = ComputeReadiness(r)
}

// overallCompliance derives the headline verdict: any restrictive measure
// makes the result non-compliant, any failing check needs attention.
func overallCompliance(r *AssessmentResult) ComplianceStatus {
	if len(r.Alerts) > 0 {
		return StatusNonCompliant
	}
	for _, check := range r.Checks {
		if !check.Compliant && !check.Completed {
			return StatusNeedsAttention
		}
	}
	return StatusCompliant
}

// MarkFindingRemediated marks the finding at index as remediated and
// recomputes.
func (r *AssessmentResult) MarkFindingRemediated(index int) error {
	if index < 0 || index >= len(r.Findings) {
		return errors.NewInvalidInput(fmt.Sprintf("finding index %d out of range", index))
	}
	r.Findings[index].Remediated = true
	r.Findings[index].Status = StatusCompliant
	r.Recompute()
	return nil
}

// SetCoercionAuthorization records a court authorization for the alert at
// index and recomputes.
func (r *AssessmentResult) SetCoercionAuthorization(index int, date time.Time) error {
	if index < 0 || index >= len(r.Alerts) {
		return errors.NewInvalidInput(fmt.Sprintf("alert index %d out of range", index))
	}
	r.Alerts[index].AuthorizationPresent = true
	r.Alerts[index].AuthorizationDate = &date
	r.Recompute()
	return nil
}

// MarkPolicyCheckCompleted marks the check at index as completed and
// recomputes.
func (r *AssessmentResult) MarkPolicyCheckCompleted(index int) error {
	if index < 0 || index >= len(r.Checks) {
		return errors.NewInvalidInput(fmt.Sprintf("check index %d out of range", index))
	}
	r.Checks[index].Completed = true
	r.Checks[index].Compliant = true
	r.Recompute()
	return nil
}

// SetReviewer records the final review and recomputes. Both name and date
// are required for the review component to count.
func (r *AssessmentResult) SetReviewer(name string, date time.Time) {
	r.ReviewerName = name
	r.ReviewDate = &date
	r.Recompute()
}
