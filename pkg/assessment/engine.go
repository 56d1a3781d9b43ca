package assessment

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine orchestrates the full intake analysis: coercion detection, risk
// classification, policy checks, capability scoring, structured info and
// the derived score/readiness fields.
type Engine struct {
	logger   *logrus.Entry
	coercion *CoercionDetector
	risks    *RiskClassifier
	policy   *PolicyChecker

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewEngine creates an engine with all classifiers wired.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		logger:   logger.WithField("component", "assessment_engine"),
		coercion: NewCoercionDetector(logger),
		risks:    NewRiskClassifier(logger),
		policy:   NewPolicyChecker(logger),
		now:      time.Now,
	}
}

// Analyze runs the full pipeline over an admission note. It is total over
// arbitrary UTF-8 input: empty or whitespace-only notes yield a valid
// zero-finding result, never an error. The same note always produces the
// same detections.
func (e *Engine) Analyze(note, subjectID, subjectName, author string) *AssessmentResult {
	now := e.now()

	result := &AssessmentResult{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		SubjectName: subjectName,
		AdmittedAt:  now,
		Author:      author,
		Note:        note,
		CreatedAt:   now,
	}

	result.Alerts = e.coercion.Detect(note)
	result.Findings = e.risks.Classify(note, result.Alerts)
	result.Checks = e.policy.Check(note, now)
	result.Modules = ScoreCapabilities(note)
	result.InfoEntries = CollectStructuredInfo(note)
	result.ReviewRequired = reviewRequired(result)
	result.Recompute()

	e.logger.WithFields(logrus.Fields{
		"subject_id":  subjectID,
		"findings":    len(result.Findings),
		"alerts":      len(result.Alerts),
		"checks":      len(result.Checks),
		"score":       result.ComplianceScore,
		"audit_ready": result.AuditReady,
	}).Info("Admission note analyzed")

	return result
}

// reviewRequired flags results that must pass a human review before
// release: any restrictive measure, or any finding at high severity or
// above.
func reviewRequired(r *AssessmentResult) bool {
	if len(r.Alerts) > 0 {
		return true
	}
	for _, finding := range r.Findings {
		if finding.Level >= RiskHigh {
			return true
		}
	}
	return false
}
