// Package assessment implements the intake analysis engine: coercion
// safeguard detection, risk trigger classification, policy compliance
// checking, capability scoring and the weighted audit score. The package
// produces AssessmentResult graphs that downstream consumers (persistence,
// exports, messaging) treat as read-only.
package assessment

import (
	"encoding/json"
	"time"

	"careintake-server/pkg/errors"
)

// RiskLevel is an ordinal severity scale. Ordering is part of the contract:
// a higher value is strictly more severe.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskLevelLabels = [...]string{"none", "low", "medium", "high", "critical"}

func (l RiskLevel) String() string {
	if l < RiskNone || l > RiskCritical {
		return "unknown"
	}
	return riskLevelLabels[l]
}

// ParseRiskLevel maps a label back to its ordinal value.
func ParseRiskLevel(label string) (RiskLevel, error) {
	for i, candidate := range riskLevelLabels {
		if candidate == label {
			return RiskLevel(i), nil
		}
	}
	return RiskNone, errors.NewUnknownCategory(label).WithField("enum", "risk_level")
}

// MarshalJSON serializes the level as its label string.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	if l < RiskNone || l > RiskCritical {
		return nil, errors.NewUnknownCategory(l.String()).WithField("enum", "risk_level")
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the label strings produced by MarshalJSON.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(label)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ComplianceStatus is the per-check and overall compliance verdict.
type ComplianceStatus int

const (
	StatusCompliant ComplianceStatus = iota
	StatusNeedsAttention
	StatusNonCompliant
	StatusNotApplicable
)

var complianceStatusLabels = [...]string{"compliant", "needs_attention", "non_compliant", "not_applicable"}

func (s ComplianceStatus) String() string {
	if s < StatusCompliant || s > StatusNotApplicable {
		return "unknown"
	}
	return complianceStatusLabels[s]
}

// ParseComplianceStatus maps a label back to its ordinal value.
func ParseComplianceStatus(label string) (ComplianceStatus, error) {
	for i, candidate := range complianceStatusLabels {
		if candidate == label {
			return ComplianceStatus(i), nil
		}
	}
	return StatusCompliant, errors.NewUnknownCategory(label).WithField("enum", "compliance_status")
}

func (s ComplianceStatus) MarshalJSON() ([]byte, error) {
	if s < StatusCompliant || s > StatusNotApplicable {
		return nil, errors.NewUnknownCategory(s.String()).WithField("enum", "compliance_status")
	}
	return json.Marshal(s.String())
}

func (s *ComplianceStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseComplianceStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DependencyCategory grades a capability module by its points ratio.
type DependencyCategory int

const (
	Independent DependencyCategory = iota
	MostlyIndependent
	MostlyDependent
	Dependent
)

var dependencyCategoryLabels = [...]string{"independent", "mostly_independent", "mostly_dependent", "dependent"}

func (c DependencyCategory) String() string {
	if c < Independent || c > Dependent {
		return "unknown"
	}
	return dependencyCategoryLabels[c]
}

// ParseDependencyCategory maps a label back to its ordinal value.
func ParseDependencyCategory(label string) (DependencyCategory, error) {
	for i, candidate := range dependencyCategoryLabels {
		if candidate == label {
			return DependencyCategory(i), nil
		}
	}
	return Independent, errors.NewUnknownCategory(label).WithField("enum", "dependency_category")
}

func (c DependencyCategory) MarshalJSON() ([]byte, error) {
	if c < Independent || c > Dependent {
		return nil, errors.NewUnknownCategory(c.String()).WithField("enum", "dependency_category")
	}
	return json.Marshal(c.String())
}

func (c *DependencyCategory) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseDependencyCategory(label)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CoercionAlert records one detected restrictive measure with its legal
// citation and the mandatory response checklists. AuthorizationPresent is
// always false at detection time; it flips only through
// SetCoercionAuthorization.
type CoercionAlert struct {
	DetectedPhrase       string     `json:"detected_phrase"`
	Citation             string     `json:"citation"`
	Severity             RiskLevel  `json:"severity"`
	ImmediateActions     []string   `json:"immediate_actions"`
	Alternatives         []string   `json:"alternatives"`
	DeadlineHours        int        `json:"deadline_hours"`
	Documentation        []string   `json:"documentation"`
	AuthorizationPresent bool       `json:"authorization_present"`
	AuthorizationDate    *time.Time `json:"authorization_date,omitempty"`
}

// RiskFinding is one detected clinical or legal risk. Coercion-derived
// findings carry the phrase of their source alert in CoercionPhrase.
type RiskFinding struct {
	Name              string           `json:"name"`
	Level             RiskLevel        `json:"level"`
	Evidence          string           `json:"evidence"`
	RecommendedAction string           `json:"recommended_action"`
	DeadlineHours     int              `json:"deadline_hours"`
	PolicyRuleID      string           `json:"policy_rule_id,omitempty"`
	Status            ComplianceStatus `json:"status"`
	CoercionPhrase    string           `json:"coercion_phrase,omitempty"`
	Remediated        bool             `json:"remediated"`
}

// PolicyCheck is the evaluation of one applicable procedural rule.
// Non-applicable rules never produce a check.
type PolicyCheck struct {
	RuleID          string    `json:"rule_id"`
	Title           string    `json:"title"`
	Compliant       bool      `json:"compliant"`
	Findings        []string  `json:"findings"`
	RequiredActions []string  `json:"required_actions"`
	Responsible     string    `json:"responsible"`
	Deadline        time.Time `json:"deadline"`
	Completed       bool      `json:"completed"`
}

// CapabilityModule is the scored result for one module of the capability
// taxonomy. Modules without keyword matches are omitted from the result.
type CapabilityModule struct {
	ID              int                `json:"id"`
	Name            string             `json:"name"`
	Points          int                `json:"points"`
	MaxPoints       int                `json:"max_points"`
	Category        DependencyCategory `json:"category"`
	MatchedKeywords []string           `json:"matched_keywords"`
}

// StructuredInfoEntry is one topic-area entry of the structured information
// collection.
type StructuredInfoEntry struct {
	Topic           int      `json:"topic"`
	Title           string   `json:"title"`
	Text            string   `json:"text"`
	Risks           []string `json:"risks"`
	Resources       []string `json:"resources"`
	Preference      string   `json:"preference"`
	PlannedMeasures []string `json:"planned_measures"`
}

// ReadinessIssue is one blocker on the audit readiness checklist.
type ReadinessIssue struct {
	Severity RiskLevel `json:"severity"`
	Message  string    `json:"message"`
}

// AssessmentResult is the full analysis of one admission note. All slices
// keep detection order; Recompute derives score, readiness and the issue
// list from the current state and must run after every mutation.
type AssessmentResult struct {
	ID                string                `json:"id"`
	SubjectID         string                `json:"subject_id"`
	SubjectName       string                `json:"subject_name"`
	AdmittedAt        time.Time             `json:"admitted_at"`
	Author            string                `json:"author"`
	Note              string                `json:"note"`
	Findings          []RiskFinding         `json:"findings"`
	Alerts            []CoercionAlert       `json:"alerts"`
	Checks            []PolicyCheck         `json:"checks"`
	Modules           []CapabilityModule    `json:"modules"`
	InfoEntries       []StructuredInfoEntry `json:"info_entries"`
	OverallCompliance ComplianceStatus      `json:"overall_compliance"`
	ReviewRequired    bool                  `json:"review_required"`
	ReviewerName      string                `json:"reviewer_name,omitempty"`
	ReviewDate        *time.Time            `json:"review_date,omitempty"`
	ComplianceScore   float64               `json:"compliance_score"`
	AuditReady        bool                  `json:"audit_ready"`
	Issues            []ReadinessIssue      `json:"issues,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}
