// Package export renders assessment results for external documentation
// systems: smart-copy text blocks, CSV batch files in the fixed column
// layouts of the supported target systems, and the batch audit report.
// Exporters are strictly read-only over their inputs.
package export

import (
	"encoding/json"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/errors"
)

// Format selects the target documentation system.
type Format int

const (
	FormatGeneric Format = iota
	FormatDM7
	FormatVivendi
	FormatMedifox
)

var formatLabels = [...]string{"generic", "dm7", "vivendi", "medifox"}

func (f Format) String() string {
	if f < FormatGeneric || f > FormatMedifox {
		return "unknown"
	}
	return formatLabels[f]
}

// ParseFormat maps a label back to its format.
func ParseFormat(label string) (Format, error) {
	for i, candidate := range formatLabels {
		if candidate == label {
			return Format(i), nil
		}
	}
	return FormatGeneric, errors.NewUnknownCategory(label).WithField("enum", "export_format")
}

func (f Format) MarshalJSON() ([]byte, error) {
	if f < FormatGeneric || f > FormatMedifox {
		return nil, errors.NewUnknownCategory(f.String()).WithField("enum", "export_format")
	}
	return json.Marshal(f.String())
}

func (f *Format) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseFormat(label)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Display labels for the German-language target systems. A value missing
// here is a configuration error of the export layer, reported as an
// unknown category; the assessment itself is never touched.
var (
	riskLevelDisplay = map[assessment.RiskLevel]string{
		assessment.RiskNone:     "KEIN RISIKO",
		assessment.RiskLow:      "NIEDRIG",
		assessment.RiskMedium:   "MITTEL",
		assessment.RiskHigh:     "HOCH",
		assessment.RiskCritical: "KRITISCH",
	}

	complianceDisplay = map[assessment.ComplianceStatus]string{
		assessment.StatusCompliant:      "KONFORM",
		assessment.StatusNeedsAttention: "HANDLUNGSBEDARF",
		assessment.StatusNonCompliant:   "NICHT KONFORM",
		assessment.StatusNotApplicable:  "NICHT ANWENDBAR",
	}

	dependencyDisplay = map[assessment.DependencyCategory]string{
		assessment.Independent:       "SELBSTSTÄNDIG",
		assessment.MostlyIndependent: "ÜBERWIEGEND SELBSTSTÄNDIG",
		assessment.MostlyDependent:   "ÜBERWIEGEND UNSELBSTSTÄNDIG",
		assessment.Dependent:         "UNSELBSTSTÄNDIG",
	}
)

func riskLevelLabel(level assessment.RiskLevel) (string, error) {
	label, ok := riskLevelDisplay[level]
	if !ok {
		return "", errors.NewUnknownCategory(level.String()).WithField("enum", "risk_level")
	}
	return label, nil
}

func complianceLabel(status assessment.ComplianceStatus) (string, error) {
	label, ok := complianceDisplay[status]
	if !ok {
		return "", errors.NewUnknownCategory(status.String()).WithField("enum", "compliance_status")
	}
	return label, nil
}

func dependencyLabel(category assessment.DependencyCategory) (string, error) {
	label, ok := dependencyDisplay[category]
	if !ok {
		return "", errors.NewUnknownCategory(category.String()).WithField("enum", "dependency_category")
	}
	return label, nil
}
