package export

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"careintake-server/pkg/assessment"
)

// SmartCopy renders an assessment as a paste-ready text block for a target
// documentation system. The renderers never mutate the result; value
// receivers and local builders only.
type SmartCopy struct {
	logger *logrus.Entry
}

// NewSmartCopy creates a smart-copy renderer.
func NewSmartCopy(logger *logrus.Logger) *SmartCopy {
	return &SmartCopy{
		logger: logger.WithField("component", "smartcopy"),
	}
}

// Render produces the text block for the given format.
func (s *SmartCopy) Render(r *assessment.AssessmentResult, format Format) (string, error) {
	var (
		text string
		err  error
	)

	switch format {
	case FormatDM7:
		text, err = renderDM7(r)
	case FormatVivendi:
		text, err = renderVivendi(r)
	case FormatMedifox:
		text, err = renderMedifox(r)
	default:
		text, err = renderGeneric(r)
	}

	if err != nil {
		s.logger.WithError(err).WithField("format", format.String()).Error("Smart copy rendering failed")
		return "", err
	}
	return text, nil
}

func yesNo(v bool) string {
	if v {
		return "JA"
	}
	return "NEIN"
}

func renderGeneric(r *assessment.AssessmentResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "PFLEGEAUFNAHME - ZUSAMMENFASSUNG\n")
	fmt.Fprintf(&b, "Bewohner: %s (%s)\n", r.SubjectName, r.SubjectID)
	fmt.Fprintf(&b, "Aufnahme: %s\n", r.AdmittedAt.Format("02.01.2006"))
	fmt.Fprintf(&b, "Aufgenommen durch: %s\n", r.Author)

	if len(r.Findings) > 0 {
		b.WriteString("\nRISIKEN:\n")
		for _, finding := range r.Findings {
			level, err := riskLevelLabel(finding.Level)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "- %s [%s]: %s\n", finding.Name, level, finding.RecommendedAction)
		}
	}

	if len(r.Alerts) > 0 {
		b.WriteString("\nFEM-ALARME:\n")
		for _, alert := range r.Alerts {
			fmt.Fprintf(&b, "- '%s' (%s), Beschluss: %s\n",
				alert.DetectedPhrase, alert.Citation, yesNo(alert.AuthorizationPresent))
		}
	}

	if len(r.Checks) > 0 {
		b.WriteString("\nDVA-PRÜFUNGEN:\n")
		for _, check := range r.Checks {
			fmt.Fprintf(&b, "- %s %s: erfüllt %s (%s)\n",
				check.RuleID, check.Title, yesNo(check.Compliant || check.Completed), check.Responsible)
		}
	}

	if len(r.Modules) > 0 {
		b.WriteString("\nBEGUTACHTUNG (MODULE):\n")
		for _, module := range r.Modules {
			dependency, err := dependencyLabel(module.Category)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "- Modul %d %s: %d/%d Punkte (%s)\n",
				module.ID, module.Name, module.Points, module.MaxPoints, dependency)
		}
	}

	overall, err := complianceLabel(r.OverallCompliance)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\nGesamtstatus: %s\n", overall)
	fmt.Fprintf(&b, "Compliance-Score: %.1f/100\n", r.ComplianceScore)
	fmt.Fprintf(&b, "MDK-bereit: %s\n", yesNo(r.AuditReady))

	return b.String(), nil
}

func renderDM7(r *assessment.AssessmentResult) (string, error) {
	var b strings.Builder

	// DM7 wants flat key/value lines it can map onto its import mask.
	fmt.Fprintf(&b, "PatientenID: %s\n", r.SubjectID)
	fmt.Fprintf(&b, "Name: %s\n", r.SubjectName)
	fmt.Fprintf(&b, "Aufnahmedatum: %s\n", r.AdmittedAt.Format("02.01.2006"))
	fmt.Fprintf(&b, "Aufgenommen durch: %s\n", r.Author)

	for _, finding := range r.Findings {
		level, err := riskLevelLabel(finding.Level)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "Risiko %s: %s\n", finding.Name, level)
	}

	fmt.Fprintf(&b, "FEM vorhanden: %s\n", yesNo(len(r.Alerts) > 0))
	for _, alert := range r.Alerts {
		fmt.Fprintf(&b, "FEM: %s - %s\n", alert.DetectedPhrase, alert.Citation)
	}

	fmt.Fprintf(&b, "DVA-Compliance: %s\n", checkRatio(r))
	fmt.Fprintf(&b, "Compliance-Score: %.1f\n", r.ComplianceScore)
	fmt.Fprintf(&b, "MDK-Ready: %s\n", yesNo(r.AuditReady))

	return b.String(), nil
}

func renderVivendi(r *assessment.AssessmentResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "== Vivendi PD Übernahme ==\n")
	fmt.Fprintf(&b, "Bewohner: %s | ID: %s | Aufnahme: %s\n",
		r.SubjectName, r.SubjectID, r.AdmittedAt.Format("02.01.2006"))

	b.WriteString("\nSIS-Themenfelder:\n")
	for _, entry := range r.InfoEntries {
		fmt.Fprintf(&b, "Themenfeld %d (%s): %s\n", entry.Topic, entry.Title, entry.Text)
		if len(entry.PlannedMeasures) > 0 {
			fmt.Fprintf(&b, "  Maßnahmen: %s\n", strings.Join(entry.PlannedMeasures, "; "))
		}
	}

	if len(r.Findings) > 0 {
		b.WriteString("\nRisikoeinschätzung:\n")
		for _, finding := range r.Findings {
			level, err := riskLevelLabel(finding.Level)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s (%s) - %s\n", finding.Name, level, finding.Evidence)
		}
	}

	overall, err := complianceLabel(r.OverallCompliance)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\nStatus: %s | Score: %.1f | MDK: %s\n",
		overall, r.ComplianceScore, yesNo(r.AuditReady))

	return b.String(), nil
}

func renderMedifox(r *assessment.AssessmentResult) (string, error) {
	// Medifox only takes a compact one-block summary.
	risks := make([]string, 0, len(r.Findings))
	for _, finding := range r.Findings {
		risks = append(risks, finding.Name)
	}

	overall, err := complianceLabel(r.OverallCompliance)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s | %s | Aufnahme %s | Risiken: %s | FEM: %s | %s | Score %.1f\n",
		r.SubjectID,
		r.SubjectName,
		r.AdmittedAt.Format("02.01.2006"),
		strings.Join(risks, ", "),
		yesNo(len(r.Alerts) > 0),
		overall,
		r.ComplianceScore,
	), nil
}

// checkRatio formats resolved/total over the policy checks.
func checkRatio(r *assessment.AssessmentResult) string {
	resolved := 0
	for _, check := range r.Checks {
		if check.Compliant || check.Completed {
			resolved++
		}
	}
	return fmt.Sprintf("%d/%d", resolved, len(r.Checks))
}
