package export

import (
	"fmt"
	"strings"
	"time"

	"careintake-server/pkg/assessment"
)

// RuleStat aggregates one policy rule over a batch.
type RuleStat struct {
	RuleID     string  `json:"rule_id"`
	Title      string  `json:"title"`
	Applicable int     `json:"applicable"`
	Resolved   int     `json:"resolved"`
	Ratio      float64 `json:"ratio"`
}

// RecordIssues lists the open readiness issues of one non-ready record.
type RecordIssues struct {
	SubjectID   string                      `json:"subject_id"`
	SubjectName string                      `json:"subject_name"`
	Issues      []assessment.ReadinessIssue `json:"issues"`
}

// AuditReport is the batch quality summary over a set of assessments.
type AuditReport struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	Total        int            `json:"total"`
	AverageScore float64        `json:"average_score"`
	ReadyCount   int            `json:"ready_count"`
	ReadyRatio   float64        `json:"ready_ratio"`
	RuleStats    []RuleStat     `json:"rule_stats"`
	OpenRecords  []RecordIssues `json:"open_records,omitempty"`
	Verdict      string         `json:"verdict"`
}

// BuildAuditReport aggregates a batch. Inputs are read-only; rule stats
// cover only rules that were applicable at least once, in first-seen
// order.
func BuildAuditReport(results []*assessment.AssessmentResult, now time.Time) AuditReport {
	report := AuditReport{GeneratedAt: now, Total: len(results)}
	if len(results) == 0 {
		report.Verdict = "KEINE DATEN"
		return report
	}

	var scoreSum float64
	statIndex := make(map[string]int)

	for _, result := range results {
		scoreSum += result.ComplianceScore
		if result.AuditReady {
			report.ReadyCount++
		} else {
			report.OpenRecords = append(report.OpenRecords, RecordIssues{
				SubjectID:   result.SubjectID,
				SubjectName: result.SubjectName,
				Issues:      result.Issues,
			})
		}

		for _, check := range result.Checks {
			i, seen := statIndex[check.RuleID]
			if !seen {
				i = len(report.RuleStats)
				statIndex[check.RuleID] = i
				report.RuleStats = append(report.RuleStats, RuleStat{
					RuleID: check.RuleID,
					Title:  check.Title,
				})
			}
			report.RuleStats[i].Applicable++
			if check.Compliant || check.Completed {
				report.RuleStats[i].Resolved++
			}
		}
	}

	for i := range report.RuleStats {
		stat := &report.RuleStats[i]
		stat.Ratio = float64(stat.Resolved) / float64(stat.Applicable)
	}

	report.AverageScore = scoreSum / float64(len(results))
	report.ReadyRatio = float64(report.ReadyCount) / float64(len(results))
	report.Verdict = verdict(report.AverageScore)
	return report
}

// verdict maps the average score onto the audit verdict bands.
func verdict(averageScore float64) string {
	switch {
	case averageScore >= 95:
		return "EXZELLENT"
	case averageScore >= 85:
		return "GUT"
	case averageScore >= 75:
		return "BEFRIEDIGEND"
	default:
		return "HANDLUNGSBEDARF"
	}
}

// ruleBand grades a per-rule compliance ratio.
func ruleBand(ratio float64) string {
	switch {
	case ratio >= 0.95:
		return "OK"
	case ratio >= 0.80:
		return "ACHTUNG"
	default:
		return "KRITISCH"
	}
}

// Render produces the human-readable report text.
func (a AuditReport) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "MDK-QUALITÄTSBERICHT - %s\n", a.GeneratedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "Aufnahmen: %d\n", a.Total)

	if a.Total == 0 {
		fmt.Fprintf(&b, "Gesamturteil: %s\n", a.Verdict)
		return b.String()
	}

	fmt.Fprintf(&b, "Durchschnittlicher Score: %.1f/100\n", a.AverageScore)
	fmt.Fprintf(&b, "MDK-bereit: %d/%d (%.0f%%)\n", a.ReadyCount, a.Total, a.ReadyRatio*100)

	if len(a.RuleStats) > 0 {
		b.WriteString("\nDVA-COMPLIANCE:\n")
		for _, stat := range a.RuleStats {
			fmt.Fprintf(&b, "  [%s] %s %s: %d/%d (%.0f%%)\n",
				ruleBand(stat.Ratio), stat.RuleID, stat.Title,
				stat.Resolved, stat.Applicable, stat.Ratio*100)
		}
	}

	if len(a.OpenRecords) > 0 {
		b.WriteString("\nOFFENE PUNKTE:\n")
		for _, record := range a.OpenRecords {
			fmt.Fprintf(&b, "  %s (%s):\n", record.SubjectName, record.SubjectID)
			for _, issue := range record.Issues {
				fmt.Fprintf(&b, "    - [%s] %s\n", strings.ToUpper(issue.Severity.String()), issue.Message)
			}
		}
	}

	fmt.Fprintf(&b, "\nGesamturteil: %s\n", a.Verdict)
	return b.String()
}
