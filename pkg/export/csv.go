package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/errors"
)

// Fixed column layouts of the supported target systems. Column names and
// order are part of the import contracts and must not change.
var (
	dm7Columns = []string{
		"PatientenID", "Name", "Vorname", "Geburtsdatum", "Aufnahmedatum",
		"Aufgenommen_durch", "Pflegegrad",
		"RIA_Sturzrisiko", "RIA_Dekubitus", "RIA_Ernaehrung", "RIA_Medikamente",
		"FEM_vorhanden", "FEM_Typ", "FEM_Beschluss",
		"DVA_Compliance", "Compliance_Score", "MDK_Ready",
		"Themenfeld_1", "Themenfeld_2", "Themenfeld_3",
		"Themenfeld_4", "Themenfeld_5", "Themenfeld_6",
		"Bemerkungen",
	}

	vivendiColumns = []string{
		"Bewohner_ID", "Nachname", "Vorname", "Aufnahmedatum", "Bezugspflegekraft",
		"SIS_Themenfeld_1", "SIS_Themenfeld_2", "SIS_Themenfeld_3",
		"SIS_Themenfeld_4", "SIS_Themenfeld_5", "SIS_Themenfeld_6",
		"Risiko_Sturz", "Risiko_Dekubitus", "Risiko_Ernaehrung",
		"FEM_Status", "FEM_Richterbeschluss", "DVA_offen", "Gesamtstatus",
	}

	medifoxColumns = []string{
		"ID", "Name", "Aufnahme", "PG", "Risiken", "Maßnahmen", "FEM", "Status",
	}
)

// utf8BOM is prepended to the DM7 file; its import expects Excel-style
// UTF-8 signatures.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the batch in the column layout of the given format. The
// separator is a semicolon for all layouts. Results are read-only.
func WriteCSV(w io.Writer, format Format, results []*assessment.AssessmentResult) error {
	switch format {
	case FormatDM7:
		if _, err := w.Write(utf8BOM); err != nil {
			return errors.Wrap(err, "writing BOM")
		}
		return writeRows(w, dm7Columns, results, dm7Row)
	case FormatVivendi:
		return writeRows(w, vivendiColumns, results, vivendiRow)
	case FormatMedifox:
		return writeRows(w, medifoxColumns, results, medifoxRow)
	default:
		return errors.NewUnknownCategory(format.String()).WithField("enum", "export_format")
	}
}

func writeRows(w io.Writer, columns []string, results []*assessment.AssessmentResult, row func(*assessment.AssessmentResult) ([]string, error)) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(columns); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}

	for _, result := range results {
		record, err := row(result)
		if err != nil {
			return err
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "writing CSV row").WithField("assessment_id", result.ID)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flushing CSV")
	}
	return nil
}

// splitSubjectName splits "Nachname, Vorname" or "Vorname Nachname" into
// its parts. Single-token names go into the surname column.
func splitSubjectName(full string) (surname, firstName string) {
	if before, after, found := strings.Cut(full, ","); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	fields := strings.Fields(full)
	if len(fields) < 2 {
		return full, ""
	}
	return fields[len(fields)-1], strings.Join(fields[:len(fields)-1], " ")
}

func hasFinding(r *assessment.AssessmentResult, names ...string) bool {
	for _, finding := range r.Findings {
		for _, name := range names {
			if finding.Name == name {
				return true
			}
		}
	}
	return false
}

func hasCheck(r *assessment.AssessmentResult, ruleID string) bool {
	for _, check := range r.Checks {
		if check.RuleID == ruleID {
			return true
		}
	}
	return false
}

func hasTopic(r *assessment.AssessmentResult, topic int) string {
	for _, entry := range r.InfoEntries {
		if entry.Topic == topic {
			return "X"
		}
	}
	return ""
}

func allAlertsAuthorized(r *assessment.AssessmentResult) bool {
	if len(r.Alerts) == 0 {
		return false
	}
	for _, alert := range r.Alerts {
		if !alert.AuthorizationPresent {
			return false
		}
	}
	return true
}

func openCheckCount(r *assessment.AssessmentResult) int {
	open := 0
	for _, check := range r.Checks {
		if !check.Compliant && !check.Completed {
			open++
		}
	}
	return open
}

func dm7Row(r *assessment.AssessmentResult) ([]string, error) {
	surname, firstName := splitSubjectName(r.SubjectName)

	femType := ""
	if len(r.Alerts) > 0 {
		femType = r.Alerts[0].DetectedPhrase
	}

	// Geburtsdatum and Pflegegrad live in the care record, not in the
	// admission note; the columns stay empty for the importer to fill.
	return []string{
		r.SubjectID,
		surname,
		firstName,
		"",
		r.AdmittedAt.Format("02.01.2006"),
		r.Author,
		"",
		yesNo(hasFinding(r, "Sturz")),
		yesNo(hasFinding(r, "Dekubitus")),
		yesNo(hasFinding(r, "Mangelernährung", "Exsikkose")),
		yesNo(hasCheck(r, "DVA-003")),
		yesNo(len(r.Alerts) > 0),
		femType,
		yesNo(allAlertsAuthorized(r)),
		checkRatio(r),
		fmt.Sprintf("%.1f", r.ComplianceScore),
		yesNo(r.AuditReady),
		hasTopic(r, 1),
		hasTopic(r, 2),
		hasTopic(r, 3),
		hasTopic(r, 4),
		hasTopic(r, 5),
		hasTopic(r, 6),
		"",
	}, nil
}

func vivendiRow(r *assessment.AssessmentResult) ([]string, error) {
	surname, firstName := splitSubjectName(r.SubjectName)

	overall, err := complianceLabel(r.OverallCompliance)
	if err != nil {
		return nil, err
	}

	return []string{
		r.SubjectID,
		surname,
		firstName,
		r.AdmittedAt.Format("02.01.2006"),
		r.Author,
		hasTopic(r, 1),
		hasTopic(r, 2),
		hasTopic(r, 3),
		hasTopic(r, 4),
		hasTopic(r, 5),
		hasTopic(r, 6),
		yesNo(hasFinding(r, "Sturz")),
		yesNo(hasFinding(r, "Dekubitus")),
		yesNo(hasFinding(r, "Mangelernährung", "Exsikkose")),
		yesNo(len(r.Alerts) > 0),
		yesNo(allAlertsAuthorized(r)),
		fmt.Sprintf("%d", openCheckCount(r)),
		overall,
	}, nil
}

func medifoxRow(r *assessment.AssessmentResult) ([]string, error) {
	risks := make([]string, 0, len(r.Findings))
	actions := make([]string, 0, len(r.Checks))
	for _, finding := range r.Findings {
		risks = append(risks, finding.Name)
	}
	for _, check := range r.Checks {
		actions = append(actions, check.Title)
	}

	overall, err := complianceLabel(r.OverallCompliance)
	if err != nil {
		return nil, err
	}

	return []string{
		r.SubjectID,
		r.SubjectName,
		r.AdmittedAt.Format("02.01.2006"),
		"",
		strings.Join(risks, ", "),
		strings.Join(actions, ", "),
		yesNo(len(r.Alerts) > 0),
		overall,
	}, nil
}
