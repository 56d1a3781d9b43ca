package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/errors"
)

// AssessmentRow is the parent table row. List-valued fields of the domain
// types live in child tables or JSON columns; enum fields are stored by
// label.
type AssessmentRow struct {
	ID                string       `db:"id" json:"id"`
	SubjectID         string       `db:"subject_id" json:"subject_id"`
	SubjectName       string       `db:"subject_name" json:"subject_name"`
	AdmittedAt        time.Time    `db:"admitted_at" json:"admitted_at"`
	Author            string       `db:"author" json:"author"`
	Note              string       `db:"note" json:"note"`
	OverallCompliance string       `db:"overall_compliance" json:"overall_compliance"`
	ReviewRequired    bool         `db:"review_required" json:"review_required"`
	ReviewerName      string       `db:"reviewer_name" json:"reviewer_name"`
	ReviewDate        sql.NullTime `db:"review_date" json:"review_date"`
	ComplianceScore   float64      `db:"compliance_score" json:"compliance_score"`
	AuditReady        bool         `db:"audit_ready" json:"audit_ready"`
	IssuesJSON        string       `db:"issues" json:"issues"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`
}

// Statistics is the aggregate view over all stored assessments.
type Statistics struct {
	Total          int     `json:"total"`
	AuditReady     int     `json:"audit_ready"`
	ReadyRatio     float64 `json:"ready_ratio"`
	CoercionAlerts int     `json:"coercion_alerts"`
	AverageScore   float64 `json:"average_score"`
}

func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding JSON column")
	}
	return string(data), nil
}

func decodeJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return errors.Wrap(err, "decoding JSON column")
	}
	return nil
}

// toAssessmentRow flattens the scalar part of a result.
func toAssessmentRow(r *assessment.AssessmentResult, now time.Time) (AssessmentRow, error) {
	issues, err := encodeJSON(r.Issues)
	if err != nil {
		return AssessmentRow{}, err
	}

	row := AssessmentRow{
		ID:                r.ID,
		SubjectID:         r.SubjectID,
		SubjectName:       r.SubjectName,
		AdmittedAt:        r.AdmittedAt,
		Author:            r.Author,
		Note:              r.Note,
		OverallCompliance: r.OverallCompliance.String(),
		ReviewRequired:    r.ReviewRequired,
		ReviewerName:      r.ReviewerName,
		ComplianceScore:   r.ComplianceScore,
		AuditReady:        r.AuditReady,
		IssuesJSON:        issues,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         now,
	}
	if r.ReviewDate != nil {
		row.ReviewDate = sql.NullTime{Time: *r.ReviewDate, Valid: true}
	}
	return row, nil
}

// fromAssessmentRow restores the scalar part of a result; child rows are
// attached by the repository.
func fromAssessmentRow(row AssessmentRow) (*assessment.AssessmentResult, error) {
	overall, err := assessment.ParseComplianceStatus(row.OverallCompliance)
	if err != nil {
		return nil, err
	}

	result := &assessment.AssessmentResult{
		ID:                row.ID,
		SubjectID:         row.SubjectID,
		SubjectName:       row.SubjectName,
		AdmittedAt:        row.AdmittedAt,
		Author:            row.Author,
		Note:              row.Note,
		OverallCompliance: overall,
		ReviewRequired:    row.ReviewRequired,
		ReviewerName:      row.ReviewerName,
		ComplianceScore:   row.ComplianceScore,
		AuditReady:        row.AuditReady,
		CreatedAt:         row.CreatedAt,
	}
	if row.ReviewDate.Valid {
		reviewDate := row.ReviewDate.Time
		result.ReviewDate = &reviewDate
	}
	if err := decodeJSON(row.IssuesJSON, &result.Issues); err != nil {
		return nil, err
	}
	return result, nil
}
