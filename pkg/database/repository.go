package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/errors"
)

// Repository persists assessment graphs. The parent row and all child rows
// are written in one transaction; child rows keep detection order through
// their position column and cascade-delete with the parent.
type Repository struct {
	db     *MySQLDatabase
	logger *logrus.Entry
}

// NewRepository creates a repository over an open database.
func NewRepository(db *MySQLDatabase, logger *logrus.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.WithField("component", "repository"),
	}
}

// Save stores a full assessment graph. A second save for the same subject
// and admission date returns ErrAssessmentExists; callers decide whether
// to delete and re-save.
func (r *Repository) Save(ctx context.Context, result *assessment.AssessmentResult) error {
	row, err := toAssessmentRow(result, time.Now())
	if err != nil {
		return err
	}

	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assessments (
			id, subject_id, subject_name, admitted_at, author, note,
			overall_compliance, review_required, reviewer_name, review_date,
			compliance_score, audit_ready, issues, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.SubjectID, row.SubjectName, row.AdmittedAt.Format("2006-01-02"),
		row.Author, row.Note, row.OverallCompliance, row.ReviewRequired,
		row.ReviewerName, row.ReviewDate, row.ComplianceScore, row.AuditReady,
		row.IssuesJSON, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return errors.NewAssessmentExists(result.SubjectID, result.AdmittedAt.Format("2006-01-02"))
		}
		return errors.Wrap(err, "inserting assessment").WithField("assessment_id", result.ID)
	}

	if err := r.insertChildren(ctx, tx, result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	r.logger.WithFields(logrus.Fields{
		"assessment_id": result.ID,
		"subject_id":    result.SubjectID,
		"findings":      len(result.Findings),
		"alerts":        len(result.Alerts),
	}).Info("Assessment stored")
	return nil
}

func (r *Repository) insertChildren(ctx context.Context, tx *sql.Tx, result *assessment.AssessmentResult) error {
	for i, finding := range result.Findings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO risk_findings (
				id, assessment_id, position, name, level, evidence,
				recommended_action, deadline_hours, policy_rule_id, status,
				coercion_phrase, remediated
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, i, finding.Name, finding.Level.String(),
			finding.Evidence, finding.RecommendedAction, finding.DeadlineHours,
			finding.PolicyRuleID, finding.Status.String(), finding.CoercionPhrase,
			finding.Remediated,
		)
		if err != nil {
			return errors.Wrap(err, "inserting risk finding").WithField("position", i)
		}
	}

	for i, alert := range result.Alerts {
		actions, err := encodeJSON(alert.ImmediateActions)
		if err != nil {
			return err
		}
		alternatives, err := encodeJSON(alert.Alternatives)
		if err != nil {
			return err
		}
		documentation, err := encodeJSON(alert.Documentation)
		if err != nil {
			return err
		}

		var authDate sql.NullTime
		if alert.AuthorizationDate != nil {
			authDate = sql.NullTime{Time: *alert.AuthorizationDate, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO coercion_alerts (
				id, assessment_id, position, detected_phrase, citation, severity,
				immediate_actions, alternatives, deadline_hours, documentation,
				authorization_present, authorization_date
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, i, alert.DetectedPhrase, alert.Citation,
			alert.Severity.String(), actions, alternatives, alert.DeadlineHours,
			documentation, alert.AuthorizationPresent, authDate,
		)
		if err != nil {
			return errors.Wrap(err, "inserting coercion alert").WithField("position", i)
		}
	}

	for i, check := range result.Checks {
		findings, err := encodeJSON(check.Findings)
		if err != nil {
			return err
		}
		actions, err := encodeJSON(check.RequiredActions)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO policy_checks (
				id, assessment_id, position, rule_id, title, compliant,
				findings, required_actions, responsible, deadline, completed
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, i, check.RuleID, check.Title,
			check.Compliant, findings, actions, check.Responsible,
			check.Deadline, check.Completed,
		)
		if err != nil {
			return errors.Wrap(err, "inserting policy check").WithField("position", i)
		}
	}

	for i, module := range result.Modules {
		keywords, err := encodeJSON(module.MatchedKeywords)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO capability_modules (
				id, assessment_id, position, module_id, name, points,
				max_points, category, matched_keywords
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, i, module.ID, module.Name,
			module.Points, module.MaxPoints, module.Category.String(), keywords,
		)
		if err != nil {
			return errors.Wrap(err, "inserting capability module").WithField("position", i)
		}
	}

	for i, entry := range result.InfoEntries {
		risks, err := encodeJSON(entry.Risks)
		if err != nil {
			return err
		}
		resources, err := encodeJSON(entry.Resources)
		if err != nil {
			return err
		}
		measures, err := encodeJSON(entry.PlannedMeasures)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO info_entries (
				id, assessment_id, position, topic, title, text,
				risks, resources, preference, planned_measures
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, i, entry.Topic, entry.Title,
			entry.Text, risks, resources, entry.Preference, measures,
		)
		if err != nil {
			return errors.Wrap(err, "inserting info entry").WithField("position", i)
		}
	}

	return nil
}

// GetByID loads a full assessment graph.
func (r *Repository) GetByID(ctx context.Context, id string) (*assessment.AssessmentResult, error) {
	var row AssessmentRow
	var issues sql.NullString
	var note sql.NullString

	err := r.db.db.QueryRowContext(ctx, `
		SELECT id, subject_id, subject_name, admitted_at, author, note,
			overall_compliance, review_required, reviewer_name, review_date,
			compliance_score, audit_ready, issues, created_at, updated_at
		FROM assessments WHERE id = ?`, id,
	).Scan(
		&row.ID, &row.SubjectID, &row.SubjectName, &row.AdmittedAt, &row.Author,
		&note, &row.OverallCompliance, &row.ReviewRequired, &row.ReviewerName,
		&row.ReviewDate, &row.ComplianceScore, &row.AuditReady, &issues,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewAssessmentNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading assessment").WithField("assessment_id", id)
	}
	row.Note = note.String
	row.IssuesJSON = issues.String

	result, err := fromAssessmentRow(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) loadChildren(ctx context.Context, result *assessment.AssessmentResult) error {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT name, level, evidence, recommended_action, deadline_hours,
			policy_rule_id, status, coercion_phrase, remediated
		FROM risk_findings WHERE assessment_id = ? ORDER BY position`, result.ID)
	if err != nil {
		return errors.Wrap(err, "loading risk findings")
	}
	defer rows.Close()
	for rows.Next() {
		var finding assessment.RiskFinding
		var level, status string
		if err := rows.Scan(&finding.Name, &level, &finding.Evidence,
			&finding.RecommendedAction, &finding.DeadlineHours,
			&finding.PolicyRuleID, &status, &finding.CoercionPhrase,
			&finding.Remediated); err != nil {
			return errors.Wrap(err, "scanning risk finding")
		}
		if finding.Level, err = assessment.ParseRiskLevel(level); err != nil {
			return err
		}
		if finding.Status, err = assessment.ParseComplianceStatus(status); err != nil {
			return err
		}
		result.Findings = append(result.Findings, finding)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterating risk findings")
	}

	alertRows, err := r.db.db.QueryContext(ctx, `
		SELECT detected_phrase, citation, severity, immediate_actions,
			alternatives, deadline_hours, documentation,
			authorization_present, authorization_date
		FROM coercion_alerts WHERE assessment_id = ? ORDER BY position`, result.ID)
	if err != nil {
		return errors.Wrap(err, "loading coercion alerts")
	}
	defer alertRows.Close()
	for alertRows.Next() {
		var alert assessment.CoercionAlert
		var severity string
		var actions, alternatives, documentation sql.NullString
		var authDate sql.NullTime
		if err := alertRows.Scan(&alert.DetectedPhrase, &alert.Citation,
			&severity, &actions, &alternatives, &alert.DeadlineHours,
			&documentation, &alert.AuthorizationPresent, &authDate); err != nil {
			return errors.Wrap(err, "scanning coercion alert")
		}
		if alert.Severity, err = assessment.ParseRiskLevel(severity); err != nil {
			return err
		}
		if err := decodeJSON(actions.String, &alert.ImmediateActions); err != nil {
			return err
		}
		if err := decodeJSON(alternatives.String, &alert.Alternatives); err != nil {
			return err
		}
		if err := decodeJSON(documentation.String, &alert.Documentation); err != nil {
			return err
		}
		if authDate.Valid {
			date := authDate.Time
			alert.AuthorizationDate = &date
		}
		result.Alerts = append(result.Alerts, alert)
	}
	if err := alertRows.Err(); err != nil {
		return errors.Wrap(err, "iterating coercion alerts")
	}

	checkRows, err := r.db.db.QueryContext(ctx, `
		SELECT rule_id, title, compliant, findings, required_actions,
			responsible, deadline, completed
		FROM policy_checks WHERE assessment_id = ? ORDER BY position`, result.ID)
	if err != nil {
		return errors.Wrap(err, "loading policy checks")
	}
	defer checkRows.Close()
	for checkRows.Next() {
		var check assessment.PolicyCheck
		var findings, actions sql.NullString
		var deadline sql.NullTime
		if err := checkRows.Scan(&check.RuleID, &check.Title, &check.Compliant,
			&findings, &actions, &check.Responsible, &deadline,
			&check.Completed); err != nil {
			return errors.Wrap(err, "scanning policy check")
		}
		if err := decodeJSON(findings.String, &check.Findings); err != nil {
			return err
		}
		if err := decodeJSON(actions.String, &check.RequiredActions); err != nil {
			return err
		}
		if deadline.Valid {
			check.Deadline = deadline.Time
		}
		result.Checks = append(result.Checks, check)
	}
	if err := checkRows.Err(); err != nil {
		return errors.Wrap(err, "iterating policy checks")
	}

	moduleRows, err := r.db.db.QueryContext(ctx, `
		SELECT module_id, name, points, max_points, category, matched_keywords
		FROM capability_modules WHERE assessment_id = ? ORDER BY position`, result.ID)
	if err != nil {
		return errors.Wrap(err, "loading capability modules")
	}
	defer moduleRows.Close()
	for moduleRows.Next() {
		var module assessment.CapabilityModule
		var category string
		var keywords sql.NullString
		if err := moduleRows.Scan(&module.ID, &module.Name, &module.Points,
			&module.MaxPoints, &category, &keywords); err != nil {
			return errors.Wrap(err, "scanning capability module")
		}
		if module.Category, err = assessment.ParseDependencyCategory(category); err != nil {
			return err
		}
		if err := decodeJSON(keywords.String, &module.MatchedKeywords); err != nil {
			return err
		}
		result.Modules = append(result.Modules, module)
	}
	if err := moduleRows.Err(); err != nil {
		return errors.Wrap(err, "iterating capability modules")
	}

	entryRows, err := r.db.db.QueryContext(ctx, `
		SELECT topic, title, text, risks, resources, preference, planned_measures
		FROM info_entries WHERE assessment_id = ? ORDER BY position`, result.ID)
	if err != nil {
		return errors.Wrap(err, "loading info entries")
	}
	defer entryRows.Close()
	for entryRows.Next() {
		var entry assessment.StructuredInfoEntry
		var risks, resources, measures sql.NullString
		if err := entryRows.Scan(&entry.Topic, &entry.Title, &entry.Text,
			&risks, &resources, &entry.Preference, &measures); err != nil {
			return errors.Wrap(err, "scanning info entry")
		}
		if err := decodeJSON(risks.String, &entry.Risks); err != nil {
			return err
		}
		if err := decodeJSON(resources.String, &entry.Resources); err != nil {
			return err
		}
		if err := decodeJSON(measures.String, &entry.PlannedMeasures); err != nil {
			return err
		}
		result.InfoEntries = append(result.InfoEntries, entry)
	}
	if err := entryRows.Err(); err != nil {
		return errors.Wrap(err, "iterating info entries")
	}

	return nil
}

// List returns full assessment graphs ordered by admission date
// descending, with limit/offset pagination.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*assessment.AssessmentResult, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.db.QueryContext(ctx, `
		SELECT id FROM assessments
		ORDER BY admitted_at DESC, created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "listing assessments")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning assessment id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating assessments")
	}

	results := make([]*assessment.AssessmentResult, 0, len(ids))
	for _, id := range ids {
		result, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Delete removes an assessment and, through cascades, all its child rows.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assessment").WithField("assessment_id", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading rows affected")
	}
	if affected == 0 {
		return errors.NewAssessmentNotFound(id)
	}

	r.logger.WithField("assessment_id", id).Info("Assessment deleted")
	return nil
}

// GetStatistics aggregates over all stored assessments.
func (r *Repository) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}

	err := r.db.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(audit_ready), 0),
			COALESCE(AVG(compliance_score), 0)
		FROM assessments`,
	).Scan(&stats.Total, &stats.AuditReady, &stats.AverageScore)
	if err != nil {
		return nil, errors.Wrap(err, "aggregating assessments")
	}

	err = r.db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coercion_alerts`,
	).Scan(&stats.CoercionAlerts)
	if err != nil {
		return nil, errors.Wrap(err, "counting coercion alerts")
	}

	if stats.Total > 0 {
		stats.ReadyRatio = float64(stats.AuditReady) / float64(stats.Total)
	}
	return stats, nil
}
