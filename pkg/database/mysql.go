package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// MySQLConfig holds MySQL connection configuration
type MySQLConfig struct {
	Host            string
	Port            int
	Database        string
	Username        string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SSLMode         string
	Charset         string
	ParseTime       bool
	Loc             string
}

// MySQLDatabase represents a MySQL database connection
type MySQLDatabase struct {
	db     *sql.DB
	config MySQLConfig
	logger *logrus.Logger
}

// NewMySQLDatabase creates a new MySQL database connection
func NewMySQLDatabase(config MySQLConfig, logger *logrus.Logger) (*MySQLDatabase, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
		config.Charset,
		config.ParseTime,
		config.Loc,
	)

	if config.SSLMode != "" {
		dsn += "&tls=" + config.SSLMode
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	mysql := &MySQLDatabase{
		db:     db,
		config: config,
		logger: logger,
	}

	logger.WithFields(logrus.Fields{
		"host":     config.Host,
		"port":     config.Port,
		"database": config.Database,
	}).Info("Connected to MySQL database")

	return mysql, nil
}

// Close closes the database connection
func (m *MySQLDatabase) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Health checks database health
func (m *MySQLDatabase) Health() error {
	ctx, cancel := m.getContext()
	defer cancel()

	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Migrate runs database migrations
func (m *MySQLDatabase) Migrate() error {
	migrations := []string{
		createAssessmentsTable,
		createFindingsTable,
		createAlertsTable,
		createChecksTable,
		createModulesTable,
		createInfoEntriesTable,
	}

	for i, migration := range migrations {
		ctx, cancel := m.getContext()
		_, err := m.db.ExecContext(ctx, migration)
		cancel()
		if err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	m.logger.Info("Database migrations completed")
	return nil
}

func (m *MySQLDatabase) getContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// One admission per subject and admission date; re-analysis of the same
// admission must go through delete-and-save, not silent overwrite.
const createAssessmentsTable = `
CREATE TABLE IF NOT EXISTS assessments (
	id CHAR(36) PRIMARY KEY,
	subject_id VARCHAR(64) NOT NULL,
	subject_name VARCHAR(255) NOT NULL DEFAULT '',
	admitted_at DATE NOT NULL,
	author VARCHAR(255) NOT NULL DEFAULT '',
	note MEDIUMTEXT,
	overall_compliance VARCHAR(32) NOT NULL,
	review_required BOOLEAN NOT NULL DEFAULT FALSE,
	reviewer_name VARCHAR(255) NOT NULL DEFAULT '',
	review_date DATETIME NULL,
	compliance_score DOUBLE NOT NULL DEFAULT 0,
	audit_ready BOOLEAN NOT NULL DEFAULT FALSE,
	issues JSON,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_subject_admission (subject_id, admitted_at),
	KEY idx_assessments_subject (subject_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createFindingsTable = `
CREATE TABLE IF NOT EXISTS risk_findings (
	id CHAR(36) PRIMARY KEY,
	assessment_id CHAR(36) NOT NULL,
	position INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	level VARCHAR(16) NOT NULL,
	evidence TEXT,
	recommended_action TEXT,
	deadline_hours INT NOT NULL DEFAULT 0,
	policy_rule_id VARCHAR(16) NOT NULL DEFAULT '',
	status VARCHAR(32) NOT NULL,
	coercion_phrase VARCHAR(255) NOT NULL DEFAULT '',
	remediated BOOLEAN NOT NULL DEFAULT FALSE,
	FOREIGN KEY (assessment_id) REFERENCES assessments(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createAlertsTable = `
CREATE TABLE IF NOT EXISTS coercion_alerts (
	id CHAR(36) PRIMARY KEY,
	assessment_id CHAR(36) NOT NULL,
	position INT NOT NULL,
	detected_phrase VARCHAR(255) NOT NULL,
	citation VARCHAR(255) NOT NULL,
	severity VARCHAR(16) NOT NULL,
	immediate_actions JSON,
	alternatives JSON,
	deadline_hours INT NOT NULL DEFAULT 24,
	documentation JSON,
	authorization_present BOOLEAN NOT NULL DEFAULT FALSE,
	authorization_date DATETIME NULL,
	FOREIGN KEY (assessment_id) REFERENCES assessments(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createChecksTable = `
CREATE TABLE IF NOT EXISTS policy_checks (
	id CHAR(36) PRIMARY KEY,
	assessment_id CHAR(36) NOT NULL,
	position INT NOT NULL,
	rule_id VARCHAR(16) NOT NULL,
	title VARCHAR(255) NOT NULL,
	compliant BOOLEAN NOT NULL DEFAULT FALSE,
	findings JSON,
	required_actions JSON,
	responsible VARCHAR(255) NOT NULL DEFAULT '',
	deadline DATETIME NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	FOREIGN KEY (assessment_id) REFERENCES assessments(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createModulesTable = `
CREATE TABLE IF NOT EXISTS capability_modules (
	id CHAR(36) PRIMARY KEY,
	assessment_id CHAR(36) NOT NULL,
	position INT NOT NULL,
	module_id INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	points INT NOT NULL DEFAULT 0,
	max_points INT NOT NULL DEFAULT 0,
	category VARCHAR(32) NOT NULL,
	matched_keywords JSON,
	FOREIGN KEY (assessment_id) REFERENCES assessments(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createInfoEntriesTable = `
CREATE TABLE IF NOT EXISTS info_entries (
	id CHAR(36) PRIMARY KEY,
	assessment_id CHAR(36) NOT NULL,
	position INT NOT NULL,
	topic INT NOT NULL,
	title VARCHAR(255) NOT NULL,
	text TEXT,
	risks JSON,
	resources JSON,
	preference VARCHAR(255) NOT NULL DEFAULT '',
	planned_measures JSON,
	FOREIGN KEY (assessment_id) REFERENCES assessments(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
