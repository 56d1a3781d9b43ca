package messaging

import (
	"careintake-server/pkg/assessment"
	"careintake-server/pkg/safecare"
)

// EventPublisher distributes analysis results to downstream consumers.
// Implementations must be safe for concurrent use and must degrade to
// no-ops when disconnected; analysis never fails because publishing does.
type EventPublisher interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	PublishAssessment(result *assessment.AssessmentResult) error
	PublishViolenceAlert(alert safecare.ViolenceAlert, subjectID string) error
}

// NoopPublisher is used when messaging is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Connect() error { return nil }
func (NoopPublisher) Disconnect() {}
func (NoopPublisher) IsConnected() bool { return false }
func (NoopPublisher) PublishAssessment(*assessment.AssessmentResult) error { return nil }
func (NoopPublisher) PublishViolenceAlert(safecare.ViolenceAlert, string) error {
	return nil
}
