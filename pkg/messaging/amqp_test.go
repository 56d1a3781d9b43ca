package messaging

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/errors"
	"careintake-server/pkg/safecare"
)

func testAMQPClient(config AMQPConfig) *AMQPClient {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAMQPClient(config, logger)
}

func TestDefaultAMQPConfig(t *testing.T) {
	config := DefaultAMQPConfig()

	assert.Empty(t, config.URL)
	assert.Equal(t, "careintake.events", config.Exchange)
	assert.Equal(t, "assessment.completed", config.AssessmentKey)
	assert.Equal(t, "violence.alert", config.ViolenceAlertKey)
	assert.Equal(t, 5*time.Second, config.ReconnectInterval)
	assert.Equal(t, 10, config.MaxReconnects)
}

func TestConnectWithoutURLDisablesMessaging(t *testing.T) {
	client := testAMQPClient(DefaultAMQPConfig())

	require.NoError(t, client.Connect())
	assert.False(t, client.IsConnected())
}

func TestPublishWhileDisconnected(t *testing.T) {
	client := testAMQPClient(DefaultAMQPConfig())

	err := client.PublishAssessment(&assessment.AssessmentResult{ID: "a-1"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrPublishFailure))

	err = client.PublishViolenceAlert(safecare.ViolenceAlert{}, "P-001")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrPublishFailure))
}

func TestDisconnectIsSafeWithoutConnection(t *testing.T) {
	client := testAMQPClient(DefaultAMQPConfig())
	require.NoError(t, client.Connect())
	client.Disconnect()
	assert.False(t, client.IsConnected())
}

func TestNoopPublisher(t *testing.T) {
	var publisher EventPublisher = NoopPublisher{}

	assert.NoError(t, publisher.Connect())
	assert.False(t, publisher.IsConnected())
	assert.NoError(t, publisher.PublishAssessment(&assessment.AssessmentResult{}))
	assert.NoError(t, publisher.PublishViolenceAlert(safecare.ViolenceAlert{}, "P-001"))
	publisher.Disconnect()
}
