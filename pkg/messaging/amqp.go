package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/errors"
	"careintake-server/pkg/safecare"
)

// AMQPConfig holds the publisher configuration. An empty URL disables
// messaging entirely.
type AMQPConfig struct {
	URL               string
	Exchange          string
	AssessmentKey     string
	ViolenceAlertKey  string
	ReconnectInterval time.Duration
	MaxReconnects     int
}

// DefaultAMQPConfig returns the defaults the service starts with.
func DefaultAMQPConfig() AMQPConfig {
	return AMQPConfig{
		Exchange:          "careintake.events",
		AssessmentKey:     "assessment.completed",
		ViolenceAlertKey:  "violence.alert",
		ReconnectInterval: 5 * time.Second,
		MaxReconnects:     10,
	}
}

// AMQPClient publishes analysis events to an AMQP exchange. Publishing is
// best-effort: a disconnected client drops messages and reports the error
// to the caller, which logs and moves on.
type AMQPClient struct {
	config  AMQPConfig
	logger  *logrus.Entry
	conn    *amqp.Connection
	channel *amqp.Channel

	connMutex sync.RWMutex
	connected bool
	done      chan struct{}
}

// NewAMQPClient creates a client; call Connect before publishing.
func NewAMQPClient(config AMQPConfig, logger *logrus.Logger) *AMQPClient {
	return &AMQPClient{
		config: config,
		logger: logger.WithField("component", "amqp"),
		done:   make(chan struct{}),
	}
}

// Connect dials the broker and declares the exchange. On connection loss a
// background loop redials with the configured interval.
func (c *AMQPClient) Connect() error {
	if c.config.URL == "" {
		c.logger.Info("AMQP URL not configured, messaging disabled")
		return nil
	}

	if err := c.dial(); err != nil {
		return err
	}

	go c.monitor()
	return nil
}

func (c *AMQPClient) dial() error {
	conn, err := amqp.Dial(c.config.URL)
	if err != nil {
		return errors.Wrap(err, "dialing AMQP broker")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "opening AMQP channel")
	}

	if err := channel.ExchangeDeclare(
		c.config.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return errors.Wrap(err, "declaring exchange").WithField("exchange", c.config.Exchange)
	}

	c.connMutex.Lock()
	c.conn = conn
	c.channel = channel
	c.connected = true
	c.connMutex.Unlock()

	c.logger.WithField("exchange", c.config.Exchange).Info("Connected to AMQP broker")
	return nil
}

// monitor redials after connection loss until MaxReconnects is exhausted
// or Disconnect is called.
func (c *AMQPClient) monitor() {
	for {
		c.connMutex.RLock()
		conn := c.conn
		c.connMutex.RUnlock()
		if conn == nil {
			return
		}

		closed := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-c.done:
			return
		case amqpErr := <-closed:
			if amqpErr == nil {
				return
			}
			c.logger.WithField("reason", amqpErr.Reason).Warn("AMQP connection lost, reconnecting")
		}

		c.connMutex.Lock()
		c.connected = false
		c.connMutex.Unlock()

		for attempt := 1; c.config.MaxReconnects <= 0 || attempt <= c.config.MaxReconnects; attempt++ {
			select {
			case <-c.done:
				return
			case <-time.After(c.config.ReconnectInterval):
			}

			if err := c.dial(); err != nil {
				c.logger.WithError(err).WithField("attempt", attempt).Warn("AMQP reconnect failed")
				continue
			}
			break
		}

		c.connMutex.RLock()
		reconnected := c.connected
		c.connMutex.RUnlock()
		if !reconnected {
			c.logger.Error("AMQP reconnect attempts exhausted")
			return
		}
	}
}

// Disconnect closes the connection and stops the reconnect loop.
func (c *AMQPClient) Disconnect() {
	close(c.done)

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

// IsConnected reports whether the client can currently publish.
func (c *AMQPClient) IsConnected() bool {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	return c.connected
}

func (c *AMQPClient) publish(routingKey string, payload interface{}) error {
	c.connMutex.RLock()
	channel := c.channel
	connected := c.connected
	c.connMutex.RUnlock()

	if !connected || channel == nil {
		return errors.Wrap(errors.ErrPublishFailure, "not connected").WithField("routing_key", routingKey)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding event payload")
	}

	if err := channel.Publish(
		c.config.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return errors.Wrap(err, "publishing event").WithField("routing_key", routingKey)
	}

	c.logger.WithField("routing_key", routingKey).Debug("Event published")
	return nil
}

// PublishAssessment publishes a completed assessment.
func (c *AMQPClient) PublishAssessment(result *assessment.AssessmentResult) error {
	return c.publish(c.config.AssessmentKey, result)
}

// violenceAlertEvent wraps an alert with its subject for routing.
type violenceAlertEvent struct {
	SubjectID string                 `json:"subject_id"`
	Alert     safecare.ViolenceAlert `json:"alert"`
}

// PublishViolenceAlert publishes a violence classification.
func (c *AMQPClient) PublishViolenceAlert(alert safecare.ViolenceAlert, subjectID string) error {
	return c.publish(c.config.ViolenceAlertKey, violenceAlertEvent{
		SubjectID: subjectID,
		Alert:     alert,
	})
}
