package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/safecare"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboards run on other origins inside the facility network.
		return true
	},
}

// alertMessage is the wire format of the live feed.
type alertMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	SubjectID string      `json:"subject_id"`
	Payload   interface{} `json:"payload"`
}

// AlertHub fans live alerts out to connected WebSocket clients.
type AlertHub struct {
	logger     *logrus.Entry
	clients    map[*alertClient]bool
	register   chan *alertClient
	unregister chan *alertClient
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
}

// NewAlertHub creates a hub; call Run to start the fan-out loop.
func NewAlertHub(logger *logrus.Logger) *AlertHub {
	return &AlertHub{
		logger:     logger.WithField("component", "alert_hub"),
		clients:    make(map[*alertClient]bool),
		register:   make(chan *alertClient),
		unregister: make(chan *alertClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop; it owns the client set.
func (h *AlertHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.WithField("clients", len(h.clients)).Debug("Alert client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, drop it.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and disconnects all clients.
func (h *AlertHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *AlertHub) publish(msg alertMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to encode alert message")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Alert broadcast buffer full, message dropped")
	}
}

// BroadcastCoercionAlerts pushes every coercion alert of a fresh result to
// the feed.
func (h *AlertHub) BroadcastCoercionAlerts(result *assessment.AssessmentResult) {
	for _, alert := range result.Alerts {
		h.publish(alertMessage{
			Type:      "coercion_alert",
			Timestamp: time.Now(),
			SubjectID: result.SubjectID,
			Payload:   alert,
		})
	}
}

// BroadcastViolenceAlert pushes a violence classification to the feed.
func (h *AlertHub) BroadcastViolenceAlert(alert safecare.ViolenceAlert, subjectID string) {
	h.publish(alertMessage{
		Type:      "violence_alert",
		Timestamp: time.Now(),
		SubjectID: subjectID,
		Payload:   alert,
	})
}

// ServeHTTP upgrades the connection and registers the client.
func (h *AlertHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &alertClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// alertClient is one WebSocket subscriber.
type alertClient struct {
	hub  *AlertHub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards client input; the feed is one-way. It exists to
// process control frames and detect closes.
func (c *alertClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *alertClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
