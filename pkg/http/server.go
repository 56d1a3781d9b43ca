// Package http exposes the intake engine over a JSON API, a live alert
// WebSocket feed and the usual health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/database"
	"careintake-server/pkg/errors"
	"careintake-server/pkg/export"
	"careintake-server/pkg/messaging"
	"careintake-server/pkg/metrics"
	"careintake-server/pkg/safecare"
)

// Server is the HTTP API server. Repository may be nil when persistence is
// disabled; the storage endpoints then answer 503.
type Server struct {
	config     *Config
	logger     *logrus.Logger
	httpServer *http.Server
	mux        *http.ServeMux
	startTime  time.Time

	engine     *assessment.Engine
	classifier *safecare.Classifier
	smartcopy  *export.SmartCopy
	repo       *database.Repository
	publisher  messaging.EventPublisher
	hub        *AlertHub
}

// NewServer wires the API. The alert hub is started by Start.
func NewServer(logger *logrus.Logger, config *Config, engine *assessment.Engine, classifier *safecare.Classifier, repo *database.Repository, publisher messaging.EventPublisher) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	server := &Server{
		config:     config,
		logger:     logger,
		startTime:  time.Now(),
		engine:     engine,
		classifier: classifier,
		smartcopy:  export.NewSmartCopy(logger),
		repo:       repo,
		publisher:  publisher,
		hub:        NewAlertHub(logger),
	}

	mux := http.NewServeMux()
	server.mux = mux

	mux.HandleFunc("GET /health", server.healthHandler)
	mux.HandleFunc("GET /health/live", server.livenessHandler)
	mux.HandleFunc("GET /health/ready", server.readinessHandler)
	mux.HandleFunc("GET /status", server.statusHandler)

	if config.EnableMetrics {
		if registry := metrics.GetRegistry(); registry != nil {
			mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
				EnableOpenMetrics: true,
				Registry:          registry,
			}))
			logger.Info("Prometheus metrics endpoint enabled at /metrics")
		}
	}

	mux.HandleFunc("POST /api/assessments", server.createAssessmentHandler)
	mux.HandleFunc("GET /api/assessments", server.listAssessmentsHandler)
	mux.HandleFunc("GET /api/assessments/{id}", server.getAssessmentHandler)
	mux.HandleFunc("DELETE /api/assessments/{id}", server.deleteAssessmentHandler)
	mux.HandleFunc("POST /api/assessments/{id}/export", server.exportAssessmentHandler)
	mux.HandleFunc("GET /api/exports/csv", server.exportCSVHandler)
	mux.HandleFunc("GET /api/audit-report", server.auditReportHandler)
	mux.HandleFunc("GET /api/statistics", server.statisticsHandler)
	mux.HandleFunc("POST /api/incidents/classify", server.classifyIncidentHandler)
	mux.HandleFunc("GET /ws/alerts", server.hub.ServeHTTP)

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server
}

// Start runs the alert hub and the listener in background goroutines.
func (s *Server) Start() {
	go s.hub.Run()

	s.logger.WithField("port", s.config.Port).Info("Starting HTTP server")
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server failed")
		}
	}()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	s.hub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Hub returns the live alert hub.
func (s *Server) Hub() *AlertHub {
	return s.hub
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("Failed to encode HTTP response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	errors.WriteError(w, err)
	s.logger.WithError(err).Warn("HTTP error response sent")
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).String(),
		"started_at": s.startTime.Format(time.RFC3339),
		"database":   s.repo != nil,
		"messaging":  s.publisher.IsConnected(),
	})
}
