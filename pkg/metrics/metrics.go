// Package metrics exposes the Prometheus collectors of the service on a
// dedicated registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	// AssessmentsAnalyzed counts analyzed admission notes.
	AssessmentsAnalyzed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "careintake",
		Name:      "assessments_analyzed_total",
		Help:      "Total number of admission notes analyzed",
	})

	// CoercionAlertsDetected counts detected restrictive measures.
	CoercionAlertsDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "careintake",
		Name:      "coercion_alerts_total",
		Help:      "Total number of restrictive measure alerts detected",
	})

	// ComplianceScores observes the score distribution of analyzed notes.
	ComplianceScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "careintake",
		Name:      "compliance_score",
		Help:      "Distribution of compliance scores",
		Buckets:   []float64{10, 25, 50, 75, 85, 90, 95, 100},
	})

	// ViolenceAlerts counts violence classifications by category.
	ViolenceAlerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "careintake",
		Name:      "violence_alerts_total",
		Help:      "Total number of violence classifications by category",
	}, []string{"category"})

	// Exports counts export requests by format and outcome.
	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "careintake",
		Name:      "exports_total",
		Help:      "Total number of export requests by format and status",
	}, []string{"format", "status"})

	// AssessmentsStored counts persisted assessments by outcome.
	AssessmentsStored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "careintake",
		Name:      "assessments_stored_total",
		Help:      "Total number of persisted assessments by outcome",
	}, []string{"status"})
)

// Init registers all collectors exactly once.
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			AssessmentsAnalyzed,
			CoercionAlertsDetected,
			ComplianceScores,
			ViolenceAlerts,
			Exports,
			AssessmentsStored,
		)
		logger.Info("Prometheus metrics registered")
	})
}

// GetRegistry returns the registry, or nil before Init.
func GetRegistry() *prometheus.Registry {
	return registry
}

// RecordAssessment updates the per-analysis collectors.
func RecordAssessment(score float64, alerts int) {
	AssessmentsAnalyzed.Inc()
	ComplianceScores.Observe(score)
	CoercionAlertsDetected.Add(float64(alerts))
}

// RecordViolenceAlert updates the classification counter.
func RecordViolenceAlert(category string) {
	ViolenceAlerts.WithLabelValues(category).Inc()
}
