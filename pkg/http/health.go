package http

import (
	"net/http"
	"time"
)

// healthHandler reports overall service health with component detail.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"engine": "healthy",
	}

	status := "healthy"
	httpStatus := http.StatusOK

	if s.repo != nil {
		components["database"] = "healthy"
	} else {
		components["database"] = "disabled"
	}

	if s.publisher.IsConnected() {
		components["messaging"] = "healthy"
	} else {
		components["messaging"] = "disabled"
	}

	s.writeJSON(w, httpStatus, map[string]interface{}{
		"status":     status,
		"components": components,
		"uptime":     time.Since(s.startTime).String(),
	})
}

// livenessHandler answers as long as the process serves requests.
func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// readinessHandler reports whether the service can take traffic. The
// engine is in-process and always ready; only a configured-but-broken
// database makes the service not ready.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
