package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"careintake-server/pkg/errors"
	"careintake-server/pkg/export"
	"careintake-server/pkg/metrics"
	"careintake-server/pkg/safecare"
)

// createAssessmentRequest is the analyze-and-optionally-store payload.
type createAssessmentRequest struct {
	Note        string `json:"note"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Author      string `json:"author"`
	Store       bool   `json:"store"`
}

func (s *Server) createAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	var req createAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewInvalidNote("malformed JSON body"))
		return
	}
	if strings.TrimSpace(req.SubjectID) == "" {
		s.writeError(w, errors.NewInvalidNote("subject_id is required"))
		return
	}

	result := s.engine.Analyze(req.Note, req.SubjectID, req.SubjectName, req.Author)
	metrics.RecordAssessment(result.ComplianceScore, len(result.Alerts))

	if req.Store {
		if s.repo == nil {
			s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
			return
		}
		if err := s.repo.Save(r.Context(), result); err != nil {
			metrics.AssessmentsStored.WithLabelValues("error").Inc()
			s.writeError(w, err)
			return
		}
		metrics.AssessmentsStored.WithLabelValues("ok").Inc()
	}

	if err := s.publisher.PublishAssessment(result); err != nil {
		s.logger.WithError(err).Warn("Assessment event not published")
	}
	if len(result.Alerts) > 0 {
		s.hub.BroadcastCoercionAlerts(result)
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) listAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	results, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(results),
		"assessments": results,
	})
}

func (s *Server) getAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	result, err := s.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) deleteAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	if err := s.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		metrics.Exports.WithLabelValues("unknown", "error").Inc()
		s.writeError(w, errors.NewInvalidInput("unknown export format"))
		return
	}

	result, err := s.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	text, err := s.smartcopy.Render(result, format)
	if err != nil {
		metrics.Exports.WithLabelValues(format.String(), "error").Inc()
		s.writeError(w, err)
		return
	}

	metrics.Exports.WithLabelValues(format.String(), "ok").Inc()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"format": format.String(),
		"text":   text,
	})
}

func (s *Server) exportCSVHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		metrics.Exports.WithLabelValues("unknown", "error").Inc()
		s.writeError(w, errors.NewInvalidInput("unknown export format"))
		return
	}

	results, err := s.repo.List(r.Context(), 500, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, format, results); err != nil {
		metrics.Exports.WithLabelValues(format.String(), "error").Inc()
		s.writeError(w, err)
		return
	}

	metrics.Exports.WithLabelValues(format.String(), "ok").Inc()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="assessments_`+format.String()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) auditReportHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	results, err := s.repo.List(r.Context(), 500, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report := export.BuildAuditReport(results, time.Now())
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.Render()))
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.Wrap(errors.ErrUnavailable, "persistence disabled"))
		return
	}

	stats, err := s.repo.GetStatistics(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// classifyIncidentRequest is the violence classification payload. The
// dictation is optional; when present an incident report is built for
// report-worthy classifications.
type classifyIncidentRequest struct {
	Text          string `json:"text"`
	Dictation     string `json:"dictation"`
	SubjectID     string `json:"subject_id"`
	SubjectName   string `json:"subject_name"`
	Reporter      string `json:"reporter"`
	KnownDementia bool   `json:"known_dementia"`
}

type classifyIncidentResponse struct {
	Alert          safecare.ViolenceAlert   `json:"alert"`
	IncidentReport *safecare.IncidentReport `json:"incident_report,omitempty"`
	SupportOptions []safecare.SupportOption `json:"support_options,omitempty"`
}

func (s *Server) classifyIncidentHandler(w http.ResponseWriter, r *http.Request) {
	var req classifyIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewInvalidNote("malformed JSON body"))
		return
	}

	alert := s.classifier.Classify(req.Text, req.KnownDementia)
	metrics.RecordViolenceAlert(alert.Category.String())

	response := classifyIncidentResponse{Alert: alert}
	if alert.OfferSupport {
		response.SupportOptions = safecare.SupportOptionsFor(alert.Type)
	}
	if alert.RequiresIncidentReport {
		dictation := req.Dictation
		if dictation == "" {
			dictation = req.Text
		}
		report := safecare.BuildIncidentReport(alert, dictation, req.Reporter, req.SubjectID, req.SubjectName, time.Now())
		response.IncidentReport = &report

		if err := s.publisher.PublishViolenceAlert(alert, req.SubjectID); err != nil {
			s.logger.WithError(err).Warn("Violence alert not published")
		}
		s.hub.BroadcastViolenceAlert(alert, req.SubjectID)
	}

	s.writeJSON(w, http.StatusOK, response)
}
