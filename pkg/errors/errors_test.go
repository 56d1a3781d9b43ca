package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Fatal("New() returned nil")
	}

	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("Expected error message to contain 'test error', got: %s", err.Error())
	}

	if err.Location() == "" {
		t.Error("Location should not be empty")
	}
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")
	err := Wrap(baseErr, "wrapped")

	if err == nil {
		t.Fatal("Wrap() returned nil")
	}

	if !strings.Contains(err.Error(), "wrapped") {
		t.Errorf("Expected error message to contain 'wrapped', got: %s", err.Error())
	}

	if !strings.Contains(err.Error(), "base error") {
		t.Errorf("Expected error message to contain 'base error', got: %s", err.Error())
	}

	// Test unwrapping
	unwrapped := errors.Unwrap(err)
	if unwrapped != baseErr {
		t.Errorf("Unwrap() returned wrong error: %v", unwrapped)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(nil, "nothing to wrap"); err != nil {
		t.Errorf("Wrap(nil) should return nil, got: %v", err)
	}
}

func TestWithField(t *testing.T) {
	err := New("test error").WithField("key", "value")

	fields := err.GetFields()
	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}

	if fields["key"] != "value" {
		t.Errorf("Expected field['key'] = 'value', got: %v", fields["key"])
	}
}

func TestWithFields(t *testing.T) {
	fields := map[string]interface{}{
		"key1": "value1",
		"key2": 123,
	}

	err := New("test error").WithFields(fields)

	errFields := err.GetFields()
	if len(errFields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(errFields))
	}

	if errFields["key1"] != "value1" {
		t.Errorf("Expected field['key1'] = 'value1', got: %v", errFields["key1"])
	}

	if errFields["key2"] != 123 {
		t.Errorf("Expected field['key2'] = 123, got: %v", errFields["key2"])
	}
}

func TestErrorIs(t *testing.T) {
	notFoundErr := NewAssessmentNotFound("A-123")
	if !errors.Is(notFoundErr, ErrAssessmentNotFound) {
		t.Error("errors.Is() should return true for ErrAssessmentNotFound")
	}

	// Test with wrapped errors
	wrapped := Wrap(ErrInvalidInput, "wrapped invalid input")
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Error("errors.Is() should return true for wrapped ErrInvalidInput")
	}

	if !IsErrorType(NewInvalidNote("empty"), ErrInvalidNote) {
		t.Error("IsErrorType() should return true for ErrInvalidNote")
	}
}

func TestErrorAs(t *testing.T) {
	err := NewUnknownCategory("mild")

	var structErr *Error
	if !errors.As(err, &structErr) {
		t.Error("errors.As() should successfully cast to *Error")
	}

	if structErr.Code != "UNKNOWN_CATEGORY" {
		t.Errorf("Expected code 'UNKNOWN_CATEGORY', got: %s", structErr.Code)
	}
}

func TestDomainConstructorFields(t *testing.T) {
	notFound := NewAssessmentNotFound("A-123")
	if notFound.GetFields()["assessment_id"] != "A-123" {
		t.Errorf("Expected assessment_id field, got: %v", notFound.GetFields())
	}

	exists := NewAssessmentExists("P-001", "2026-03-14")
	fields := exists.GetFields()
	if fields["subject_id"] != "P-001" || fields["admitted_at"] != "2026-03-14" {
		t.Errorf("Expected subject/admission fields, got: %v", fields)
	}
}

func TestHTTPStatusFromError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"InvalidInput", ErrInvalidInput, http.StatusBadRequest},
		{"Unavailable", Wrap(ErrUnavailable, "persistence disabled"), http.StatusServiceUnavailable},
		{"Unknown", errors.New("unknown"), http.StatusInternalServerError},
		{"AssessmentNotFound", NewAssessmentNotFound("123"), http.StatusNotFound},
		{"AssessmentExists", NewAssessmentExists("P-001", "2025-03-01"), http.StatusConflict},
		{"InvalidNote", NewInvalidNote("empty subject id"), http.StatusBadRequest},
		{"PublishFailure", Wrap(ErrPublishFailure, "broker down"), http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status := HTTPStatusFromError(tc.err)
			if status != tc.expectedStatus {
				t.Errorf("Expected status %d, got: %d", tc.expectedStatus, status)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "StructuredError",
			err:            New("test error").WithField("key", "value"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"message"`,
		},
		{
			name:           "StandardError",
			err:            ErrInvalidNote,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error": "invalid admission note"`,
		},
		{
			name:           "AssessmentNotFound",
			err:            NewAssessmentNotFound("123"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"assessment_id": "123"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			// Check status code
			if rec.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got: %d", tc.expectedStatus, rec.Code)
			}

			// Check content type
			contentType := rec.Header().Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got: %s", contentType)
			}

			// Check response body contains expected strings
			body := rec.Body.String()
			if !strings.Contains(body, tc.expectedBody) {
				t.Errorf("Expected body to contain '%s', got: %s", tc.expectedBody, body)
			}
		})
	}
}
