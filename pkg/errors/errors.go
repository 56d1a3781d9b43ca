package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// General sentinel values
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("service unavailable")

	// Domain-specific sentinel values
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrAssessmentExists   = errors.New("assessment already exists for subject and admission date")
	ErrUnknownCategory    = errors.New("unknown category label")
	ErrInvalidNote        = errors.New("invalid admission note")
	ErrPublishFailure     = errors.New("event publish failed")
)

// Error is a structured error carrying a creation location and
// contextual fields for logging and HTTP responses.
type Error struct {
	original error
	message  string
	fields   map[string]interface{}
	stackPC  uintptr
	file     string
	line     int

	// Code categorizes the error for API clients.
	Code string
}

// New creates a new structured error with the given message.
func New(message string, fields ...map[string]interface{}) *Error {
	pc, file, line, _ := runtime.Caller(1)
	return &Error{
		original: errors.New(message),
		message:  message,
		fields:   firstOrEmpty(fields),
		stackPC:  pc,
		file:     file,
		line:     line,
	}
}

// Wrap wraps an existing error with additional context. A nil err
// yields a nil result.
func Wrap(err error, message string, fields ...map[string]interface{}) *Error {
	if err == nil {
		return nil
	}

	pc, file, line, _ := runtime.Caller(1)
	return &Error{
		original: err,
		message:  message,
		fields:   firstOrEmpty(fields),
		stackPC:  pc,
		file:     file,
		line:     line,
	}
}

func firstOrEmpty(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 && fields[0] != nil {
		return fields[0]
	}
	return make(map[string]interface{})
}

// WithField returns a copy of the error with one extra context field.
func (e *Error) WithField(key string, value interface{}) *Error {
	if e == nil {
		return nil
	}
	return e.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a copy of the error with extra context fields.
func (e *Error) WithFields(fields map[string]interface{}) *Error {
	if e == nil {
		return nil
	}

	result := &Error{
		original: e.original,
		message:  e.message,
		fields:   make(map[string]interface{}, len(e.fields)+len(fields)),
		stackPC:  e.stackPC,
		file:     e.file,
		line:     e.line,
		Code:     e.Code,
	}
	for k, v := range e.fields {
		result.fields[k] = v
	}
	for k, v := range fields {
		result.fields[k] = v
	}
	return result
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil || e.original == nil {
		return ""
	}
	if e.message == "" {
		return e.original.Error()
	}
	return fmt.Sprintf("%s: %v", e.message, e.original)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.original
}

// Location returns the file:line where the error was created.
func (e *Error) Location() string {
	if e == nil {
		return ""
	}
	parts := strings.Split(e.file, "/")
	return fmt.Sprintf("%s:%d", parts[len(parts)-1], e.line)
}

// GetFields returns the error's context fields.
func (e *Error) GetFields() map[string]interface{} {
	if e == nil {
		return nil
	}
	return e.fields
}

// Is reports whether any error in err's tree matches target.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	if errors.Is(e.original, target) {
		return true
	}
	return e == target
}

// AsJSON returns the error in JSON-friendly map format.
func (e *Error) AsJSON() map[string]interface{} {
	if e == nil {
		return nil
	}

	result := map[string]interface{}{
		"message":  e.Error(),
		"location": e.Location(),
	}
	if e.Code != "" {
		result["code"] = e.Code
	}
	if len(e.fields) > 0 {
		result["context"] = e.fields
	}
	return result
}

// sentinel builds a structured error wrapping one of the sentinel
// values above. Caller depth is fixed so Location points at the
// exported constructor's caller.
func sentinel(original error, code, message string, fields []map[string]interface{}) *Error {
	pc, file, line, _ := runtime.Caller(2)
	return &Error{
		original: original,
		message:  message,
		fields:   firstOrEmpty(fields),
		stackPC:  pc,
		file:     file,
		line:     line,
		Code:     code,
	}
}

// NewInvalidInput creates a new ErrInvalidInput error with additional context.
func NewInvalidInput(message string, fields ...map[string]interface{}) *Error {
	return sentinel(ErrInvalidInput, "INVALID_INPUT", message, fields)
}

// NewAssessmentNotFound creates a new ErrAssessmentNotFound with additional context.
func NewAssessmentNotFound(assessmentID string, fields ...map[string]interface{}) *Error {
	err := sentinel(ErrAssessmentNotFound, "ASSESSMENT_NOT_FOUND",
		fmt.Sprintf("assessment not found: %s", assessmentID), fields)
	err.fields["assessment_id"] = assessmentID
	return err
}

// NewAssessmentExists creates a new ErrAssessmentExists with additional context.
func NewAssessmentExists(subjectID, admittedAt string, fields ...map[string]interface{}) *Error {
	err := sentinel(ErrAssessmentExists, "ASSESSMENT_EXISTS",
		fmt.Sprintf("assessment already exists for subject %s admitted %s", subjectID, admittedAt), fields)
	err.fields["subject_id"] = subjectID
	err.fields["admitted_at"] = admittedAt
	return err
}

// NewUnknownCategory creates a new ErrUnknownCategory with additional context.
func NewUnknownCategory(details string, fields ...map[string]interface{}) *Error {
	return sentinel(ErrUnknownCategory, "UNKNOWN_CATEGORY",
		fmt.Sprintf("unknown category label: %s", details), fields)
}

// NewInvalidNote creates a new ErrInvalidNote with additional context.
func NewInvalidNote(details string, fields ...map[string]interface{}) *Error {
	return sentinel(ErrInvalidNote, "INVALID_NOTE",
		fmt.Sprintf("invalid admission note: %s", details), fields)
}

// IsErrorType checks if an error is of a specific error type.
func IsErrorType(err, target error) bool {
	return errors.Is(err, target)
}
