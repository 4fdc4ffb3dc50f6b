package api

import (
	"encoding/json"
	"net/http"

	"github.com/vorlage-dev/vorlage/pkg/schema"
)

// Kind categorizes an error for HTTP status mapping. The kind never reaches
// the wire; clients branch on the stable Code values instead.
type Kind int

const (
	KindUnauthenticated Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
	KindServer
)

// HTTPStatus returns the status code for this error kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Stable error codes. These are part of the public contract: client
// integrations branch on them, so they must not change across versions.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidAPIKey      = "invalid_api_key"
	CodeInvalidSession     = "invalid_session"
	CodeInvalidCredentials = "invalid_email_or_password"
	CodeSessionRequired    = "interactive_session_required"
	CodeValidationFailed   = "validation_failed"
	CodeUnknownKey         = "unknown_key"
	CodeUnknownPost        = "unknown_post"
	CodeEmailTaken         = "email_taken"
	CodeUsernameTaken      = "username_taken"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternal           = "internal_error"
)

// Error is a single client-facing error entry. The Message is advisory and
// localizable; Details identifies the offending resource or field.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`

	kind Kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// Kind returns the status-mapping category.
func (e *Error) Kind() Kind { return e.kind }

// WithDetail returns the error with an added detail entry.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// Unauthenticated builds a credential-rejection error.
func Unauthenticated(code, message string) *Error {
	return &Error{Code: code, Message: message, kind: KindUnauthenticated}
}

// ValidationFailed builds a field-tagged validation error.
func ValidationFailed(field, message string) *Error {
	e := &Error{Code: CodeValidationFailed, Message: message, kind: KindValidation}
	return e.WithDetail("field", field)
}

// NotFound builds a missing-resource error.
func NotFound(code, message string) *Error {
	return &Error{Code: code, Message: message, kind: KindNotFound}
}

// Conflict builds a uniqueness-violation error.
func Conflict(code, message string) *Error {
	return &Error{Code: code, Message: message, kind: KindConflict}
}

// TooManyRequests builds a rate-limit rejection.
func TooManyRequests() *Error {
	return &Error{Code: CodeTooManyRequests, Message: "too many requests", kind: KindRateLimited}
}

// Internal builds a generic server error. Internal detail is logged, never
// sent to the caller.
func Internal() *Error {
	return &Error{Code: CodeInternal, kind: KindServer}
}

// FromViolations converts schema violations into validation errors, one per
// violation, preserving the rule identifier and parameters in the details.
func FromViolations(violations []schema.Violation) []*Error {
	errs := make([]*Error, 0, len(violations))
	for _, v := range violations {
		e := ValidationFailed(v.Field, v.Message).WithDetail("rule", v.Rule)
		for k, p := range v.Params {
			e.WithDetail(k, p)
		}
		errs = append(errs, e)
	}
	return errs
}

// WriteErrors renders errors as the uniform JSON array body. The status code
// comes from the first error's kind; callers group errors of one kind per
// response. Every 4xx and 5xx the server emits goes through here.
func WriteErrors(w http.ResponseWriter, errs ...*Error) {
	if len(errs) == 0 {
		errs = []*Error{Internal()}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errs[0].kind.HTTPStatus())
	json.NewEncoder(w).Encode(errs)
}
