// Package errors maps application errors onto the JSON error envelope the
// HTTP surface speaks.
//
// Every failure, from routing to provider errors, is rendered as:
//
//	{"error": {"code": "...", "message": "...", "request_id": "...", "details": {...}}}
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/bluedatahq/shelfd/pkg/match"
	"github.com/bluedatahq/shelfd/pkg/provider"
)

// Error codes used across the HTTP surface.
const (
	CodeInternal             = "INTERNAL_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeProviderError        = "PROVIDER_ERROR"
	CodeStorageNotConfigured = "STORAGE_NOT_CONFIGURED"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
)

// ErrStorageNotConfigured is returned by handlers when no storage bucket is
// configured. It must surface before any provider call is attempted.
var ErrStorageNotConfigured = stderrors.New("storage bucket not configured")

// HTTPErrorResponse is the JSON error envelope.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// HTTPError is the envelope payload.
type HTTPError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ValidationError reports a rejected request parameter.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Param + ": " + e.Message
}

// WriteError renders the envelope with the given status. requestID and
// details may be empty.
func WriteError(w http.ResponseWriter, status int, code, message, requestID string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPError{
			Code:      code,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	})
}

// DetailedError attaches request context (echoed date/prefix) to an error
// so it travels to the envelope without widening handler signatures.
type DetailedError struct {
	Err     error
	Details map[string]any
}

func (e *DetailedError) Error() string { return e.Err.Error() }
func (e *DetailedError) Unwrap() error { return e.Err }

// WithDetails wraps err with envelope details. A nil err returns nil.
func WithDetails(err error, details map[string]any) error {
	if err == nil {
		return nil
	}
	return &DetailedError{Err: err, Details: details}
}

// RespondWithError classifies err and writes the matching envelope.
//
// details carries request context and is merged with any details already
// attached via WithDetails.
func RespondWithError(w http.ResponseWriter, requestID string, err error, details map[string]any) {
	var de *DetailedError
	if stderrors.As(err, &de) {
		if details == nil {
			details = de.Details
		} else {
			for k, v := range de.Details {
				details[k] = v
			}
		}
	}

	status, code := Classify(err)
	WriteError(w, status, code, err.Error(), requestID, details)
}

// Classify maps an error to an HTTP status and envelope code.
func Classify(err error) (int, string) {
	var valErr *ValidationError
	var patErr *match.PatternError
	var provErr *provider.ProviderError

	switch {
	case stderrors.Is(err, ErrStorageNotConfigured):
		return http.StatusInternalServerError, CodeStorageNotConfigured
	case stderrors.As(err, &valErr), stderrors.As(err, &patErr):
		return http.StatusBadRequest, CodeInvalidArgument
	case stderrors.As(err, &provErr):
		return http.StatusInternalServerError, CodeProviderError
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
