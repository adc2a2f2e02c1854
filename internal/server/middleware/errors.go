package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/bluedatahq/shelfd/internal/errors"
	"github.com/bluedatahq/shelfd/internal/observability"
)

// ErrorResponse is the JSON error envelope written by this package.
type ErrorResponse = apperrors.HTTPErrorResponse

// Recovery converts panics into structured 500 responses.
//
// This is the outermost error boundary: a provider bug or handler panic
// must never terminate a request without a JSON body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.ServerLogger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r.Context())))

				writeErrorResponse(w,
					apperrors.CodeInternal,
					fmt.Sprintf("panic: %v", rec),
					GetRequestID(r.Context()),
					http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ErrorHandler is an alias for Recovery kept for wiring symmetry.
func ErrorHandler(next http.Handler) http.Handler {
	return Recovery(next)
}

// writeErrorResponse writes the standard envelope with the given status.
func writeErrorResponse(w http.ResponseWriter, code, message, requestID string, statusCode int) {
	apperrors.WriteError(w, statusCode, code, message, requestID, nil)
}
