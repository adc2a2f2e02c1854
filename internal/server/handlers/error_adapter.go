// Package handlers implements the HTTP endpoints.
package handlers

import (
	"net/http"

	apperrors "github.com/bluedatahq/shelfd/internal/errors"
	"github.com/bluedatahq/shelfd/internal/server/middleware"
)

// HTTPErrorResponder renders an error to the response writer.
type HTTPErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// httpErrorResponder is the active responder. Tests swap it to observe
// error paths without decoding JSON.
var httpErrorResponder HTTPErrorResponder = defaultErrorResponder

func defaultErrorResponder(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, middleware.GetRequestID(r.Context()), err, nil)
}

// SetHTTPErrorResponder overrides the error responder. Passing nil resets
// to the default.
func SetHTTPErrorResponder(responder HTTPErrorResponder) {
	if responder == nil {
		httpErrorResponder = defaultErrorResponder
		return
	}
	httpErrorResponder = responder
}

// ResetHTTPErrorResponder restores the default responder.
func ResetHTTPErrorResponder() {
	httpErrorResponder = defaultErrorResponder
}

// respondWithError routes an error through the active responder.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
