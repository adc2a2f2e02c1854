package handlers

import "net/http"

// okResponse is the body for the trivial health probe.
type okResponse struct {
	OK bool `json:"ok"`
}

// indexResponse describes the API for humans poking at the root URL.
type indexResponse struct {
	OK        bool     `json:"ok"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// Ok answers {"ok": true}. Kept dead simple for external uptime monitors.
func Ok(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Index answers usage tips at the root URL.
func Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		OK:      true,
		Message: "bluedata downloads endpoint",
		Endpoints: []string{
			"GET /list_daily?prefix=daily/&date=YYYY-MM-DD (files stored as daily/DATE/...)",
			"GET /list_by_prefix?prefix=csv/2025-08-09_ (files stored as csv/DATE_HH.csv; supports contains, limit, latest=1)",
			"GET /list?date=YYYY-MM-DD (legacy daily listing)",
			"GET /health",
		},
	})
}
