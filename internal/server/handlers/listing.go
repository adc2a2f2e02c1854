package handlers

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/bluedatahq/shelfd/internal/errors"
	"github.com/bluedatahq/shelfd/pkg/listing"
	"github.com/bluedatahq/shelfd/pkg/match"
)

// Listing serves the download listing endpoints.
//
// svc is nil until storage is configured; every route then answers a
// structured 500 without touching the provider.
type Listing struct {
	svc           *listing.Service
	dailyPrefix   string
	defaultPrefix string
}

// NewListing creates the listing handler set. svc may be nil when no
// bucket is configured.
func NewListing(svc *listing.Service, dailyPrefix, defaultPrefix string) *Listing {
	if dailyPrefix == "" {
		dailyPrefix = "daily/"
	}
	if defaultPrefix == "" {
		defaultPrefix = "csv/"
	}
	return &Listing{
		svc:           svc,
		dailyPrefix:   dailyPrefix,
		defaultPrefix: defaultPrefix,
	}
}

// dailyResponse is the body for /list_daily.
type dailyResponse struct {
	Mode  string         `json:"mode"`
	Date  string         `json:"date"`
	Count int            `json:"count"`
	Files []listing.File `json:"files"`
}

// prefixResponse is the body for /list_by_prefix.
type prefixResponse struct {
	Mode   string         `json:"mode"`
	Prefix string         `json:"prefix"`
	Count  int            `json:"count"`
	Files  []listing.File `json:"files"`
}

// legacyResponse is the body for /list (no mode field, pre-dates the
// mode split).
type legacyResponse struct {
	Date  string         `json:"date"`
	Count int            `json:"count"`
	Files []listing.File `json:"files"`
}

// ListDaily handles GET /list_daily?date&prefix&contains&match&limit.
// Files are stored as {prefix}{date}/NAME and sorted ascending by name.
func (h *Listing) ListDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = h.dailyPrefix
	}

	details := map[string]any{"date": q.Get("date"), "prefix": prefix}

	if h.svc == nil {
		respondWithError(w, r, apperrors.WithDetails(apperrors.ErrStorageNotConfigured, details))
		return
	}

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		respondWithError(w, r, apperrors.WithDetails(err, details))
		return
	}

	res, err := h.svc.ListDaily(r.Context(), listing.DailyQuery{
		Date:   q.Get("date"),
		Prefix: prefix,
		Filter: match.Config{
			Contains: q.Get("contains"),
			Pattern:  q.Get("match"),
		},
		Limit: limit,
	})
	if err != nil {
		respondWithError(w, r, apperrors.WithDetails(err, details))
		return
	}

	writeJSON(w, http.StatusOK, dailyResponse{
		Mode:  "daily",
		Date:  res.Date,
		Count: res.Count,
		Files: emptyToSlice(res.Files),
	})
}

// ListByPrefix handles GET /list_by_prefix?prefix&contains&match&limit&latest.
// The prefix is used verbatim; files are sorted newest-first.
func (h *Listing) ListByPrefix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = h.defaultPrefix
	}

	details := map[string]any{"prefix": prefix}

	if h.svc == nil {
		respondWithError(w, r, apperrors.WithDetails(apperrors.ErrStorageNotConfigured, details))
		return
	}

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		respondWithError(w, r, apperrors.WithDetails(err, details))
		return
	}

	res, err := h.svc.ListByPrefix(r.Context(), listing.PrefixQuery{
		Prefix: prefix,
		Filter: match.Config{
			Contains: q.Get("contains"),
			Pattern:  q.Get("match"),
		},
		Limit:      limit,
		LatestOnly: parseLatest(q.Get("latest")),
	})
	if err != nil {
		respondWithError(w, r, apperrors.WithDetails(err, details))
		return
	}

	writeJSON(w, http.StatusOK, prefixResponse{
		Mode:   "prefix",
		Prefix: res.Prefix,
		Count:  res.Count,
		Files:  emptyToSlice(res.Files),
	})
}

// ListLegacy handles GET /list?date&prefix&contains, the pre-split daily
// listing kept for older storefront deployments.
func (h *Listing) ListLegacy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = h.dailyPrefix
	}

	details := map[string]any{"date": q.Get("date"), "prefix": prefix}

	if h.svc == nil {
		respondWithError(w, r, apperrors.WithDetails(apperrors.ErrStorageNotConfigured, details))
		return
	}

	res, err := h.svc.ListDaily(r.Context(), listing.DailyQuery{
		Date:   q.Get("date"),
		Prefix: prefix,
		Filter: match.Config{Contains: q.Get("contains")},
	})
	if err != nil {
		respondWithError(w, r, apperrors.WithDetails(err, details))
		return
	}

	writeJSON(w, http.StatusOK, legacyResponse{
		Date:  res.Date,
		Count: res.Count,
		Files: emptyToSlice(res.Files),
	})
}

// parseLimit validates an optional limit parameter as a positive integer.
// Empty means "use the service default".
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &apperrors.ValidationError{Param: "limit", Message: "must be a positive integer"}
	}
	return n, nil
}

// parseLatest accepts the truthy spellings the original frontend sends.
func parseLatest(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// emptyToSlice keeps files serializing as [] instead of null.
func emptyToSlice(files []listing.File) []listing.File {
	if files == nil {
		return []listing.File{}
	}
	return files
}
