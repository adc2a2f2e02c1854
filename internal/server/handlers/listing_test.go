package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bluedatahq/shelfd/internal/errors"
	"github.com/bluedatahq/shelfd/pkg/listing"
	"github.com/bluedatahq/shelfd/pkg/provider"
)

// stubProvider serves canned objects filtered by string prefix.
type stubProvider struct {
	objects   []provider.ObjectSummary
	listErr   error
	listCalls int
}

func (s *stubProvider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []provider.ObjectSummary
	for _, obj := range s.objects {
		if len(obj.Key) >= len(opts.Prefix) && obj.Key[:len(opts.Prefix)] == opts.Prefix {
			out = append(out, obj)
		}
	}
	return &provider.ListResult{Objects: out}, nil
}

func (s *stubProvider) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	return nil, &provider.ProviderError{Op: "Head", Key: key, Err: provider.ErrNotFound}
}

func (s *stubProvider) Close() error { return nil }

func (s *stubProvider) SignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func newListingHandler(t *testing.T, prov provider.Provider) *Listing {
	t.Helper()
	svc, err := listing.New(prov, listing.Config{})
	require.NoError(t, err)
	return NewListing(svc, "daily/", "csv/")
}

func doGet(t *testing.T, handler http.HandlerFunc, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func fileNames(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["files"].([]any)
	require.True(t, ok, "files must be an array, got %T", body["files"])
	names := make([]string, 0, len(raw))
	for _, item := range raw {
		file, ok := item.(map[string]any)
		require.True(t, ok)
		names = append(names, file["name"].(string))
	}
	return names
}

func TestListDailySortedAscending(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "daily/2025-08-09/b.csv", Size: 2, LastModified: mustTime(t, "2025-08-09T10:00:00Z")},
		{Key: "daily/2025-08-09/a.csv", Size: 1, LastModified: mustTime(t, "2025-08-09T11:00:00Z")},
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListDaily, "/list_daily", url.Values{"date": {"2025-08-09"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "daily", body["mode"])
	assert.Equal(t, "2025-08-09", body["date"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []string{"a.csv", "b.csv"}, fileNames(t, body))

	// Daily listings never echo the provider timestamp.
	first := body["files"].([]any)[0].(map[string]any)
	_, hasUpdated := first["updated"]
	assert.False(t, hasUpdated)
	assert.Equal(t, "daily/2025-08-09/a.csv", first["path"])
	assert.Equal(t, "https://signed.example/daily/2025-08-09/a.csv", first["signed_url"])
}

func TestListDailyEmptyIsJSONArray(t *testing.T) {
	h := newListingHandler(t, &stubProvider{})

	rec := doGet(t, h.ListDaily, "/list_daily", url.Values{"date": {"2025-08-09"}})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), `"files":[]`)
}

func TestListDailyInvalidLimit(t *testing.T) {
	prov := &stubProvider{}
	h := newListingHandler(t, prov)

	for _, raw := range []string{"0", "-5", "abc", "1.5"} {
		rec := doGet(t, h.ListDaily, "/list_daily", url.Values{"limit": {raw}})
		require.Equal(t, http.StatusBadRequest, rec.Code, "limit=%q", raw)

		var resp apperrors.HTTPErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.CodeInvalidArgument, resp.Error.Code)
	}
	assert.Zero(t, prov.listCalls)
}

func TestListDailyLimitCapsFiles(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "daily/2025-08-09/a.csv"},
		{Key: "daily/2025-08-09/b.csv"},
		{Key: "daily/2025-08-09/c.csv"},
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListDaily, "/list_daily", url.Values{
		"date":  {"2025-08-09"},
		"limit": {"2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, []string{"a.csv", "b.csv"}, fileNames(t, body))
}

func TestListDailyInvalidPattern(t *testing.T) {
	h := newListingHandler(t, &stubProvider{})

	rec := doGet(t, h.ListDaily, "/list_daily", url.Values{"match": {"[bad"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeInvalidArgument, resp.Error.Code)
}

func TestListByPrefixLatestReturnsSingleNewest(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "csv/2025-08-09_06.csv", LastModified: mustTime(t, "2025-08-09T06:05:00Z")},
		{Key: "csv/2025-08-09_07.csv", LastModified: mustTime(t, "2025-08-09T07:05:00Z")},
		{Key: "csv/2025-08-09_08.csv", LastModified: mustTime(t, "2025-08-09T08:05:00Z")},
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListByPrefix, "/list_by_prefix", url.Values{
		"prefix": {"csv/2025-08-09_"},
		"latest": {"1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "prefix", body["mode"])
	assert.Equal(t, "csv/2025-08-09_", body["prefix"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, []string{"2025-08-09_08.csv"}, fileNames(t, body))

	first := body["files"].([]any)[0].(map[string]any)
	assert.Equal(t, "2025-08-09T08:05:00Z", first["updated"])
}

func TestListByPrefixLatestSpellings(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "csv/old.csv", LastModified: mustTime(t, "2025-08-09T06:00:00Z")},
		{Key: "csv/new.csv", LastModified: mustTime(t, "2025-08-09T08:00:00Z")},
	}}
	h := newListingHandler(t, prov)

	for _, spelling := range []string{"1", "true", "yes"} {
		rec := doGet(t, h.ListByPrefix, "/list_by_prefix", url.Values{"latest": {spelling}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"new.csv"}, fileNames(t, decodeBody(t, rec)), "latest=%q", spelling)
	}

	// Anything else is falsy.
	rec := doGet(t, h.ListByPrefix, "/list_by_prefix", url.Values{"latest": {"no"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, fileNames(t, decodeBody(t, rec)), 2)
}

func TestListByPrefixDefaultPrefix(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "csv/a.csv"},
		{Key: "exports/b.csv"},
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListByPrefix, "/list_by_prefix", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "csv/", body["prefix"])
	assert.Equal(t, []string{"a.csv"}, fileNames(t, body))
}

func TestListByPrefixContainsFilter(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "csv/2025-08-09_08.csv"},
		{Key: "csv/2025-08-10_08.csv"},
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListByPrefix, "/list_by_prefix", url.Values{"contains": {"2025-08-09"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, []string{"2025-08-09_08.csv"}, fileNames(t, body))
}

func TestListByPrefixProviderError(t *testing.T) {
	prov := &stubProvider{listErr: &provider.ProviderError{
		Op:       "List",
		Provider: provider.ProviderS3,
		Bucket:   "downloads",
		Err:      provider.ErrAccessDenied,
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListByPrefix, "/list_by_prefix", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeProviderError, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
	assert.Equal(t, "csv/", resp.Error.Details["prefix"])
}

func TestListingRoutesWithoutStorage(t *testing.T) {
	// A nil service means no bucket is configured: every listing route
	// answers a structured 500 without touching any provider.
	h := NewListing(nil, "daily/", "csv/")

	routes := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"list_daily", h.ListDaily},
		{"list_by_prefix", h.ListByPrefix},
		{"list", h.ListLegacy},
	}

	for _, rt := range routes {
		t.Run(rt.name, func(t *testing.T) {
			rec := doGet(t, rt.handler, "/"+rt.name, nil)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var resp apperrors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, apperrors.CodeStorageNotConfigured, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestListLegacyShape(t *testing.T) {
	prov := &stubProvider{objects: []provider.ObjectSummary{
		{Key: "daily/2025-08-09/a.csv", Size: 1},
	}}
	h := newListingHandler(t, prov)

	rec := doGet(t, h.ListLegacy, "/list", url.Values{"date": {"2025-08-09"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "2025-08-09", body["date"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, []string{"a.csv"}, fileNames(t, body))

	// The legacy body predates the mode split.
	_, hasMode := body["mode"]
	assert.False(t, hasMode)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"1", 1, false},
		{"100", 100, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"2.5", 0, true},
	}

	for _, tt := range tests {
		n, err := parseLimit(tt.raw)
		if tt.wantErr {
			require.Error(t, err, "limit=%q", tt.raw)
			var valErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &valErr)
		} else {
			require.NoError(t, err, "limit=%q", tt.raw)
			assert.Equal(t, tt.want, n)
		}
	}
}
