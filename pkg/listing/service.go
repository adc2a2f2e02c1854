// Package listing implements the list -> filter -> sort -> truncate -> sign
// pipeline behind the download endpoints.
//
// A Service wraps a single shared provider client and is safe for concurrent
// use; each call is stateless and bounded by a provider timeout.
package listing

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bluedatahq/shelfd/pkg/match"
	"github.com/bluedatahq/shelfd/pkg/provider"
)

// Defaults applied when Config leaves fields zero.
const (
	DefaultLimit           = 100
	DefaultMaxLimit        = 1000
	DefaultSignTTL         = 24 * time.Hour
	DefaultProviderTimeout = 30 * time.Second
)

// Config configures a listing Service.
type Config struct {
	// SignTTL is how long signed download URLs stay valid.
	SignTTL time.Duration

	// ProviderTimeout bounds the provider work (all list pages plus all
	// sign calls) for a single request. Zero uses the default.
	ProviderTimeout time.Duration

	// DefaultLimit is used when a query does not specify a limit.
	DefaultLimit int

	// MaxLimit caps the limit a query may request.
	MaxLimit int

	// PageSize is the provider list page size. Zero uses the provider default.
	PageSize int

	// RateLimit caps outbound provider calls (list pages and sign calls)
	// in requests per second. Zero disables limiting.
	RateLimit float64
}

// Service enumerates bucket objects and attaches signed download URLs.
type Service struct {
	prov    provider.Provider
	signer  provider.URLSigner
	limiter *rate.Limiter
	cfg     Config

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Service over prov.
//
// The provider must implement provider.URLSigner; listings without signed
// URLs are useless to the storefront.
func New(prov provider.Provider, cfg Config) (*Service, error) {
	signer, ok := prov.(provider.URLSigner)
	if !ok {
		return nil, &provider.ProviderError{
			Op:  "New",
			Err: provider.ErrSigningUnsupported,
		}
	}

	if cfg.SignTTL <= 0 {
		cfg.SignTTL = DefaultSignTTL
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Service{
		prov:    prov,
		signer:  signer,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// File is one listed object with its signed download URL.
type File struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SignedURL string `json:"signed_url"`
	Updated   string `json:"updated,omitempty"`
}

// DailyQuery selects objects under a {prefix}{date}/ folder.
type DailyQuery struct {
	// Date is a YYYY-MM-DD string. Empty defaults to the current UTC date.
	// Invalid strings are used verbatim and simply match nothing.
	Date string

	// Prefix is the folder root, normalized to end with '/'.
	Prefix string

	// Filter constrains base names.
	Filter match.Config

	// Limit caps returned files. Zero uses the service default.
	Limit int
}

// DailyResult is the outcome of ListDaily.
type DailyResult struct {
	// Date is the resolved date string (after defaulting).
	Date string

	// Count is the number of objects that matched, before truncation.
	Count int

	// Files is the sorted, truncated, signed listing.
	Files []File
}

// PrefixQuery selects objects under an arbitrary key prefix.
type PrefixQuery struct {
	// Prefix is used verbatim; no trailing-slash normalization.
	Prefix string

	// Filter constrains base names.
	Filter match.Config

	// Limit caps returned files. Zero uses the service default.
	Limit int

	// LatestOnly collapses the result to the single newest object.
	LatestOnly bool
}

// PrefixResult is the outcome of ListByPrefix.
type PrefixResult struct {
	// Prefix echoes the queried prefix.
	Prefix string

	// Count is the number of objects that matched (after the latest-only
	// collapse, before limit truncation).
	Count int

	// Files is the sorted, truncated, signed listing.
	Files []File
}

// ListDaily lists objects under {prefix}{date}/ sorted ascending by name.
func (s *Service) ListDaily(ctx context.Context, q DailyQuery) (*DailyResult, error) {
	filter, err := match.New(q.Filter)
	if err != nil {
		return nil, err
	}

	date := q.Date
	if date == "" {
		date = s.now().UTC().Format("2006-01-02")
	}

	folder := NormalizeFolderPrefix(q.Prefix) + date + "/"

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	entries, err := s.enumerate(ctx, folder, filter)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].name < entries[j].name
	})

	count := len(entries)
	entries = truncate(entries, s.clampLimit(q.Limit))

	// Daily folders carry the date in the path, so the provider timestamp
	// is not echoed in this variant.
	files, err := s.sign(ctx, entries, false)
	if err != nil {
		return nil, err
	}

	return &DailyResult{Date: date, Count: count, Files: files}, nil
}

// ListByPrefix lists objects under a raw prefix sorted newest-first by
// (updated, name). Objects without a provider timestamp sort last among
// equal-update-time peers; name is the tiebreak.
func (s *Service) ListByPrefix(ctx context.Context, q PrefixQuery) (*PrefixResult, error) {
	filter, err := match.New(q.Filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	entries, err := s.enumerate(ctx, q.Prefix, filter)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.updated.Equal(b.updated) {
			return a.updated.After(b.updated)
		}
		return a.name > b.name
	})

	if q.LatestOnly && len(entries) > 1 {
		entries = entries[:1]
	}

	count := len(entries)
	entries = truncate(entries, s.clampLimit(q.Limit))

	files, err := s.sign(ctx, entries, true)
	if err != nil {
		return nil, err
	}

	return &PrefixResult{Prefix: q.Prefix, Count: count, Files: files}, nil
}

// entry is an object that survived filtering, pre-signing.
type entry struct {
	name    string
	key     string
	size    int64
	updated time.Time
}

// enumerate walks every list page under prefix, dropping directory markers
// and names rejected by the filter.
func (s *Service) enumerate(ctx context.Context, prefix string, filter *match.Filter) ([]entry, error) {
	var entries []entry
	token := ""

	for {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		page, err := s.prov.List(ctx, provider.ListOptions{
			Prefix:            prefix,
			ContinuationToken: token,
			MaxKeys:           s.cfg.PageSize,
		})
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Objects {
			if match.IsDirMarker(obj.Key) {
				continue
			}
			name := match.BaseName(obj.Key)
			if !filter.Match(name) {
				continue
			}
			size := obj.Size
			if size < 0 {
				size = 0
			}
			entries = append(entries, entry{
				name:    name,
				key:     obj.Key,
				size:    size,
				updated: obj.LastModified,
			})
		}

		if !page.IsTruncated || page.ContinuationToken == "" {
			return entries, nil
		}
		token = page.ContinuationToken
	}
}

// sign attaches a signed GET URL to every entry.
func (s *Service) sign(ctx context.Context, entries []entry, includeUpdated bool) ([]File, error) {
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		u, err := s.signer.SignGetURL(ctx, e.key, s.cfg.SignTTL)
		if err != nil {
			return nil, err
		}

		f := File{
			Name:      e.name,
			Path:      e.key,
			SizeBytes: e.size,
			SignedURL: u,
		}
		if includeUpdated && !e.updated.IsZero() {
			f.Updated = e.updated.UTC().Format(time.RFC3339)
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// clampLimit applies the default and the cap to a requested limit.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

func truncate(entries []entry, limit int) []entry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// NormalizeFolderPrefix ensures a non-empty folder prefix ends with '/'.
func NormalizeFolderPrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}
