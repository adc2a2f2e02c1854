// Package match evaluates name filters against object base names.
//
// Listings are filtered on the base name (the last '/'-delimited segment of
// the object key), not the full key: the prefix already constrains the key,
// and storefront callers think in file names.
package match

import (
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter errors.
var (
	// ErrInvalidPattern is returned when a glob pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Config configures a name filter.
type Config struct {
	// Contains is a plain substring that the base name must contain.
	// Empty means no substring constraint. Surrounding whitespace is ignored.
	Contains string

	// Pattern is an optional doublestar glob applied to the base name,
	// e.g. "*.csv" or "2025-08-*_??.csv". Empty means no glob constraint.
	Pattern string
}

// Filter evaluates whether an object base name passes the configured criteria.
//
// A Filter is safe for concurrent use after creation.
type Filter struct {
	contains string
	pattern  string
}

// New compiles a Filter from the given configuration.
//
// Returns a PatternError if the glob pattern is invalid.
func New(cfg Config) (*Filter, error) {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, &PatternError{Pattern: cfg.Pattern, Err: ErrInvalidPattern}
	}

	return &Filter{
		contains: strings.TrimSpace(cfg.Contains),
		pattern:  pattern,
	}, nil
}

// Match returns true if name passes both the substring and glob criteria.
// An empty filter matches everything.
func (f *Filter) Match(name string) bool {
	if f.contains != "" && !strings.Contains(name, f.contains) {
		return false
	}
	if f.pattern != "" {
		// Pattern validity was checked in New; MatchUnvalidated avoids
		// recompiling per object.
		if !doublestar.MatchUnvalidated(f.pattern, name) {
			return false
		}
	}
	return true
}

// Empty returns true if the filter has no criteria.
func (f *Filter) Empty() bool {
	return f.contains == "" && f.pattern == ""
}

// BaseName returns the last '/'-delimited segment of an object key.
func BaseName(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// IsDirMarker reports whether a key is a directory placeholder
// (a zero-byte object whose key ends in '/').
func IsDirMarker(key string) bool {
	return strings.HasSuffix(key, "/")
}
