// Package output provides JSONL output for one-off CLI listings.
//
// Output is structured as typed record envelopes. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: shelfd.<type>.v<version>
const (
	// TypeFile identifies signed file listing records.
	TypeFile = "shelfd.file.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "shelfd.summary.v1"

	// TypeError identifies error records.
	TypeError = "shelfd.error.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line contains a Record with a type-specific payload in the Data
// field. The type field determines how to interpret the payload.
type Record struct {
	// Type identifies the record type (e.g., "shelfd.file.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this listing run.
	JobID string `json:"job_id"`

	// Provider identifies the storage provider (e.g., "s3").
	Provider string `json:"provider"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// FileRecord is the data payload for a single listed file.
type FileRecord struct {
	// Name is the base file name (last path segment).
	Name string `json:"name"`

	// Path is the full object key in the bucket.
	Path string `json:"path"`

	// SizeBytes is the object size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// SignedURL is the time-limited download URL.
	SignedURL string `json:"signed_url"`

	// Updated is the provider-reported modification time (RFC3339),
	// empty when unknown.
	Updated string `json:"updated,omitempty"`
}

// SummaryRecord is the data payload for the final summary line.
type SummaryRecord struct {
	// Mode is the listing variant ("daily" or "prefix").
	Mode string `json:"mode"`

	// Date is the resolved date for daily listings.
	Date string `json:"date,omitempty"`

	// Prefix is the queried prefix for prefix listings.
	Prefix string `json:"prefix,omitempty"`

	// Count is the number of matching objects before truncation.
	Count int `json:"count"`

	// Returned is the number of files actually emitted.
	Returned int `json:"returned"`

	// Duration is the wall-clock listing time.
	Duration time.Duration `json:"duration_ns"`
}

// ErrorRecord is the data payload for errors.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Prefix is the prefix being listed when the error occurred.
	Prefix string `json:"prefix,omitempty"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps output write failures with the failing operation.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return "output " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
