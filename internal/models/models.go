// Package models contains shared domain structs used across services.
package models

import "time"

// IssueType classifies a thermal event.
type IssueType string

const (
	IssueThrottled IssueType = "throttled"
	IssueFailed    IssueType = "failed"
)

// Valid reports whether t is one of the known issue types.
func (t IssueType) Valid() bool {
	return t == IssueThrottled || t == IssueFailed
}

// ThermalEvent is a single GPU thermal occurrence persisted to the
// thermal_events hypertable. The tuple (Node, GPUID, EventTime, IssueType)
// is the natural key: re-ingesting the same tuple is a no-op.
type ThermalEvent struct {
	Node           string     `json:"node"`
	GPUID          string     `json:"gpu_id"`
	EventTime      time.Time  `json:"event_time"`
	IssueType      IssueType  `json:"issue_type"`
	Temperature    *float64   `json:"temperature"`
	AvgTemperature *float64   `json:"avg_temperature"`
	Reason         string     `json:"reason"`
	EventDate      *time.Time `json:"event_date,omitempty"`
	IngestedAt     time.Time  `json:"ingested_at"`
}

// FileResult is the outcome of ingesting a single CSV file.
type FileResult struct {
	Inserted         int `json:"inserted"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Rejected         int `json:"rejected"`
}

// FileReport is a FileResult plus the file-level error, if any, used in
// per-directory result maps. A file-level failure (unreadable file,
// unmappable header, storage loss) sets Error and leaves the counts at
// whatever was committed before the failure.
type FileReport struct {
	FileResult
	Error string `json:"error,omitempty"`
}

// HealthResponse is returned by /healthz and /readyz endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
