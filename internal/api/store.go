package api

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EventEntry is a single thermal event joined with GPU metadata.
type EventEntry struct {
	Node           string    `json:"node"`
	GPUID          string    `json:"gpu_id"`
	EventTime      time.Time `json:"event_time"`
	IssueType      string    `json:"issue_type"`
	Temperature    *float64  `json:"temperature"`
	AvgTemperature *float64  `json:"avg_temperature"`
	Reason         *string   `json:"reason"`
	IngestedAt     time.Time `json:"ingested_at"`
	Model          *string   `json:"model"`
	Location       *string   `json:"location"`
}

// TypeCount is an event count for one issue type.
type TypeCount struct {
	IssueType string `json:"issue_type"`
	Count     int64  `json:"count"`
}

// GPUCount is an event count for one GPU.
type GPUCount struct {
	GPUID string `json:"gpu_id"`
	Count int64  `json:"count"`
}

// NodeCount is an event count for one node.
type NodeCount struct {
	Node  string `json:"node"`
	Count int64  `json:"count"`
}

// TempStats aggregates the temperature column over the window.
type TempStats struct {
	Average *float64 `json:"average"`
	Maximum *float64 `json:"maximum"`
	Minimum *float64 `json:"minimum"`
}

// SummaryStats is the /api/v1/stats payload.
type SummaryStats struct {
	TotalEvents      int64       `json:"total_events"`
	EventsByType     []TypeCount `json:"events_by_type"`
	TopGPUs          []GPUCount  `json:"top_gpus"`
	EventsByNode     []NodeCount `json:"events_by_node"`
	TemperatureStats TempStats   `json:"temperature_stats"`
}

// GPUInfo describes one GPU in the /api/v1/gpus listing.
type GPUInfo struct {
	GPUID      string     `json:"gpu_id"`
	Node       *string    `json:"node"`
	Model      *string    `json:"model"`
	Location   *string    `json:"location"`
	EventCount int64      `json:"event_count"`
	LastEvent  *time.Time `json:"last_event"`
}

// TimeBucket is one aggregated point in the /api/v1/timeseries payload.
type TimeBucket struct {
	Bucket         time.Time `json:"bucket"`
	EventCount     int64     `json:"event_count"`
	AvgTemperature *float64  `json:"avg_temperature"`
	MaxTemperature *float64  `json:"max_temperature"`
}

// EventFilter narrows event and timeseries queries. Empty fields mean
// "no filter".
type EventFilter struct {
	GPUID     string
	Node      string
	IssueType string
}

// Store provides read-only database access for the reporting API.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListEvents returns events within the window, newest first.
func (s *Store) ListEvents(ctx context.Context, start, end time.Time, filter EventFilter) ([]EventEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryEvents,
		start, end, filter.GPUID, filter.Node, filter.IssueType)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entries []EventEntry
	for rows.Next() {
		var e EventEntry
		if err := rows.Scan(
			&e.Node,
			&e.GPUID,
			&e.EventTime,
			&e.IssueType,
			&e.Temperature,
			&e.AvgTemperature,
			&e.Reason,
			&e.IngestedAt,
			&e.Model,
			&e.Location,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SummaryStats aggregates event counts and temperatures over the window.
func (s *Store) SummaryStats(ctx context.Context, start, end time.Time) (SummaryStats, error) {
	var stats SummaryStats

	err := s.db.QueryRowContext(ctx, queryStatsTotals, start, end).Scan(
		&stats.TotalEvents,
		&stats.TemperatureStats.Average,
		&stats.TemperatureStats.Maximum,
		&stats.TemperatureStats.Minimum,
	)
	if err != nil {
		return stats, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStatsByType, start, end)
	if err != nil {
		return stats, fmt.Errorf("stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.IssueType, &tc.Count); err != nil {
			return stats, fmt.Errorf("scan type count: %w", err)
		}
		stats.EventsByType = append(stats.EventsByType, tc)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	gpuRows, err := s.db.QueryContext(ctx, queryStatsTopGPUs, start, end)
	if err != nil {
		return stats, fmt.Errorf("stats top gpus: %w", err)
	}
	defer gpuRows.Close()
	for gpuRows.Next() {
		var gc GPUCount
		if err := gpuRows.Scan(&gc.GPUID, &gc.Count); err != nil {
			return stats, fmt.Errorf("scan gpu count: %w", err)
		}
		stats.TopGPUs = append(stats.TopGPUs, gc)
	}
	if err := gpuRows.Err(); err != nil {
		return stats, err
	}

	nodeRows, err := s.db.QueryContext(ctx, queryStatsByNode, start, end)
	if err != nil {
		return stats, fmt.Errorf("stats by node: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var nc NodeCount
		if err := nodeRows.Scan(&nc.Node, &nc.Count); err != nil {
			return stats, fmt.Errorf("scan node count: %w", err)
		}
		stats.EventsByNode = append(stats.EventsByNode, nc)
	}
	return stats, nodeRows.Err()
}

// ListGPUs returns distinct GPUs with metadata and event counts.
func (s *Store) ListGPUs(ctx context.Context) ([]GPUInfo, error) {
	rows, err := s.db.QueryContext(ctx, queryGPUs)
	if err != nil {
		return nil, fmt.Errorf("list gpus: %w", err)
	}
	defer rows.Close()

	var gpus []GPUInfo
	for rows.Next() {
		var g GPUInfo
		if err := rows.Scan(
			&g.GPUID,
			&g.Node,
			&g.Model,
			&g.Location,
			&g.EventCount,
			&g.LastEvent,
		); err != nil {
			return nil, fmt.Errorf("scan gpu: %w", err)
		}
		gpus = append(gpus, g)
	}
	return gpus, rows.Err()
}

// TimeSeries buckets events for charting. bucketWidth is a Postgres
// interval literal such as "1 day".
func (s *Store) TimeSeries(ctx context.Context, bucketWidth string, filter EventFilter) ([]TimeBucket, error) {
	rows, err := s.db.QueryContext(ctx, queryTimeseries,
		bucketWidth, filter.GPUID, filter.Node, filter.IssueType)
	if err != nil {
		return nil, fmt.Errorf("timeseries: %w", err)
	}
	defer rows.Close()

	var buckets []TimeBucket
	for rows.Next() {
		var b TimeBucket
		if err := rows.Scan(
			&b.Bucket,
			&b.EventCount,
			&b.AvgTemperature,
			&b.MaxTemperature,
		); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
