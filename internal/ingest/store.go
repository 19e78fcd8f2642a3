package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// Store persists thermal events to PostgreSQL. It implements EventWriter.
// Concurrent ingestion runs are safe: the natural-key unique constraint is
// the sole dedup guard, so two runs racing on the same row resolve to one
// insert and one duplicate.
type Store struct {
	db *sql.DB
}

// NewStore wraps an existing *sql.DB connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InsertEvent inserts one event unless its natural key already exists.
// Returns false when the row was a duplicate.
func (s *Store) InsertEvent(ctx context.Context, ev models.ThermalEvent) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, queryInsertEvent,
		ev.Node,
		ev.GPUID,
		ev.EventTime,
		string(ev.IssueType),
		nullFloat(ev.Temperature),
		nullFloat(ev.AvgTemperature),
		nullStr(ev.Reason),
		nullTime(ev.EventDate),
	).Scan(&ok)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("insert thermal event: %w", err)
	}
	return true, nil
}

// UpsertGPU registers (gpu_id, node) in the metadata table.
func (s *Store) UpsertGPU(ctx context.Context, gpuID, node string) error {
	if _, err := s.db.ExecContext(ctx, queryUpsertGPU, gpuID, node); err != nil {
		return fmt.Errorf("upsert gpu %s: %w", gpuID, err)
	}
	return nil
}

// RecordRun writes the per-file audit row.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, queryInsertRun,
		run.ID,
		run.Filename,
		run.Result.Inserted,
		run.Result.SkippedDuplicate,
		run.Result.Rejected,
		nullStr(run.FileError),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ingest run: %w", err)
	}
	return nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
