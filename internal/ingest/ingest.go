// Package ingest implements CSV ingestion of GPU thermal events: header
// normalization, row validation, and idempotent persistence keyed on
// (node, gpu_id, event_time, issue_type).
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// EventWriter abstracts event persistence so the ingestion loop can be
// tested with a mock.
type EventWriter interface {
	// InsertEvent persists the event unless its natural key already
	// exists. It returns false for duplicates.
	InsertEvent(ctx context.Context, ev models.ThermalEvent) (bool, error)
	// UpsertGPU registers (gpu_id, node) in the metadata table.
	UpsertGPU(ctx context.Context, gpuID, node string) error
	// RecordRun writes the per-file audit row.
	RecordRun(ctx context.Context, run Run) error
}

// FailureNotifier receives newly inserted failure events. Delivery is
// best-effort and must never influence ingestion results.
type FailureNotifier interface {
	FailureInserted(ctx context.Context, ev models.ThermalEvent)
}

// Run is the audit record for one processed file.
type Run struct {
	ID         uuid.UUID
	Filename   string
	Result     models.FileResult
	FileError  string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Ingester reads thermal-event CSVs and persists their valid rows.
// Processing is synchronous: each file is read and written to completion
// before the next is started.
type Ingester struct {
	writer   EventWriter
	notifier FailureNotifier // may be nil
}

// NewIngester creates an Ingester. notifier may be nil to disable alerts.
func NewIngester(writer EventWriter, notifier FailureNotifier) *Ingester {
	return &Ingester{writer: writer, notifier: notifier}
}

// ProcessFile ingests a single CSV file and returns per-file counts.
// Row-level problems are counted as rejected and skipped; the error return
// carries file-level failures only (unreadable file, unusable header,
// storage loss). Rows committed before a storage failure stay committed.
func (ing *Ingester) ProcessFile(ctx context.Context, path string) (models.FileResult, error) {
	started := time.Now().UTC()
	filename := filepath.Base(path)
	var res models.FileResult

	events, rejections, err := ReadFile(path)
	if err != nil {
		ing.recordRun(ctx, filename, res, err, started)
		return res, err
	}

	res.Rejected = len(rejections)
	for _, rej := range rejections {
		slog.Warn("row rejected",
			"file", filename,
			"line", rej.Line,
			"field", rej.Field,
			"reason", string(rej.Reason),
		)
	}

	gpuNodes := make(map[string]string)
	for _, ev := range events {
		inserted, err := ing.writer.InsertEvent(ctx, ev)
		if err != nil {
			err = fmt.Errorf("insert event %s/%s at %s: %w",
				ev.Node, ev.GPUID, ev.EventTime.Format(time.RFC3339), err)
			ing.recordRun(ctx, filename, res, err, started)
			return res, err
		}
		if !inserted {
			res.SkippedDuplicate++
			continue
		}
		res.Inserted++
		gpuNodes[ev.GPUID] = ev.Node

		if ing.notifier != nil && ev.IssueType == models.IssueFailed {
			ing.notifier.FailureInserted(ctx, ev)
		}
	}

	// Metadata registration is best-effort; a failure here must not turn
	// an ingested file into a failed one.
	for gpuID, node := range gpuNodes {
		if err := ing.writer.UpsertGPU(ctx, gpuID, node); err != nil {
			slog.Error("upsert gpu metadata", "gpu_id", gpuID, "error", err)
		}
	}

	ing.recordRun(ctx, filename, res, nil, started)

	slog.Info("file ingested",
		"file", filename,
		"inserted", res.Inserted,
		"skipped_duplicate", res.SkippedDuplicate,
		"rejected", res.Rejected,
		"latency_ms", time.Since(started).Milliseconds(),
	)
	return res, nil
}

// ProcessDirectory ingests every *.csv in dir (lexical order) and returns a
// per-filename report. A file-level failure lands in that file's report and
// never stops the remaining files.
func (ing *Ingester) ProcessDirectory(ctx context.Context, dir string) (map[string]models.FileReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox %q: %w", dir, err)
	}

	reports := make(map[string]models.FileReport)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}

		res, err := ing.ProcessFile(ctx, filepath.Join(dir, e.Name()))
		report := models.FileReport{FileResult: res}
		if err != nil {
			slog.Error("file failed", "file", e.Name(), "error", err)
			report.Error = err.Error()
		}
		reports[e.Name()] = report
	}
	return reports, nil
}

// recordRun writes the audit row; failures are logged, not propagated.
func (ing *Ingester) recordRun(ctx context.Context, filename string, res models.FileResult, fileErr error, started time.Time) {
	run := Run{
		ID:         uuid.New(),
		Filename:   filename,
		Result:     res,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if fileErr != nil {
		run.FileError = fileErr.Error()
	}
	if err := ing.writer.RecordRun(ctx, run); err != nil {
		slog.Error("record ingest run", "file", filename, "error", err)
	}
}
