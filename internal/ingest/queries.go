package ingest

// SQL queries for the ingest writer. Collected here so they are easy to
// audit and test.
const (
	// queryInsertEvent inserts one thermal event. ON CONFLICT on the
	// natural key makes re-ingestion idempotent: an existing row is left
	// untouched. RETURNING true lets us distinguish inserts from no-ops
	// at the Go layer.
	queryInsertEvent = `
INSERT INTO thermal_events (node, gpu_id, event_time, issue_type, temperature, avg_temperature, reason, event_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (node, gpu_id, event_time, issue_type) DO NOTHING
RETURNING true`

	// queryUpsertGPU registers a GPU, refreshing its node on conflict.
	queryUpsertGPU = `
INSERT INTO gpu_metadata (gpu_id, node)
VALUES ($1, $2)
ON CONFLICT (gpu_id) DO UPDATE
SET node = EXCLUDED.node, updated_at = now()`

	// queryInsertRun writes the per-file ingestion audit row.
	queryInsertRun = `
INSERT INTO ingest_runs (id, filename, inserted, skipped_duplicate, rejected, file_error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)
