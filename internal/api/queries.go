// Package api implements the HTTP handlers and data access for the
// thermal reporting service.
package api

// SQL queries for the api service. Time-window parameters are RFC3339
// timestamps; empty-string filter parameters mean "no filter".
const (
	// queryEvents returns events joined with GPU metadata, newest first.
	// Parameters: $1 start, $2 end, $3 gpu_id, $4 node, $5 issue_type.
	queryEvents = `
SELECT e.node, e.gpu_id, e.event_time, e.issue_type,
       e.temperature, e.avg_temperature, e.reason, e.ingested_at,
       m.model, m.location
FROM thermal_events e
LEFT JOIN gpu_metadata m ON e.gpu_id = m.gpu_id
WHERE e.event_time >= $1
  AND e.event_time <= $2
  AND ($3::text = '' OR e.gpu_id = $3)
  AND ($4::text = '' OR e.node = $4)
  AND ($5::text = '' OR e.issue_type = $5)
ORDER BY e.event_time DESC`

	// queryStatsTotals returns overall counts and temperature aggregates
	// for the window.
	queryStatsTotals = `
SELECT COUNT(*),
       AVG(temperature),
       MAX(temperature),
       MIN(temperature)
FROM thermal_events
WHERE event_time >= $1 AND event_time <= $2`

	// queryStatsByType groups event counts by issue type.
	queryStatsByType = `
SELECT issue_type, COUNT(*)
FROM thermal_events
WHERE event_time >= $1 AND event_time <= $2
GROUP BY issue_type`

	// queryStatsTopGPUs returns the ten GPUs with the most events.
	queryStatsTopGPUs = `
SELECT gpu_id, COUNT(*) AS event_count
FROM thermal_events
WHERE event_time >= $1 AND event_time <= $2
GROUP BY gpu_id
ORDER BY event_count DESC
LIMIT 10`

	// queryStatsByNode groups event counts by node.
	queryStatsByNode = `
SELECT node, COUNT(*) AS event_count
FROM thermal_events
WHERE event_time >= $1 AND event_time <= $2
GROUP BY node
ORDER BY event_count DESC`

	// queryGPUs lists distinct GPUs with metadata, event count and last
	// event time, busiest first.
	queryGPUs = `
SELECT e.gpu_id, m.node, m.model, m.location,
       COUNT(*) AS event_count,
       MAX(e.event_time) AS last_event
FROM thermal_events e
LEFT JOIN gpu_metadata m ON e.gpu_id = m.gpu_id
GROUP BY e.gpu_id, m.node, m.model, m.location
ORDER BY event_count DESC`

	// queryTimeseries buckets events with the TimescaleDB time_bucket
	// function. Parameters: $1 bucket width (interval text), $2 gpu_id,
	// $3 node, $4 issue_type.
	queryTimeseries = `
SELECT time_bucket($1::interval, event_time) AS bucket,
       COUNT(*) AS event_count,
       AVG(temperature) AS avg_temperature,
       MAX(temperature) AS max_temperature
FROM thermal_events
WHERE ($2::text = '' OR gpu_id = $2)
  AND ($3::text = '' OR node = $3)
  AND ($4::text = '' OR issue_type = $4)
GROUP BY bucket
ORDER BY bucket`
)
