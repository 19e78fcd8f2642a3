package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/ingest"
)

// Handler exposes the reporting and upload HTTP endpoints.
type Handler struct {
	store     *Store
	ingester  *ingest.Ingester
	uploadDir string
	maxUpload int64
}

// NewHandler creates a Handler. The ingester backs the upload endpoint;
// reads go through the store.
func NewHandler(store *Store, ingester *ingest.Ingester, uploadDir string, maxUpload int64) *Handler {
	return &Handler{
		store:     store,
		ingester:  ingester,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
	}
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// EventsResponse is the response for GET /api/v1/events.
type EventsResponse struct {
	Events []EventEntry `json:"events"`
}

// GPUsResponse is the response for GET /api/v1/gpus.
type GPUsResponse struct {
	GPUs []GPUInfo `json:"gpus"`
}

// TimeSeriesResponse is the response for GET /api/v1/timeseries.
type TimeSeriesResponse struct {
	Interval string       `json:"interval" example:"day"`
	Buckets  []TimeBucket `json:"buckets"`
}

type errorResponse struct {
	Error string `json:"error" example:"invalid start_time"`
}

// ---------------------------------------------------------------------------
// GET /api/v1/events
// ---------------------------------------------------------------------------

// ListEvents godoc
//
//	@Summary		List thermal events
//	@Description	Returns thermal events joined with GPU metadata, newest first.
//	@Description	Optional query params start_time/end_time (RFC3339) bound the window;
//	@Description	gpu_id, node and issue_type filter the results.
//	@Tags			events
//	@Produce		json
//	@Param			start_time	query		string	false	"Start time (RFC3339)"	example(2025-01-01T00:00:00Z)
//	@Param			end_time	query		string	false	"End time (RFC3339)"	example(2025-12-31T23:59:59Z)
//	@Param			gpu_id		query		string	false	"GPU ID"				example(GPU_28)
//	@Param			node		query		string	false	"Node"					example(10.4.21.8)
//	@Param			issue_type	query		string	false	"throttled or failed"	example(failed)
//	@Success		200			{object}	EventsResponse
//	@Failure		400			{object}	errorResponse
//	@Failure		500			{object}	errorResponse
//	@Router			/api/v1/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeWindow(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.store.ListEvents(r.Context(), start, end, filter)
	if err != nil {
		slog.Error("list events", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch events")
		return
	}
	if events == nil {
		events = []EventEntry{}
	}

	writeJSON(w, http.StatusOK, EventsResponse{Events: events})
}

// ---------------------------------------------------------------------------
// GET /api/v1/stats
// ---------------------------------------------------------------------------

// GetStats godoc
//
//	@Summary		Summary statistics
//	@Description	Returns event totals, counts by issue type and node, the top GPUs,
//	@Description	and temperature aggregates for the optional time window.
//	@Tags			stats
//	@Produce		json
//	@Param			start_time	query		string	false	"Start time (RFC3339)"
//	@Param			end_time	query		string	false	"End time (RFC3339)"
//	@Success		200			{object}	SummaryStats
//	@Failure		400			{object}	errorResponse
//	@Failure		500			{object}	errorResponse
//	@Router			/api/v1/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeWindow(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.store.SummaryStats(r.Context(), start, end)
	if err != nil {
		slog.Error("summary stats", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	if stats.EventsByType == nil {
		stats.EventsByType = []TypeCount{}
	}
	if stats.TopGPUs == nil {
		stats.TopGPUs = []GPUCount{}
	}
	if stats.EventsByNode == nil {
		stats.EventsByNode = []NodeCount{}
	}

	writeJSON(w, http.StatusOK, stats)
}

// ---------------------------------------------------------------------------
// GET /api/v1/gpus
// ---------------------------------------------------------------------------

// ListGPUs godoc
//
//	@Summary		List GPUs
//	@Description	Returns distinct GPUs with metadata, event count and last event time,
//	@Description	ordered by event count descending.
//	@Tags			gpus
//	@Produce		json
//	@Success		200	{object}	GPUsResponse
//	@Failure		500	{object}	errorResponse
//	@Router			/api/v1/gpus [get]
func (h *Handler) ListGPUs(w http.ResponseWriter, r *http.Request) {
	gpus, err := h.store.ListGPUs(r.Context())
	if err != nil {
		slog.Error("list gpus", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to list GPUs")
		return
	}
	if gpus == nil {
		gpus = []GPUInfo{}
	}

	writeJSON(w, http.StatusOK, GPUsResponse{GPUs: gpus})
}

// ---------------------------------------------------------------------------
// GET /api/v1/timeseries
// ---------------------------------------------------------------------------

// bucketWidths maps the interval query param onto Postgres interval
// literals fed to time_bucket.
var bucketWidths = map[string]string{
	"hour": "1 hour",
	"day":  "1 day",
	"week": "1 week",
}

// GetTimeSeries godoc
//
//	@Summary		Chart time series
//	@Description	Returns per-bucket event counts and temperature aggregates using
//	@Description	TimescaleDB time_bucket. interval is hour, day or week (default day).
//	@Tags			stats
//	@Produce		json
//	@Param			interval	query		string	false	"hour | day | week"		example(day)
//	@Param			gpu_id		query		string	false	"GPU ID"
//	@Param			node		query		string	false	"Node"
//	@Param			issue_type	query		string	false	"throttled or failed"
//	@Success		200			{object}	TimeSeriesResponse
//	@Failure		400			{object}	errorResponse
//	@Failure		500			{object}	errorResponse
//	@Router			/api/v1/timeseries [get]
func (h *Handler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "day"
	}
	width, ok := bucketWidths[interval]
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("unknown interval %q", interval))
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	buckets, err := h.store.TimeSeries(r.Context(), width, filter)
	if err != nil {
		slog.Error("timeseries", "interval", interval, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch timeseries")
		return
	}
	if buckets == nil {
		buckets = []TimeBucket{}
	}

	writeJSON(w, http.StatusOK, TimeSeriesResponse{Interval: interval, Buckets: buckets})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseTimeWindow reads optional start_time / end_time query params.
// Both must be valid RFC3339 if present. Defaults to a wide window.
func parseTimeWindow(r *http.Request) (start, end time.Time, err error) {
	start = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

	if s := r.URL.Query().Get("start_time"); s != "" {
		start, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_time: %w", err)
		}
	}

	if e := r.URL.Query().Get("end_time"); e != "" {
		end, err = time.Parse(time.RFC3339, e)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_time: %w", err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_time must be before or equal to end_time")
	}

	return start, end, nil
}

// parseFilter reads the optional gpu_id / node / issue_type params.
func parseFilter(r *http.Request) (EventFilter, error) {
	filter := EventFilter{
		GPUID:     r.URL.Query().Get("gpu_id"),
		Node:      r.URL.Query().Get("node"),
		IssueType: r.URL.Query().Get("issue_type"),
	}
	if filter.IssueType != "" && filter.IssueType != "throttled" && filter.IssueType != "failed" {
		return EventFilter{}, fmt.Errorf("unknown issue_type %q", filter.IssueType)
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
