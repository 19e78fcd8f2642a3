package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tyee-ai/gpu-thermal/internal/api"
	"github.com/tyee-ai/gpu-thermal/internal/ingest"
	"github.com/tyee-ai/gpu-thermal/internal/models"
)

func newRouter(t *testing.T, h *api.Handler) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/v1/events", h.ListEvents)
	r.Get("/api/v1/stats", h.GetStats)
	r.Get("/api/v1/gpus", h.ListGPUs)
	r.Get("/api/v1/timeseries", h.GetTimeSeries)
	r.Post("/api/v1/uploads", h.Upload)
	return r
}

func TestListEventsHandler_Params(t *testing.T) {
	db := testDB(t)
	store := api.NewStore(db)
	handler := api.NewHandler(store, nil, t.TempDir(), 16<<20)
	r := newRouter(t, handler)

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	seedEvent(t, db, "n1", "g1", base, models.IssueThrottled, 80)
	seedEvent(t, db, "n1", "g1", base.AddDate(0, 0, 1), models.IssueFailed, 45)

	tests := []struct {
		name     string
		query    string
		status   int
		expected int
	}{
		{"no filters returns all", "", http.StatusOK, 2},
		{"issue_type filter", "?issue_type=failed", http.StatusOK, 1},
		{"window excludes", "?end_time=" + base.Format(time.RFC3339), http.StatusOK, 1},
		{"invalid start_time", "?start_time=not-a-time", http.StatusBadRequest, 0},
		{"inverted window", "?start_time=2030-01-01T00:00:00Z&end_time=2020-01-01T00:00:00Z", http.StatusBadRequest, 0},
		{"unknown issue_type", "?issue_type=melted", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/events"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusOK {
				var resp api.EventsResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if len(resp.Events) != tt.expected {
					t.Errorf("events = %d, want %d", len(resp.Events), tt.expected)
				}
			}
		})
	}
}

func TestStatsHandler(t *testing.T) {
	db := testDB(t)
	store := api.NewStore(db)
	handler := api.NewHandler(store, nil, t.TempDir(), 16<<20)
	r := newRouter(t, handler)

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	seedEvent(t, db, "n1", "g1", base, models.IssueThrottled, 80)
	seedEvent(t, db, "n2", "g2", base, models.IssueFailed, 40)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var stats api.SummaryStats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalEvents != 2 {
		t.Errorf("total = %d, want 2", stats.TotalEvents)
	}
	if len(stats.EventsByNode) != 2 {
		t.Errorf("by node = %v, want 2 entries", stats.EventsByNode)
	}
}

func TestTimeSeriesHandler_UnknownInterval(t *testing.T) {
	db := testDB(t)
	handler := api.NewHandler(api.NewStore(db), nil, t.TempDir(), 16<<20)
	r := newRouter(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeseries?interval=month", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Upload
// ---------------------------------------------------------------------------

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

const uploadCSV = "node,timestamp,gpu_id,temp,avg_temp,reason,date\n" +
	"10.4.21.8,2025-03-17,GPU_28,44.0,28.08,Thermally Failed,2025-03-17\n" +
	"10.4.21.8,2025-03-18,GPU_28,45.0,28.61,Thermally Failed,2025-03-18\n"

func TestUploadHandler_IngestsAndDedups(t *testing.T) {
	db := testDB(t)
	ingester := ingest.NewIngester(ingest.NewStore(db), nil)
	handler := api.NewHandler(api.NewStore(db), ingester, t.TempDir(), 16<<20)
	r := newRouter(t, handler)

	post := func() api.UploadResponse {
		body, ctype := multipartBody(t, "failures.csv", uploadCSV)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
		req.Header.Set("Content-Type", ctype)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp api.UploadResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	first := post()
	if first.Inserted != 2 || first.SkippedDuplicate != 0 {
		t.Fatalf("first upload = %+v, want 2 inserted", first)
	}

	second := post()
	if second.Inserted != 0 || second.SkippedDuplicate != 2 {
		t.Fatalf("second upload = %+v, want all duplicates", second)
	}
}

func TestUploadHandler_RejectsNonCSV(t *testing.T) {
	db := testDB(t)
	ingester := ingest.NewIngester(ingest.NewStore(db), nil)
	handler := api.NewHandler(api.NewStore(db), ingester, t.TempDir(), 16<<20)
	r := newRouter(t, handler)

	body, ctype := multipartBody(t, "notes.txt", "not a csv")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestUploadHandler_FileLevelFailureIs422(t *testing.T) {
	db := testDB(t)
	ingester := ingest.NewIngester(ingest.NewStore(db), nil)
	handler := api.NewHandler(api.NewStore(db), ingester, t.TempDir(), 16<<20)
	r := newRouter(t, handler)

	// Header missing required columns: file-level failure, not row rejects.
	body, ctype := multipartBody(t, "broken.csv", "node,temp\nn1,40.0\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}
