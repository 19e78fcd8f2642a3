package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// UploadResponse is returned by POST /api/v1/uploads.
type UploadResponse struct {
	Filename string `json:"filename" example:"failure_report.csv"`
	models.FileResult
}

// Upload godoc
//
//	@Summary		Upload and ingest a CSV file
//	@Description	Accepts a multipart form with a single "file" field containing a
//	@Description	thermal-event CSV, stores it under the upload directory and ingests
//	@Description	it synchronously. Returns per-row counts. Re-uploading the same file
//	@Description	is idempotent: existing rows count as skipped_duplicate.
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV file"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		422		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/uploads [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if filename == "" || !strings.EqualFold(filepath.Ext(filename), ".csv") {
		writeErr(w, http.StatusBadRequest, "invalid file type, please upload a CSV file")
		return
	}

	dst := filepath.Join(h.uploadDir, filename)
	if err := saveUpload(file, dst); err != nil {
		slog.Error("save upload", "file", filename, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	res, err := h.ingester.ProcessFile(r.Context(), dst)
	if err != nil {
		slog.Error("ingest upload", "file", filename, "error", err)
		writeErr(w, http.StatusUnprocessableEntity, fmt.Sprintf("ingestion failed: %v", err))
		return
	}

	slog.Info("upload ingested",
		"file", filename,
		"inserted", res.Inserted,
		"skipped_duplicate", res.SkippedDuplicate,
		"rejected", res.Rejected,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, UploadResponse{Filename: filename, FileResult: res})
}

func saveUpload(src io.Reader, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write %q: %w", dst, err)
	}
	return f.Close()
}

// sanitizeFilename strips any path components and characters outside
// [A-Za-z0-9._-] so uploads cannot escape the upload directory.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "." || cleaned == ".." {
		return ""
	}
	return cleaned
}
