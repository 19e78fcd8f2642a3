// Service server is the GPU thermal reporting API: it ingests uploaded
// CSV files of thermal events and exposes the query endpoints backing
// the dashboard.
//
//	@title			GPU Thermal Reporting API
//	@version		1.0
//	@description	CSV ingestion and time-series reporting for GPU thermal events.
//	@host			localhost:8080
//	@BasePath		/
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tyee-ai/gpu-thermal/internal/alert"
	"github.com/tyee-ai/gpu-thermal/internal/api"
	"github.com/tyee-ai/gpu-thermal/internal/config"
	"github.com/tyee-ai/gpu-thermal/internal/db"
	"github.com/tyee-ai/gpu-thermal/internal/httpx"
	"github.com/tyee-ai/gpu-thermal/internal/ingest"
	"github.com/tyee-ai/gpu-thermal/internal/models"

	_ "github.com/tyee-ai/gpu-thermal/docs/swagger" // generated swagger docs
)

func main() {
	cfg := config.LoadServer()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.Error("failed to create upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	pool, err := db.Connect(connCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var notifier ingest.FailureNotifier
	fan, err := alert.NewFanout(cfg.Alerts, httpx.NewClient(10*time.Second, 2))
	if err != nil {
		slog.Error("failed to configure alert sinks", "error", err)
		os.Exit(1)
	}
	if fan != nil {
		notifier = fan
		defer fan.Close()
	}

	ingester := ingest.NewIngester(ingest.NewStore(pool), notifier)
	store := api.NewStore(pool)
	handler := api.NewHandler(store, ingester, cfg.UploadDir, cfg.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health probes.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Service: "server"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Healthy(r.Context(), pool); err != nil {
			writeJSON(w, http.StatusServiceUnavailable,
				models.HealthResponse{Status: "unavailable", Service: "server"})
			return
		}
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ready", Service: "server"})
	})

	// API routes.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", handler.ListEvents)
		r.Get("/stats", handler.GetStats)
		r.Get("/gpus", handler.ListGPUs)
		r.Get("/timeseries", handler.GetTimeSeries)
		r.Post("/uploads", handler.Upload)
	})

	// Swagger UI.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	serve(cfg.Base, r)
}

func serve(cfg config.Base, handler http.Handler) {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
