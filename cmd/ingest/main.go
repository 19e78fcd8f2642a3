// Service ingest is the batch CLI: it processes a single CSV file or an
// inbox directory of CSV files and reports per-file ingestion counts.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/alert"
	"github.com/tyee-ai/gpu-thermal/internal/config"
	"github.com/tyee-ai/gpu-thermal/internal/db"
	"github.com/tyee-ai/gpu-thermal/internal/httpx"
	"github.com/tyee-ai/gpu-thermal/internal/ingest"
)

func main() {
	cfg := config.LoadIngest()

	var (
		filePath = flag.String("file", "", "ingest a single CSV file")
		dirPath  = flag.String("dir", cfg.InboxDir, "ingest every *.csv in this directory")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

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
	ctx := context.Background()

	if *filePath != "" {
		res, err := ingester.ProcessFile(ctx, *filePath)
		if err != nil {
			slog.Error("ingestion failed", "file", *filePath, "error", err)
			os.Exit(1)
		}
		slog.Info("done",
			"file", *filePath,
			"inserted", res.Inserted,
			"skipped_duplicate", res.SkippedDuplicate,
			"rejected", res.Rejected,
		)
		return
	}

	reports, err := ingester.ProcessDirectory(ctx, *dirPath)
	if err != nil {
		slog.Error("ingestion failed", "dir", *dirPath, "error", err)
		os.Exit(1)
	}

	failed := 0
	for name, report := range reports {
		if report.Error != "" {
			failed++
			continue
		}
		slog.Info("file done",
			"file", name,
			"inserted", report.Inserted,
			"skipped_duplicate", report.SkippedDuplicate,
			"rejected", report.Rejected,
		)
	}

	slog.Info("directory done", "dir", *dirPath, "files", len(reports), "failed_files", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
