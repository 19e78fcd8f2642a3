// Service migrate applies pending SQL migrations and exits.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/tyee-ai/gpu-thermal/internal/config"
	"github.com/tyee-ai/gpu-thermal/internal/db"
)

func main() {
	var dir = flag.String("dir", "migrations", "migrations directory")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.LoadBase(0)
	if err := db.Migrate(cfg.DatabaseURL, *dir); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
