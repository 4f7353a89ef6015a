package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/app"
	"github.com/jwalitptl/patient-portal/internal/config"
	"github.com/jwalitptl/patient-portal/internal/export"
	"github.com/jwalitptl/patient-portal/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	l := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Output:  os.Stderr,
		Console: cfg.ConsoleLogs(),
	})
	l.SetGlobal()

	a, err := app.New(cfg, app.DataFS(cfg))
	if err != nil {
		l.Fatal(err, "Failed to initialize application")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	l.Info("Exporting views", "out_dir", cfg.Export.OutDir, "data", a.DataSource())

	manifest, err := export.New(a, cfg.Export.OutDir, l).Run(ctx, time.Now())
	if err != nil {
		l.Error(err, "Export failed", "out_dir", cfg.Export.OutDir)
		os.Exit(1)
	}

	l.Info("Export finished", "files", len(manifest.Files), "locales", manifest.Locales)
}
