package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/school-accident-trends/internal/adapter/http"
	"github.com/couchcryptid/school-accident-trends/internal/adapter/workbook"
	"github.com/couchcryptid/school-accident-trends/internal/config"
	"github.com/couchcryptid/school-accident-trends/internal/domain"
	"github.com/couchcryptid/school-accident-trends/internal/observability"
	"github.com/couchcryptid/school-accident-trends/internal/query"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	schema, err := workbook.LoadSchema(cfg.WorkbookSchema)
	if err != nil {
		logger.Error("failed to load workbook schema", "path", cfg.WorkbookSchema, "error", err)
		os.Exit(1)
	}

	// No partial load: any unreadable sheet stops the service.
	ds, err := workbook.NewLoader(schema, logger).Load(cfg.WorkbookPath)
	if err != nil {
		logger.Error("failed to load workbook", "path", cfg.WorkbookPath, "error", err)
		os.Exit(1)
	}

	svc := query.NewService(ds, logger, metrics, query.Options{
		Workers:    cfg.GridWorkers,
		Thresholds: domain.Thresholds{High: cfg.BandHighPercent, Low: cfg.BandLowPercent},
		FromHour:   cfg.GridFromHour,
		ToHour:     cfg.GridToHour,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
