package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/iss-flyover/internal/api/http"
	"github.com/i474232898/iss-flyover/internal/app"
	"github.com/i474232898/iss-flyover/internal/config"
	"github.com/i474232898/iss-flyover/internal/logging"
	"github.com/i474232898/iss-flyover/internal/scheduler"
	"github.com/i474232898/iss-flyover/internal/store"
)

func main() {
	lg := logging.GetLogger("main")

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		lg.Fatalf("failed to load config: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)

	// In-memory report history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service, cleanup, err := app.Build(cfg, memStore)
	if err != nil {
		lg.Fatalf("failed to build service: %v", err)
	}
	defer cleanup()

	// Scheduler that periodically refreshes and stores the report.
	sched := scheduler.New(cfg.FetchInterval, 3*cfg.HTTPTimeout, service)
	if err := sched.Start(); err != nil {
		lg.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	server := httpapi.NewApp(service, cfg.PassLimit)

	go func() {
		lg.Infof("listening on :%s", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			lg.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Errorf("error during shutdown: %v", err)
	}
}
