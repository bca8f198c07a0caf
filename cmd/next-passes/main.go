// Command next-passes prints the upcoming ISS passes over this host's
// location and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i474232898/iss-flyover/internal/app"
	"github.com/i474232898/iss-flyover/internal/config"
	"github.com/i474232898/iss-flyover/internal/iss"
	"github.com/i474232898/iss-flyover/internal/logging"
)

func main() {
	lg := logging.GetLogger("next-passes")

	cfg, err := config.Load()
	if err != nil {
		lg.Fatalf("failed to load config: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)

	service, cleanup, err := app.Build(cfg, nil)
	if err != nil {
		lg.Fatalf("failed to build service: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	passes, err := service.NextPasses(ctx, cfg.PassLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "It didn't work! %v\n", err)
		cleanup()
		os.Exit(1)
	}

	for _, w := range passes {
		fmt.Println(iss.FormatPass(w, time.Local))
	}
}
