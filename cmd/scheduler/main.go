package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"naql_backend/internal/adapters"
	"naql_backend/internal/email"
	"naql_backend/internal/events"
	"naql_backend/internal/fallback"
	"naql_backend/internal/notification"
	"naql_backend/internal/scheduler"
	"naql_backend/internal/sheets"
	"naql_backend/platform/config"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetReplayQueue())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.IsRedisEnabled() {
		log.Error("REDIS_URL not configured; nothing to replay")
		panic("scheduler requires REDIS_URL")
	}

	m := metrics.New()
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Exhausted replays reach ops by email.
	notificationModule := notification.New(email.NewSender(cfg), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	sheetSink, err := sheets.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize sheets client", "error", err)
		panic("failed to initialize sheets client: " + err.Error())
	}
	sink := adapters.NewLeadSinkAdapter(sheetSink, m)

	var fb scheduler.LeadFallback
	if c := fallback.NewClient(cfg, log); c != nil {
		fb = c
	}

	worker, err := scheduler.NewWorker(cfg, sink, fb, eventBus, m, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
