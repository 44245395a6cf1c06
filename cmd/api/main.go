package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"naql_backend/internal/adapters"
	"naql_backend/internal/email"
	"naql_backend/internal/events"
	"naql_backend/internal/fallback"
	apphttp "naql_backend/internal/http"
	"naql_backend/internal/http/router"
	"naql_backend/internal/leads"
	"naql_backend/internal/leads/ports"
	"naql_backend/internal/notification"
	"naql_backend/internal/scheduler"
	"naql_backend/internal/sheets"
	"naql_backend/internal/whatsapp"
	"naql_backend/platform/config"
	"naql_backend/platform/db"
	"naql_backend/platform/idempotency"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"
	"naql_backend/platform/ratelimit"
	"naql_backend/platform/validator"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout      = 10 * time.Second
	limiterSweepEvery    = time.Minute
	rateLimitKeyPrefix   = "naql:ratelimit:lead:"
	idempotencyKeyPrefix = "naql:submission:"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var redisClient *redis.Client
	if cfg.IsRedisEnabled() {
		if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
			c, err := db.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			redisClient = c
			return nil
		}); err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("redis connection established")
	} else {
		log.Warn("REDIS_URL not configured; rate limiting and deduplication are per-instance and the replay queue is disabled")
	}

	policy := ratelimit.Policy{Limit: cfg.GetLeadRateLimit(), Window: cfg.GetLeadRateWindow()}
	var limiter ratelimit.Limiter
	var idem idempotency.Store
	if redisClient != nil {
		limiter = ratelimit.NewRedis(redisClient, rateLimitKeyPrefix, policy)
		idem = idempotency.NewRedis(redisClient, idempotencyKeyPrefix, cfg.GetIdempotencyTTL())
	} else {
		mem := ratelimit.NewMemory(policy)
		go mem.RunJanitor(ctx, limiterSweepEvery)
		limiter = mem
		idem = idempotency.NewMemory(cfg.GetIdempotencyTTL())
	}

	sheetSink, err := sheets.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize sheets client", "error", err)
		panic("failed to initialize sheets client: " + err.Error())
	}
	sink := adapters.NewLeadSinkAdapter(sheetSink, m)
	if err := sink.EnsureHeaderRow(ctx); err != nil {
		log.Warn("could not verify sheet header row at startup", "error", err)
	}

	// Optional destinations stay nil interfaces when absent.
	var fb ports.LeadFallback
	if c := fallback.NewClient(cfg, log); c != nil {
		fb = c
		log.Info("fallback webhook configured")
	}

	var replay ports.ReplayQueue
	if cfg.IsRedisEnabled() {
		replayClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize replay queue client", "error", err)
		} else {
			defer func() { _ = replayClient.Close() }()
			replay = replayClient
		}
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(email.NewSender(cfg), cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	if wa := whatsapp.NewClient(cfg, log); wa != nil {
		notificationModule.SetWhatsAppSender(wa)
	}

	leadsModule := leads.NewModule(leads.Deps{
		Config:      cfg,
		Validator:   validator.New(),
		Limiter:     limiter,
		Idempotency: idem,
		Sink:        sink,
		Fallback:    fb,
		Replay:      replay,
		Bus:         eventBus,
		Metrics:     m,
		Log:         log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Metrics:  m,
		EventBus: eventBus,
		Modules:  []apphttp.Module{leadsModule},
	}
	if redisClient != nil {
		app.Health = db.NewClientAdapter(redisClient)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		eventBus.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
