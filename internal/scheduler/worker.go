package scheduler

import (
	"context"
	"errors"
	"fmt"

	"naql_backend/internal/events"
	"naql_backend/internal/leads/domain"
	"naql_backend/platform/config"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"

	"github.com/hibiken/asynq"
)

// LeadSink is the primary destination.
type LeadSink interface {
	AppendLead(ctx context.Context, lead domain.ServerLead) error
}

// LeadFallback is the secondary destination. It may be nil.
type LeadFallback interface {
	Deliver(ctx context.Context, lead domain.ServerLead) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	sink     LeadSink
	fallback LeadFallback
	bus      events.Bus
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sink LeadSink, fallback LeadFallback, bus events.Bus, m *metrics.Metrics, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetReplayQueue()
	if queue == "" {
		queue = defaultQueue
	}

	concurrency := cfg.GetWorkerConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	w := newWorker(sink, fallback, bus, m, log)
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency:  concurrency,
		Queues:       map[string]int{queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(w.handleError),
	})
	return w, nil
}

func newWorker(sink LeadSink, fallback LeadFallback, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard()
	}
	w := &Worker{
		mux:      asynq.NewServeMux(),
		sink:     sink,
		fallback: fallback,
		bus:      bus,
		metrics:  m,
		log:      log,
	}
	w.mux.HandleFunc(TaskRedeliverLead, w.handleRedeliverLead)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleRedeliverLead tries the sink, then the fallback. Returning an error
// hands the task back to asynq for a retry with backoff.
func (w *Worker) handleRedeliverLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRedeliverLeadPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	lead := payload.Lead
	attempt, _ := asynq.GetRetryCount(ctx)

	destination := events.DestinationSheets
	sinkErr := w.sink.AppendLead(ctx, lead)
	w.metrics.SinkOperation("replay_append", sinkErr)
	if sinkErr != nil {
		w.log.SinkFailure("replay_append", lead.LeadID, sinkErr)
		if w.fallback == nil {
			return sinkErr
		}
		destination = events.DestinationFallback
		if fbErr := w.fallback.Deliver(ctx, lead); fbErr != nil {
			w.metrics.Delivery(events.DestinationFallback, fbErr)
			return errors.Join(sinkErr, fbErr)
		}
	}

	w.metrics.Delivery(destination, nil)
	w.log.LeadAccepted(lead.LeadID, destination)
	if w.bus != nil {
		w.bus.Publish(ctx, events.LeadRedelivered{
			BaseEvent:   events.NewBaseEvent(),
			Lead:        lead,
			Destination: destination,
			Attempt:     attempt + 1,
		})
	}
	return nil
}

// handleError publishes a terminal failure once retries are exhausted.
func (w *Worker) handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if retried < maxRetry && !errors.Is(err, asynq.SkipRetry) {
		return
	}

	payload, perr := ParseRedeliverLeadPayload(task)
	if perr != nil {
		w.log.Error("scheduler: dropping unreadable replay task", "error", perr)
		return
	}
	w.log.Error("scheduler: lead replay exhausted", "leadId", payload.Lead.LeadID, "error", err)
	w.metrics.Delivery(events.DestinationQueue, err)
	if w.bus != nil {
		w.bus.Publish(ctx, events.LeadDeliveryFailed{
			BaseEvent: events.NewBaseEvent(),
			Lead:      payload.Lead,
			Reason:    "replay retries exhausted",
		})
	}
}
