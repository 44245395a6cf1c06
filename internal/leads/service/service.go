// Package service implements the lead intake pipeline: rate limiting,
// validation, enrichment and delivery to the sink, the fallback webhook or
// the replay queue.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"naql_backend/internal/events"
	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/ports"
	"naql_backend/internal/leads/schema"
	"naql_backend/platform/apperr"
	"naql_backend/platform/idempotency"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"
	"naql_backend/platform/phone"
	"naql_backend/platform/ratelimit"
	"naql_backend/platform/sanitize"
)

// Caller-facing messages.
const (
	MsgAccepted      = "تم استلام طلبك بنجاح"
	MsgDevBypass     = MsgAccepted + " (Development Mode - Sheets Unavailable)"
	MsgRateLimited   = "تم تجاوز الحد المسموح. يرجى المحاولة بعد دقيقة."
	MsgInvalid       = "البيانات المرسلة غير صحيحة"
	MsgDeliveryError = "حدث خطأ أثناء إرسال الطلب. يرجى المحاولة مرة أخرى."
	MsgInvalidValue  = "قيمة غير صالحة"
)

const (
	defaultSinkTimeout = 15 * time.Second
	maxNotesRunes      = 1000
)

// Submission is one inbound request.
type Submission struct {
	Record    domain.LeadRecord
	ClientIP  string
	UserAgent string
}

// Result describes an accepted submission.
type Result struct {
	LeadID      string
	Message     string
	Destination string
	// Duplicate is set when the submission key was already accepted.
	Duplicate bool
}

// Deps are the collaborators of a Service. Limiter, Idempotency, Fallback,
// Replay, Bus and Metrics are optional.
type Deps struct {
	Schema      *schema.Schema
	Limiter     ratelimit.Limiter
	Idempotency idempotency.Store
	Sink        ports.LeadSink
	Fallback    ports.LeadFallback
	Replay      ports.ReplayQueue
	IDs         *domain.IDGenerator
	Bus         events.Bus
	Metrics     *metrics.Metrics
	Log         *logger.Logger

	DevBypass   bool
	SinkTimeout time.Duration
	Now         func() time.Time
}

// Service runs the intake pipeline.
type Service struct {
	schema      *schema.Schema
	limiter     ratelimit.Limiter
	idem        idempotency.Store
	sink        ports.LeadSink
	fallback    ports.LeadFallback
	replay      ports.ReplayQueue
	ids         *domain.IDGenerator
	bus         events.Bus
	metrics     *metrics.Metrics
	log         *logger.Logger
	devBypass   bool
	sinkTimeout time.Duration
	now         func() time.Time
}

// New fills in defaults for the optional dependencies.
func New(d Deps) *Service {
	if d.Schema == nil {
		d.Schema = schema.New(nil, nil)
	}
	if d.IDs == nil {
		d.IDs = domain.NewIDGenerator()
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.SinkTimeout <= 0 {
		d.SinkTimeout = defaultSinkTimeout
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		schema:      d.Schema,
		limiter:     d.Limiter,
		idem:        d.Idempotency,
		sink:        d.Sink,
		fallback:    d.Fallback,
		replay:      d.Replay,
		ids:         d.IDs,
		bus:         d.Bus,
		metrics:     d.Metrics,
		log:         d.Log,
		devBypass:   d.DevBypass,
		sinkTimeout: d.SinkTimeout,
		now:         d.Now,
	}
}

// Submit runs one submission through the pipeline. Errors are *apperr.Error
// values whose messages are safe to show the caller.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	if err := s.Admit(ctx, sub.ClientIP); err != nil {
		return Result{}, err
	}
	return s.Process(ctx, sub)
}

// Admit counts one request from clientIP against the rate limit. Callers
// that decode the body themselves call it first and then Process.
func (s *Service) Admit(ctx context.Context, clientIP string) error {
	if err := s.checkRate(ctx, s.log.WithContext(ctx), clientIP); err != nil {
		s.metrics.LeadOutcome(metrics.OutcomeRateLimited)
		return err
	}
	return nil
}

// Process runs an admitted submission: validation, deduplication,
// enrichment and delivery.
func (s *Service) Process(ctx context.Context, sub Submission) (Result, error) {
	log := s.log.WithContext(ctx)

	if errs := s.schema.Validate(sub.Record); !errs.OK() {
		s.metrics.LeadOutcome(metrics.OutcomeInvalid)
		return Result{}, apperr.Validation(MsgInvalid).WithOp("leads.Submit").WithDetails(errs.Map())
	}

	if leadID, ok := s.lookup(ctx, log, sub.Record.SubmissionKey); ok {
		s.metrics.LeadOutcome(metrics.OutcomeDuplicate)
		log.Info("leads: duplicate submission", "leadId", leadID)
		return Result{LeadID: leadID, Message: MsgAccepted, Duplicate: true}, nil
	}

	lead := s.enrich(sub)

	res, err := s.dispatch(ctx, log, lead)
	if err != nil {
		s.metrics.LeadOutcome(metrics.OutcomeFailed)
		s.publish(ctx, events.LeadDeliveryFailed{BaseEvent: events.NewBaseEvent(), Lead: lead, Reason: err.Error()})
		return Result{}, apperr.Unavailable(MsgDeliveryError, err).WithOp("leads.Submit")
	}

	if res.Destination != events.DestinationNone {
		s.remember(ctx, log, sub.Record.SubmissionKey, lead.LeadID)
	}
	return res, nil
}

// Malformed turns a body decoding failure into the validation response. The
// offending field is reported when it is known.
func (s *Service) Malformed(ctx context.Context, err error) error {
	s.metrics.LeadOutcome(metrics.OutcomeInvalid)
	s.log.WithContext(ctx).Info("leads: undecodable submission", "error", err)

	appErr := apperr.Validation(MsgInvalid).WithOp("leads.Submit")
	var decErr *domain.DecodeError
	if errors.As(err, &decErr) && decErr.Field != "" {
		appErr = appErr.WithDetails(map[string]string{decErr.Field: MsgInvalidValue})
	}
	return appErr
}

// checkRate fails open when the limiter backend is unavailable.
func (s *Service) checkRate(ctx context.Context, log *logger.Logger, clientIP string) error {
	if s.limiter == nil {
		return nil
	}
	decision, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		log.Warn("leads: rate limiter unavailable, allowing request", "error", err)
		return nil
	}
	if !decision.Allowed {
		log.RateLimitExceeded(clientIP, "/api/v1/lead")
		return apperr.RateLimited(MsgRateLimited, decision.RetryAfter).WithOp("leads.Submit")
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, log *logger.Logger, key string) (string, bool) {
	if s.idem == nil || key == "" {
		return "", false
	}
	leadID, ok, err := s.idem.Lookup(ctx, key)
	if err != nil {
		log.Warn("leads: idempotency lookup failed", "error", err)
		return "", false
	}
	return leadID, ok
}

func (s *Service) remember(ctx context.Context, log *logger.Logger, key, leadID string) {
	if s.idem == nil || key == "" {
		return
	}
	if err := s.idem.Remember(ctx, key, leadID); err != nil {
		log.Warn("leads: idempotency store failed", "leadId", leadID, "error", err)
	}
}

// enrich builds the ServerLead. The inbound record is copied, never modified.
func (s *Service) enrich(sub Submission) domain.ServerLead {
	rec := sub.Record.Clone()
	rec.FromCity = strings.TrimSpace(rec.FromCity)
	rec.ToCity = strings.TrimSpace(rec.ToCity)
	rec.CustomerPhone = phone.Normalize(rec.CustomerPhone)
	rec.CustomerName = sanitize.Text(rec.CustomerName)
	rec.Notes = sanitize.Truncate(sanitize.StripHTML(rec.Notes), maxNotesRunes)
	if rec.PagePath == "" {
		rec.PagePath = domain.DefaultPagePath
	}
	if rec.Device == "" && sub.UserAgent != "" {
		rec.Device = domain.DeviceClass(sub.UserAgent)
	}

	return domain.ServerLead{
		LeadRecord: rec,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
		LeadID:     s.ids.Next(),
		Status:     domain.StatusNew,
		Currency:   domain.CurrencySAR,
		SLAMinutes: domain.DefaultSLAMinutes,
		IP:         sub.ClientIP,
	}
}

// dispatch probes the sink, appends, then falls back to the webhook and the
// replay queue in that order. A failed probe goes straight to the queue.
func (s *Service) dispatch(ctx context.Context, log *logger.Logger, lead domain.ServerLead) (Result, error) {
	if err := s.probe(ctx); err != nil {
		log.SinkFailure("probe", lead.LeadID, err)
		if s.devBypass {
			log.Warn("leads: sink unreachable, development bypass accepted lead without persisting it", "leadId", lead.LeadID)
			s.metrics.LeadOutcome(metrics.OutcomeDevBypass)
			return Result{LeadID: lead.LeadID, Message: MsgDevBypass, Destination: events.DestinationNone}, nil
		}
		return s.enqueue(ctx, log, lead, err)
	}

	appendErr := s.append(ctx, lead)
	if appendErr == nil {
		return s.accepted(ctx, log, lead, events.DestinationSheets), nil
	}
	log.SinkFailure("append", lead.LeadID, appendErr)

	if s.fallback == nil || !s.fallback.Configured() {
		return s.enqueue(ctx, log, lead, appendErr)
	}
	fbErr := s.fallback.Deliver(ctx, lead)
	s.metrics.Delivery(events.DestinationFallback, fbErr)
	if fbErr == nil {
		return s.accepted(ctx, log, lead, events.DestinationFallback), nil
	}
	log.SinkFailure("fallback", lead.LeadID, fbErr)
	return s.enqueue(ctx, log, lead, errors.Join(appendErr, fbErr))
}

func (s *Service) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
	defer cancel()
	return s.sink.Probe(ctx)
}

func (s *Service) append(ctx context.Context, lead domain.ServerLead) error {
	ctx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
	defer cancel()
	err := s.sink.AppendLead(ctx, lead)
	s.metrics.Delivery(events.DestinationSheets, err)
	return err
}

// enqueue is the last resort. Without a queue the delivery error stands.
func (s *Service) enqueue(ctx context.Context, log *logger.Logger, lead domain.ServerLead, cause error) (Result, error) {
	if s.replay == nil {
		return Result{}, cause
	}
	if err := s.replay.EnqueueRedelivery(ctx, lead, cause.Error()); err != nil {
		log.SinkFailure("enqueue", lead.LeadID, err)
		return Result{}, errors.Join(cause, err)
	}

	s.metrics.Delivery(events.DestinationQueue, nil)
	s.metrics.LeadOutcome(metrics.OutcomeQueued)
	log.LeadAccepted(lead.LeadID, events.DestinationQueue)
	s.publish(ctx, events.LeadQueued{BaseEvent: events.NewBaseEvent(), Lead: lead, Reason: cause.Error()})
	return Result{LeadID: lead.LeadID, Message: MsgAccepted, Destination: events.DestinationQueue}, nil
}

func (s *Service) accepted(ctx context.Context, log *logger.Logger, lead domain.ServerLead, destination string) Result {
	s.metrics.LeadOutcome(metrics.OutcomeAccepted)
	log.LeadAccepted(lead.LeadID, destination)
	s.publish(ctx, events.LeadSubmitted{BaseEvent: events.NewBaseEvent(), Lead: lead, Destination: destination})
	return Result{LeadID: lead.LeadID, Message: MsgAccepted, Destination: destination}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
