// Package wizard drives the five-step intake form: it owns the lead record
// under construction, gates navigation on per-step validation and hands the
// finished record to a Submitter.
//
// A Controller is meant to be driven from a single input loop and is not
// safe for concurrent use.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/schema"

	"github.com/google/uuid"
)

// Submitter sends a finished record to the lead endpoint and returns the
// lead id on success.
type Submitter interface {
	SubmitLead(ctx context.Context, rec domain.LeadRecord) (string, error)
}

// Notifier shows transient messages such as validation toasts.
type Notifier interface {
	Notify(Notice)
}

// Navigator shows the confirmation view after a successful submission.
type Navigator interface {
	ShowConfirmation(Confirmation)
}

// Notice is a user-facing message.
type Notice struct {
	Title     string
	Message   string
	Field     string
	Retryable bool
}

// Confirmation is everything the thank-you view needs.
type Confirmation struct {
	CustomerName string
	LeadID       string
}

// StepError reports why navigation or submission was refused.
type StepError struct {
	Step    int
	Field   string
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Message)
}

var (
	// ErrClosed is returned once the wizard has submitted successfully.
	ErrClosed = errors.New("wizard: already submitted")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("wizard: submission in progress")
	// ErrStepOutOfRange is returned for a jump outside the step list.
	ErrStepOutOfRange = errors.New("wizard: step out of range")
	// ErrStepLocked is returned for a jump past an incomplete step.
	ErrStepLocked = errors.New("wizard: step not reachable yet")
)

const (
	titleIncomplete   = "خانات مطلوبة غير مكتملة"
	titleInvalid      = "يرجى إكمال البيانات المطلوبة"
	titleFinishStep   = "أكمل الخطوة الحالية أولاً"
	titleSubmitFailed = "خطأ"
)

// Options configures a Controller.
type Options struct {
	Schema      *schema.Schema
	Submitter   Submitter
	Notifier    Notifier
	Navigator   Navigator
	Attribution domain.Attribution
	// SubmissionKey defaults to a random UUID.
	SubmissionKey string
}

// Controller holds the wizard state.
type Controller struct {
	schema    *schema.Schema
	submitter Submitter
	notifier  Notifier
	navigator Navigator

	record     domain.LeadRecord
	current    int
	completed  map[int]bool
	submitting bool
	closed     bool

	price    domain.PriceRange
	hasPrice bool

	steps []Step
}

// New creates a wizard on the first step with the home city preselected and
// attribution captured.
func New(opts Options) *Controller {
	if opts.Schema == nil {
		opts.Schema = schema.New(nil, nil)
	}
	key := opts.SubmissionKey
	if key == "" {
		key = uuid.NewString()
	}

	rec := domain.NewLeadRecord()
	rec.Attribution = opts.Attribution
	rec.SubmissionKey = key

	c := &Controller{
		schema:    opts.Schema,
		submitter: opts.Submitter,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		record:    rec,
		completed: make(map[int]bool),
	}
	c.steps = []Step{
		&ServiceStep{c: c},
		&PickupStep{c: c},
		&DeliveryStep{c: c},
		&ItemsStep{c: c},
		&ScheduleStep{c: c},
	}
	c.recompute()
	return c
}

// Service returns the service-type step.
func (c *Controller) Service() *ServiceStep { return c.steps[schema.StepService].(*ServiceStep) }

// Pickup returns the pickup step.
func (c *Controller) Pickup() *PickupStep { return c.steps[schema.StepPickup].(*PickupStep) }

// Delivery returns the delivery step.
func (c *Controller) Delivery() *DeliveryStep { return c.steps[schema.StepDelivery].(*DeliveryStep) }

// Items returns the items step.
func (c *Controller) Items() *ItemsStep { return c.steps[schema.StepItems].(*ItemsStep) }

// Schedule returns the schedule and contact step.
func (c *Controller) Schedule() *ScheduleStep { return c.steps[schema.StepSchedule].(*ScheduleStep) }

// Steps returns the steps in order.
func (c *Controller) Steps() []Step { return append([]Step(nil), c.steps...) }

// CurrentStep returns the active step index.
func (c *Controller) CurrentStep() int { return c.current }

// Completed reports whether step i has been completed.
func (c *Controller) Completed(i int) bool { return c.completed[i] }

// IsSubmitting reports whether a submission is in flight.
func (c *Controller) IsSubmitting() bool { return c.submitting }

// Closed reports whether the wizard has been submitted and discarded.
func (c *Controller) Closed() bool { return c.closed }

// Record returns a copy of the record under construction.
func (c *Controller) Record() domain.LeadRecord { return c.record.Clone() }

// EstimatedPrice returns the informational price range, once a service
// type has been chosen.
func (c *Controller) EstimatedPrice() (domain.PriceRange, bool) { return c.price, c.hasPrice }

// Progress returns the completion percentage shown above the form.
func (c *Controller) Progress() int {
	done := len(c.completed)
	if done < len(c.steps) {
		done++
	}
	return done * 100 / len(c.steps)
}

// Advance validates the current step and moves to the next one. On the
// last step it only marks the step completed.
func (c *Controller) Advance() error {
	if err := c.usable(); err != nil {
		return err
	}
	if err := c.checkStep(c.current, titleInvalid, titleIncomplete); err != nil {
		return err
	}
	c.completed[c.current] = true
	if c.current < len(c.steps)-1 {
		c.current++
	}
	return nil
}

// Retreat moves back one step. It never validates.
func (c *Controller) Retreat() {
	if c.closed || c.submitting {
		return
	}
	if c.current > 0 {
		c.current--
	}
}

// JumpTo moves to target when it is a completed step or the one right after
// the furthest completed step. Jumping forward validates the current step.
func (c *Controller) JumpTo(target int) error {
	if err := c.usable(); err != nil {
		return err
	}
	if target < 0 || target >= len(c.steps) {
		return ErrStepOutOfRange
	}
	if target > c.furthestCompleted()+1 {
		return ErrStepLocked
	}
	if target > c.current {
		if err := c.checkStep(c.current, titleFinishStep, titleFinishStep); err != nil {
			return err
		}
		c.completed[c.current] = true
	}
	c.current = target
	return nil
}

// Submit runs the final checks, sends the record and, on success, closes
// the wizard and shows the confirmation. On failure the record is kept and
// a retryable notice is raised.
func (c *Controller) Submit(ctx context.Context) (Confirmation, error) {
	if err := c.usable(); err != nil {
		return Confirmation{}, err
	}

	if err := c.steps[schema.StepSchedule].required(c.record); err != nil {
		c.notify(Notice{Title: titleIncomplete, Message: err.Message, Field: err.Field})
		return Confirmation{}, err
	}
	if errs := c.schema.Validate(c.record); !errs.OK() {
		first, _ := errs.First()
		serr := &StepError{Step: c.stepOf(first.Field), Field: first.Field, Message: first.Message}
		c.notify(Notice{Title: titleInvalid, Message: first.Message, Field: first.Field})
		return Confirmation{}, serr
	}
	if c.submitter == nil {
		return Confirmation{}, errors.New("wizard: no submitter configured")
	}

	c.submitting = true
	leadID, err := c.submitter.SubmitLead(ctx, c.record.Clone())
	c.submitting = false
	if err != nil {
		c.notify(Notice{Title: titleSubmitFailed, Message: submitMessage(err), Retryable: true})
		return Confirmation{}, err
	}

	conf := Confirmation{CustomerName: strings.TrimSpace(c.record.CustomerName), LeadID: leadID}
	c.completed[schema.StepSchedule] = true
	c.closed = true
	c.record = domain.LeadRecord{}
	c.hasPrice = false
	if c.navigator != nil {
		c.navigator.ShowConfirmation(conf)
	}
	return conf, nil
}

// Suggestions returns advice derived from the current answers.
func (c *Controller) Suggestions() []Suggestion {
	return suggestionsFor(c.record)
}

func (c *Controller) usable() error {
	if c.closed {
		return ErrClosed
	}
	if c.submitting {
		return ErrSubmitting
	}
	return nil
}

// checkStep runs the schema rules owned by step, then the step's own
// required-field check.
func (c *Controller) checkStep(step int, invalidTitle, requiredTitle string) error {
	if errs := c.schema.ValidateStep(c.record, step); !errs.OK() {
		first, _ := errs.First()
		c.notify(Notice{Title: invalidTitle, Message: first.Message, Field: first.Field})
		return &StepError{Step: step, Field: first.Field, Message: first.Message}
	}
	if err := c.steps[step].required(c.record); err != nil {
		c.notify(Notice{Title: requiredTitle, Message: err.Message, Field: err.Field})
		return err
	}
	return nil
}

func (c *Controller) furthestCompleted() int {
	furthest := 0
	for i := range c.completed {
		if i > furthest {
			furthest = i
		}
	}
	return furthest
}

func (c *Controller) stepOf(field string) int {
	for i := range c.steps {
		for _, f := range c.schema.StepFields(i) {
			if f == field {
				return i
			}
		}
	}
	return c.current
}

// mutate applies fn to the record and refreshes derived values. Every step
// setter goes through here.
func (c *Controller) mutate(fn func(r *domain.LeadRecord)) {
	if c.closed || c.submitting {
		return
	}
	fn(&c.record)
	c.recompute()
}

func (c *Controller) recompute() {
	c.price, c.hasPrice = domain.EstimatePrice(c.record)
}

func (c *Controller) notify(n Notice) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

// MessageError is implemented by errors that carry a message fit for the
// visitor, such as server-supplied failure messages.
type MessageError interface {
	error
	UserMessage() string
}

const genericSubmitMessage = "تعذّر الإرسال حاليًا. جرّب مرة أخرى خلال لحظات."

func submitMessage(err error) string {
	var me MessageError
	if errors.As(err, &me) && me.UserMessage() != "" {
		return me.UserMessage()
	}
	return genericSubmitMessage
}
