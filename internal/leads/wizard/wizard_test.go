package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/schema"
)

var fixedNow = time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	calls  int
	leadID string
	err    error
	got    domain.LeadRecord
}

func (f *fakeSubmitter) SubmitLead(_ context.Context, rec domain.LeadRecord) (string, error) {
	f.calls++
	f.got = rec
	return f.leadID, f.err
}

type recordingNotifier struct{ notices []Notice }

func (n *recordingNotifier) Notify(notice Notice) { n.notices = append(n.notices, notice) }

func (n *recordingNotifier) last() Notice {
	if len(n.notices) == 0 {
		return Notice{}
	}
	return n.notices[len(n.notices)-1]
}

type recordingNavigator struct{ shown []Confirmation }

func (n *recordingNavigator) ShowConfirmation(c Confirmation) { n.shown = append(n.shown, c) }

type userMessageError struct{ msg string }

func (e userMessageError) Error() string       { return "server: " + e.msg }
func (e userMessageError) UserMessage() string { return e.msg }

type harness struct {
	w   *Controller
	sub *fakeSubmitter
	not *recordingNotifier
	nav *recordingNavigator
}

func newHarness() *harness {
	h := &harness{
		sub: &fakeSubmitter{leadID: "JED-1700000000000"},
		not: &recordingNotifier{},
		nav: &recordingNavigator{},
	}
	h.w = New(Options{
		Schema:        schema.New(nil, nil, schema.WithClock(func() time.Time { return fixedNow })),
		Submitter:     h.sub,
		Notifier:      h.not,
		Navigator:     h.nav,
		SubmissionKey: "key-1",
	})
	return h
}

func mustAdvance(t *testing.T, w *Controller) {
	t.Helper()
	if err := w.Advance(); err != nil {
		t.Fatalf("advance from step %d: %v", w.CurrentStep(), err)
	}
}

func fillToSchedule(t *testing.T, w *Controller) {
	t.Helper()
	w.Service().Select(domain.ServiceWithinCity)
	mustAdvance(t, w)

	w.Pickup().SetDistrict("الروضة")
	w.Pickup().SetPlaceType(domain.PlaceApartment)
	w.Pickup().SetFloor("٣")
	w.Pickup().SetElevator(domain.Yes)
	mustAdvance(t, w)

	w.Delivery().SetDistrict("الصفا")
	w.Delivery().SetElevator(domain.No)
	mustAdvance(t, w)

	w.Items().SetItemsType(domain.ItemsCompleteFurniture)
	mustAdvance(t, w)
}

func TestAdvanceBlocksOnMissingPickupDistrict(t *testing.T) {
	h := newHarness()
	h.w.Service().Select(domain.ServiceWithinCity)
	mustAdvance(t, h.w)

	h.w.Pickup().SetPlaceType(domain.PlaceApartment)
	h.w.Pickup().SetElevator(domain.Yes)

	err := h.w.Advance()
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Field != schema.FieldFromDistrict {
		t.Fatalf("field = %s", stepErr.Field)
	}
	if h.w.CurrentStep() != schema.StepPickup {
		t.Fatalf("current step = %d, want 1", h.w.CurrentStep())
	}
	if h.w.Completed(schema.StepPickup) {
		t.Fatal("pickup must not be marked completed")
	}
	if n := h.not.last(); n.Field != schema.FieldFromDistrict || n.Message == "" {
		t.Fatalf("notice = %+v", n)
	}
}

func TestWithinCityPinsDeliveryCity(t *testing.T) {
	h := newHarness()
	h.w.Service().Select(domain.ServiceWithinCity)
	h.w.Delivery().SetCity("الرياض")

	if got := h.w.Record().ToCity; got != domain.HomeCity {
		t.Fatalf("to_city = %q, want %q", got, domain.HomeCity)
	}

	h.w.Service().Select(domain.ServiceIntercity)
	h.w.Delivery().SetCity("الرياض")
	if got := h.w.Record().ToCity; got != "الرياض" {
		t.Fatalf("intercity to_city = %q", got)
	}
}

func TestPriceFollowsAnswers(t *testing.T) {
	h := newHarness()
	if _, ok := h.w.EstimatedPrice(); ok {
		t.Fatal("no estimate before a service is chosen")
	}

	h.w.Service().Select(domain.ServiceWithinCity)
	if p, _ := h.w.EstimatedPrice(); p.Min != 800 || p.Max != 1100 {
		t.Fatalf("base estimate = %+v", p)
	}

	h.w.Pickup().SetDistrict("الروضة")
	h.w.Delivery().SetDistrict("الصفا")
	h.w.Pickup().SetFloor("5")
	if p, _ := h.w.EstimatedPrice(); p.Min != 1248 || p.Max != 1548 {
		t.Fatalf("adjusted estimate = %+v", p)
	}
}

func TestJumpToRespectsProgress(t *testing.T) {
	h := newHarness()

	if err := h.w.JumpTo(3); !errors.Is(err, ErrStepLocked) {
		t.Fatalf("jump ahead = %v, want ErrStepLocked", err)
	}
	if err := h.w.JumpTo(9); !errors.Is(err, ErrStepOutOfRange) {
		t.Fatalf("jump out of range = %v", err)
	}

	if err := h.w.JumpTo(1); err == nil {
		t.Fatal("forward jump must validate the current step")
	}
	if n := h.not.last(); n.Title != titleFinishStep {
		t.Fatalf("notice title = %q", n.Title)
	}

	h.w.Service().Select(domain.ServiceIntercity)
	if err := h.w.JumpTo(1); err != nil {
		t.Fatalf("jump to next step: %v", err)
	}
	if !h.w.Completed(schema.StepService) {
		t.Fatal("service step should be completed after a forward jump")
	}
	if err := h.w.JumpTo(0); err != nil {
		t.Fatalf("jump back: %v", err)
	}
}

func TestRetreatNeverValidates(t *testing.T) {
	h := newHarness()
	h.w.Service().Select(domain.ServiceWithinCity)
	mustAdvance(t, h.w)

	h.w.Retreat()
	if h.w.CurrentStep() != schema.StepService {
		t.Fatalf("current step = %d", h.w.CurrentStep())
	}
	h.w.Retreat()
	if h.w.CurrentStep() != schema.StepService {
		t.Fatal("retreat below the first step")
	}
}

func TestSubmitSuccess(t *testing.T) {
	h := newHarness()
	fillToSchedule(t, h.w)

	s := h.w.Schedule()
	s.SetDate(s.AvailableDates()[0])
	s.SetName("  أحمد محمد ")
	s.SetPhone("٠٥٥١٢٣٤٥٦٧")

	conf, err := h.w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if conf.LeadID != "JED-1700000000000" || conf.CustomerName != "أحمد محمد" {
		t.Fatalf("confirmation = %+v", conf)
	}
	if h.sub.got.CustomerPhone != "966551234567" {
		t.Fatalf("submitted phone = %q", h.sub.got.CustomerPhone)
	}
	if h.sub.got.SubmissionKey != "key-1" {
		t.Fatalf("submission key = %q", h.sub.got.SubmissionKey)
	}
	if h.sub.got.FromFloor == nil || int(*h.sub.got.FromFloor) != 3 {
		t.Fatalf("from_floor = %v", h.sub.got.FromFloor)
	}
	if len(h.nav.shown) != 1 {
		t.Fatalf("confirmation shown %d times", len(h.nav.shown))
	}
	if !h.w.Closed() {
		t.Fatal("wizard should be closed after success")
	}
	if _, err := h.w.Submit(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("second submit = %v, want ErrClosed", err)
	}
	if h.sub.calls != 1 {
		t.Fatalf("submitter called %d times", h.sub.calls)
	}
}

func TestSubmitRequiresContactDetails(t *testing.T) {
	h := newHarness()
	fillToSchedule(t, h.w)
	h.w.Schedule().SetDate("2026-03-11")

	_, err := h.w.Submit(context.Background())
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Field != schema.FieldCustomerName {
		t.Fatalf("submit error = %v", err)
	}
	if h.sub.calls != 0 {
		t.Fatal("submitter must not be called")
	}
	if n := h.not.last(); n.Message != "يرجى إدخال الاسم قبل إرسال الطلب" {
		t.Fatalf("notice = %+v", n)
	}
}

func TestSubmitFailureKeepsRecord(t *testing.T) {
	h := newHarness()
	fillToSchedule(t, h.w)
	s := h.w.Schedule()
	s.SetDate("2026-03-12")
	s.SetName("سارة")
	s.SetPhone("0551234567")

	h.sub.err = errors.New("connection refused")
	if _, err := h.w.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}
	if h.w.IsSubmitting() || h.w.Closed() {
		t.Fatal("wizard must be usable after a failed submit")
	}
	if h.w.Record().CustomerName != "سارة" {
		t.Fatal("record must survive a failed submit")
	}
	n := h.not.last()
	if n.Title != titleSubmitFailed || !n.Retryable || n.Message != genericSubmitMessage {
		t.Fatalf("notice = %+v", n)
	}

	h.sub.err = userMessageError{msg: "تم تجاوز الحد المسموح. يرجى المحاولة بعد دقيقة."}
	_, _ = h.w.Submit(context.Background())
	if got := h.not.last().Message; got != "تم تجاوز الحد المسموح. يرجى المحاولة بعد دقيقة." {
		t.Fatalf("server message not surfaced: %q", got)
	}

	h.sub.err = nil
	if _, err := h.w.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if h.sub.calls != 3 {
		t.Fatalf("submitter calls = %d", h.sub.calls)
	}
}

func TestItemsAndSuggestions(t *testing.T) {
	h := newHarness()
	items := h.w.Items()
	items.SetItemsType(domain.ItemsSpecific)
	items.Increment("سرير")
	items.Increment("سرير")
	items.Decrement("سرير")
	if got := h.w.Record().Items.Quantity("سرير"); got != 1 {
		t.Fatalf("quantity = %d", got)
	}
	items.Decrement("سرير")
	if len(h.w.Record().Items) != 0 {
		t.Fatal("item should be removed at zero")
	}

	h.w.Pickup().SetFloor("4")
	h.w.Pickup().SetElevator(domain.No)
	for _, label := range domain.CatalogItems[:6] {
		items.Increment(label)
	}

	got := h.w.Suggestions()
	if len(got) != 2 || got[0].Kind != SuggestionWarning || got[1].Kind != SuggestionInfo {
		t.Fatalf("suggestions = %+v", got)
	}
}

func TestPickupCityChangeClearsDistrict(t *testing.T) {
	h := newHarness()
	h.w.Pickup().SetDistrict("الروضة")
	h.w.Pickup().SetCity("مكة")
	if h.w.Record().FromDistrict != "" {
		t.Fatal("home-city district should be cleared when leaving the home city")
	}
	if len(h.w.Pickup().Districts()) != 0 {
		t.Fatal("non-home city has no district list")
	}
}
