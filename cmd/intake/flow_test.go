package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/reference"
	"naql_backend/internal/leads/schema"
	"naql_backend/internal/leads/wizard"
)

type scriptedSubmitter struct {
	errs  []error
	calls int
	got   domain.LeadRecord
}

func (s *scriptedSubmitter) SubmitLead(_ context.Context, rec domain.LeadRecord) (string, error) {
	s.calls++
	s.got = rec
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "JED-1773122400000", nil
}

func newScripted(input string, sub *scriptedSubmitter) (*wizard.Controller, *terminal, *bytes.Buffer) {
	var out bytes.Buffer
	term := newTerminal(strings.NewReader(input), &out)
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	c := wizard.New(wizard.Options{
		Schema:      schema.New(nil, nil, schema.WithClock(func() time.Time { return now })),
		Submitter:   sub,
		Notifier:    term,
		Navigator:   term,
		Attribution: domain.CaptureAttribution("/?utm_source=phone", "", terminalUserAgent),
	})
	return c, term, &out
}

func lines(in ...string) string { return strings.Join(in, "\n") + "\n" }

var happyPath = []string{
	"1", "1", "", // within city, toggle packing
	"", "1", "1", "3", "1", // pickup: keep city, district, apartment, floor, elevator
	"2", "", "2", // delivery: district, no floor, no elevator
	"1", "2", // complete furniture, no hoist
	"1", "أحمد محمد", "0551234567", "1", "", // schedule
}

func TestRunSubmitsCompletedForm(t *testing.T) {
	sub := &scriptedSubmitter{}
	c, term, out := newScripted(lines(happyPath...), sub)

	if err := run(context.Background(), c, term); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if sub.calls != 1 {
		t.Fatalf("submit calls = %d", sub.calls)
	}
	if !c.Closed() {
		t.Fatal("wizard should be closed after a successful submission")
	}

	districts := reference.Default().Districts(domain.HomeCity)
	got := sub.got
	if got.FromDistrict != districts[0] || got.ToDistrict != districts[1] {
		t.Fatalf("districts = %q -> %q", got.FromDistrict, got.ToDistrict)
	}
	if got.ToCity != domain.HomeCity {
		t.Fatalf("to city = %q", got.ToCity)
	}
	if len(got.AdditionalServices) != 1 || got.AdditionalServices[0] != domain.AddonPacking {
		t.Fatalf("addons = %v", got.AdditionalServices)
	}
	if got.CustomerPhone != "966551234567" || !got.WhatsAppOptIn {
		t.Fatalf("contact = %q optIn=%v", got.CustomerPhone, got.WhatsAppOptIn)
	}
	if got.DatePref != "2026-03-10" {
		t.Fatalf("date = %q", got.DatePref)
	}
	if got.Attribution.UTMSource != "phone" {
		t.Fatalf("attribution = %+v", got.Attribution)
	}
	if !strings.Contains(out.String(), "JED-1773122400000") {
		t.Fatalf("confirmation not shown:\n%s", out)
	}
	if !strings.Contains(out.String(), "السعر التقديري") {
		t.Fatalf("price estimate not shown:\n%s", out)
	}
}

func TestRunRetriesFailedSubmission(t *testing.T) {
	sub := &scriptedSubmitter{errs: []error{errors.New("connection refused")}}
	input := lines(append(append([]string(nil), happyPath...), "1")...)
	c, term, out := newScripted(input, sub)

	if err := run(context.Background(), c, term); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if sub.calls != 2 {
		t.Fatalf("submit calls = %d, want 2", sub.calls)
	}
	if !strings.Contains(out.String(), "إعادة المحاولة") {
		t.Fatalf("retry prompt missing:\n%s", out)
	}
}

func TestRunAsksStepAgainAfterValidationFailure(t *testing.T) {
	sub := &scriptedSubmitter{}
	// Free-text city leaves the district empty, so the pickup step fails.
	c, term, out := newScripted(lines("1", "", "الرياض", "", "1", "", "1"), sub)

	err := run(context.Background(), c, term)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want EOF", err)
	}
	if n := strings.Count(out.String(), "== من أين؟"); n != 2 {
		t.Fatalf("pickup step shown %d times:\n%s", n, out)
	}
	if !strings.Contains(out.String(), "يرجى اختيار حي الاستلام") {
		t.Fatalf("district notice missing:\n%s", out)
	}
	if sub.calls != 0 {
		t.Fatal("nothing should be submitted")
	}
}

func TestChooseRejectsOutOfRange(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(strings.NewReader(lines("7", "abc", "٢")), &out)

	i, err := term.choose("اختر", []string{"أ", "ب"}, false)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if i != 1 {
		t.Fatalf("index = %d, want 1", i)
	}
	if strings.Count(out.String(), "اختيار غير صالح") != 2 {
		t.Fatalf("expected two rejections:\n%s", out.String())
	}
}
