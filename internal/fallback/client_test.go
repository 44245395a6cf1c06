package fallback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"naql_backend/internal/leads/domain"
	"naql_backend/platform/logger"
)

type stubConfig struct{ url, secret string }

func (s stubConfig) GetFallbackWebhookURL() string    { return s.url }
func (s stubConfig) GetFallbackWebhookSecret() string { return s.secret }

func TestDeliverSignsAndCarriesLeadID(t *testing.T) {
	var (
		gotKey  string
		gotSig  string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotSig = r.Header.Get("X-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(stubConfig{url: srv.URL, secret: "s3cret"}, logger.Discard())
	lead := domain.ServerLead{LeadID: "JED-42", Status: domain.StatusNew}
	if err := c.Deliver(context.Background(), lead); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if gotKey != "JED-42" {
		t.Fatalf("Idempotency-Key = %q", gotKey)
	}
	if !Verify("s3cret", gotBody, gotSig) {
		t.Fatalf("signature %q does not verify", gotSig)
	}
	var decoded domain.ServerLead
	if err := json.Unmarshal(gotBody, &decoded); err != nil || decoded.LeadID != "JED-42" {
		t.Fatalf("body = %s (%v)", gotBody, err)
	}
}

func TestDeliverFailsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scenario paused", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(stubConfig{url: srv.URL}, logger.Discard())
	if err := c.Deliver(context.Background(), domain.ServerLead{LeadID: "JED-1"}); err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestDeliverWithoutLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(stubConfig{url: srv.URL}, nil)
	if err := c.Deliver(context.Background(), domain.ServerLead{LeadID: "JED-7"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestNilClientIsNotConfigured(t *testing.T) {
	c := NewClient(stubConfig{}, logger.Discard())
	if c.Configured() {
		t.Fatal("client without URL must be unconfigured")
	}
	if err := c.Deliver(context.Background(), domain.ServerLead{}); err != ErrNotConfigured {
		t.Fatalf("err = %v", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	sig := Sign("k", []byte(`{"a":1}`))
	if Verify("k", []byte(`{"a":2}`), sig) {
		t.Fatal("tampered body verified")
	}
	if Verify("k", []byte(`{"a":1}`), "sha256=zz") {
		t.Fatal("malformed signature verified")
	}
}
