package adapters

import (
	"context"
	"errors"
	"testing"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/sheets"
	"naql_backend/internal/sheets/sheetstest"
	"naql_backend/platform/metrics"
)

func TestLeadSinkAdapter(t *testing.T) {
	api := sheetstest.New()
	a := NewLeadSinkAdapter(sheets.NewWriter(api, "fresh leads", nil), metrics.New())
	ctx := context.Background()

	if err := a.Probe(ctx); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if err := a.AppendLead(ctx, domain.ServerLead{LeadID: "JED-1", Status: domain.StatusNew}); err != nil {
		t.Fatalf("append: %v", err)
	}

	info, err := a.TestConnection(ctx)
	if err != nil || info.ID != "sheet-123" {
		t.Fatalf("info = %+v err=%v", info, err)
	}
	stats, err := a.ReadStats(ctx)
	if err != nil || stats.TotalLeads != 1 {
		t.Fatalf("stats = %+v err=%v", stats, err)
	}

	api.MetadataErr = errors.New("forbidden")
	if err := a.Probe(ctx); err == nil {
		t.Fatal("probe should fail")
	}
}

func TestLeadSinkAdapterUnconfigured(t *testing.T) {
	a := NewLeadSinkAdapter(sheets.Unconfigured{}, nil)
	if err := a.Probe(context.Background()); !errors.Is(err, sheets.ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}
