package adapters

import (
	"context"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/ports"
	"naql_backend/internal/sheets"
	"naql_backend/platform/metrics"
)

// LeadSinkAdapter adapts the spreadsheet writer for the leads domain and
// records every remote call.
type LeadSinkAdapter struct {
	sink    sheets.Sink
	metrics *metrics.Metrics
}

var (
	_ ports.LeadSink      = (*LeadSinkAdapter)(nil)
	_ ports.SinkInspector = (*LeadSinkAdapter)(nil)
)

// NewLeadSinkAdapter wraps sink. Metrics may be nil.
func NewLeadSinkAdapter(sink sheets.Sink, m *metrics.Metrics) *LeadSinkAdapter {
	return &LeadSinkAdapter{sink: sink, metrics: m}
}

// Probe checks that the spreadsheet is reachable.
func (a *LeadSinkAdapter) Probe(ctx context.Context) error {
	_, err := a.sink.TestConnection(ctx)
	a.metrics.SinkOperation("probe", err)
	return err
}

// AppendLead writes one row.
func (a *LeadSinkAdapter) AppendLead(ctx context.Context, lead domain.ServerLead) error {
	err := a.sink.AppendLead(ctx, lead)
	a.metrics.SinkOperation("append", err)
	return err
}

// TestConnection returns the spreadsheet title and id.
func (a *LeadSinkAdapter) TestConnection(ctx context.Context) (ports.SinkInfo, error) {
	info, err := a.sink.TestConnection(ctx)
	a.metrics.SinkOperation("test_connection", err)
	if err != nil {
		return ports.SinkInfo{}, err
	}
	return ports.SinkInfo{Title: info.Title, ID: info.SpreadsheetID}, nil
}

// EnsureHeaderRow rewrites the header row when it has drifted.
func (a *LeadSinkAdapter) EnsureHeaderRow(ctx context.Context) error {
	err := a.sink.EnsureHeaderRow(ctx)
	a.metrics.SinkOperation("ensure_header", err)
	return err
}

// ReadStats counts stored leads.
func (a *LeadSinkAdapter) ReadStats(ctx context.Context) (ports.SinkStats, error) {
	stats, err := a.sink.ReadStats(ctx)
	a.metrics.SinkOperation("read_stats", err)
	if err != nil {
		return ports.SinkStats{}, err
	}
	return ports.SinkStats{TotalLeads: stats.TotalLeads, LastUpdate: stats.LastUpdate}, nil
}
