// Package sheets writes leads to a Google Sheets spreadsheet. Row 1 holds the
// canonical headers and every following row is one lead, positional per the
// header order.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/platform/config"
	"naql_backend/platform/logger"
)

// ErrNotConfigured is returned by the Unconfigured sink.
var ErrNotConfigured = errors.New("sheets: sink not configured")

// Info is the result of a connectivity test.
type Info struct {
	Title         string
	SpreadsheetID string
}

// Stats summarizes the sheet contents.
type Stats struct {
	TotalLeads int
	// LastUpdate is the time of the read, not of the last write.
	LastUpdate time.Time
}

// Sink is implemented by Writer and Unconfigured.
type Sink interface {
	TestConnection(ctx context.Context) (Info, error)
	EnsureHeaderRow(ctx context.Context) error
	AppendLead(ctx context.Context, lead domain.ServerLead) error
	ReadStats(ctx context.Context) (Stats, error)
}

var (
	_ Sink = (*Writer)(nil)
	_ Sink = Unconfigured{}
)

// Writer appends leads to one tab of one spreadsheet.
type Writer struct {
	api       API
	sheetName string
	log       *logger.Logger
	now       func() time.Time
}

// New builds a Writer from configuration. It returns Unconfigured when no
// credentials are present.
func New(ctx context.Context, cfg config.SheetsConfig, log *logger.Logger) (Sink, error) {
	if !cfg.IsSheetsEnabled() {
		log.Warn("sheets: credentials not configured, lead sink disabled")
		return Unconfigured{}, nil
	}
	api, err := NewServiceAPI(ctx, cfg.GetSheetsSpreadsheetID(), cfg.GetSheetsCredentialsJSON())
	if err != nil {
		return nil, err
	}
	return NewWriter(api, cfg.GetSheetsSheetName(), log), nil
}

// NewWriter wraps an API.
func NewWriter(api API, sheetName string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Discard()
	}
	return &Writer{api: api, sheetName: sheetName, log: log, now: time.Now}
}

// EnsureHeaderRow rewrites and styles row 1 unless it already matches the
// canonical headers exactly.
func (w *Writer) EnsureHeaderRow(ctx context.Context) error {
	rows, err := w.api.GetValues(ctx, w.rng("1:1"))
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	headers := Headers()
	if len(rows) > 0 && rowEquals(rows[0], headers) {
		return nil
	}

	if err := w.api.UpdateValues(ctx, w.rng("1:1"), toCells(headers)); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	meta, err := w.api.Metadata(ctx, w.sheetName)
	if err != nil {
		w.log.Warn("sheets: header written but tab lookup failed", "error", err)
		return nil
	}
	if err := w.api.FormatHeader(ctx, meta.SheetID, len(headers)); err != nil {
		w.log.Warn("sheets: header formatting failed", "error", err)
	}
	w.log.Info("sheets: header row updated", "version", HeaderVersion, "columns", len(headers))
	return nil
}

// AppendLead ensures the header row and appends one row for lead.
func (w *Writer) AppendLead(ctx context.Context, lead domain.ServerLead) error {
	if err := w.EnsureHeaderRow(ctx); err != nil {
		return err
	}
	if err := w.api.AppendValues(ctx, w.rng("A1"), toCells(Row(lead))); err != nil {
		return fmt.Errorf("append lead %s: %w", lead.LeadID, err)
	}
	return nil
}

// ReadStats counts data rows below the header.
func (w *Writer) ReadStats(ctx context.Context) (Stats, error) {
	rows, err := w.api.GetValues(ctx, w.rng("A:A"))
	if err != nil {
		return Stats{}, fmt.Errorf("read lead column: %w", err)
	}
	total := len(rows) - 1
	if total < 0 {
		total = 0
	}
	return Stats{TotalLeads: total, LastUpdate: w.now().UTC()}, nil
}

// TestConnection fetches spreadsheet metadata.
func (w *Writer) TestConnection(ctx context.Context) (Info, error) {
	meta, err := w.api.Metadata(ctx, w.sheetName)
	if err != nil {
		return Info{}, fmt.Errorf("fetch spreadsheet metadata: %w", err)
	}
	return Info{Title: meta.Title, SpreadsheetID: meta.SpreadsheetID}, nil
}

// rng builds an A1 range on the target tab. Tab names are always quoted
// since the default one contains a space.
func (w *Writer) rng(cells string) string {
	return "'" + strings.ReplaceAll(w.sheetName, "'", "''") + "'!" + cells
}

func rowEquals(row []any, headers []string) bool {
	if len(row) != len(headers) {
		return false
	}
	for i, cell := range row {
		if fmt.Sprint(cell) != headers[i] {
			return false
		}
	}
	return true
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Unconfigured is used when no credentials are available. Every call fails
// with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) TestConnection(context.Context) (Info, error) { return Info{}, ErrNotConfigured }
func (Unconfigured) EnsureHeaderRow(context.Context) error        { return ErrNotConfigured }
func (Unconfigured) AppendLead(context.Context, domain.ServerLead) error {
	return ErrNotConfigured
}
func (Unconfigured) ReadStats(context.Context) (Stats, error) { return Stats{}, ErrNotConfigured }
