// Package sheetstest provides an in-memory spreadsheet for tests.
package sheetstest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"naql_backend/internal/sheets"
)

// FakeAPI keeps one tab in memory. Set the error fields to make the
// corresponding call fail.
type FakeAPI struct {
	mu sync.Mutex

	Title         string
	SpreadsheetID string

	Header []any
	Rows   [][]any

	Updates int
	Appends int
	Formats int

	GetErr      error
	UpdateErr   error
	AppendErr   error
	MetadataErr error
}

var _ sheets.API = (*FakeAPI)(nil)

// New returns an empty spreadsheet.
func New() *FakeAPI {
	return &FakeAPI{Title: "Leads", SpreadsheetID: "sheet-123"}
}

func (f *FakeAPI) GetValues(_ context.Context, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	switch {
	case strings.HasSuffix(rng, "!1:1"):
		if f.Header == nil {
			return nil, nil
		}
		return [][]any{append([]any(nil), f.Header...)}, nil
	case strings.HasSuffix(rng, "!A:A"):
		var out [][]any
		if f.Header != nil {
			out = append(out, f.Header[:1])
		}
		for _, r := range f.Rows {
			out = append(out, r[:1])
		}
		return out, nil
	}
	return nil, fmt.Errorf("sheetstest: unsupported range %q", rng)
}

func (f *FakeAPI) UpdateValues(_ context.Context, _ string, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.Updates++
	f.Header = append([]any(nil), row...)
	return nil
}

func (f *FakeAPI) AppendValues(_ context.Context, _ string, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AppendErr != nil {
		return f.AppendErr
	}
	f.Appends++
	f.Rows = append(f.Rows, append([]any(nil), row...))
	return nil
}

func (f *FakeAPI) FormatHeader(context.Context, int64, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Formats++
	return nil
}

func (f *FakeAPI) Metadata(context.Context, string) (sheets.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MetadataErr != nil {
		return sheets.Metadata{}, f.MetadataErr
	}
	return sheets.Metadata{Title: f.Title, SpreadsheetID: f.SpreadsheetID}, nil
}

// Cell returns the value under header in data row i.
func (f *FakeAPI) Cell(i int, header string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	col := sheets.ColumnIndex(header)
	if col < 0 || i >= len(f.Rows) {
		return ""
	}
	return fmt.Sprint(f.Rows[i][col])
}

// RowCount returns the number of data rows.
func (f *FakeAPI) RowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Rows)
}
