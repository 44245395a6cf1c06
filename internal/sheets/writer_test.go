package sheets_test

import (
	"context"
	"errors"
	"testing"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/sheets"
	"naql_backend/internal/sheets/sheetstest"
)

func sampleLead() domain.ServerLead {
	rec := domain.NewLeadRecord()
	rec.ServiceType = domain.ServiceWithinCity
	rec.FromDistrict = "الروضة"
	rec.FromPlaceType = domain.PlaceApartment
	rec.FromElevator = domain.Yes
	rec.ToCity = domain.HomeCity
	rec.ToDistrict = "الصفا"
	rec.ToElevator = domain.No
	rec.CustomerName = "أحمد محمد"
	rec.CustomerPhone = "966551234567"
	return domain.ServerLead{
		LeadRecord: rec,
		Timestamp:  "2026-03-10T06:00:00Z",
		LeadID:     "JED-1773122400000",
		Status:     domain.StatusNew,
		Currency:   domain.CurrencySAR,
		SLAMinutes: domain.DefaultSLAMinutes,
		IP:         "203.0.113.9",
	}
}

func TestEnsureHeaderRowWritesOnce(t *testing.T) {
	api := sheetstest.New()
	w := sheets.NewWriter(api, "fresh leads", nil)

	for i := 0; i < 2; i++ {
		if err := w.EnsureHeaderRow(context.Background()); err != nil {
			t.Fatalf("EnsureHeaderRow #%d: %v", i+1, err)
		}
	}
	if api.Updates != 1 {
		t.Fatalf("header writes = %d, want 1", api.Updates)
	}
	if api.Formats != 1 {
		t.Fatalf("header formats = %d, want 1", api.Formats)
	}
}

func TestEnsureHeaderRowReplacesStaleHeaders(t *testing.T) {
	api := sheetstest.New()
	api.Header = []any{"timestamp", "lead_id", "status"}
	w := sheets.NewWriter(api, "fresh leads", nil)

	if err := w.EnsureHeaderRow(context.Background()); err != nil {
		t.Fatal(err)
	}
	if api.Updates != 1 || len(api.Header) != len(sheets.Columns) {
		t.Fatalf("stale header not replaced: updates=%d header=%v", api.Updates, api.Header)
	}
}

func TestRowMatchesHeaderLength(t *testing.T) {
	lead := sampleLead()
	row := sheets.Row(lead)
	if len(row) != len(sheets.Headers()) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(sheets.Headers()))
	}

	want := map[string]string{
		"حالة الطلب":      "new",
		"رقم الهاتف":      "966551234567",
		"رقم الطلب":       "JED-1773122400000",
		"الطابق - استلام": "",
		"موافقة واتساب":   "لا",
		"ملاحظات":         "",
		"زمن الاستجابة (دقائق)": "30",
	}
	for header, value := range want {
		i := sheets.ColumnIndex(header)
		if i < 0 {
			t.Fatalf("missing column %q", header)
		}
		if row[i] != value {
			t.Errorf("%s = %q, want %q", header, row[i], value)
		}
	}
}

func TestRowFlattensItemsAndKeepsTextVerbatim(t *testing.T) {
	lead := sampleLead()
	lead.Items = domain.Items{{Item: "سرير", Quantity: 2}, {Item: "ثلاجة", Quantity: 1}}
	lead.Notes = "=HYPERLINK(\"x\")"
	lead.FromFloor = domain.FloorPtr(4)
	lead.WhatsAppOptIn = true

	row := sheets.Row(lead)
	if got := row[sheets.ColumnIndex("قائمة العناصر")]; got != "سرير: 2, ثلاجة: 1" {
		t.Errorf("items = %q", got)
	}
	if got := row[sheets.ColumnIndex("ملاحظات")]; got != "=HYPERLINK(\"x\")" {
		t.Errorf("notes = %q", got)
	}
	if got := row[sheets.ColumnIndex("الطابق - استلام")]; got != "4" {
		t.Errorf("floor = %q", got)
	}
	if got := row[sheets.ColumnIndex("موافقة واتساب")]; got != "نعم" {
		t.Errorf("optin = %q", got)
	}
}

func TestHeadersAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, h := range sheets.Headers() {
		if seen[h] {
			t.Fatalf("duplicate header %q", h)
		}
		seen[h] = true
	}
}

func TestAppendLeadAndStats(t *testing.T) {
	api := sheetstest.New()
	w := sheets.NewWriter(api, "fresh leads", nil)
	ctx := context.Background()

	if err := w.AppendLead(ctx, sampleLead()); err != nil {
		t.Fatalf("AppendLead: %v", err)
	}
	if api.RowCount() != 1 {
		t.Fatalf("rows = %d", api.RowCount())
	}
	if got := api.Cell(0, "حالة الطلب"); got != "new" {
		t.Fatalf("status cell = %q", got)
	}

	stats, err := w.ReadStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalLeads != 1 {
		t.Fatalf("total = %d", stats.TotalLeads)
	}
}

func TestAppendLeadStoresLeadingDashNote(t *testing.T) {
	api := sheetstest.New()
	w := sheets.NewWriter(api, "fresh leads", nil)
	lead := sampleLead()
	lead.Notes = "- call first"
	lead.CustomerName = "+ أحمد"

	if err := w.AppendLead(context.Background(), lead); err != nil {
		t.Fatalf("AppendLead: %v", err)
	}
	if got := api.Cell(0, "ملاحظات"); got != "- call first" {
		t.Fatalf("notes cell = %q", got)
	}
	if got := api.Cell(0, "اسم العميل"); got != "+ أحمد" {
		t.Fatalf("name cell = %q", got)
	}
}

func TestAppendLeadPropagatesFailures(t *testing.T) {
	api := sheetstest.New()
	api.AppendErr = errors.New("quota exceeded")
	w := sheets.NewWriter(api, "fresh leads", nil)

	if err := w.AppendLead(context.Background(), sampleLead()); err == nil {
		t.Fatal("expected append error")
	}
	if api.RowCount() != 0 {
		t.Fatal("no row should be written")
	}
}

func TestTestConnection(t *testing.T) {
	api := sheetstest.New()
	w := sheets.NewWriter(api, "fresh leads", nil)

	info, err := w.TestConnection(context.Background())
	if err != nil || info.Title != "Leads" || info.SpreadsheetID != "sheet-123" {
		t.Fatalf("info=%+v err=%v", info, err)
	}

	api.MetadataErr = errors.New("permission denied")
	if _, err := w.TestConnection(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUnconfigured(t *testing.T) {
	var s sheets.Sink = sheets.Unconfigured{}
	if _, err := s.TestConnection(context.Background()); !errors.Is(err, sheets.ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}
