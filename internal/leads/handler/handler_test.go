package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"naql_backend/internal/adapters"
	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/handler"
	"naql_backend/internal/leads/schema"
	"naql_backend/internal/leads/service"
	"naql_backend/internal/leads/transport"
	"naql_backend/internal/sheets"
	"naql_backend/internal/sheets/sheetstest"
	"naql_backend/platform/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

type contact struct{}

func (contact) GetContactPhone() string    { return "966543654700" }
func (contact) GetContactWhatsApp() string { return "966543654700" }

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	router *gin.Engine
	sheet  *sheetstest.FakeAPI
}

func newHarness(t *testing.T, limiter ratelimit.Limiter) *harness {
	t.Helper()

	sheet := sheetstest.New()
	sink := adapters.NewLeadSinkAdapter(sheets.NewWriter(sheet, "fresh leads", nil), nil)
	clock := func() time.Time { return fixedNow }
	svc := service.New(service.Deps{
		Schema:  schema.New(nil, nil, schema.WithClock(clock)),
		Limiter: limiter,
		Sink:    sink,
		IDs:     domain.NewIDGeneratorWithClock(clock),
		Now:     clock,
	})

	r := gin.New()
	handler.New(svc, contact{}).RegisterRoutes(r.Group("/api/v1/lead"))
	handler.NewDiagnostics(sink, nil).RegisterRoutes(r.Group("/api/v1/diagnostics"))
	return &harness{router: r, sheet: sheet}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func validRecord() domain.LeadRecord {
	rec := domain.NewLeadRecord()
	rec.ServiceType = domain.ServiceWithinCity
	rec.FromDistrict = "الروضة"
	rec.FromPlaceType = domain.PlaceApartment
	rec.FromElevator = domain.Yes
	rec.ToCity = domain.HomeCity
	rec.ToDistrict = "الصفا"
	rec.ToElevator = domain.No
	rec.ItemsType = domain.ItemsCompleteFurniture
	rec.HoistNeeded = domain.HoistNo
	rec.DatePref = "2026-03-10"
	rec.CustomerName = "أحمد محمد"
	rec.CustomerPhone = "0551234567"
	return rec
}

func TestSubmitLeadAppendsOneRow(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPost, "/api/v1/lead", validRecord())
	require.Equal(t, http.StatusOK, w.Code)

	var resp transport.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, service.MsgAccepted, resp.Message)
	require.NotEmpty(t, resp.LeadID)

	require.Equal(t, 1, h.sheet.RowCount())
	require.Equal(t, "new", h.sheet.Cell(0, "حالة الطلب"))
	require.Equal(t, "966551234567", h.sheet.Cell(0, "رقم الهاتف"))
	require.Equal(t, resp.LeadID, h.sheet.Cell(0, "رقم الطلب"))
	require.Equal(t, "203.0.113.9", h.sheet.Cell(0, "عنوان IP"))
	require.Equal(t, "desktop", h.sheet.Cell(0, "نوع الجهاز"))
}

func TestSubmitLeadRejectsInvalidPhone(t *testing.T) {
	h := newHarness(t, nil)

	rec := validRecord()
	rec.CustomerPhone = "123"
	w := h.do(t, http.MethodPost, "/api/v1/lead", rec)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp transport.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, service.MsgInvalid, resp.Message)
	require.Contains(t, resp.Errors, schema.FieldCustomerPhone)
	require.Zero(t, h.sheet.RowCount())
}

func TestSubmitLeadRejectsMalformedJSON(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lead", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, h.sheet.RowCount())
}

func TestSubmitLeadRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemory(ratelimit.Policy{Limit: 1, Window: time.Minute}).
		WithClock(func() time.Time { return fixedNow })
	h := newHarness(t, limiter)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/v1/lead", validRecord()).Code)

	w := h.do(t, http.MethodPost, "/api/v1/lead", validRecord())
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Equal(t, 1, h.sheet.RowCount())
}

func (h *harness) doRaw(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lead", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestSubmitLeadRateLimitsBeforeDecoding(t *testing.T) {
	limiter := ratelimit.NewMemory(ratelimit.Policy{Limit: 5, Window: time.Minute}).
		WithClock(func() time.Time { return fixedNow })
	h := newHarness(t, limiter)

	rec := validRecord()
	rec.CustomerPhone = "123"
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/v1/lead", rec).Code)
	}

	w := h.doRaw(t, `{"from_floor":"abc"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Zero(t, h.sheet.RowCount())
}

func TestSubmitLeadReportsUndecodableField(t *testing.T) {
	h := newHarness(t, nil)

	w := h.doRaw(t, `{"from_floor":"abc"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp transport.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, service.MsgInvalid, resp.Message)
	require.Contains(t, resp.Errors, "from_floor")
}

func TestSubmitLeadBlankFloorStaysEmpty(t *testing.T) {
	h := newHarness(t, nil)

	data, err := json.Marshal(validRecord())
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	body["from_floor"] = ""
	body["to_floor"] = "٢"

	w := h.do(t, http.MethodPost, "/api/v1/lead", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "", h.sheet.Cell(0, "الطابق - استلام"))
	require.Equal(t, "2", h.sheet.Cell(0, "الطابق - تسليم"))
}

func TestSubmitLeadHidesSinkErrors(t *testing.T) {
	h := newHarness(t, nil)
	h.sheet.AppendErr = errors.New("googleapi: Error 403: svc@internal-project")

	w := h.do(t, http.MethodPost, "/api/v1/lead", validRecord())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), service.MsgDeliveryError)
	require.NotContains(t, w.Body.String(), "internal-project")
}

func TestConfirmation(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodGet, "/api/v1/lead/confirmation?name=%3Cb%3E%D8%B3%D8%A7%D8%B1%D8%A9%3C/b%3E", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp transport.ConfirmationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "سارة", resp.CustomerName)
	require.Equal(t, "tel:+966543654700", resp.CallURL)
	require.Contains(t, resp.WhatsAppURL, "https://wa.me/966543654700?text=")
}

func TestSinkDiagnostics(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/v1/lead", validRecord()).Code)

	w := h.do(t, http.MethodGet, "/api/v1/diagnostics/sink", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp transport.SinkDiagnosticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.Equal(t, "Leads", resp.Data.SheetTitle)
	require.Equal(t, "sheet-123", resp.Data.SheetID)
	require.Equal(t, 1, resp.Data.TotalLeads)
}

func TestSinkDiagnosticsConnectionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.sheet.MetadataErr = errors.New("403 forbidden")

	w := h.do(t, http.MethodGet, "/api/v1/diagnostics/sink", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp transport.SinkDiagnosticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "فشل الاتصال مع Google Sheets", resp.Message)
}

func TestWriteHeaders(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPost, "/api/v1/diagnostics/sink", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, h.sheet.Updates)

	h.sheet.UpdateErr = errors.New("quota")
	h.sheet.Header = nil
	w = h.do(t, http.MethodPost, "/api/v1/diagnostics/sink", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "حدث خطأ أثناء إضافة رؤوس الأعمدة")
}
