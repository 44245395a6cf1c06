// Package handler exposes the lead intake pipeline over HTTP.
package handler

import (
	"io"
	"net/http"
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/ports"
	"naql_backend/internal/leads/service"
	"naql_backend/internal/leads/transport"
	"naql_backend/platform/config"
	"naql_backend/platform/httpkit"
	"naql_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 64 << 10

const (
	msgSinkConnected  = "تم الاتصال مع Google Sheets بنجاح"
	msgSinkFailed     = "فشل الاتصال مع Google Sheets"
	msgSinkTestError  = "حدث خطأ أثناء اختبار الاتصال"
	msgHeadersWritten = "تم إضافة رؤوس الأعمدة بنجاح"
	msgHeadersFailed  = "حدث خطأ أثناء إضافة رؤوس الأعمدة"
)

// Handler serves the public lead endpoints.
type Handler struct {
	svc     *service.Service
	contact config.ContactConfig
}

// New creates the public lead handler.
func New(svc *service.Service, contact config.ContactConfig) *Handler {
	return &Handler{svc: svc, contact: contact}
}

// RegisterRoutes mounts POST /lead and GET /lead/confirmation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.GET("/confirmation", h.Confirmation)
}

// Submit accepts one wizard submission. The rate limit is charged before
// the body is read.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	clientIP := httpkit.ClientIP(c.Request)
	if err := h.svc.Admit(ctx, clientIP); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		httpkit.HandleError(c, h.svc.Malformed(ctx, err))
		return
	}
	rec, err := domain.DecodeLeadRecord(body)
	if err != nil {
		httpkit.HandleError(c, h.svc.Malformed(ctx, err))
		return
	}

	res, err := h.svc.Process(ctx, service.Submission{
		Record:    rec,
		ClientIP:  clientIP,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.SubmitLeadResponse{
		Success: true,
		LeadID:  res.LeadID,
		Message: res.Message,
	})
}

// Confirmation returns the thank-you view data for ?name=.
func (h *Handler) Confirmation(c *gin.Context) {
	conf := service.BuildConfirmation(c.Query("name"), h.contact.GetContactWhatsApp(), h.contact.GetContactPhone())
	httpkit.OK(c, transport.ConfirmationResponse{
		Success:      true,
		CustomerName: conf.CustomerName,
		Message:      conf.Message,
		WhatsAppURL:  conf.WhatsAppURL,
		CallURL:      conf.CallURL,
	})
}

// DiagnosticsHandler serves the sink diagnostics endpoints.
type DiagnosticsHandler struct {
	sink ports.SinkInspector
	log  *logger.Logger
}

// NewDiagnostics creates the diagnostics handler.
func NewDiagnostics(sink ports.SinkInspector, log *logger.Logger) *DiagnosticsHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &DiagnosticsHandler{sink: sink, log: log}
}

// RegisterRoutes mounts GET and POST /sink.
func (h *DiagnosticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sink", h.TestSink)
	rg.POST("/sink", h.WriteHeaders)
}

// TestSink checks connectivity, repairs the header row and reports stats.
func (h *DiagnosticsHandler) TestSink(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := h.sink.TestConnection(ctx)
	if err != nil {
		h.log.WithContext(ctx).Error("diagnostics: sink connection failed", "error", err)
		httpkit.JSON(c, http.StatusInternalServerError, transport.SinkDiagnosticsResponse{
			Success: false,
			Message: msgSinkFailed,
			Error:   err.Error(),
		})
		return
	}

	if err := h.sink.EnsureHeaderRow(ctx); err != nil {
		h.fail(c, msgSinkTestError, err)
		return
	}
	stats, err := h.sink.ReadStats(ctx)
	if err != nil {
		h.fail(c, msgSinkTestError, err)
		return
	}

	httpkit.OK(c, transport.SinkDiagnosticsResponse{
		Success: true,
		Message: msgSinkConnected,
		Data: &transport.SinkDiagnosticsData{
			SheetTitle: info.Title,
			SheetID:    info.ID,
			TotalLeads: stats.TotalLeads,
			LastUpdate: stats.LastUpdate.UTC().Format(time.RFC3339),
		},
	})
}

// WriteHeaders idempotently rewrites the header row.
func (h *DiagnosticsHandler) WriteHeaders(c *gin.Context) {
	if err := h.sink.EnsureHeaderRow(c.Request.Context()); err != nil {
		h.fail(c, msgHeadersFailed, err)
		return
	}
	httpkit.OK(c, transport.SinkDiagnosticsResponse{Success: true, Message: msgHeadersWritten})
}

func (h *DiagnosticsHandler) fail(c *gin.Context, message string, err error) {
	h.log.WithContext(c.Request.Context()).Error("diagnostics: sink operation failed", "error", err)
	httpkit.JSON(c, http.StatusInternalServerError, transport.SinkDiagnosticsResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
