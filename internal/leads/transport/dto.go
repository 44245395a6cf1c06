// Package transport holds the JSON shapes exchanged with the lead endpoints.
// The request body of POST /lead is domain.LeadRecord itself.
package transport

// SubmitLeadResponse is the envelope returned by POST /lead.
type SubmitLeadResponse struct {
	Success bool              `json:"success"`
	LeadID  string            `json:"leadId,omitempty"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ConfirmationResponse backs the thank-you view.
type ConfirmationResponse struct {
	Success      bool   `json:"success"`
	CustomerName string `json:"customerName"`
	Message      string `json:"message"`
	WhatsAppURL  string `json:"whatsappUrl"`
	CallURL      string `json:"callUrl"`
}

// SinkDiagnosticsData describes the spreadsheet behind the sink.
type SinkDiagnosticsData struct {
	SheetTitle string `json:"sheetTitle"`
	SheetID    string `json:"sheetId"`
	TotalLeads int    `json:"totalLeads"`
	LastUpdate string `json:"lastUpdate"`
}

// SinkDiagnosticsResponse is returned by the diagnostics endpoints.
type SinkDiagnosticsResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    *SinkDiagnosticsData `json:"data,omitempty"`
	Error   string               `json:"error,omitempty"`
}
