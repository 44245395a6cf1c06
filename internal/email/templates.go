package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/sheets"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type leadField struct {
	Label string
	Value string
}

type leadEmailData struct {
	baseEmailData
	LeadID string
	Fields []leadField
	Reason string
}

// leadFields lists the lead in sheet column order so an undelivered lead
// can be copied into the sheet by hand.
func leadFields(lead domain.ServerLead) []leadField {
	headers := sheets.Headers()
	values := sheets.Row(lead)
	fields := make([]leadField, 0, len(headers))
	for i, h := range headers {
		if values[i] == "" {
			continue
		}
		fields = append(fields, leadField{Label: h, Value: values[i]})
	}
	return fields
}

func renderNewLeadEmail(lead domain.ServerLead) (string, error) {
	return renderEmailTemplate("new_lead.html", leadEmailData{
		baseEmailData: baseEmailData{
			Title:      "طلب نقل جديد",
			Heading:    "طلب نقل جديد",
			Subheading: lead.CustomerName,
		},
		LeadID: lead.LeadID,
		Fields: leadFields(lead),
	})
}

func renderUndeliveredLeadEmail(lead domain.ServerLead, reason string) (string, error) {
	return renderEmailTemplate("undelivered_lead.html", leadEmailData{
		baseEmailData: baseEmailData{
			Title:      "تعذّر حفظ الطلب",
			Heading:    "تعذّر حفظ الطلب في الجدول",
			Subheading: "يرجى إضافة الطلب يدويًا والتواصل مع العميل.",
		},
		LeadID: lead.LeadID,
		Fields: leadFields(lead),
		Reason: reason,
	})
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
