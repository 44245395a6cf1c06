package service

import (
	"net/url"

	"naql_backend/platform/phone"
	"naql_backend/platform/sanitize"
)

const (
	confirmationMessage = "تم استلام طلبك بنجاح!"
	followUpText        = "مرحبا، قدمت طلب نقل عفش عبر موقعكم واريد متابعة العروض"
	maxDisplayName      = 50
)

// Confirmation is the data shown after a successful submission.
type Confirmation struct {
	CustomerName string
	Message      string
	WhatsAppURL  string
	CallURL      string
}

// BuildConfirmation renders the thank-you view for name. Only the name is
// echoed back; nothing else about the lead is exposed.
func BuildConfirmation(name, whatsAppNumber, contactPhone string) Confirmation {
	wa := phone.FormatNumericInput(whatsAppNumber)
	tel := phone.FormatNumericInput(contactPhone)

	return Confirmation{
		CustomerName: sanitize.Truncate(sanitize.Text(name), maxDisplayName),
		Message:      confirmationMessage,
		WhatsAppURL:  "https://wa.me/" + wa + "?" + url.Values{"text": {followUpText}}.Encode(),
		CallURL:      "tel:+" + tel,
	}
}
