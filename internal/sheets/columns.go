package sheets

import (
	"strconv"
	"strings"

	"naql_backend/internal/leads/domain"
)

// HeaderVersion identifies the current column contract. Bump it whenever a
// column is added, removed, renamed or moved; appends are positional.
const HeaderVersion = 3

// Column binds one header label to the value written under it.
type Column struct {
	Header string
	Value  func(domain.ServerLead) string
}

// Columns is the column contract, in sheet order.
var Columns = []Column{
	{"وقت الطلب", func(l domain.ServerLead) string { return l.Timestamp }},
	{"رقم الطلب", func(l domain.ServerLead) string { return l.LeadID }},
	{"حالة الطلب", func(l domain.ServerLead) string { return l.Status }},
	{"نوع الخدمة", func(l domain.ServerLead) string { return string(l.ServiceType) }},
	{"خدمات إضافية", func(l domain.ServerLead) string { return joinAddons(l.AdditionalServices) }},
	{"مدينة الاستلام", func(l domain.ServerLead) string { return l.FromCity }},
	{"حي الاستلام", func(l domain.ServerLead) string { return l.FromDistrict }},
	{"نوع المكان - استلام", func(l domain.ServerLead) string { return string(l.FromPlaceType) }},
	{"الطابق - استلام", func(l domain.ServerLead) string { return floor(l.FromFloor) }},
	{"مصعد متاح - استلام", func(l domain.ServerLead) string { return string(l.FromElevator) }},
	{"مدينة التسليم", func(l domain.ServerLead) string { return l.ToCity }},
	{"حي التسليم", func(l domain.ServerLead) string { return l.ToDistrict }},
	{"الطابق - تسليم", func(l domain.ServerLead) string { return floor(l.ToFloor) }},
	{"مصعد متاح - تسليم", func(l domain.ServerLead) string { return string(l.ToElevator) }},
	{"نوع المنقولات", func(l domain.ServerLead) string { return string(l.ItemsType) }},
	{"قائمة العناصر", func(l domain.ServerLead) string { return l.Items.String() }},
	{"رافعة مطلوبة", func(l domain.ServerLead) string { return string(l.HoistNeeded) }},
	{"تاريخ مفضل", func(l domain.ServerLead) string { return l.DatePref }},
	{"اسم العميل", func(l domain.ServerLead) string { return l.CustomerName }},
	{"رقم الهاتف", func(l domain.ServerLead) string { return l.CustomerPhone }},
	{"موافقة واتساب", func(l domain.ServerLead) string { return yesNo(l.WhatsAppOptIn) }},
	{"ملاحظات", func(l domain.ServerLead) string { return l.Notes }},
	{"مصدر الزيارة", func(l domain.ServerLead) string { return l.UTMSource }},
	{"وسيط التسويق", func(l domain.ServerLead) string { return l.UTMMedium }},
	{"الحملة التسويقية", func(l domain.ServerLead) string { return l.UTMCampaign }},
	{"المصطلح", func(l domain.ServerLead) string { return l.UTMTerm }},
	{"المحتوى", func(l domain.ServerLead) string { return l.UTMContent }},
	{"Google Click ID", func(l domain.ServerLead) string { return l.GCLID }},
	{"نوع الجهاز", func(l domain.ServerLead) string { return l.Device }},
	{"صفحة الدخول", func(l domain.ServerLead) string { return l.PagePath }},
	{"الموقع المرجعي", func(l domain.ServerLead) string { return l.Referrer }},
	{"عنوان IP", func(l domain.ServerLead) string { return l.IP }},
	{"العملة", func(l domain.ServerLead) string { return l.Currency }},
	{"زمن الاستجابة (دقائق)", func(l domain.ServerLead) string { return strconv.Itoa(l.SLAMinutes) }},
}

// Headers returns the canonical header row.
func Headers() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = c.Header
	}
	return out
}

// Row maps lead onto the header order. Empty optional fields become empty
// strings so the row always has one cell per header.
func Row(lead domain.ServerLead) []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = c.Value(lead)
	}
	return out
}

// ColumnIndex returns the position of header, or -1.
func ColumnIndex(header string) int {
	for i, c := range Columns {
		if c.Header == header {
			return i
		}
	}
	return -1
}

func floor(f *domain.Floor) string {
	if f == nil {
		return ""
	}
	return strconv.Itoa(int(*f))
}

func yesNo(v bool) string {
	if v {
		return "نعم"
	}
	return "لا"
}

func joinAddons(in []domain.AdditionalService) string {
	parts := make([]string, len(in))
	for i, a := range in {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
