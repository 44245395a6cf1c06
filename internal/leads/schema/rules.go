package schema

import (
	"strconv"
	"strings"
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/platform/validator"
)

// Wizard step indexes.
const (
	StepService = iota
	StepPickup
	StepDelivery
	StepItems
	StepSchedule
)

// StepCount is the number of wizard steps.
const StepCount = 5

// Field names as they appear on the wire.
const (
	FieldServiceType        = "service_type"
	FieldAdditionalServices = "additional_services"
	FieldFromCity           = "from_city"
	FieldFromDistrict       = "from_district"
	FieldFromPlaceType      = "from_place_type"
	FieldFromFloor          = "from_floor"
	FieldFromElevator       = "from_elevator"
	FieldToCity             = "to_city"
	FieldToDistrict         = "to_district"
	FieldToFloor            = "to_floor"
	FieldToElevator         = "to_elevator"
	FieldItemsType          = "items_type"
	FieldItems              = "items"
	FieldHoistNeeded        = "hoist_needed"
	FieldDatePref           = "date_pref"
	FieldCustomerName       = "customer_name"
	FieldCustomerPhone      = "customer_phone"
	FieldNotes              = "notes"
)

const (
	maxFloor      = 200
	maxNotesRunes = 1000
)

// rule binds one field to its constraint. tag is evaluated by the validator;
// check, when set, runs afterwards for constraints a tag cannot express.
type rule struct {
	field    string
	step     int
	value    func(domain.LeadRecord) any
	skip     func(domain.LeadRecord) bool
	tag      string
	message  string
	messages map[string]string // per failed tag, overrides message
	check    func(*Schema, domain.LeadRecord) (string, bool)
}

func (ru rule) evaluate(s *Schema, r domain.LeadRecord) (string, bool) {
	if ru.skip != nil && ru.skip(r) {
		return "", true
	}
	if ru.tag != "" {
		if err := s.val.Var(ru.value(r), ru.tag); err != nil {
			if msg, ok := ru.messages[validator.FailedTag(err)]; ok {
				return msg, false
			}
			return ru.message, false
		}
	}
	if ru.check != nil {
		return ru.check(s, r)
	}
	return "", true
}

func leadRules() []rule {
	return []rule{
		{
			field:   FieldServiceType,
			step:    StepService,
			value:   func(r domain.LeadRecord) any { return string(r.ServiceType) },
			tag:     "required,oneof=" + join(domain.ServiceTypes),
			message: "يرجى اختيار نوع الخدمة",
		},
		{
			field:   FieldAdditionalServices,
			step:    StepService,
			value:   func(r domain.LeadRecord) any { return addonStrings(r.AdditionalServices) },
			tag:     "omitempty,unique,dive,oneof=" + join(domain.AdditionalServices),
			message: "خدمة إضافية غير معروفة",
		},
		{
			field:   FieldFromCity,
			step:    StepPickup,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.FromCity) },
			tag:     "required,max=60",
			message: "يرجى اختيار مدينة الاستلام",
		},
		{
			field:   FieldFromDistrict,
			step:    StepPickup,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.FromDistrict) },
			tag:     "required,max=80",
			message: "يرجى اختيار حي الاستلام",
			check: func(s *Schema, r domain.LeadRecord) (string, bool) {
				return "يرجى اختيار حي الاستلام من القائمة", s.dir.DistrictAllowed(strings.TrimSpace(r.FromCity), strings.TrimSpace(r.FromDistrict))
			},
		},
		{
			field:   FieldFromPlaceType,
			step:    StepPickup,
			value:   func(r domain.LeadRecord) any { return string(r.FromPlaceType) },
			tag:     "required,oneof=" + join(domain.PlaceTypes),
			message: "يرجى اختيار نوع المكان",
		},
		{
			field:   FieldFromFloor,
			step:    StepPickup,
			value:   func(r domain.LeadRecord) any { return int(*r.FromFloor) },
			skip:    func(r domain.LeadRecord) bool { return r.FromFloor == nil },
			tag:     "min=0,max=" + strconv.Itoa(maxFloor),
			message: "رقم الطابق غير صحيح",
		},
		{
			field:   FieldFromElevator,
			step:    StepPickup,
			value:   func(r domain.LeadRecord) any { return string(r.FromElevator) },
			tag:     "required,oneof=yes no",
			message: "يرجى اختيار وجود المصعد",
		},
		{
			field:   FieldToCity,
			step:    StepDelivery,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.ToCity) },
			tag:     "required,max=60",
			message: "يرجى اختيار مدينة التسليم",
		},
		{
			field:   FieldToDistrict,
			step:    StepDelivery,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.ToDistrict) },
			tag:     "required,max=80",
			message: "يرجى اختيار حي التسليم",
			check: func(s *Schema, r domain.LeadRecord) (string, bool) {
				return "يرجى اختيار حي التسليم من القائمة", s.dir.DistrictAllowed(strings.TrimSpace(r.ToCity), strings.TrimSpace(r.ToDistrict))
			},
		},
		{
			field:   FieldToFloor,
			step:    StepDelivery,
			value:   func(r domain.LeadRecord) any { return int(*r.ToFloor) },
			skip:    func(r domain.LeadRecord) bool { return r.ToFloor == nil },
			tag:     "min=0,max=" + strconv.Itoa(maxFloor),
			message: "رقم الطابق غير صحيح",
		},
		{
			field:   FieldToElevator,
			step:    StepDelivery,
			value:   func(r domain.LeadRecord) any { return string(r.ToElevator) },
			tag:     "required,oneof=yes no",
			message: "يرجى اختيار وجود المصعد",
		},
		{
			field:   FieldItemsType,
			step:    StepItems,
			value:   func(r domain.LeadRecord) any { return string(r.ItemsType) },
			tag:     "omitempty,oneof=complete_furniture specific_items",
			message: "يرجى اختيار نوع العفش المراد نقله",
		},
		{
			field: FieldItems,
			step:  StepItems,
			check: func(_ *Schema, r domain.LeadRecord) (string, bool) { return checkItems(r) },
		},
		{
			field:   FieldHoistNeeded,
			step:    StepItems,
			value:   func(r domain.LeadRecord) any { return string(r.HoistNeeded) },
			tag:     "omitempty,oneof=yes no unknown",
			message: "يرجى تحديد الحاجة إلى الونش",
		},
		{
			field:   FieldDatePref,
			step:    StepSchedule,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.DatePref) },
			tag:     "required,datetime=" + DateLayout,
			message: "يرجى اختيار التاريخ المفضل",
			check:   checkDateWindow,
		},
		{
			field:   FieldCustomerName,
			step:    StepSchedule,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.CustomerName) },
			tag:     "required,min=2,max=50",
			message: "يرجى إدخال الاسم (مطلوب)",
			messages: map[string]string{
				"max": "الاسم طويل جداً",
			},
		},
		{
			field:   FieldCustomerPhone,
			step:    StepSchedule,
			value:   func(r domain.LeadRecord) any { return strings.TrimSpace(r.CustomerPhone) },
			tag:     "required," + validator.TagSaudiMobile,
			message: "يرجى إدخال رقم جوال سعودي صحيح (مطلوب)",
		},
		{
			field:   FieldNotes,
			step:    StepSchedule,
			value:   func(r domain.LeadRecord) any { return r.Notes },
			tag:     "max=" + strconv.Itoa(maxNotesRunes),
			message: "الملاحظات طويلة جداً",
		},
	}
}

func checkItems(r domain.LeadRecord) (string, bool) {
	seen := make(map[string]struct{}, len(r.Items))
	for _, it := range r.Items {
		label := strings.TrimSpace(it.Item)
		if label == "" || it.Quantity < 1 {
			return "كمية العنصر يجب أن تكون 1 على الأقل", false
		}
		if _, dup := seen[label]; dup {
			return "العنصر مكرر في القائمة", false
		}
		seen[label] = struct{}{}
	}
	if r.ItemsType == domain.ItemsSpecific && len(r.Items) == 0 {
		return "يرجى اختيار عنصر واحد على الأقل", false
	}
	return "", true
}

func checkDateWindow(s *Schema, r domain.LeadRecord) (string, bool) {
	const msg = "يرجى اختيار تاريخ خلال الأسبوعين القادمين"
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(r.DatePref), Riyadh)
	if err != nil {
		return msg, false
	}
	today := s.today()
	if d.Before(today) || !d.Before(today.AddDate(0, 0, DateWindowDays)) {
		return msg, false
	}
	return "", true
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}

func addonStrings(in []domain.AdditionalService) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = string(a)
	}
	return out
}
