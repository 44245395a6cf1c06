package wizard

import (
	"strconv"
	"strings"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/schema"
	"naql_backend/platform/phone"
	"naql_backend/platform/sanitize"
)

// Step is one page of the wizard. Each step owns a disjoint set of fields
// and exposes setters for exactly those fields.
type Step interface {
	Index() int
	Title() string
	Subtitle() string
	Fields() []string
	required(r domain.LeadRecord) *StepError
}

func missing(s string) bool { return strings.TrimSpace(s) == "" }

// ServiceStep selects the service type and add-ons.
type ServiceStep struct{ c *Controller }

func (s *ServiceStep) Index() int       { return schema.StepService }
func (s *ServiceStep) Title() string    { return "نوع الخدمة" }
func (s *ServiceStep) Subtitle() string { return "اختر الخدمة المناسبة لاحتياجك" }
func (s *ServiceStep) Fields() []string { return s.c.schema.StepFields(schema.StepService) }

func (s *ServiceStep) required(r domain.LeadRecord) *StepError {
	if missing(string(r.ServiceType)) {
		return &StepError{Step: schema.StepService, Field: schema.FieldServiceType, Message: "يرجى اختيار نوع الخدمة قبل المتابعة"}
	}
	return nil
}

// Select chooses the service type. Within-city moves pin the delivery city
// to the home city.
func (s *ServiceStep) Select(t domain.ServiceType) {
	s.c.mutate(func(r *domain.LeadRecord) {
		r.ServiceType = t
		if t == domain.ServiceWithinCity {
			r.ToCity = domain.HomeCity
		}
	})
}

// ToggleAddon adds or removes an additional service.
func (s *ServiceStep) ToggleAddon(a domain.AdditionalService) {
	s.c.mutate(func(r *domain.LeadRecord) {
		out := make([]domain.AdditionalService, 0, len(r.AdditionalServices)+1)
		found := false
		for _, existing := range r.AdditionalServices {
			if existing == a {
				found = true
				continue
			}
			out = append(out, existing)
		}
		if !found {
			out = append(out, a)
		}
		r.AdditionalServices = out
	})
}

// PickupStep collects the pickup address details.
type PickupStep struct{ c *Controller }

func (s *PickupStep) Index() int       { return schema.StepPickup }
func (s *PickupStep) Title() string    { return "من أين؟" }
func (s *PickupStep) Subtitle() string { return "حدد موقع الاستلام بدقة" }
func (s *PickupStep) Fields() []string { return s.c.schema.StepFields(schema.StepPickup) }

func (s *PickupStep) required(r domain.LeadRecord) *StepError {
	if missing(r.FromDistrict) {
		return &StepError{Step: schema.StepPickup, Field: schema.FieldFromDistrict, Message: "يرجى اختيار حي الاستلام قبل المتابعة"}
	}
	if missing(string(r.FromPlaceType)) {
		return &StepError{Step: schema.StepPickup, Field: schema.FieldFromPlaceType, Message: "يرجى اختيار نوع المكان قبل المتابعة"}
	}
	return nil
}

// SetCity changes the pickup city. A district picked from the home-city list
// is cleared when the city changes.
func (s *PickupStep) SetCity(city string) {
	dir := s.c.schema.Directory()
	s.c.mutate(func(r *domain.LeadRecord) {
		city = strings.TrimSpace(city)
		if city != r.FromCity && dir.HomeCity() == r.FromCity {
			r.FromDistrict = ""
		}
		r.FromCity = city
		if r.FromDistrict != "" && !dir.DistrictAllowed(r.FromCity, r.FromDistrict) {
			r.FromDistrict = ""
		}
	})
}

// SetDistrict sets the pickup district.
func (s *PickupStep) SetDistrict(d string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.FromDistrict = sanitize.Text(d) })
}

// SetPlaceType sets the property type.
func (s *PickupStep) SetPlaceType(p domain.PlaceType) {
	s.c.mutate(func(r *domain.LeadRecord) { r.FromPlaceType = p })
}

// SetFloor takes raw keystrokes and keeps only the digits. An empty input
// clears the floor.
func (s *PickupStep) SetFloor(raw string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.FromFloor = parseFloor(raw) })
}

// SetElevator records whether the pickup building has an elevator.
func (s *PickupStep) SetElevator(v domain.YesNo) {
	s.c.mutate(func(r *domain.LeadRecord) { r.FromElevator = v })
}

// Districts lists the districts offered for the current pickup city.
func (s *PickupStep) Districts() []string {
	return s.c.schema.Directory().Districts(s.c.record.FromCity)
}

// DeliveryStep collects the delivery address details.
type DeliveryStep struct{ c *Controller }

func (s *DeliveryStep) Index() int       { return schema.StepDelivery }
func (s *DeliveryStep) Title() string    { return "إلى أين؟" }
func (s *DeliveryStep) Subtitle() string { return "حدد وجهة التسليم" }
func (s *DeliveryStep) Fields() []string { return s.c.schema.StepFields(schema.StepDelivery) }

func (s *DeliveryStep) required(r domain.LeadRecord) *StepError {
	if missing(r.ToCity) {
		return &StepError{Step: schema.StepDelivery, Field: schema.FieldToCity, Message: "يرجى اختيار مدينة التسليم قبل المتابعة"}
	}
	if missing(r.ToDistrict) {
		return &StepError{Step: schema.StepDelivery, Field: schema.FieldToDistrict, Message: "يرجى اختيار حي التسليم قبل المتابعة"}
	}
	return nil
}

// SetCity changes the delivery city. Within-city moves keep the home city.
func (s *DeliveryStep) SetCity(city string) {
	dir := s.c.schema.Directory()
	s.c.mutate(func(r *domain.LeadRecord) {
		if r.ServiceType == domain.ServiceWithinCity {
			city = domain.HomeCity
		}
		city = strings.TrimSpace(city)
		if city != r.ToCity && dir.HomeCity() == r.ToCity {
			r.ToDistrict = ""
		}
		r.ToCity = city
		if r.ToDistrict != "" && !dir.DistrictAllowed(r.ToCity, r.ToDistrict) {
			r.ToDistrict = ""
		}
	})
}

// SetDistrict sets the delivery district.
func (s *DeliveryStep) SetDistrict(d string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.ToDistrict = sanitize.Text(d) })
}

// SetFloor takes raw keystrokes for the delivery floor.
func (s *DeliveryStep) SetFloor(raw string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.ToFloor = parseFloor(raw) })
}

// SetElevator records whether the delivery building has an elevator.
func (s *DeliveryStep) SetElevator(v domain.YesNo) {
	s.c.mutate(func(r *domain.LeadRecord) { r.ToElevator = v })
}

// Districts lists the districts offered for the current delivery city.
func (s *DeliveryStep) Districts() []string {
	return s.c.schema.Directory().Districts(s.c.record.ToCity)
}

// ItemsStep collects what is being moved.
type ItemsStep struct{ c *Controller }

func (s *ItemsStep) Index() int       { return schema.StepItems }
func (s *ItemsStep) Title() string    { return "ماذا تنقل؟" }
func (s *ItemsStep) Subtitle() string { return "أخبرنا عن العناصر المراد نقلها" }
func (s *ItemsStep) Fields() []string { return s.c.schema.StepFields(schema.StepItems) }

func (s *ItemsStep) required(domain.LeadRecord) *StepError { return nil }

// SetItemsType chooses a full household or a list of items.
func (s *ItemsStep) SetItemsType(t domain.ItemsType) {
	s.c.mutate(func(r *domain.LeadRecord) { r.ItemsType = t })
}

// Increment adds one unit of an item.
func (s *ItemsStep) Increment(label string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.Items = r.Items.Increment(label) })
}

// Decrement removes one unit of an item.
func (s *ItemsStep) Decrement(label string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.Items = r.Items.Decrement(label) })
}

// SetHoist records whether a hoist is needed.
func (s *ItemsStep) SetHoist(h domain.HoistNeed) {
	s.c.mutate(func(r *domain.LeadRecord) { r.HoistNeeded = h })
}

// Catalog lists the items offered with their current quantities.
func (s *ItemsStep) Catalog() []domain.Item {
	out := make([]domain.Item, 0, len(domain.CatalogItems))
	for _, label := range domain.CatalogItems {
		out = append(out, domain.Item{Item: label, Quantity: s.c.record.Items.Quantity(label)})
	}
	return out
}

// ScheduleStep collects the date and contact details.
type ScheduleStep struct{ c *Controller }

func (s *ScheduleStep) Index() int       { return schema.StepSchedule }
func (s *ScheduleStep) Title() string    { return "متى؟" }
func (s *ScheduleStep) Subtitle() string { return "حدد الموعد المناسب واترك بياناتك" }
func (s *ScheduleStep) Fields() []string { return s.c.schema.StepFields(schema.StepSchedule) }

func (s *ScheduleStep) required(r domain.LeadRecord) *StepError {
	if missing(r.CustomerName) {
		return &StepError{Step: schema.StepSchedule, Field: schema.FieldCustomerName, Message: "يرجى إدخال الاسم قبل إرسال الطلب"}
	}
	if missing(r.CustomerPhone) {
		return &StepError{Step: schema.StepSchedule, Field: schema.FieldCustomerPhone, Message: "يرجى إدخال رقم الجوال قبل إرسال الطلب"}
	}
	return nil
}

// AvailableDates lists the selectable dates, today first.
func (s *ScheduleStep) AvailableDates() []string { return s.c.schema.AvailableDates() }

// SetDate sets the preferred date (YYYY-MM-DD).
func (s *ScheduleStep) SetDate(date string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.DatePref = strings.TrimSpace(date) })
}

// SetName sets the customer name.
func (s *ScheduleStep) SetName(name string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.CustomerName = sanitize.Text(name) })
}

// SetPhone normalizes the number as it is typed.
func (s *ScheduleStep) SetPhone(raw string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.CustomerPhone = phone.Normalize(raw) })
}

// SetWhatsAppOptIn records consent to WhatsApp follow-up.
func (s *ScheduleStep) SetWhatsAppOptIn(v bool) {
	s.c.mutate(func(r *domain.LeadRecord) { r.WhatsAppOptIn = v })
}

// SetNotes sets free-form notes.
func (s *ScheduleStep) SetNotes(notes string) {
	s.c.mutate(func(r *domain.LeadRecord) { r.Notes = sanitize.StripHTML(notes) })
}

func parseFloor(raw string) *domain.Floor {
	digits := phone.FormatNumericInput(raw)
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return domain.FloorPtr(n)
}
