// Package domain holds the lead record collected by the intake wizard and the
// enriched record the server persists.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"naql_backend/platform/phone"
)

// HomeCity is the city the service operates from. Districts in the home city
// come from a fixed list; other cities take free text.
const HomeCity = "جدة"

// ServiceType selects within-city or intercity moving.
type ServiceType string

const (
	ServiceWithinCity ServiceType = "داخل_جدة"
	ServiceIntercity  ServiceType = "من_وإلى_جدة"
)

// ServiceTypes lists the accepted service types in display order.
var ServiceTypes = []ServiceType{ServiceWithinCity, ServiceIntercity}

// AdditionalService is an optional add-on chosen on the service step.
type AdditionalService string

const (
	AddonPacking  AdditionalService = "packing"
	AddonAssembly AdditionalService = "assembly"
	AddonStorage  AdditionalService = "storage"
)

// AdditionalServices lists the accepted add-ons in display order.
var AdditionalServices = []AdditionalService{AddonPacking, AddonAssembly, AddonStorage}

// PlaceType is the kind of property at the pickup address.
type PlaceType string

const (
	PlaceApartment PlaceType = "شقة"
	PlaceVilla     PlaceType = "فيلا"
	PlaceOffice    PlaceType = "مكتب"
	PlaceWarehouse PlaceType = "مستودع"
	PlaceRestHouse PlaceType = "استراحة"
)

// PlaceTypes lists the accepted place types in display order.
var PlaceTypes = []PlaceType{PlaceApartment, PlaceVilla, PlaceOffice, PlaceWarehouse, PlaceRestHouse}

// YesNo is a binary answer.
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// ItemsType distinguishes a full household move from a list of items.
type ItemsType string

const (
	ItemsCompleteFurniture ItemsType = "complete_furniture"
	ItemsSpecific          ItemsType = "specific_items"
)

// HoistNeed records whether an external furniture hoist is required.
type HoistNeed string

const (
	HoistYes     HoistNeed = "yes"
	HoistNo      HoistNeed = "no"
	HoistUnknown HoistNeed = "unknown"
)

// Floor is a floor number. It decodes from a JSON number or a numeric string,
// including Arabic-Indic digits, since form inputs post strings. A blank
// string leaves the value untouched; DecodeLeadRecord turns it into nil.
type Floor int

// UnmarshalJSON implements json.Unmarshaler.
func (f *Floor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(phone.DigitsToASCII(s))
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("floor %q is not a number", s)
		}
		*f = Floor(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("floor must be an integer: %w", err)
	}
	*f = Floor(n)
	return nil
}

// FloorPtr is a convenience for building records.
func FloorPtr(n int) *Floor {
	f := Floor(n)
	return &f
}

// LeadRecord is the aggregate built across the wizard steps and submitted
// as a whole.
type LeadRecord struct {
	ServiceType        ServiceType         `json:"service_type"`
	AdditionalServices []AdditionalService `json:"additional_services,omitempty"`

	FromCity      string    `json:"from_city"`
	FromDistrict  string    `json:"from_district"`
	FromPlaceType PlaceType `json:"from_place_type"`
	FromFloor     *Floor    `json:"from_floor,omitempty"`
	FromElevator  YesNo     `json:"from_elevator"`

	ToCity     string `json:"to_city"`
	ToDistrict string `json:"to_district"`
	ToFloor    *Floor `json:"to_floor,omitempty"`
	ToElevator YesNo  `json:"to_elevator"`

	ItemsType   ItemsType `json:"items_type,omitempty"`
	Items       Items     `json:"items,omitempty"`
	HoistNeeded HoistNeed `json:"hoist_needed,omitempty"`

	DatePref      string `json:"date_pref"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	WhatsAppOptIn bool   `json:"whatsapp_optin"`
	Notes         string `json:"notes,omitempty"`

	Attribution

	// SubmissionKey is generated once per wizard so a retried submission
	// resolves to the lead id of the first accepted one.
	SubmissionKey string `json:"submission_key,omitempty"`
}

// NewLeadRecord returns an empty record with the home city preselected.
func NewLeadRecord() LeadRecord {
	return LeadRecord{FromCity: HomeCity}
}

// Clone returns a deep copy of r.
func (r LeadRecord) Clone() LeadRecord {
	out := r
	out.AdditionalServices = append([]AdditionalService(nil), r.AdditionalServices...)
	out.Items = append(Items(nil), r.Items...)
	if r.FromFloor != nil {
		out.FromFloor = FloorPtr(int(*r.FromFloor))
	}
	if r.ToFloor != nil {
		out.ToFloor = FloorPtr(int(*r.ToFloor))
	}
	return out
}

// HasAddon reports whether the add-on is selected.
func (r LeadRecord) HasAddon(a AdditionalService) bool {
	for _, s := range r.AdditionalServices {
		if s == a {
			return true
		}
	}
	return false
}

// Lead status and fixed enrichment values.
const (
	StatusNew         = "new"
	CurrencySAR       = "SAR"
	DefaultSLAMinutes = 30
	DefaultPagePath   = "/"
)

// ServerLead is the record the sink persists: the submitted record plus the
// server-side enrichment. It is never mutated after creation.
type ServerLead struct {
	LeadRecord

	Timestamp  string `json:"timestamp"`
	LeadID     string `json:"lead_id"`
	Status     string `json:"status"`
	Currency   string `json:"currency"`
	SLAMinutes int    `json:"sla_minutes"`
	IP         string `json:"ip"`
}
