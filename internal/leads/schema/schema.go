// Package schema is the single declarative description of a valid lead.
// The wizard uses it to gate steps and the endpoint uses it to accept or
// reject submissions, so both sides report the same messages.
package schema

import (
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/reference"
	"naql_backend/platform/validator"
)

// DateWindowDays is how many calendar days, starting today, a visitor may
// pick as the preferred moving date.
const DateWindowDays = 14

// DateLayout is the ISO date format of date_pref.
const DateLayout = "2006-01-02"

// Riyadh is the business timezone. Saudi Arabia has no daylight saving.
var Riyadh = time.FixedZone("AST", 3*60*60)

// Schema validates lead records against the ordered rule table.
type Schema struct {
	val   *validator.Validator
	dir   reference.Directory
	now   func() time.Time
	rules []rule
}

// Option customizes a Schema.
type Option func(*Schema)

// WithClock sets the clock used for the date window.
func WithClock(now func() time.Time) Option {
	return func(s *Schema) { s.now = now }
}

// New builds the schema. dir may be nil to use the embedded directory.
func New(val *validator.Validator, dir reference.Directory, opts ...Option) *Schema {
	if val == nil {
		val = validator.New()
	}
	if dir == nil {
		dir = reference.Default()
	}
	s := &Schema{val: val, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.rules = leadRules()
	return s
}

// Directory returns the place directory the schema checks districts against.
func (s *Schema) Directory() reference.Directory { return s.dir }

// Validate checks every rule and reports all violations in one pass.
func (s *Schema) Validate(r domain.LeadRecord) FieldErrors {
	return s.run(r, nil)
}

// ValidateFields checks only the rules for the named fields.
func (s *Schema) ValidateFields(r domain.LeadRecord, fields []string) FieldErrors {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return s.run(r, set)
}

// ValidateStep checks the fields owned by a wizard step.
func (s *Schema) ValidateStep(r domain.LeadRecord, step int) FieldErrors {
	return s.ValidateFields(r, s.StepFields(step))
}

// StepFields lists the fields a wizard step owns, in declaration order.
func (s *Schema) StepFields(step int) []string {
	var out []string
	for _, ru := range s.rules {
		if ru.step == step {
			out = append(out, ru.field)
		}
	}
	return out
}

// Fields lists every field with a rule, in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, 0, len(s.rules))
	for _, ru := range s.rules {
		out = append(out, ru.field)
	}
	return out
}

// AvailableDates returns the selectable preferred dates, today first.
func (s *Schema) AvailableDates() []string {
	today := s.today()
	out := make([]string, 0, DateWindowDays)
	for i := 0; i < DateWindowDays; i++ {
		out = append(out, today.AddDate(0, 0, i).Format(DateLayout))
	}
	return out
}

func (s *Schema) today() time.Time {
	now := s.now().In(Riyadh)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Riyadh)
}

func (s *Schema) run(r domain.LeadRecord, only map[string]struct{}) FieldErrors {
	var errs FieldErrors
	for _, ru := range s.rules {
		if only != nil {
			if _, ok := only[ru.field]; !ok {
				continue
			}
		}
		if msg, ok := ru.evaluate(s, r); !ok {
			errs = append(errs, FieldError{Field: ru.field, Message: msg})
		}
	}
	return errs
}
