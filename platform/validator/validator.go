// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"regexp"

	"naql_backend/platform/phone"

	"github.com/go-playground/validator/v10"
)

// TagSaudiMobile validates a Saudi mobile number in local (05…) or
// international (9665… / +9665…) form. Arabic-Indic digits are accepted.
const TagSaudiMobile = "sa_mobile"

var saudiMobilePattern = regexp.MustCompile(`^(\+?9665|05)[0-9]{8}$`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator with the shared custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(TagSaudiMobile, func(fl validator.FieldLevel) bool {
		return IsSaudiMobile(fl.Field().String())
	})
	return &Validator{v: v}
}

// IsSaudiMobile reports whether s matches the accepted Saudi mobile formats.
func IsSaudiMobile(s string) bool {
	return saudiMobilePattern.MatchString(phone.DigitsToASCII(s))
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// FailedTag returns the tag of the first failed constraint in err, or "" when
// err is not a validation failure.
func FailedTag(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}
