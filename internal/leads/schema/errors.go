package schema

import "strings"

// FieldError is one violated field with its localized message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors lists violations in schema declaration order.
type FieldErrors []FieldError

// Error implements error.
func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid lead: " + strings.Join(parts, "; ")
}

// OK reports whether there are no violations.
func (e FieldErrors) OK() bool { return len(e) == 0 }

// First returns the earliest violation in declaration order.
func (e FieldErrors) First() (FieldError, bool) {
	if len(e) == 0 {
		return FieldError{}, false
	}
	return e[0], true
}

// Has reports whether field is among the violations.
func (e FieldErrors) Has(field string) bool {
	_, ok := e.Message(field)
	return ok
}

// Message returns the message recorded for field.
func (e FieldErrors) Message(field string) (string, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Map renders the violations as field -> message for response bodies.
func (e FieldErrors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Field] = fe.Message
	}
	return out
}
