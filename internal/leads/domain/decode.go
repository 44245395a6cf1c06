package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"naql_backend/platform/phone"
)

// DecodeError reports a request body that is not a valid LeadRecord. Field
// is the top-level JSON field at fault, or empty when the body is not JSON.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return "decode lead: " + e.Err.Error()
	}
	return "decode lead field " + e.Field + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeLeadRecord parses a submitted record. Blank floors decode to nil so
// an unanswered optional floor is not read as the ground floor.
func DecodeLeadRecord(data []byte) (LeadRecord, error) {
	var body struct {
		LeadRecord
		FromFloor json.RawMessage `json:"from_floor"`
		ToFloor   json.RawMessage `json:"to_floor"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return LeadRecord{}, &DecodeError{Field: topLevelField(typeErr.Field), Err: err}
		}
		return LeadRecord{}, &DecodeError{Err: err}
	}

	rec := body.LeadRecord
	var err error
	if rec.FromFloor, err = decodeFloor(body.FromFloor); err != nil {
		return LeadRecord{}, &DecodeError{Field: "from_floor", Err: err}
	}
	if rec.ToFloor, err = decodeFloor(body.ToFloor); err != nil {
		return LeadRecord{}, &DecodeError{Field: "to_floor", Err: err}
	}
	return rec, nil
}

func decodeFloor(raw json.RawMessage) (*Floor, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(phone.DigitsToASCII(s)) == "" {
			return nil, nil
		}
	}
	var f Floor
	if err := f.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return &f, nil
}

// topLevelField maps "items.quantity" onto "items".
func topLevelField(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
