package form

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/core/value"
)

// Submission is a parsed data payload keyed by column name.
type Submission map[string]value.Value

// ParseSubmission decodes a JSON object into typed values. Numbers with a
// fractional part or exponent become Float, other numbers Integer. Arrays and
// nested objects are dropped. Anything but a top-level object is rejected, as
// is a key that is not a valid column name.
func ParseSubmission(payload []byte) (Submission, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errs.Required("data")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errs.Validation("data", "invalid JSON payload: %v", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errs.Validation("data", "payload must be a JSON object")
	}

	out := make(Submission, len(obj))
	for k, v := range obj {
		if !schema.ValidIdentifier(k) {
			return nil, errs.Validation(k, "%q is not a valid column name", k)
		}
		tv, ok := value.FromJSON(v)
		if !ok {
			continue
		}
		out[k] = tv
	}
	return out, nil
}

// Columns returns the submission keys sorted, with id first when present.
func (s Submission) Columns() []string {
	cols := make([]string, 0, len(s))
	for k := range s {
		if k != schema.FieldID {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if _, ok := s[schema.FieldID]; ok {
		cols = append([]string{schema.FieldID}, cols...)
	}
	return cols
}

// Values returns the values for cols, in order.
func (s Submission) Values(cols []string) []value.Value {
	vals := make([]value.Value, len(cols))
	for i, c := range cols {
		vals[i] = s[c]
	}
	return vals
}
