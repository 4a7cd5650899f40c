package failure

import (
	"bytes"
	"encoding/json"
)

// FieldError is a single validation message attached to a request field.
type FieldError struct {
	Field   string
	Message string
}

// Details maps field names to validation messages. Fields keep the order in
// which they were first added; messages keep the order in which they were
// added for their field.
//
// The zero value is empty and ready to use. A nil *Details also reads as
// empty, and Add on it returns a fresh Details.
type Details struct {
	fields   []string
	messages map[string][]string
}

// NewDetails returns a Details populated from pairs, grouped by field.
func NewDetails(pairs ...FieldError) *Details {
	d := &Details{}
	for _, p := range pairs {
		d.Add(p.Field, p.Message)
	}
	return d
}

// Add appends message to field and returns d for chaining. Called on a nil
// *Details it allocates one, so keep the result: d = d.Add(...).
func (d *Details) Add(field, message string) *Details {
	if d == nil {
		d = &Details{}
	}
	if d.messages == nil {
		d.messages = make(map[string][]string)
	}
	if _, seen := d.messages[field]; !seen {
		d.fields = append(d.fields, field)
	}
	d.messages[field] = append(d.messages[field], message)
	return d
}

// Fields returns the field names in first-seen order.
func (d *Details) Fields() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.fields))
	copy(out, d.fields)
	return out
}

// Messages returns the messages recorded for field, in insertion order.
func (d *Details) Messages(field string) []string {
	if d == nil {
		return nil
	}
	msgs := d.messages[field]
	out := make([]string, len(msgs))
	copy(out, msgs)
	return out
}

// Len reports the number of distinct fields.
func (d *Details) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

// MarshalJSON encodes d as a JSON object whose keys appear in first-seen
// order. encoding/json sorts map keys, so the object is written by hand.
func (d *Details) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if d != nil {
		for i, field := range d.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(field)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			msgs, err := json.Marshal(d.messages[field])
			if err != nil {
				return nil, err
			}
			buf.Write(msgs)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewUnprocessable builds an UnprocessableEntity from field/message pairs.
func NewUnprocessable(pairs ...FieldError) UnprocessableEntity {
	return UnprocessableEntity{Details: NewDetails(pairs...)}
}

// Add records message for field, allocating Details on a zero-value
// UnprocessableEntity.
func (u *UnprocessableEntity) Add(field, message string) *UnprocessableEntity {
	u.Details = u.Details.Add(field, message)
	return u
}
