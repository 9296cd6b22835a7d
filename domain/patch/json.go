package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MarshalJSON encodes a field as "name", an index as a number and a key as
// {"_key": "..."}.
func (s Segment) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SegmentIndex:
		return json.Marshal(s.Index)
	case SegmentKey:
		return json.Marshal(map[string]string{KeyAttr: s.Key})
	default:
		return json.Marshal(s.Field)
	}
}

// UnmarshalJSON decodes the forms written by MarshalJSON.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		*s = Field(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
			return fmt.Errorf("path segment %s is not an integer", v)
		}
		*s = Index(int(f))
	case map[string]any:
		key, ok := v[KeyAttr].(string)
		if !ok || len(v) != 1 {
			return fmt.Errorf("path segment %s must be {\"_key\": string}", data)
		}
		*s = Key(key)
	default:
		return fmt.Errorf("invalid path segment %s", data)
	}
	return nil
}

// MarshalJSON encodes an empty path as [] rather than null.
func (p Path) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Segment(p))
}

type opJSON struct {
	Type     Type     `json:"type"`
	Path     Path     `json:"path"`
	Value    any      `json:"value,omitempty"`
	Position Position `json:"position,omitempty"`
	Items    []any    `json:"items,omitempty"`
}

// MarshalJSON encodes the op in the host wire format.
func (o Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(opJSON(o))
}

// UnmarshalJSON decodes and validates an op from the host wire format.
func (o *Op) UnmarshalJSON(data []byte) error {
	var raw opJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case TypeSet, TypeUnset:
	case TypeInsert:
		if raw.Position != Before && raw.Position != After {
			return fmt.Errorf("insert position must be %q or %q, got %q", Before, After, raw.Position)
		}
	default:
		return fmt.Errorf("unknown op type %q", raw.Type)
	}

	*o = Op(raw)
	return nil
}
