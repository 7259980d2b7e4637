package migrate

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/store"
)

// ValueKind tells how a legacy value was read.
type ValueKind uint8

const (
	// Missing means the key does not exist.
	Missing ValueKind = iota
	// Parsed means the stored bytes are valid JSON.
	Parsed
	// Raw means the stored bytes are plain text.
	Raw
)

func (k ValueKind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Raw:
		return "raw"
	default:
		return "missing"
	}
}

// Value is a legacy storage value. Data is set for Parsed values and holds
// what encoding/json produces for an untyped target.
type Value struct {
	Kind ValueKind
	Data any
	raw  []byte
}

// Decode classifies data. present is false when the key was not found.
func Decode(data []byte, present bool) Value {
	if !present {
		return Value{Kind: Missing}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{Kind: Raw, raw: data}
	}
	return Value{Kind: Parsed, Data: v, raw: data}
}

// Bytes returns the value exactly as it was stored.
func (v Value) Bytes() []byte {
	return v.raw
}

// Backup is the form the value takes in the legacy archive: the stored JSON,
// or a JSON string holding the raw text.
func (v Value) Backup() json.RawMessage {
	return store.RawJSON(v.raw)
}

// Text returns the value as a string: a parsed JSON string or the raw text.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case Raw:
		return string(v.raw), true
	case Parsed:
		s, ok := v.Data.(string)
		return s, ok
	default:
		return "", false
	}
}

// Number returns a numeric value, accepting numeric strings.
func (v Value) Number() (float64, bool) {
	if v.Kind == Parsed {
		if n, ok := v.Data.(float64); ok {
			return n, true
		}
	}
	s, ok := v.Text()
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

// Truthy reports whether the value is the boolean true, in JSON or as text.
func (v Value) Truthy() bool {
	if b, ok := v.Data.(bool); ok {
		return b
	}
	s, ok := v.Text()
	return ok && strings.EqualFold(strings.TrimSpace(s), "true")
}

// Falsy reports whether the value is the boolean false, in JSON or as text.
func (v Value) Falsy() bool {
	if b, ok := v.Data.(bool); ok {
		return !b
	}
	s, ok := v.Text()
	return ok && strings.EqualFold(strings.TrimSpace(s), "false")
}

// Array returns the elements of a JSON array.
func (v Value) Array() ([]any, bool) {
	a, ok := v.Data.([]any)
	return a, ok
}

// Object returns the members of a JSON object.
func (v Value) Object() (map[string]any, bool) {
	o, ok := v.Data.(map[string]any)
	return o, ok
}

// idString converts a JSON id (string or number) to its string form.
func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	default:
		return "", false
	}
}

// stringField returns the first non-empty string member among names.
func stringField(o map[string]any, names ...string) string {
	for _, n := range names {
		if s, ok := o[n].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
