package walkthrough

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MetadataKind tags the scalar held by a MetadataValue
type MetadataKind int

const (
	MetaString MetadataKind = iota
	MetaNumber
	MetaBool
)

// MetadataValue is a scalar metadata value: string, number or bool
type MetadataValue struct {
	Kind MetadataKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue wraps a string
func StringValue(s string) MetadataValue {
	return MetadataValue{Kind: MetaString, Str: s}
}

// NumberValue wraps a number
func NumberValue(n float64) MetadataValue {
	return MetadataValue{Kind: MetaNumber, Num: n}
}

// BoolValue wraps a bool
func BoolValue(b bool) MetadataValue {
	return MetadataValue{Kind: MetaBool, Bool: b}
}

// String renders the value for display
func (v MetadataValue) String() string {
	switch v.Kind {
	case MetaNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case MetaBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// MarshalJSON implements json.Marshaler
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case MetaNumber:
		return json.Marshal(v.Num)
	case MetaBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts any JSON value. Scalars keep their kind; null becomes
// an empty string and arrays/objects are kept as their compact JSON text.
func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty metadata value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case 'n':
		*v = StringValue("")
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = StringValue(buf.String())
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
	}
	return nil
}

// MetadataEntry is one key/value pair of a Metadata mapping
type MetadataEntry struct {
	Key   string
	Value MetadataValue
}

// Metadata is an ordered key/value mapping. Order follows the source document.
type Metadata []MetadataEntry

// Get returns the value stored under key
func (m Metadata) Get(key string) (MetadataValue, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return MetadataValue{}, false
}

// Set replaces the value for key, or appends it if key is new
func (m *Metadata) Set(key string, value MetadataValue) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetadataEntry{Key: key, Value: value})
}

// Keys returns the keys in order
func (m Metadata) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON writes the mapping as a JSON object, preserving key order
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata: expected object, got %v", tok)
	}

	var out Metadata
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metadata: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		var value MetadataValue
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
