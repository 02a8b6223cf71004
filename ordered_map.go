package jsont

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is an insertion-ordered string-keyed map of Values. JSON object
// property order matters throughout this engine (SPEC_FULL.md §5
// "Ordering"): $upd merges must preserve the original keys' positions and
// append new keys in the merge source's order, and the json transform kind's
// output must reproduce its template's key order.
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]Value{}}
}

// Len reports the number of keys.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (Value, bool) {
	if m == nil {
		return Null, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set inserts or overwrites key, appending it to the key order on first
// insertion and leaving its position unchanged on overwrite.
func (m *OrderedMap) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key, if present.
func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. Callers must not mutate the
// returned slice.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Clone deep-copies the map.
func (m *OrderedMap) Clone() *OrderedMap {
	out := NewOrderedMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, Clone(m.values[k]))
	}
	return out
}

// Equal does a deep structural comparison. Key order is not considered (two
// maps with the same keys/values in different orders are still equal)
// because JSON objects are unordered sets of properties by spec; only
// *rendering* of this engine's own output is order-sensitive.
func (m *OrderedMap) Equal(o *OrderedMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Keys() {
		v, ok := o.Get(k)
		if !ok || !Equal(m.values[k], v) {
			return false
		}
	}
	return true
}

// Merge applies src over m in place: src's keys override m's values, keys
// already present in m keep their original position, and keys new to m are
// appended in src's own order. This is the $upd semantics of SPEC_FULL.md
// §4.4.4.
func (m *OrderedMap) Merge(src *OrderedMap) {
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		m.Set(k, v)
	}
}

// MarshalJSON implements json.Marshaler, writing properties in insertion
// order (encoding/json's own map[string]interface{} support alpha-sorts
// keys, which this engine's $upd/template ordering guarantees forbid).
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving source key order at
// every depth: each property's value is decoded through decodeValue, which
// builds nested objects as *OrderedMap directly instead of round-tripping
// through a plain map[string]interface{} (Wrap's fallback for which makes no
// order guarantee, matching encoding/json's own unordered map decoding).
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	*m = *NewOrderedMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		val, err := decodeValue(dec)
		if err != nil {
			return err
		}
		m.Set(key, val)
	}
	_, err = dec.Token() // consume closing '}'
	return err
}
