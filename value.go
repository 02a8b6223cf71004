// Package jsont implements a data-driven JSON-to-JSON/XML transformation
// engine: a stylesheet (itself JSON) declares named transforms, prefixes and
// context values, and designates a root transform applied to an input
// document.
package jsont

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsont/dsio"
)

// Kind identifies which arm of a Value is populated.
type Kind int

// The Value kinds. Compiled and Directive never appear in user-visible input
// or output; they exist only inside an engine's compiled transform skeletons.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
	KindCompiled
	KindDirective
)

// Value is the engine's universal representation of a JSON value, plus the
// two internal variants needed while a stylesheet is being compiled. A
// Value is usually built by Wrap from a decoded interface{} (the shape
// encoding/json.Unmarshal produces into interface{}) and turned back into
// one with Unwrap.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	s   string
	seq []Value
	m   *OrderedMap

	// compiled holds a *Transform when kind == KindCompiled; it is only ever
	// constructed by the compiler, never by Wrap.
	compiled interface{}
	// directive holds the raw name of a meta-property marker ($val, $ins,
	// $upd, $type) when kind == KindDirective.
	directive string
}

// Null is the singleton null Value.
var Null = Value{kind: KindNull}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int constructs an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float constructs a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str constructs a string Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Seq constructs a sequence Value from a slice of Values.
func Seq(vs []Value) Value { return Value{kind: KindSeq, seq: vs} }

// Map constructs a mapping Value from an OrderedMap.
func Map(m *OrderedMap) Value { return Value{kind: KindMap, m: m} }

// compiledValue wraps an already-compiled transform so it can flow through
// skeletons built by the json-kind compiler without ever being observable as
// ordinary JSON.
func compiledValue(t interface{}) Value { return Value{kind: KindCompiled, compiled: t} }

func directiveValue(name string) Value { return Value{kind: KindDirective, directive: name} }

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload; only meaningful when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload; only meaningful when Kind() == KindFloat.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload; only meaningful when Kind() == KindString.
func (v Value) Str() string { return v.s }

// Seq returns the sequence payload; only meaningful when Kind() == KindSeq.
func (v Value) Seq() []Value { return v.seq }

// Map returns the mapping payload; only meaningful when Kind() == KindMap.
func (v Value) Map() *OrderedMap { return v.m }

// Compiled returns the opaque compiled-transform payload; only meaningful
// when Kind() == KindCompiled.
func (v Value) Compiled() interface{} { return v.compiled }

// Directive returns the meta-property name; only meaningful when
// Kind() == KindDirective.
func (v Value) Directive() string { return v.directive }

// Truthy applies the coercion rule used by choose and tobool: empty
// collections, zero, null and the empty string are false; everything else,
// true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindSeq:
		return len(v.seq) > 0
	case KindMap:
		return v.m.Len() > 0
	default:
		return true
	}
}

// TypeName returns the JSON type name used by istype: "null", "boolean",
// "integer", "number", "string", "array" or "object".
func (v Value) TypeName() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindSeq:
		return "array"
	case KindMap:
		return "object"
	default:
		return "object"
	}
}

// Equal does a deep structural comparison, ignoring the internal Compiled
// and Directive variants (which should never appear on either side outside
// of compiler-internal code).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindSeq:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return a.m.Equal(b.m)
	default:
		return false
	}
}

// Clone deep-copies a Value. Used by the json transform kind, which owns its
// compiled skeleton and must never let two applies observe a partially
// mutated tree (SPEC_FULL.md §9 "Deep-copy templates").
func Clone(v Value) Value {
	switch v.kind {
	case KindSeq:
		out := make([]Value, len(v.seq))
		for i, item := range v.seq {
			out[i] = Clone(item)
		}
		return Seq(out)
	case KindMap:
		return Map(v.m.Clone())
	default:
		return v
	}
}

// Wrap converts a value produced by encoding/json.Unmarshal, dsio's Readers,
// github.com/ugorji/go/codec, or ghodss/yaml's JSON-shaped output into a
// Value. Source key order survives when the input's objects arrive as
// *dsio.OrderedMap (which is what dsio's "json"/"yaml" Readers now build,
// precisely so this function never has to range over a plain Go map) or
// *OrderedMap; for a bare map[string]interface{} -- e.g. one a caller built
// by hand -- Wrap makes no order guarantee, matching encoding/json's own
// lack of ordering for such maps.
func Wrap(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		f, _ := t.Float64()
		return Float(f)
	case string:
		return Str(t)
	case []interface{}:
		out := make([]Value, len(t))
		for i, item := range t {
			out[i] = Wrap(item)
		}
		return Seq(out)
	case []Value:
		return Seq(t)
	case *dsio.OrderedMap:
		om := NewOrderedMap()
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			om.Set(k, Wrap(val))
		}
		return Map(om)
	case map[string]interface{}:
		om := NewOrderedMap()
		for k, val := range t {
			om.Set(k, Wrap(val))
		}
		return Map(om)
	case *OrderedMap:
		return Map(t)
	case Value:
		return t
	default:
		return Str(fmt.Sprintf("%v", t))
	}
}

// decodeValue recursively decodes the next JSON value off dec into a Value,
// building nested objects as *OrderedMap at every depth. This is what
// Value.UnmarshalJSON and OrderedMap.UnmarshalJSON use instead of decoding
// into interface{} and calling Wrap: decoding into interface{} hands nested
// objects back as map[string]interface{}, whose Go range order is random,
// throwing away the source order Wrap has no way to recover afterward.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			om := NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null, err
				}
				key, _ := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return Null, err
				}
				om.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Null, err
			}
			return Map(om), nil
		case '[':
			var seq []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Null, err
				}
				seq = append(seq, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Null, err
			}
			return Seq(seq), nil
		default:
			return Null, fmt.Errorf("jsont: unexpected JSON delimiter %v", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null, err
		}
		return Float(f), nil
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null, nil
	default:
		return Null, fmt.Errorf("jsont: unexpected JSON token %v (%T)", tok, tok)
	}
}

// Unwrap converts a Value back into a plain interface{} tree suitable for
// encoding/json.Marshal, github.com/ugorji/go/codec, or ghodss/yaml. It is an
// error to Unwrap a Value containing a Compiled or Directive node: those
// never leave the compiler.
func Unwrap(v Value) (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindString:
		return v.s, nil
	case KindSeq:
		out := make([]interface{}, len(v.seq))
		for i, item := range v.seq {
			u, err := Unwrap(item)
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		return out, nil
	case KindMap:
		// *OrderedMap implements json.Marshaler itself, preserving
		// insertion order; returning it directly (rather than a plain
		// map[string]interface{}) lets callers that embed the unwrapped
		// result inside another structure still round-trip key order.
		return v.m, nil
	default:
		return nil, fmt.Errorf("jsont: cannot unwrap internal value kind %d", v.kind)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	u, err := Unwrap(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(u)
}

// UnmarshalJSON implements json.Unmarshaler, preserving source object key
// order at every depth via decodeValue.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
