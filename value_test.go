package jsont

import "testing"

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"zero float", Float(0), false},
		{"empty string", Str(""), false},
		{"nonempty string", Str("x"), true},
		{"empty seq", Seq(nil), false},
		{"nonempty seq", Seq([]Value{Int(1)}), true},
		{"empty map", Map(NewOrderedMap()), false},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("%s: Truthy() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "null"},
		{Bool(true), "boolean"},
		{Int(1), "integer"},
		{Float(1.5), "number"},
		{Str("s"), "string"},
		{Seq(nil), "array"},
		{Map(NewOrderedMap()), "object"},
	}
	for _, c := range cases {
		if got := c.v.TypeName(); got != c.want {
			t.Errorf("TypeName(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	m1 := NewOrderedMap()
	m1.Set("a", Int(1))
	m2 := NewOrderedMap()
	m2.Set("a", Int(1))

	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal ints", Int(1), Int(1), true},
		{"different ints", Int(1), Int(2), false},
		{"different kinds", Int(1), Str("1"), false},
		{"equal seqs", Seq([]Value{Int(1), Str("x")}), Seq([]Value{Int(1), Str("x")}), true},
		{"different length seqs", Seq([]Value{Int(1)}), Seq([]Value{Int(1), Int(2)}), false},
		{"equal maps", Map(m1), Map(m2), true},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("%s: Equal() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := NewOrderedMap()
	m.Set("items", Seq([]Value{Int(1), Int(2)}))
	orig := Map(m)
	clone := Clone(orig)

	clone.Map().Get("items")
	cv, _ := clone.Map().Get("items")
	cv.Seq()[0] = Int(99)

	ov, _ := orig.Map().Get("items")
	if ov.Seq()[0].Int() != 1 {
		t.Errorf("Clone shares underlying storage: mutating clone changed original")
	}
}

func TestWrapUnwrapRoundtrip(t *testing.T) {
	raw := map[string]interface{}{
		"name": "alice",
		"age":  int64(30),
		"tags": []interface{}{"a", "b"},
		"nil":  nil,
	}
	v := Wrap(raw)
	if v.Kind() != KindMap {
		t.Fatalf("Wrap(map) Kind() = %v, want KindMap", v.Kind())
	}
	name, ok := v.Map().Get("name")
	if !ok || name.Str() != "alice" {
		t.Errorf("name = %v, %v; want alice, true", name, ok)
	}
	age, ok := v.Map().Get("age")
	if !ok || age.Int() != 30 {
		t.Errorf("age = %v, %v; want 30, true", age, ok)
	}

	out, err := Unwrap(v)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	om, ok := out.(*OrderedMap)
	if !ok {
		t.Fatalf("Unwrap(map Value) = %T, want *OrderedMap", out)
	}
	if got, _ := om.Get("name"); got.Str() != "alice" {
		t.Errorf("round-tripped name = %v, want alice", got)
	}
}

func TestUnwrapRejectsInternalKinds(t *testing.T) {
	if _, err := Unwrap(compiledValue(nil)); err == nil {
		t.Errorf("Unwrap(compiledValue) expected error, got nil")
	}
	if _, err := Unwrap(directiveValue("$val")); err == nil {
		t.Errorf("Unwrap(directiveValue) expected error, got nil")
	}
}

func TestValueMarshalJSONRoundtrip(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", Int(2))
	m.Set("a", Int(1))
	v := Map(m)

	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"b":2,"a":1}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}

	var got Value
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !Equal(v, got) {
		t.Errorf("round-tripped value %v != original %v", got, v)
	}
}
