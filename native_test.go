package jsont

import "testing"

func TestNativeToStr(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeToStr(e, Str("already"), e.Context(), nil)
	if err != nil || out.Str() != "already" {
		t.Errorf("nativeToStr(string) = %v, %v; want already, nil", out, err)
	}
	out, err = nativeToStr(e, Int(5), e.Context(), nil)
	if err != nil || out.Str() != "5" {
		t.Errorf("nativeToStr(int) = %v, %v; want \"5\", nil", out, err)
	}
}

func TestNativeToBool(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeToBool(e, Int(0), e.Context(), nil)
	if err != nil || out.Bool() {
		t.Errorf("nativeToBool(0) = %v, %v; want false, nil", out, err)
	}
	out, err = nativeToBool(e, Str("x"), e.Context(), nil)
	if err != nil || !out.Bool() {
		t.Errorf("nativeToBool(\"x\") = %v, %v; want true, nil", out, err)
	}
}

func TestNativeWrap(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeWrap(e, Str("the quick brown fox jumps"), e.Context(), []Value{Int(10)})
	if err != nil {
		t.Fatalf("nativeWrap: %v", err)
	}
	if out.Kind() != KindSeq || len(out.Seq()) < 2 {
		t.Errorf("nativeWrap() = %v, want multiple wrapped lines", out)
	}
	for _, line := range out.Seq() {
		if len(line.Str()) > 10+10 { // generous bound; words aren't split
			t.Errorf("line %q exceeds the requested width by a large margin", line.Str())
		}
	}
}

func TestNativeIndent(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeIndent(e, Str("hi"), e.Context(), []Value{Int(2)})
	if err != nil || out.Str() != "  hi" {
		t.Errorf("nativeIndent() = %v, %v; want \"  hi\", nil", out, err)
	}
}

func TestNativeFillUsesContextDefaults(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeFill(e, Str("one two three four five six seven"), e.Context(), nil)
	if err != nil {
		t.Fatalf("nativeFill: %v", err)
	}
	if out.Kind() != KindString {
		t.Errorf("nativeFill() = %v, want a string", out)
	}
}

func TestNativeDelimit(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeDelimit(e, Seq([]Value{Str("a"), Str("b"), Str("c")}), e.Context(), []Value{Str("-")})
	if err != nil || out.Str() != "a-b-c" {
		t.Errorf("nativeDelimit() = %v, %v; want a-b-c, nil", out, err)
	}
}

func TestNativePropNames(t *testing.T) {
	e := NewStdEngine()
	m := NewOrderedMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	out, err := nativePropNames(e, Map(m), e.Context(), nil)
	if err != nil {
		t.Fatalf("nativePropNames: %v", err)
	}
	if out.Kind() != KindSeq || len(out.Seq()) != 2 || out.Seq()[0].Str() != "z" || out.Seq()[1].Str() != "a" {
		t.Errorf("nativePropNames() = %v, want [z a] in insertion order", out)
	}
}

func TestNativePropNamesNonObject(t *testing.T) {
	e := NewStdEngine()
	out, err := nativePropNames(e, Int(1), e.Context(), nil)
	if err != nil || out.Kind() != KindSeq || len(out.Seq()) != 0 {
		t.Errorf("nativePropNames(non-object) = %v, %v; want an empty array, nil", out, err)
	}
}

func TestNativeMetaProp(t *testing.T) {
	e := NewStdEngine()
	out, err := nativeMetaProp(e, Null, e.Context(), []Value{Str("val")})
	if err != nil || out.Str() != "$val" {
		t.Errorf("nativeMetaProp() = %v, %v; want $val, nil", out, err)
	}
}

func TestNativeIsDefined(t *testing.T) {
	e := NewStdEngine()
	m := NewOrderedMap()
	m.Set("a", Int(1))
	input := Map(m)

	out, err := nativeIsDefined(e, input, e.Context(), []Value{Str("/a")})
	if err != nil || !out.Bool() {
		t.Errorf("nativeIsDefined(/a) = %v, %v; want true, nil", out, err)
	}
	out, err = nativeIsDefined(e, input, e.Context(), []Value{Str("/missing")})
	if err != nil || out.Bool() {
		t.Errorf("nativeIsDefined(/missing) = %v, %v; want false, nil", out, err)
	}
	out, err = nativeIsDefined(e, input, e.Context(), nil)
	if err != nil || !out.Bool() {
		t.Errorf("nativeIsDefined() with no select = %v, %v; want true, nil", out, err)
	}
}

func TestNativeIsType(t *testing.T) {
	e := NewStdEngine()
	cases := []struct {
		typeName string
		v        Value
		want     bool
	}{
		{"object", Map(NewOrderedMap()), true},
		{"array", Seq(nil), true},
		{"string", Str("x"), true},
		{"integer", Int(1), true},
		{"number", Float(1.5), true},
		{"boolean", Bool(true), true},
		{"null", Null, true},
		{"string", Int(1), false},
	}
	for _, c := range cases {
		out, err := nativeIsType(e, c.v, e.Context(), []Value{Str(c.typeName)})
		if err != nil {
			t.Fatalf("nativeIsType(%s): %v", c.typeName, err)
		}
		if out.Bool() != c.want {
			t.Errorf("nativeIsType(%s, %v) = %v, want %v", c.typeName, c.v, out.Bool(), c.want)
		}
	}
}

func TestNativeStatsOverArrayOfObjects(t *testing.T) {
	e := NewStdEngine()
	rows := mustValue(t, `[{"n": 1}, {"n": 2}, {"n": 3}]`)
	out, err := nativeStats(e, rows, e.Context(), nil)
	if err != nil {
		t.Fatalf("nativeStats: %v", err)
	}
	if out.Kind() != KindMap {
		t.Fatalf("nativeStats() = %v, want an object", out)
	}
	n, ok := out.Map().Get("n")
	if !ok || n.Kind() != KindMap {
		t.Fatalf("nativeStats().n = %v, %v; want an object", n, ok)
	}
	count, _ := n.Map().Get("count")
	if count.Int() != 3 {
		t.Errorf("nativeStats().n.count = %v, want 3", count)
	}
}

func TestNativeStatsWithSelect(t *testing.T) {
	e := NewStdEngine()
	m := NewOrderedMap()
	m.Set("values", mustValue(t, `["a", "bb", "ccc"]`))
	out, err := nativeStats(e, Map(m), e.Context(), []Value{Str("/values")})
	if err != nil {
		t.Fatalf("nativeStats: %v", err)
	}
	if out.Kind() != KindMap {
		t.Fatalf("nativeStats() = %v, want an object", out)
	}
	count, _ := out.Map().Get("count")
	if count.Int() != 3 {
		t.Errorf("count = %v, want 3", count)
	}
}
