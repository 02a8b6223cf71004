package jsont

import (
	"encoding/json"
	"testing"
)

// mustValue decodes a JSON literal into a Value, for building transform
// configs concisely in table-driven tests. Goes through Value.UnmarshalJSON
// (not a bare Wrap(interface{})) so multi-key object fixtures keep their
// source key order, the same path production decoding uses.
func mustValue(t *testing.T, jsonStr string) Value {
	t.Helper()
	var v Value
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		t.Fatalf("mustValue(%s): %v", jsonStr, err)
	}
	return v
}

func TestMakeTransformDispatchesOnType(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "literal", "value": "hello"}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Null, e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "hello" {
		t.Errorf("Apply() = %v, want hello", out)
	}
}

func TestMakeTransformDefaultsToIdentity(t *testing.T) {
	e := NewStdEngine()
	tr, err := e.MakeTransform(Null, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Int(7), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Int() != 7 {
		t.Errorf("Apply() = %v, want 7", out)
	}
}

func TestMakeTransformDisabledStatus(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "literal", "value": 1, "status": "disabled"}`)
	if _, err := e.MakeTransform(cfg, "", ""); err == nil {
		t.Errorf("MakeTransform with status=disabled: expected an error")
	}
}

func TestMakeTransformUnknownKind(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "no-such-kind"}`)
	if _, err := e.MakeTransform(cfg, "", ""); err == nil {
		t.Errorf("MakeTransform with an unregistered kind: expected an error")
	}
}

func TestMakeTransformPreSelectsInput(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "literal", "value": "ignored", "input": "/greeting"}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	m := NewOrderedMap()
	m.Set("greeting", Str("hi"))
	// literal's apply ignores its input entirely, but PreSelect must still
	// run without error against the given input document.
	out, err := tr.Apply(Map(m), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "ignored" {
		t.Errorf("Apply() = %v, want ignored", out)
	}
}

func TestDeclareAndResolveTransform(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "literal", "value": "world"}`)
	if err := e.DeclareTransform("greeting", cfg); err != nil {
		t.Fatalf("DeclareTransform: %v", err)
	}
	tr, err := e.ResolveTransform("greeting")
	if err != nil {
		t.Fatalf("ResolveTransform: %v", err)
	}
	out, err := tr.Apply(Null, e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "world" {
		t.Errorf("Apply() = %v, want world", out)
	}

	// Second resolution hits the already-compiled slot.
	again, err := e.ResolveTransform("greeting")
	if err != nil {
		t.Fatalf("ResolveTransform (cached): %v", err)
	}
	if again != tr {
		t.Errorf("expected the cached slot to return the same *Transform instance")
	}
}

func TestResolveTransformUnknownName(t *testing.T) {
	e := NewStdEngine()
	if _, err := e.ResolveTransform("nope"); err == nil {
		t.Errorf("ResolveTransform(nope): expected an error")
	}
}

func TestResolveTransformDetectsCycle(t *testing.T) {
	e := NewStdEngine()
	// "a" selects named transform "b" and vice versa via the extract kind's
	// function-form shorthand is awkward to trigger directly, so instead
	// declare two "apply" transforms whose "transform" selector references
	// each other -- resolving either must hit the InProgress slot and fail
	// with a Cycle error rather than recursing forever.
	cfgA := mustValue(t, `{"$type": "apply", "transform": "b"}`)
	cfgB := mustValue(t, `{"$type": "apply", "transform": "a"}`)
	if err := e.DeclareTransform("a", cfgA); err != nil {
		t.Fatalf("DeclareTransform a: %v", err)
	}
	if err := e.DeclareTransform("b", cfgB); err != nil {
		t.Fatalf("DeclareTransform b: %v", err)
	}
	if _, err := e.ResolveTransform("a"); err == nil {
		t.Errorf("ResolveTransform(a) with a mutual cycle: expected an error")
	}
}

func TestResolveAllTransformsSkipsDisabled(t *testing.T) {
	e := NewStdEngine()
	if err := e.DeclareTransform("ok", mustValue(t, `{"$type": "literal", "value": 1}`)); err != nil {
		t.Fatalf("DeclareTransform ok: %v", err)
	}
	if err := e.DeclareTransform("off", mustValue(t, `{"$type": "literal", "value": 1, "status": "disabled"}`)); err != nil {
		t.Fatalf("DeclareTransform off: %v", err)
	}
	if err := e.ResolveAllTransforms(); err != nil {
		t.Errorf("ResolveAllTransforms: %v", err)
	}
}

func TestEngineWrapScopesPrefixesTransformsContext(t *testing.T) {
	e := NewStdEngine()
	cfg := NewOrderedMap()
	prefixes := NewOrderedMap()
	prefixes.Set("contact", Str("$in:/contact"))
	cfg.Set("prefixes", Map(prefixes))
	ctxOverrides := NewOrderedMap()
	ctxOverrides.Set("locale", Str("fr"))
	cfg.Set("context", Map(ctxOverrides))

	child, err := e.Wrap(cfg)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if v, ok := child.context.Get("locale"); !ok || v.(Value).Str() != "fr" {
		t.Errorf("child context locale = %v, %v; want fr, true", v, ok)
	}
	if _, ok := e.context.Get("locale"); ok {
		t.Errorf("Wrap leaked a context override into the parent engine")
	}
}

func TestCompilePreSelectorVariants(t *testing.T) {
	e := NewStdEngine()
	m := NewOrderedMap()
	m.Set("name", Str("alice"))
	input := Map(m)

	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"empty string is identity", Str(""), ""},
		{"null is identity", Null, ""},
		{"data pointer string", Str("/name"), "alice"},
	}
	for _, c := range cases {
		tr, err := e.compilePreSelector(c.v)
		if err != nil {
			t.Fatalf("%s: compilePreSelector: %v", c.name, err)
		}
		out, err := tr.Apply(input, e.Context())
		if err != nil {
			t.Fatalf("%s: Apply: %v", c.name, err)
		}
		if c.want == "" {
			if !Equal(out, input) {
				t.Errorf("%s: Apply() = %v, want the unmodified input", c.name, out)
			}
			continue
		}
		if out.Str() != c.want {
			t.Errorf("%s: Apply() = %v, want %q", c.name, out, c.want)
		}
	}
}

// TestCompilePreSelectorValWrapper covers §4.3's "input" pre-selector
// accepting "a $val wrapper (recursively resolved)": resolveMetaDirective
// must extract the $val directive's own value rather than treating the
// wrapper map as an opaque identity/json-template config.
func TestCompilePreSelectorValWrapper(t *testing.T) {
	e := NewStdEngine()
	m := NewOrderedMap()
	m.Set("name", Str("alice"))
	input := Map(m)

	tr, err := e.compilePreSelector(mustValue(t, `{"$val": "/name"}`))
	if err != nil {
		t.Fatalf("compilePreSelector: %v", err)
	}
	out, err := tr.Apply(input, e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "alice" {
		t.Errorf("Apply() = %v, want alice", out)
	}
}
