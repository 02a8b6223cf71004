package jsont

import "testing"

func TestMapAppliesItemmapToEachElement(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "map", "itemmap": {"$type": "literal", "value": "x"}}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Seq([]Value{Int(1), Int(2), Int(3)}), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Kind() != KindSeq || len(out.Seq()) != 3 {
		t.Fatalf("Apply() = %v, want a 3-element sequence", out)
	}
	for _, v := range out.Seq() {
		if v.Str() != "x" {
			t.Errorf("element = %v, want x", v)
		}
	}
}

func TestMapWrapsNonArrayInputUnlessStrict(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "map", "itemmap": ""}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Int(5), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Kind() != KindSeq || len(out.Seq()) != 1 || out.Seq()[0].Int() != 5 {
		t.Errorf("Apply() = %v, want [5]", out)
	}

	strictCfg := mustValue(t, `{"$type": "map", "itemmap": "", "strict": true}`)
	strictTr, err := e.MakeTransform(strictCfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform (strict): %v", err)
	}
	if _, err := strictTr.Apply(Int(5), e.Context()); err == nil {
		t.Errorf("strict map over a non-array input: expected an error")
	}
}

func TestForEachYieldsKeyValuePairs(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{"$type": "foreach", "itemmap": "/0"}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	m := NewOrderedMap()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	out, err := tr.Apply(Map(m), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Kind() != KindSeq || len(out.Seq()) != 2 {
		t.Fatalf("Apply() = %v, want a 2-element sequence", out)
	}
	if out.Seq()[0].Str() != "a" || out.Seq()[1].Str() != "b" {
		t.Errorf("Apply() = %v, want the keys in insertion order", out)
	}
}

func TestChooseFirstTruthyCaseWins(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{
		"$type": "choose",
		"cases": [
			{"test": {"$type": "literal", "value": false}, "transform": {"$type": "literal", "value": "no"}},
			{"test": {"$type": "literal", "value": true}, "transform": {"$type": "literal", "value": "yes"}}
		],
		"default": {"$type": "literal", "value": "default"}
	}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Null, e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "yes" {
		t.Errorf("Apply() = %v, want yes", out)
	}
}

func TestChooseFallsThroughToDefault(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{
		"$type": "choose",
		"cases": [
			{"test": {"$type": "literal", "value": false}}
		],
		"default": {"$type": "literal", "value": "fallback"}
	}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Null, e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "fallback" {
		t.Errorf("Apply() = %v, want fallback", out)
	}
}

func TestChooseMatchedCaseWithNoTransformReturnsInput(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{
		"$type": "choose",
		"cases": [
			{"test": {"$type": "literal", "value": true}}
		],
		"default": {"$type": "literal", "value": "unreached"}
	}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	out, err := tr.Apply(Str("input unchanged"), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "input unchanged" {
		t.Errorf("Apply() = %v, want input unchanged", out)
	}
}
