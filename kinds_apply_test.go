package jsont

import "testing"

func TestApplyAppliesNamedTransformWithPreSelect(t *testing.T) {
	e := NewStdEngine()
	if err := e.DeclareTransform("shout", mustValue(t, `{"$type": "stringtemplate", "content": "{}!"}`)); err != nil {
		t.Fatalf("DeclareTransform: %v", err)
	}
	cfg := mustValue(t, `{"$type": "apply", "transform": "shout", "input": "/name"}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	m := NewOrderedMap()
	m.Set("name", Str("hi"))
	out, err := tr.Apply(Map(m), e.Context())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Str() != "hi!" {
		t.Errorf("Apply() = %v, want hi!", out)
	}
}

func TestApplyBoundArgsPrependRuntimeArgs(t *testing.T) {
	e := NewStdEngine()
	cfg := mustValue(t, `{
		"$type": "apply",
		"transform": {"$type": "native", "impl": "$tostr"},
		"args": [1]
	}`)
	tr, err := e.MakeTransform(cfg, "", "")
	if err != nil {
		t.Fatalf("MakeTransform: %v", err)
	}
	if _, err := tr.Apply(Null, e.Context()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func TestApplyMissingTransformParam(t *testing.T) {
	e := NewStdEngine()
	if _, err := e.MakeTransform(mustValue(t, `{"$type": "apply"}`), "", ""); err == nil {
		t.Errorf("apply with no transform param: expected an error")
	}
}
