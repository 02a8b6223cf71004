package jsont

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadStylesheetJSON(t *testing.T) {
	ss := `{
		"$type": "stringtemplate",
		"content": "hello {/name}"
	}`
	doc, err := LoadStylesheet(strings.NewReader(ss))
	if err != nil {
		t.Fatalf("LoadStylesheet: %v", err)
	}
	out, err := doc.Transform(mustValue(t, `{"name":"world"}`))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.Str() != "hello world" {
		t.Errorf("Transform() = %v, want %q", out, "hello world")
	}
}

func TestLoadStylesheetYAML(t *testing.T) {
	ss := "$type: literal\nvalue: pong\n"
	doc, err := LoadStylesheet(strings.NewReader(ss))
	if err != nil {
		t.Fatalf("LoadStylesheet (yaml): %v", err)
	}
	out, err := doc.Transform(Null)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.Str() != "pong" {
		t.Errorf("Transform() = %v, want pong", out)
	}
}

func TestLoadStylesheetInstallsPrefixesTransformsContext(t *testing.T) {
	ss := `{
		"prefixes": {"contact": "$in:/contact"},
		"transforms": {
			"greet": {"$type": "stringtemplate", "content": "hi {contact:/name}"}
		},
		"context": {"locale": "en", "$sys.ignored": "should be skipped"},
		"$type": "apply",
		"transform": "greet"
	}`
	doc, err := LoadStylesheet(strings.NewReader(ss))
	if err != nil {
		t.Fatalf("LoadStylesheet: %v", err)
	}
	out, err := doc.Transform(mustValue(t, `{"contact":{"name":"Ada"}}`))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.Str() != "hi Ada" {
		t.Errorf("Transform() = %v, want %q", out, "hi Ada")
	}
	if v, ok := doc.Engine().Context().Get("locale"); !ok || v.(Value).Str() != "en" {
		t.Errorf("context locale = %v, %v; want en, true", v, ok)
	}
}

func TestTransformJSONRoundTrip(t *testing.T) {
	doc, err := LoadStylesheet(strings.NewReader(`{"$type":"json","content":{"doubled":{"$val":"/n"}}}`))
	if err != nil {
		t.Fatalf("LoadStylesheet: %v", err)
	}
	out, err := doc.TransformJSON([]byte(`{"n": 21}`))
	if err != nil {
		t.Fatalf("TransformJSON: %v", err)
	}
	if !bytes.Contains(out, []byte(`"doubled":21`)) {
		t.Errorf("TransformJSON() = %s, want it to contain \"doubled\":21", out)
	}
}

// TestTransformJSONPreservesNestedObjectKeyOrder covers §3/§5's
// insertion-ordered Map/Ordering guarantee across the wire-decode boundary:
// an identity stylesheet applied to a multi-key object, itself containing a
// multi-key nested object, must emit properties in the same order they
// arrived in, at every depth -- not whatever order Go's map iteration would
// produce if the decode path round-tripped through map[string]interface{}.
func TestTransformJSONPreservesNestedObjectKeyOrder(t *testing.T) {
	doc, err := LoadStylesheet(strings.NewReader(`{"$type":"identity"}`))
	if err != nil {
		t.Fatalf("LoadStylesheet: %v", err)
	}
	in := []byte(`{"z":1,"y":{"d":1,"c":2,"b":3,"a":4},"x":3}`)
	out, err := doc.TransformJSON(in)
	if err != nil {
		t.Fatalf("TransformJSON: %v", err)
	}
	want := `{"z":1,"y":{"d":1,"c":2,"b":3,"a":4},"x":3}` + "\n"
	if string(out) != want {
		t.Errorf("TransformJSON() = %s, want %s", out, want)
	}
}

func TestDocumentRenderXML(t *testing.T) {
	ss := `{
		"$type": "json",
		"content": {
			"name": "greeting",
			"content": {"children": [{"$val": "/msg"}]}
		}
	}`
	doc, err := LoadStylesheet(strings.NewReader(ss))
	if err != nil {
		t.Fatalf("LoadStylesheet: %v", err)
	}
	out, err := doc.Render(mustValue(t, `{"msg":"hi"}`), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "<greeting> hi </greeting>\n"
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}
