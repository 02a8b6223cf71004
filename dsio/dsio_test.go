package dsio

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewReader(t *testing.T) {
	cases := []struct {
		format string
		err    string
	}{
		{"", "dsio: must specify a data format"},
		{"cbor", ""},
		{"json", ""},
		{"yaml", ""},
		{"csv", "dsio: unsupported format: csv"},
	}
	for i, c := range cases {
		_, err := NewReader(c.format, &bytes.Buffer{})
		if !(err == nil && c.err == "" || err != nil && err.Error() == c.err) {
			t.Errorf("case %d error mismatch. expected: '%s', got: '%v'", i, c.err, err)
		}
	}
}

func TestNewWriter(t *testing.T) {
	cases := []struct {
		format string
		err    string
	}{
		{"", "dsio: must specify a data format"},
		{"cbor", ""},
		{"json", ""},
		{"yaml", ""},
	}
	for i, c := range cases {
		_, err := NewWriter(c.format, &bytes.Buffer{})
		if !(err == nil && c.err == "" || err != nil && err.Error() == c.err) {
			t.Errorf("case %d error mismatch. expected: '%s', got: '%v'", i, c.err, err)
		}
	}
}

func TestJSONRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	input := map[string]interface{}{"a": "b", "n": float64(1)}
	if err := WriteAll("json", &buf, input); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll("json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	gotMap, ok := got.(*OrderedMap)
	if !ok {
		t.Fatalf("expected *OrderedMap, got %T", got)
	}
	if a, _ := gotMap.Get("a"); a != "b" {
		t.Errorf("a = %v, want %v", a, "b")
	}
}

func TestYAMLRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	input := map[string]interface{}{"greeting": "hello"}
	if err := WriteAll("yaml", &buf, input); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll("yaml", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotMap, ok := got.(*OrderedMap)
	if !ok {
		t.Fatalf("expected *OrderedMap, got %T", got)
	}
	greeting, _ := gotMap.Get("greeting")
	if diff := cmp.Diff("hello", greeting); diff != "" {
		t.Errorf("greeting mismatch (-want +got):\n%s", diff)
	}
}

func TestCBORRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	input := map[string]interface{}{"x": int64(42)}
	if err := WriteAll("cbor", &buf, input); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll("cbor", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotMap, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map[string]interface{}, got %T", got)
	}
	if _, ok := gotMap["x"]; !ok {
		t.Errorf("missing key x in %v", gotMap)
	}
}
