package jsont

import (
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// nativeDiff implements the supplemented "diff" native function
// (SPEC_FULL.md §12): returns a JSON-structural diff description between
// the input and a selected comparison value (args[0], a pointer string),
// or between two selected values if both args[0] and args[1] are given.
// Built on github.com/yudai/gojsondiff so stylesheets (and this engine's
// own test harness) can report structural mismatches without hand-rolled
// deep-equal diagnostics.
func nativeDiff(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	left := input
	var right Value
	switch {
	case len(args) >= 2:
		l, err := e.extract(input, ctx, args[0].Str())
		if err != nil {
			return Null, err
		}
		r, err := e.extract(input, ctx, args[1].Str())
		if err != nil {
			return Null, err
		}
		left, right = l, r
	case len(args) == 1:
		r, err := e.extract(input, ctx, args[0].Str())
		if err != nil {
			return Null, err
		}
		right = r
	default:
		return Null, NewConfigError(ErrMissingParam, "", "select", nil)
	}

	leftU, err := Unwrap(left)
	if err != nil {
		return Null, err
	}
	rightU, err := Unwrap(right)
	if err != nil {
		return Null, err
	}
	leftMap := asDiffableMap(leftU)
	rightMap := asDiffableMap(rightU)

	d := gojsondiff.New()
	delta := d.CompareObjects(leftMap, rightMap)
	if !delta.Modified() {
		return Map(NewOrderedMap()), nil
	}
	fmtr := formatter.NewDeltaFormatter()
	report, err := fmtr.Format(delta)
	if err != nil {
		return Null, NewApplicationError(ErrNativeFailure, "", "", input, ctx, err)
	}
	return Str(report), nil
}

// asDiffableMap adapts a top-level scalar/array into the object shape
// gojsondiff.CompareObjects requires, wrapping it under a single synthetic
// key so non-object comparisons still get a usable delta report.
func asDiffableMap(v interface{}) map[string]interface{} {
	plain := toPlain(v)
	if m, ok := plain.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"value": plain}
}

// toPlain recursively converts the *OrderedMap nodes Unwrap produces into
// plain map[string]interface{}, which is all gojsondiff understands.
func toPlain(v interface{}) interface{} {
	switch t := v.(type) {
	case *OrderedMap:
		out := map[string]interface{}{}
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			u, _ := Unwrap(val)
			out[k] = toPlain(u)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}
