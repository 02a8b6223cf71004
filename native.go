package jsont

import (
	"encoding/json"
	"strings"
)

// compileNative implements the "native" transform kind (SPEC_FULL.md
// §4.4.9): requires "impl", a function-registry key; optional "args" are
// pre-bound and prepended to runtime args.
func compileNative(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "impl", nil)
	}
	implV, ok := config.Map().Get("impl")
	if !ok || implV.Kind() != KindString {
		return nil, NewConfigError(ErrMissingParam, name, "impl", nil)
	}
	fn, err := lookupNative(e, implV.Str())
	if err != nil {
		return nil, NewConfigError(ErrMissingParam, name, implV.Str(), err)
	}

	var bound []Value
	if av, ok := config.Map().Get("args"); ok {
		if av.Kind() != KindSeq {
			return nil, NewConfigError(ErrWrongParamType, name, "args", nil)
		}
		bound = av.Seq()
	}

	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		all := append(append([]Value{}, bound...), args...)
		v, err := fn(e, input, ctx, all)
		if err != nil {
			return Null, NewApplicationError(ErrNativeFailure, name, "", input, ctx, err)
		}
		return v, nil
	}}, nil
}

func init() {
	registerNative("identity", nativeIdentity)
	registerNative("tostr", nativeToStr)
	registerNative("tobool", nativeToBool)
	registerNative("applytransform", nativeApplyTransform)
	registerNative("delimit", nativeDelimit)
	registerNative("wrap", nativeWrap)
	registerNative("indent", nativeIndent)
	registerNative("fill", nativeFill)
	registerNative("prop_names", nativePropNames)
	registerNative("metaprop", nativeMetaProp)
	registerNative("isdefined", nativeIsDefined)
	registerNative("istype", nativeIsType)
	registerNative("diff", nativeDiff)
}

// nativeIdentity returns the input unchanged. Ported from native.py's
// identity_func.
func nativeIdentity(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	return input, nil
}

// nativeToStr converts data (args[0], defaulting to input when omitted)
// into a JSON string: a string value passes through verbatim; anything
// else is JSON-encoded. Ported from native.py's tostr.
func nativeToStr(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	data := input
	if len(args) > 0 {
		data = args[0]
	}
	if data.Kind() == KindString {
		return data, nil
	}
	return Str(toJSONString(data)), nil
}

// nativeToBool converts data (args[0], defaulting to input when omitted)
// into a JSON boolean using Value.Truthy's coercion rule. Ported from
// native.py's tobool; per SPEC_FULL.md §9 Open Question 2 the source's
// complex(1,1) sentinel-default trick is replaced with an explicit
// len(args) == 0 presence check.
func nativeToBool(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	data := input
	if len(args) > 0 {
		data = args[0]
	}
	if data.Kind() == KindBool {
		return data, nil
	}
	return Bool(data.Truthy()), nil
}

// nativeApplyTransform applies a transform (args[0], a reference or
// anonymous config) to data selected from input by a pointer (args[1]).
// Ported from native.py's applytransform; exposed as the "applytransform"
// native for parity with the source, though most stylesheets reach this
// functionality via the "apply" transform kind instead.
func nativeApplyTransform(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	if len(args) < 2 {
		return Null, NewConfigError(ErrMissingParam, "", "transform/select", nil)
	}
	newIn, err := e.extract(input, ctx, args[1].Str())
	if err != nil {
		return Null, err
	}
	t, err := resolveMetaDirective(e, "applytransform", args[0])
	if err != nil {
		return Null, err
	}
	return t.Apply(newIn, ctx)
}

// nativeWrap wraps text (args[1], defaulting to input) into an array of
// strings broken at word boundaries no longer than maxlen (args[0],
// default 75). Ported from native.py's wrap (Python textwrap.wrap).
func nativeWrap(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	maxlen := 75
	if len(args) > 0 {
		if iv, ok := asInt(args[0]); ok {
			maxlen = iv
		}
	}
	text := input
	if len(args) > 1 {
		text = args[1]
	}
	if text.Kind() != KindString {
		return Null, NewApplicationError(ErrWrongInputType, "", "", input, ctx, nil)
	}
	lines := wordWrap(text.Str(), maxlen)
	out := make([]Value, len(lines))
	for i, l := range lines {
		out[i] = Str(l)
	}
	return Seq(out), nil
}

// wordWrap breaks text at word boundaries into lines no longer than width,
// mirroring Python's textwrap.wrap default behavior closely enough for
// stylesheet use: words longer than width are not split.
func wordWrap(text string, width int) []string {
	if width <= 0 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) <= width {
			cur += " " + w
		} else {
			lines = append(lines, cur)
			cur = w
		}
	}
	lines = append(lines, cur)
	return lines
}

// nativeIndent prepends indlen (args[0], default 4) spaces to text (args[1],
// defaulting to input). Ported from native.py's indent: a one-time prefix,
// not a multi-line re-indent.
func nativeIndent(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	indlen := 4
	if len(args) > 0 {
		if iv, ok := asInt(args[0]); ok {
			indlen = iv
		}
	}
	text := input
	if len(args) > 1 {
		text = args[1]
	}
	if text.Kind() != KindString {
		return Null, NewApplicationError(ErrWrongInputType, "", "", input, ctx, nil)
	}
	return Str(strings.Repeat(" ", indlen) + text.Str()), nil
}

// nativeFill composes wrap then indent, reading its defaults from the
// engine's context (std.fill.width / std.fill.indent) rather than literal
// defaults, per the context defaults named (but not wired to a function)
// in original_source/tools/python/jsont/transforms/std/context.py -- a
// SPEC_FULL.md §12 supplemented feature.
func nativeFill(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	width := 75
	if v, ok := ctx.Get("std.fill.width"); ok {
		if iv, ok := asInt(v); ok {
			width = iv
		}
	}
	indent := 0
	if v, ok := ctx.Get("std.fill.indent"); ok {
		if iv, ok := asInt(v); ok {
			indent = iv
		}
	}
	if len(args) > 0 {
		if iv, ok := asInt(valueOf(args[0])); ok {
			width = iv
		}
	}
	text := input
	if len(args) > 1 {
		text = args[1]
	}
	if text.Kind() != KindString {
		return Null, NewApplicationError(ErrWrongInputType, "", "", input, ctx, nil)
	}
	lines := wordWrap(text.Str(), width)
	prefix := strings.Repeat(" ", indent)
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return Str(strings.Join(lines, "\n")), nil
}

func valueOf(v Value) interface{} {
	u, err := Unwrap(v)
	if err != nil {
		return nil
	}
	return u
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int64:
		return int(t), true
	case int:
		return t, true
	case float64:
		return int(t), true
	case Value:
		switch t.Kind() {
		case KindInt:
			return int(t.Int()), true
		case KindFloat:
			return int(t.Float()), true
		}
	}
	return 0, false
}

// prepArrayForJoin coerces data into a []string suitable for delimit,
// mirroring native.py's second (winning) _prep_array_for_join definition:
// a string becomes a singleton; an array's non-string items are
// JSON-encoded; an object becomes a singleton JSON-encoded string; anything
// else is stringified.
func prepArrayForJoin(data Value) []string {
	switch data.Kind() {
	case KindString:
		return []string{data.Str()}
	case KindSeq:
		out := make([]string, len(data.Seq()))
		for i, item := range data.Seq() {
			if item.Kind() == KindString {
				out[i] = item.Str()
			} else {
				out[i] = toJSONString(item)
			}
		}
		return out
	case KindMap:
		return []string{toJSONString(data)}
	default:
		return []string{toJSONString(data)}
	}
}

// nativeDelimit joins the input array with a delimiter (args[0], default
// ", "). Ported from native.py's delimit.
func nativeDelimit(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	delim := ", "
	if len(args) > 0 && args[0].Kind() == KindString {
		delim = args[0].Str()
	}
	return Str(strings.Join(prepArrayForJoin(input), delim)), nil
}

// nativePropNames returns the property names of the input object, or an
// empty array if input is not an object. Ported from native.py's
// prop_names.
func nativePropNames(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	if input.Kind() != KindMap {
		return Seq(nil), nil
	}
	keys := input.Map().Keys()
	out := make([]Value, len(keys))
	for i, k := range keys {
		out[i] = Str(k)
	}
	return Seq(out), nil
}

// nativeMetaProp returns args[0] (or input if no argument), stringified and
// prepended with "$", letting a stylesheet produce a literal meta-property
// name without it being interpreted as a directive. Ported from
// native.py's metaprop.
func nativeMetaProp(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	data := input
	if len(args) > 0 {
		data = args[0]
	}
	s := data.Str()
	if data.Kind() != KindString {
		s = toJSONString(data)
	}
	return Str("$" + s), nil
}

// nativeIsDefined returns true if the data pointed to by select (args[0],
// optional) is defined; select defaults to the whole input. Ported from
// native.py's isdefined.
func nativeIsDefined(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	if len(args) == 0 || args[0].Kind() != KindString || args[0].Str() == "" {
		return Bool(true), nil
	}
	_, err := e.extract(input, ctx, args[0].Str())
	if err != nil {
		return Bool(false), nil
	}
	return Bool(true), nil
}

// nativeIsType returns true if the data pointed to by select (args[1],
// optional, defaulting to the whole input) is a JSON value of the named
// type (args[0]: object/array/string/number/integer/boolean/null). Ported
// from native.py's istype.
func nativeIsType(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	if len(args) == 0 || args[0].Kind() != KindString {
		return Bool(false), nil
	}
	typeName := args[0].Str()

	data := input
	if len(args) > 1 && args[1].Kind() == KindString && args[1].Str() != "" {
		v, err := e.extract(input, ctx, args[1].Str())
		if err != nil {
			return Bool(false), nil
		}
		data = v
	}

	switch typeName {
	case "object":
		return Bool(data.Kind() == KindMap), nil
	case "array":
		return Bool(data.Kind() == KindSeq), nil
	case "string":
		return Bool(data.Kind() == KindString), nil
	case "number":
		return Bool(data.Kind() == KindInt || data.Kind() == KindFloat), nil
	case "integer":
		return Bool(data.Kind() == KindInt), nil
	case "boolean":
		return Bool(data.Kind() == KindBool), nil
	case "null":
		return Bool(data.Kind() == KindNull), nil
	default:
		return Bool(false), nil
	}
}

func toJSONString(v Value) string {
	u, err := Unwrap(v)
	if err != nil {
		return ""
	}
	b, err := json.Marshal(u)
	if err != nil {
		return ""
	}
	return string(b)
}
