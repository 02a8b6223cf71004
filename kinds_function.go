package jsont

import (
	"encoding/json"
	"strconv"
	"strings"
)

// funcArg is one classified, compiled function-call argument: either a
// static Value (for JSON scalar/array/object argument text) or a compiled
// Transform (for transform-reference, extract, and stringtemplate
// arguments), per SPEC_FULL.md §4.4.10's classification rules.
type funcArg struct {
	raw       string
	static    Value
	isStatic  bool
	transform *Transform
}

// resolve returns the argument's runtime Value: the static value if one was
// classified at compile time, otherwise the result of applying its compiled
// transform to the current input/context.
func (a funcArg) resolve(input Value, ctx *Context) (Value, error) {
	if a.isStatic {
		return a.static, nil
	}
	return a.transform.Apply(input, ctx)
}

// classifyFuncArg compiles one raw argument string from a function-call
// form, per SPEC_FULL.md §4.4.10:
//  1. If it parses as a JSON scalar/array/object, it is held as that value
//     (a string containing "{...}" becomes a stringtemplate; arrays/objects
//     become a json template so any directives they contain still resolve).
//  2. Else if it contains '(' or ')', it is resolved as a transform
//     reference.
//  3. Else if it starts with '/' or contains ':', it is an extract with
//     that pointer.
//  4. Otherwise it is resolved as a named transform.
func classifyFuncArg(e *Engine, raw string) (funcArg, error) {
	var js interface{}
	if err := json.Unmarshal([]byte(singleToDoubleQuoted(raw)), &js); err == nil {
		v := Wrap(js)
		if v.Kind() == KindString && strings.Contains(v.Str(), "{") && strings.Contains(v.Str(), "}") {
			t, err := e.MakeTransform(stringTemplateConfig(v.Str()), "", "stringtemplate")
			if err != nil {
				return funcArg{}, err
			}
			return funcArg{raw: raw, transform: t}, nil
		}
		if v.Kind() == KindSeq || v.Kind() == KindMap {
			t, err := e.MakeTransform(jsonTemplateConfig(v), "", "json")
			if err != nil {
				return funcArg{}, err
			}
			return funcArg{raw: raw, transform: t}, nil
		}
		return funcArg{raw: raw, static: v, isStatic: true}, nil
	}

	if strings.ContainsAny(raw, "()") {
		t, err := resolveMetaDirective(e, "arg", Str(raw))
		if err != nil {
			return funcArg{}, err
		}
		return funcArg{raw: raw, transform: t}, nil
	}
	if IsDataPointerLike(raw) {
		t, err := e.MakeTransform(extractConfig(raw), "", "extract")
		if err != nil {
			return funcArg{}, err
		}
		return funcArg{raw: raw, transform: t}, nil
	}
	t, err := e.ResolveTransform(raw)
	if err != nil {
		return funcArg{}, err
	}
	return funcArg{raw: raw, transform: t}, nil
}

// singleToDoubleQuoted rewrites a call-form argument quoted with single
// quotes (parse.py's chomp_quote accepts either) into the double-quoted
// form encoding/json requires, so a literal like delimit(' and ') parses
// as the JSON string " and " instead of falling through to transform-name
// resolution. Arguments not single-quoted are returned unchanged.
func singleToDoubleQuoted(raw string) string {
	if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	inner = strings.ReplaceAll(inner, `\'`, `'`)
	inner = strings.ReplaceAll(inner, `"`, `\"`)
	return `"` + inner + `"`
}

func stringTemplateConfig(content string) Value {
	om := NewOrderedMap()
	om.Set("content", Str(content))
	return Map(om)
}

// makeFunctionTransform compiles a function-call-form reference `fname(args
// ...)` into a Transform. If fname resolves to a "callable" template, the
// callable is first materialized into a concrete transform using the
// argument list; otherwise fname must resolve directly to a transform,
// which the classified arguments' runtime values are passed to at apply
// time.
func (e *Engine) makeFunctionTransform(fname string, argstrs []string) (*Transform, error) {
	args := make([]funcArg, len(argstrs))
	for i, raw := range argstrs {
		a, err := classifyFuncArg(e, raw)
		if err != nil {
			return nil, NewConfigError(ErrFunctionSyntax, fname, raw, err)
		}
		args[i] = a
	}

	wrapped, err := e.ResolveTransform(fname)
	if err != nil {
		return nil, err
	}

	if wrapped.callable != nil {
		materialized, passIdx, err := materializeCallable(wrapped, argstrs)
		if err != nil {
			return nil, err
		}
		return &Transform{apply: func(input Value, ctx *Context, runtimeArgs ...Value) (Value, error) {
			var passed []Value
			for _, i := range passIdx {
				if i < 0 || i >= len(args) {
					continue
				}
				v, err := args[i].resolve(input, ctx)
				if err != nil {
					return Null, err
				}
				passed = append(passed, v)
			}
			passed = append(passed, runtimeArgs...)
			return materialized.Apply(input, ctx, passed...)
		}}, nil
	}

	return &Transform{apply: func(input Value, ctx *Context, runtimeArgs ...Value) (Value, error) {
		vals := make([]Value, len(args))
		for i, a := range args {
			v, err := a.resolve(input, ctx)
			if err != nil {
				return Null, err
			}
			vals[i] = v
		}
		vals = append(vals, runtimeArgs...)
		return wrapped.Apply(input, ctx, vals...)
	}}, nil
}

// compileFunction implements the explicit "function" transform kind, used
// when a stylesheet spells out {"$type":"function", "name": "...", "args":
// [...]} rather than using call syntax. "args" here is the list of raw
// argument strings a parser would have produced from call syntax.
func compileFunction(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "name", nil)
	}
	fnameV, ok := config.Map().Get("name")
	if !ok || fnameV.Kind() != KindString {
		return nil, NewConfigError(ErrMissingParam, name, "name", nil)
	}
	var argstrs []string
	if av, ok := config.Map().Get("args"); ok {
		if av.Kind() != KindSeq {
			return nil, NewConfigError(ErrWrongParamType, name, "args", nil)
		}
		for _, a := range av.Seq() {
			argstrs = append(argstrs, a.Str())
		}
	}
	return e.makeFunctionTransform(fnameV.Str(), argstrs)
}

// callableSpec holds the data needed to materialize a "callable" template
// into a concrete transform given a function-call's argument list.
//
// The distilled spec (§4.4.11) names conf_args_index/pass_args_index as
// selecting, respectively, which numbered arguments become the materialized
// transform's configuration and which are passed at apply time, but does
// not spell out the placeholder syntax a template uses to receive the
// "configuration" arguments. This engine's own convention (documented here,
// since the source left it to a stylesheet-authoring convention rather than
// a language rule): transformTmpl is a json-kind template in which a string
// leaf that is exactly "$0", "$1", ... is a placeholder; materialization
// replaces each such "$i" leaf with confArgsIndex[i]'s argument (decoded as
// JSON where it parses, otherwise kept as a plain string), then compiles the
// result as an ordinary transform configuration.
type callableSpec struct {
	e             *Engine
	transformTmpl Value
	confArgsIndex []int
	passArgsIndex []int
}

// compileCallable implements the "callable" transform kind (SPEC_FULL.md
// §4.4.11). Applying a callable directly is a configuration error: it is
// only usable through a function wrapper, which calls materializeCallable.
func compileCallable(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "transform_tmpl", nil)
	}
	tmplV, ok := config.Map().Get("transform_tmpl")
	if !ok {
		return nil, NewConfigError(ErrMissingParam, name, "transform_tmpl", nil)
	}
	confIdx, err := intIndexList(config.Map(), "conf_args_index")
	if err != nil {
		return nil, NewConfigError(ErrWrongParamType, name, "conf_args_index", err)
	}
	passIdx, err := intIndexList(config.Map(), "pass_args_index")
	if err != nil {
		return nil, NewConfigError(ErrWrongParamType, name, "pass_args_index", err)
	}

	spec := &callableSpec{e: e, transformTmpl: tmplV, confArgsIndex: confIdx, passArgsIndex: passIdx}
	return &Transform{
		callable: spec,
		apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
			return Null, NewConfigError(ErrWrongParamType, name, "$type",
				&pointerError{msg: "callable transforms cannot be applied directly; use function(...)"})
		},
	}, nil
}

func intIndexList(m *OrderedMap, key string) ([]int, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, nil
	}
	if v.Kind() != KindSeq {
		return nil, &pointerError{msg: key + " must be an array of integers"}
	}
	out := make([]int, len(v.Seq()))
	for i, item := range v.Seq() {
		if item.Kind() != KindInt {
			return nil, &pointerError{msg: key + " must be an array of integers"}
		}
		out[i] = int(item.Int())
	}
	return out, nil
}

// materializeCallable builds a concrete transform from wrapped's callable
// spec and the raw argument strings of the call site that referenced it,
// returning the materialized transform plus the pass-through argument
// indices the caller should resolve and pass at apply time.
func materializeCallable(wrapped *Transform, argstrs []string) (*Transform, []int, error) {
	spec := wrapped.callable
	tmpl := Clone(spec.transformTmpl)
	for i, argIdx := range spec.confArgsIndex {
		if argIdx < 0 || argIdx >= len(argstrs) {
			continue
		}
		tmpl = substitutePlaceholder(tmpl, i, argstrs[argIdx])
	}
	t, err := spec.e.MakeTransform(tmpl, "", "")
	if err != nil {
		return nil, nil, err
	}
	return t, spec.passArgsIndex, nil
}

// substitutePlaceholder replaces every string leaf of v that exactly equals
// "$<i>" with raw (parsed as a JSON scalar, falling back to a plain
// string), walking arrays and maps recursively.
func substitutePlaceholder(v Value, i int, raw string) Value {
	placeholder := "$" + strconv.Itoa(i)
	switch v.Kind() {
	case KindString:
		if v.Str() == placeholder {
			var js interface{}
			if err := json.Unmarshal([]byte(raw), &js); err == nil {
				return Wrap(js)
			}
			return Str(raw)
		}
		return v
	case KindSeq:
		out := make([]Value, len(v.Seq()))
		for j, item := range v.Seq() {
			out[j] = substitutePlaceholder(item, i, raw)
		}
		return Seq(out)
	case KindMap:
		om := NewOrderedMap()
		for _, k := range v.Map().Keys() {
			val, _ := v.Map().Get(k)
			om.Set(k, substitutePlaceholder(val, i, raw))
		}
		return Map(om)
	default:
		return v
	}
}
