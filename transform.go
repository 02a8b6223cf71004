package jsont

// TransformKind names which built-in transform kind a compiled Transform
// implements, per SPEC_FULL.md §4.4.
type TransformKind string

// The built-in transform kinds.
const (
	KindIdentity       TransformKind = "identity"
	KindLiteralT       TransformKind = "literal"
	KindExtractT       TransformKind = "extract"
	KindStringTemplate TransformKind = "stringtemplate"
	KindJSONTemplate   TransformKind = "json"
	KindMapT           TransformKind = "map"
	KindForEachT       TransformKind = "foreach"
	KindApplyT         TransformKind = "apply"
	KindChooseT        TransformKind = "choose"
	KindNativeT        TransformKind = "native"
	KindFunctionT      TransformKind = "function"
	KindCallableT      TransformKind = "callable"
)

// applyFunc is the compiled, kind-specific body of a Transform, built once
// by that kind's compiler function and invoked on every Apply call.
//
// SPEC_FULL.md §9 describes a Transform as "a tagged variant... with a
// single apply function that dispatches on the arm". This engine realizes
// that as a Transform struct carrying a TransformKind tag (for
// introspection/diagnostics and for the function/callable materialization
// machinery) plus one closure produced at compile time by that kind's
// dedicated compiler -- the dispatch happens once, at compile time, rather
// than on every Apply call, which is the natural Go rendering of "resolve
// the kind, then always call the same code path" (the source's dynamic
// subclass dispatch becomes a function value instead of a vtable).
type applyFunc func(input Value, ctx *Context, args ...Value) (Value, error)

// Transform is a compiled, immutable unit of work: (input, context, args) ->
// value. Transforms are constructed once by Engine.MakeTransform and
// applied many times. Grounded in
// original_source/tools/python/jsont/base.py's Transform base class and
// generalized per SPEC_FULL.md §3/§9.
type Transform struct {
	Name   string
	Kind   TransformKind
	Config Value
	Engine *Engine

	// PreSelect, if non-nil, is applied to the actual input before the
	// kind-specific apply function runs, realizing the common "input"
	// parameter described in SPEC_FULL.md §4.3.
	PreSelect *Transform

	// callable is non-nil only for Kind == KindCallableT; it holds the data
	// a "function" wrapper needs to materialize a concrete transform from
	// this callable template. See kinds_function.go.
	callable *callableSpec

	apply applyFunc
}

// Apply runs the transform against input and context, first running
// PreSelect (if any) to re-select the effective input.
func (t *Transform) Apply(input Value, ctx *Context, args ...Value) (Value, error) {
	if t.PreSelect != nil {
		sel, err := t.PreSelect.Apply(input, ctx)
		if err != nil {
			return Null, err
		}
		input = sel
	}
	return t.apply(input, ctx, args...)
}

// registerCoreKinds installs the non-native-dependent built-in transform
// kind compilers into e. Called once by NewStdEngine (std.go).
func registerCoreKinds(e *Engine) {
	e.RegisterKind("identity", compileIdentity)
	e.RegisterKind("literal", compileLiteral)
	e.RegisterKind("extract", compileExtract)
	e.RegisterKind("stringtemplate", compileStringTemplate)
	e.RegisterKind("json", compileJSONTemplate)
	e.RegisterKind("map", compileMap)
	e.RegisterKind("foreach", compileForEach)
	e.RegisterKind("apply", compileApply)
	e.RegisterKind("choose", compileChoose)
	e.RegisterKind("native", compileNative)
	e.RegisterKind("function", compileFunction)
	e.RegisterKind("callable", compileCallable)
}

// compileIdentity implements the fallback kind used when a configuration
// has no $type and none was supplied by the caller.
func compileIdentity(e *Engine, name string, config Value) (*Transform, error) {
	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		return input, nil
	}}, nil
}

// compileLiteral implements the "literal" kind (SPEC_FULL.md §4.4.1):
// returns a constant value from "value" (default empty string).
func compileLiteral(e *Engine, name string, config Value) (*Transform, error) {
	value := Str("")
	if config.Kind() == KindMap {
		if v, ok := config.Map().Get("value"); ok {
			value = v
		}
	}
	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		return value, nil
	}}, nil
}

// compileExtract implements the "extract" kind (SPEC_FULL.md §4.4.2).
func compileExtract(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrWrongParamType, name, "select", nil)
	}
	selV, ok := config.Map().Get("select")
	if !ok || selV.Kind() != KindString {
		return nil, NewConfigError(ErrMissingParam, name, "select", nil)
	}
	selector := selV.Str()
	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		return e.extract(input, ctx, selector)
	}}, nil
}
