package jsont

// NewStdEngine returns a root Engine preconfigured the way a stylesheet
// author expects out of the box: every built-in transform kind registered,
// the native function table reachable via the "native" kind, and the
// default context values the "fill" native reads when a stylesheet doesn't
// override them.
//
// Grounded in original_source/tools/python/jsont/engine.py's StdEngine and
// transforms/std/context.py's def_context.
func NewStdEngine() *Engine {
	e := NewEngine()
	registerCoreKinds(e)
	// Neither key is protected, so these calls cannot fail; std.go installs
	// them once at engine construction.
	_ = e.context.Set("std.fill.width", Int(75))
	_ = e.context.Set("std.fill.indent", Int(0))

	// "$lb"/"$rb" are the brace-escape transforms a stringtemplate/json
	// template uses to emit a literal "{"/"}" from inside a substitution
	// token (e.g. "{$lb}x{$rb}" -> "{x}"): since a bare "{"/"}" inside a
	// template always starts/ends a substitution token, there is no other
	// way to emit one literally. Installed directly into the arena rather
	// than through DeclareTransform, since "$..." is reserved and would
	// fail ordinary transform-name validation.
	e.transforms["$lb"] = &transformSlot{state: slotCompiled, transform: &Transform{
		Name: "$lb", Kind: KindLiteralT, Engine: e,
		apply: func(Value, *Context, ...Value) (Value, error) { return Str("{"), nil },
	}}
	e.transforms["$rb"] = &transformSlot{state: slotCompiled, transform: &Transform{
		Name: "$rb", Kind: KindLiteralT, Engine: e,
		apply: func(Value, *Context, ...Value) (Value, error) { return Str("}"), nil },
	}}

	installStdNamedTransforms(e)
	return e
}

// installStdNamedTransforms gives every entry of the native function table a
// bare-name transform binding (a "native" kind config with "impl": "$<name>"),
// the way the Python original's std_ss.json module stylesheet declares one
// named transform per native.py function so that stylesheets can write
// "delimit(' and ')" or {"transform": "istype", ...} instead of spelling out
// the "native" kind every time. The boolean type-predicate family
// (isobject/isarray/isstring/isnumber/isinteger/isboolean/isnull) is
// additionally bound as "istype" pre-applied with its type-name argument,
// per SPEC_FULL.md §2's "istype and the type-predicate family".
func installStdNamedTransforms(e *Engine) {
	for _, name := range []string{
		"identity", "tostr", "tobool", "applytransform", "delimit", "wrap",
		"indent", "fill", "prop_names", "metaprop", "isdefined", "istype",
		"diff", "stats",
	} {
		e.transforms[name] = nativeSlot(e, name, "$"+name, nil)
	}
	for _, typeName := range []string{
		"object", "array", "string", "number", "integer", "boolean", "null",
	} {
		tname := "is" + typeName
		e.transforms[tname] = nativeSlot(e, tname, "$istype", []Value{Str(typeName)})
	}
}

// nativeSlot builds an already-compiled transformSlot wrapping the native
// function impl with optional pre-bound args, installed directly into the
// arena (bypassing DeclareTransform's name validation, which rejects these
// reserved built-in names only incidentally -- they are not user input).
func nativeSlot(e *Engine, name, impl string, boundArgs []Value) *transformSlot {
	fn, err := lookupNative(e, impl)
	if err != nil {
		// Every name passed in here is registered via registerNative in
		// native.go's or stats.go's init(); a lookup failure would be a
		// programming error in this engine, not a stylesheet author's
		// mistake, so there is nothing to recover for.
		panic("jsont: std module: unknown native " + impl)
	}
	return &transformSlot{state: slotCompiled, transform: &Transform{
		Name: name, Kind: KindNativeT, Engine: e,
		apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
			all := append(append([]Value{}, boundArgs...), args...)
			v, err := fn(e, input, ctx, all)
			if err != nil {
				return Null, NewApplicationError(ErrNativeFailure, name, "", input, ctx, err)
			}
			return v, nil
		},
	}}
}
