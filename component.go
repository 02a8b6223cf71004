package jsont

// NativeFunc is a host-implemented operation exposed to stylesheets through
// the "native" transform kind. engine gives access to extract/resolve
// machinery; input/context are the transform's usual arguments; args are
// the (already-evaluated) native-call arguments, in declaration order.
//
// Grounded in the teacher's Component interface (a single-method lookup
// contract for a value-bearing unit), generalized here to the native
// function table's calling convention described in SPEC_FULL.md §4.4.9.
type NativeFunc func(e *Engine, input Value, ctx *Context, args []Value) (Value, error)

// nativeTable is the built-in native function registry, keyed by name
// without its leading '$'. Populated once by registerNativeFuncs (native.go).
var nativeTable = map[string]NativeFunc{}

// registerNative installs fn under name in the built-in table.
func registerNative(name string, fn NativeFunc) {
	nativeTable[name] = fn
}

// lookupNative resolves a native "impl" key to a function. A leading '$'
// selects the built-in table; otherwise the engine's
// system["$sys.contrib_pkg"] supplies a contributed-package namespace
// looked up via contribTable, per SPEC_FULL.md §4.4.9.
func lookupNative(e *Engine, impl string) (NativeFunc, error) {
	if len(impl) > 0 && impl[0] == '$' {
		fn, ok := nativeTable[impl[1:]]
		if !ok {
			return nil, NewConfigError(ErrMissingParam, "", impl, nil)
		}
		return fn, nil
	}
	pkg, _ := e.system["$sys.contrib_pkg"].(string)
	fn, ok := contribTable[pkg+"."+impl]
	if !ok {
		return nil, NewConfigError(ErrMissingParam, "", impl, nil)
	}
	return fn, nil
}

// contribTable holds functions registered by host applications under a
// contributed-package namespace (e.g. "jsont_contrib.myFunc"), analogous to
// the Python original's dynamic module import of $sys.contrib_pkg. Empty by
// default; a host embedding this engine populates it via RegisterContrib.
var contribTable = map[string]NativeFunc{}

// RegisterContrib installs fn under "pkg.name" in the contributed-function
// namespace, for use by native transforms whose impl does not start with
// '$'.
func RegisterContrib(pkg, name string, fn NativeFunc) {
	contribTable[pkg+"."+name] = fn
}
