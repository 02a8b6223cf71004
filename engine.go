package jsont

import (
	"sync"

	datastore "github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log"

	"github.com/qri-io/jsont/validate"
)

var log = logging.Logger("jsont")

// kindCompiler compiles a transform configuration of one particular kind
// into a *Transform. Registered in an Engine's transformKinds table; see
// Engine.RegisterKind.
type kindCompiler func(e *Engine, name string, config Value) (*Transform, error)

// slotState tags a named-transform arena slot with where it is in its
// lazy-resolution lifecycle. Modeled as an explicit tri-state tag rather
// than the Python original's lazy in-place dict mutation, per
// SPEC_FULL.md §9 "Recursive, cyclic configuration graphs": this is what
// lets resolveTransform detect a slot being re-entered while still
// compiling and raise a Cycle error instead of recursing forever.
type slotState int

const (
	slotUnparsed slotState = iota
	slotInProgress
	slotCompiled
)

// transformSlot is one entry in an Engine's named-transform arena.
type transformSlot struct {
	state     slotState
	config    Value
	transform *Transform
}

// Engine holds the four scoped environments described in SPEC_FULL.md §3:
// prefixes, named transforms, the transform-kind registry, and context,
// plus a non-scoped system map for process-wide settings such as
// $sys.contrib_pkg. Engines form a tree: a child engine (created by
// wrapping, see Wrap) has its ScopedDicts' defaults pointed at the
// parent's, so inner declarations shadow outer ones without mutating them.
//
// Grounded in original_source/tools/python/jsont/engine.py's Engine /
// StdEngine; the arena is additionally guarded by a mutex (mu) so that
// concurrent resolution of the same engine fails safe rather than
// corrupting the arena, matching SPEC_FULL.md §5's sharing rule.
type Engine struct {
	mu sync.Mutex

	prefixes      *ScopedDict
	transforms    map[string]*transformSlot
	transformDefs *Engine // parent engine to fall through to for name lookups
	transformKind map[string]kindCompiler
	context       *Context
	system        map[string]interface{}

	parent *Engine
}

// NewEngine returns a root Engine with empty scoped environments. Most
// callers want NewStdEngine instead, which additionally installs the
// built-in transform kinds, native function table, and default context.
func NewEngine() *Engine {
	return &Engine{
		prefixes:      NewScopedDict(),
		transforms:    map[string]*transformSlot{},
		transformKind: map[string]kindCompiler{},
		context:       NewContext(),
		system:        map[string]interface{}{},
	}
}

// Wrap creates a child Engine whose prefixes/context default chains point at
// e, seeded from config's own "prefixes"/"transforms"/"context" properties
// if present. This is how a transform's inline scope overrides shadow the
// enclosing engine's declarations without leaking out, per SPEC_FULL.md
// §4.3 step 3.
func (e *Engine) Wrap(config *OrderedMap) (*Engine, error) {
	child := &Engine{
		prefixes:      e.prefixes.Derive(),
		transforms:    map[string]*transformSlot{},
		transformKind: e.transformKind, // kind registry is shared, never scoped
		context:       e.context.Derive(),
		system:        e.system,
		parent:        e,
	}
	log.Debugf("jsont: wrapping child engine")

	if v, ok := config.Get("prefixes"); ok {
		if v.Kind() != KindMap {
			return nil, NewConfigError(ErrWrongParamType, "", "prefixes", nil)
		}
		for _, k := range v.Map().Keys() {
			pv, _ := v.Map().Get(k)
			if pv.Kind() != KindString {
				return nil, NewConfigError(ErrWrongParamType, "", "prefixes."+k, nil)
			}
			if err := validate.PrefixName(k); err != nil {
				return nil, NewConfigError(ErrWrongParamType, "", "prefixes."+k, err)
			}
			child.prefixes.Set(k, pv.Str())
		}
	}
	if v, ok := config.Get("transforms"); ok {
		if v.Kind() != KindMap {
			return nil, NewConfigError(ErrWrongParamType, "", "transforms", nil)
		}
		for _, k := range v.Map().Keys() {
			tv, _ := v.Map().Get(k)
			if err := validate.TransformName(k); err != nil {
				return nil, NewConfigError(ErrWrongParamType, "", "transforms."+k, err)
			}
			child.transforms[k] = &transformSlot{state: slotUnparsed, config: tv}
		}
	}
	if v, ok := config.Get("context"); ok {
		if v.Kind() != KindMap {
			return nil, NewConfigError(ErrWrongParamType, "", "context", nil)
		}
		for _, k := range v.Map().Keys() {
			cv, _ := v.Map().Get(k)
			if isProtected(k) {
				continue
			}
			child.context.Set(k, cv)
		}
	}
	return child, nil
}

// RegisterKind installs a kind compiler under name. Used once per kind at
// standard-module install time (see NewStdEngine in std.go).
func (e *Engine) RegisterKind(name string, c kindCompiler) {
	e.transformKind[name] = c
}

// lookupSlot finds the named-transform slot for name, checking this
// engine's own arena then walking up the parent chain -- the arena itself
// is not a ScopedDict because slots must be mutable-in-place across the
// whole chain's view (an Unparsed slot compiled via a child's lookup still
// upgrades the slot that declared it).
func (e *Engine) lookupSlot(name string) (*Engine, *transformSlot, bool) {
	if s, ok := e.transforms[name]; ok {
		return e, s, true
	}
	if e.parent != nil {
		return e.parent.lookupSlot(name)
	}
	return nil, nil, false
}

// DeclareTransform installs an unparsed named transform config into this
// engine's own arena, e.g. from a stylesheet's top-level "transforms" map.
func (e *Engine) DeclareTransform(name string, config Value) error {
	if err := validate.TransformName(name); err != nil {
		return NewConfigError(ErrWrongParamType, "", name, err)
	}
	e.transforms[name] = &transformSlot{state: slotUnparsed, config: config}
	return nil
}

// DeclarePrefix installs a prefix expansion string into this engine's own
// prefixes ScopedDict.
func (e *Engine) DeclarePrefix(name, expansion string) error {
	if err := validate.PrefixName(name); err != nil {
		return NewConfigError(ErrWrongParamType, "", name, err)
	}
	e.prefixes.Set(name, expansion)
	return nil
}

// SetSystem installs a process-wide, non-scoped setting, e.g.
// $sys.contrib_pkg.
func (e *Engine) SetSystem(key string, val interface{}) {
	e.system[key] = val
}

// Context returns this engine's context ScopedDict chain head.
func (e *Engine) Context() *Context { return e.context }

// ResolveTransform resolves a reference string to a compiled *Transform.
// If name matches the function-call form, it compiles an anonymous
// Function transform on the spot (not cached in the arena, since it is not
// a name). Otherwise it looks up name in the transforms arena, lazily
// compiling and upgrading the slot in place on first resolution.
// Re-entering a slot still InProgress is a Cycle ConfigError, per
// SPEC_FULL.md §4.3/§9.
func (e *Engine) ResolveTransform(name string) (*Transform, error) {
	if isFunctionForm(name) {
		return e.compileFunctionForm(name)
	}

	owner, slot, ok := e.lookupSlot(name)
	if !ok {
		return nil, NewConfigError(ErrUnknownName, name, "", nil)
	}

	owner.mu.Lock()
	switch slot.state {
	case slotCompiled:
		owner.mu.Unlock()
		return slot.transform, nil
	case slotInProgress:
		owner.mu.Unlock()
		key := datastore.NewKey("/transforms/" + name)
		return nil, NewConfigError(ErrCycle, name, key.String(), nil)
	}
	slot.state = slotInProgress
	owner.mu.Unlock()

	log.Debugf("jsont: compiling named transform %q", name)
	t, err := owner.MakeTransform(slot.config, name, "")
	owner.mu.Lock()
	defer owner.mu.Unlock()
	if err != nil {
		// leave the slot Unparsed so a corrected stylesheet can retry,
		// per SPEC_FULL.md §7 "Errors never corrupt engine state".
		slot.state = slotUnparsed
		return nil, err
	}
	slot.state = slotCompiled
	slot.transform = t
	return t, nil
}

// ResolveAllTransforms eagerly compiles every named transform declared
// directly in e's own arena, skipping (not failing on) any that resolve to
// TransformDisabled, per SPEC_FULL.md §7.
func (e *Engine) ResolveAllTransforms() error {
	for name := range e.transforms {
		_, err := e.ResolveTransform(name)
		if err != nil {
			var ce *ConfigError
			if asConfigError(err, &ce) && ce.Kind == ErrDisabled {
				continue
			}
			return err
		}
	}
	return nil
}

func asConfigError(err error, target **ConfigError) bool {
	for err != nil {
		if ce, ok := err.(*ConfigError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// MakeTransform compiles config into a *Transform, per SPEC_FULL.md §4.3.
// name and kindOverride may be empty.
func (e *Engine) MakeTransform(config Value, name, kindOverride string) (*Transform, error) {
	kind := kindOverride
	var configMap *OrderedMap
	if config.Kind() == KindMap {
		configMap = config.Map()
		if kind == "" {
			if tv, ok := configMap.Get("$type"); ok && tv.Kind() == KindString {
				kind = tv.Str()
			}
		}
	}
	if kind == "" {
		kind = "identity"
	}

	if configMap != nil {
		if sv, ok := configMap.Get("status"); ok && sv.Kind() == KindString && sv.Str() == "disabled" {
			return nil, NewConfigError(ErrDisabled, name, "status", nil)
		}
	}

	compiler, ok := e.transformKind[kind]
	if !ok {
		return nil, NewConfigError(ErrUnknownKind, name, kind, nil)
	}

	useEngine := e
	if configMap != nil && hasScopeOverride(configMap) {
		child, err := e.Wrap(configMap)
		if err != nil {
			return nil, err
		}
		useEngine = child
	}

	t, err := compiler(useEngine, name, config)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.Kind = TransformKind(kind)
	t.Config = config
	t.Engine = useEngine

	// The "apply" kind resolves its own "input" parameter itself, against
	// the engine of the *wrapped* transform rather than this transform's
	// own engine -- see DESIGN.md's Open Question 1 decision.
	if configMap != nil && kind != "apply" {
		if iv, ok := configMap.Get("input"); ok {
			pre, err := useEngine.compilePreSelector(iv)
			if err != nil {
				return nil, err
			}
			t.PreSelect = pre
		}
	}
	return t, nil
}

func hasScopeOverride(m *OrderedMap) bool {
	for _, k := range []string{"prefixes", "transforms", "context"} {
		if _, ok := m.Get(k); ok {
			return true
		}
	}
	return false
}

// compilePreSelector compiles the common "input" parameter accepted by
// most transform kinds, per SPEC_FULL.md §4.3's closing paragraph: an
// anonymous config object, a $val wrapper, nil/empty (identity), a
// function-form string, a data-pointer string, or a named transform
// reference.
func (e *Engine) compilePreSelector(v Value) (*Transform, error) {
	return resolveMetaDirective(e, "input", v)
}

// resolveMetaDirective is the central classification dispatcher reused by
// the input pre-selector, $val/$ins/$upd, choose's test/transform, and
// apply's transform parameter. Grounded in
// original_source/tools/python/jsont/transforms/std/types.py's
// resolve_meta_directive.
func resolveMetaDirective(e *Engine, name string, v Value) (*Transform, error) {
	switch v.Kind() {
	case KindMap:
		m := v.Map()
		for _, directive := range []string{"$val", "$ins", "$upd"} {
			if dv, ok := m.Get(directive); ok {
				return resolveMetaDirective(e, name, dv)
			}
		}
		return e.MakeTransform(v, name, "")
	case KindString:
		s := v.Str()
		if s == "" {
			return identityTransform(e), nil
		}
		if isFunctionForm(s) {
			return e.compileFunctionForm(s)
		}
		if IsDataPointerLike(s) {
			return e.MakeTransform(extractConfig(s), name, "extract")
		}
		return e.ResolveTransform(s)
	case KindNull:
		return identityTransform(e), nil
	default:
		// a bare scalar/array literal: wrap it as a json template (the
		// template has no directives, so this degenerates to a constant).
		return e.MakeTransform(jsonTemplateConfig(v), name, "json")
	}
}

func extractConfig(selector string) Value {
	om := NewOrderedMap()
	om.Set("select", Str(selector))
	return Map(om)
}

func jsonTemplateConfig(content Value) Value {
	om := NewOrderedMap()
	om.Set("content", content)
	return Map(om)
}

func identityTransform(e *Engine) *Transform {
	return &Transform{Kind: KindIdentity, Engine: e, apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		return input, nil
	}}
}

// compileFunctionForm parses s as `ident(args...)` and compiles the
// resulting Function transform, materializing a Callable template if ident
// names one. Implemented in kinds_function.go.
func (e *Engine) compileFunctionForm(s string) (*Transform, error) {
	fname, argstrs, err := parseFunction(s)
	if err != nil {
		return nil, NewConfigError(ErrFunctionSyntax, "", s, err)
	}
	return e.makeFunctionTransform(fname, argstrs)
}
