package jsont

// compileApply implements the "apply" transform kind (SPEC_FULL.md
// §4.4.7): requires "transform" (reference or anonymous); optional "input"
// (pre-selector, resolved against the wrapped transform's own engine per
// DESIGN.md's Open Question 1 decision); optional "args" (prepended to
// runtime args).
func compileApply(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "transform", nil)
	}
	tv, ok := config.Map().Get("transform")
	if !ok {
		return nil, NewConfigError(ErrMissingParam, name, "transform", nil)
	}
	wrapped, err := resolveMetaDirective(e, "transform", tv)
	if err != nil {
		return nil, err
	}

	var pre *Transform
	if iv, ok := config.Map().Get("input"); ok {
		// Resolved against wrapped.Engine, the wrapped transform's own
		// (possibly child-scoped) engine, not e -- this is the behavior
		// SPEC_FULL.md §9 Open Question 1 says the source relies on.
		useEngine := wrapped.Engine
		if useEngine == nil {
			useEngine = e
		}
		pre, err = useEngine.compilePreSelector(iv)
		if err != nil {
			return nil, err
		}
	}

	var bound []Value
	if av, ok := config.Map().Get("args"); ok {
		if av.Kind() != KindSeq {
			return nil, NewConfigError(ErrWrongParamType, name, "args", nil)
		}
		bound = av.Seq()
	}

	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		effIn := input
		if pre != nil {
			v, err := pre.Apply(input, ctx)
			if err != nil {
				return Null, err
			}
			effIn = v
		}
		all := append(append([]Value{}, bound...), args...)
		return wrapped.Apply(effIn, ctx, all...)
	}}, nil
}
