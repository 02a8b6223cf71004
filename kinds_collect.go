package jsont

// compileMap implements the "map" transform kind (SPEC_FULL.md §4.4.5):
// applies "itemmap" to each element of an input array, wrapping a
// non-array input in a singleton array unless "strict" is true.
func compileMap(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "itemmap", nil)
	}
	im, ok := config.Map().Get("itemmap")
	if !ok {
		return nil, NewConfigError(ErrMissingParam, name, "itemmap", nil)
	}
	itemmap, err := resolveMetaDirective(e, "itemmap", im)
	if err != nil {
		return nil, err
	}
	strict := false
	if sv, ok := config.Map().Get("strict"); ok && sv.Kind() == KindBool {
		strict = sv.Bool()
	}

	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		var items []Value
		if input.Kind() == KindSeq {
			items = input.Seq()
		} else if strict {
			return Null, NewApplicationError(ErrWrongInputType, name, "", input, ctx, nil)
		} else {
			items = []Value{input}
		}
		out := make([]Value, len(items))
		for i, item := range items {
			v, err := itemmap.Apply(item, ctx)
			if err != nil {
				return Null, err
			}
			out[i] = v
		}
		return Seq(out), nil
	}}, nil
}

// compileForEach implements the "foreach" transform kind (SPEC_FULL.md
// §4.4.6): like map, but iterates the properties of an input mapping, each
// call receiving a two-element [key, value] array.
func compileForEach(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "itemmap", nil)
	}
	im, ok := config.Map().Get("itemmap")
	if !ok {
		return nil, NewConfigError(ErrMissingParam, name, "itemmap", nil)
	}
	itemmap, err := resolveMetaDirective(e, "itemmap", im)
	if err != nil {
		return nil, err
	}
	strict := false
	if sv, ok := config.Map().Get("strict"); ok && sv.Kind() == KindBool {
		strict = sv.Bool()
	}

	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		if input.Kind() != KindMap {
			if strict {
				return Null, NewApplicationError(ErrWrongInputType, name, "", input, ctx, nil)
			}
			if input.Kind() != KindSeq {
				// an array is treated as itself; anything else is wrapped.
				input = Seq([]Value{input})
			}
		}

		var out []Value
		if input.Kind() == KindMap {
			it := newValueIterator(input)
			for {
				entry, ok := it.Next()
				if !ok {
					break
				}
				pair := Seq([]Value{Str(entry.Key), entry.Value.(Value)})
				v, err := itemmap.Apply(pair, ctx)
				if err != nil {
					it.Done()
					return Null, err
				}
				out = append(out, v)
			}
			it.Done()
			return Seq(out), nil
		}

		it := newValueIterator(input)
		for {
			entry, ok := it.Next()
			if !ok {
				break
			}
			v, err := itemmap.Apply(entry.Value.(Value), ctx)
			if err != nil {
				it.Done()
				return Null, err
			}
			out = append(out, v)
		}
		it.Done()
		return Seq(out), nil
	}}, nil
}

// chooseCase is one compiled {test, transform?} entry of a "choose" kind.
type chooseCase struct {
	test      *Transform
	transform *Transform // nil means "return input unchanged"
}

// compileChoose implements the "choose" transform kind (SPEC_FULL.md
// §4.4.8): evaluates cases in order, applying the first whose test is
// truthy; falls through to "default" if none match.
func compileChoose(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "cases", nil)
	}
	casesV, ok := config.Map().Get("cases")
	if !ok || casesV.Kind() != KindSeq {
		return nil, NewConfigError(ErrMissingParam, name, "cases", nil)
	}
	defaultV, ok := config.Map().Get("default")
	if !ok {
		return nil, NewConfigError(ErrMissingParam, name, "default", nil)
	}
	defaultT, err := resolveMetaDirective(e, "default", defaultV)
	if err != nil {
		return nil, err
	}

	var cases []chooseCase
	for _, cv := range casesV.Seq() {
		if cv.Kind() != KindMap {
			return nil, NewConfigError(ErrWrongParamType, name, "cases", nil)
		}
		testV, ok := cv.Map().Get("test")
		if !ok {
			return nil, NewConfigError(ErrMissingParam, name, "cases.test", nil)
		}
		testT, err := resolveMetaDirective(e, "test", testV)
		if err != nil {
			return nil, err
		}
		var transT *Transform
		if tv, ok := cv.Map().Get("transform"); ok {
			transT, err = resolveMetaDirective(e, "transform", tv)
			if err != nil {
				return nil, err
			}
		}
		cases = append(cases, chooseCase{test: testT, transform: transT})
	}

	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		for _, c := range cases {
			tv, err := c.test.Apply(input, ctx)
			if err != nil {
				return Null, err
			}
			if tv.Truthy() {
				if c.transform == nil {
					return input, nil
				}
				return c.transform.Apply(input, ctx)
			}
		}
		return defaultT.Apply(input, ctx)
	}}, nil
}
