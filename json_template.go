package jsont

import "strings"

// jsonNodeKind tags a compiled json-template skeleton node.
type jsonNodeKind int

const (
	nodeLiteral jsonNodeKind = iota
	nodeTransform
	nodeObj
	nodeArr
)

// jsonNode is one node of a compiled "json" kind template skeleton, built
// once at compile time by compileJSONNode and walked cheaply (no further
// directive resolution) on every apply. Per SPEC_FULL.md §9's guidance
// against reusing the Python original's reserved "\bkeytr" string key for
// compiled key-templates, a map-typed template's per-key key-transform
// lives on the jsonObjEntry struct itself rather than in a parallel
// string-keyed slot that user data could collide with.
type jsonNode struct {
	kind      jsonNodeKind
	literal   Value      // nodeLiteral
	transform *Transform // nodeTransform ($val/$type/stringtemplate replacement)
	obj       []jsonObjEntry
	arr       []jsonArrItem
}

type jsonObjEntry struct {
	isUpd       bool
	updSource   *Transform // resolved $upd directive's source transform
	keyLiteral  string
	keyTemplate *Transform // non-nil when the key text contained "{...}"
	val         *jsonNode
}

type jsonArrItem struct {
	isIns     bool
	insSource *Transform // resolved $ins directive's source transform
	val       *jsonNode
}

// compileJSONNode walks a template Value, replacing directive nodes with
// compiled sub-transforms and recursing through arrays and maps. Grounded
// in original_source/tools/python/jsont/transforms/std/types.py's JSON
// transform compile-time walk and resolve_meta_directive.
func compileJSONNode(e *Engine, v Value) (*jsonNode, error) {
	switch v.Kind() {
	case KindMap:
		m := v.Map()
		if valV, ok := m.Get("$val"); ok {
			t, err := resolveMetaDirective(e, "$val", valV)
			if err != nil {
				return nil, err
			}
			return &jsonNode{kind: nodeTransform, transform: t}, nil
		}
		if _, ok := m.Get("$type"); ok {
			t, err := e.MakeTransform(v, "", "")
			if err != nil {
				return nil, err
			}
			return &jsonNode{kind: nodeTransform, transform: t}, nil
		}
		var entries []jsonObjEntry
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			if k == "$upd" {
				t, err := resolveMetaDirective(e, "$upd", val)
				if err != nil {
					return nil, err
				}
				entries = append(entries, jsonObjEntry{isUpd: true, updSource: t})
				continue
			}
			entry := jsonObjEntry{keyLiteral: k}
			if strings.Contains(k, "{") && strings.Contains(k, "}") {
				tokens, err := tokenizeTemplate(e, k)
				if err != nil {
					return nil, NewConfigError(ErrTemplateSyntax, "", k, err)
				}
				entry.keyTemplate = buildTemplateTransform(tokens)
			}
			child, err := compileJSONNode(e, val)
			if err != nil {
				return nil, err
			}
			entry.val = child
			entries = append(entries, entry)
		}
		return &jsonNode{kind: nodeObj, obj: entries}, nil

	case KindSeq:
		var items []jsonArrItem
		for _, item := range v.Seq() {
			if item.Kind() == KindMap {
				if insV, ok := item.Map().Get("$ins"); ok {
					t, err := resolveMetaDirective(e, "$ins", insV)
					if err != nil {
						return nil, err
					}
					items = append(items, jsonArrItem{isIns: true, insSource: t})
					continue
				}
			}
			child, err := compileJSONNode(e, item)
			if err != nil {
				return nil, err
			}
			items = append(items, jsonArrItem{val: child})
		}
		return &jsonNode{kind: nodeArr, arr: items}, nil

	case KindString:
		s := v.Str()
		if strings.Contains(s, "{") && strings.Contains(s, "}") {
			tokens, err := tokenizeTemplate(e, s)
			if err != nil {
				return nil, NewConfigError(ErrTemplateSyntax, "", s, err)
			}
			return &jsonNode{kind: nodeTransform, transform: buildTemplateTransform(tokens)}, nil
		}
		return &jsonNode{kind: nodeLiteral, literal: v}, nil

	default:
		return &jsonNode{kind: nodeLiteral, literal: v}, nil
	}
}

// materialize evaluates a compiled json-template node against input/context,
// producing the output Value for one apply call.
func (n *jsonNode) materialize(input Value, ctx *Context) (Value, error) {
	switch n.kind {
	case nodeLiteral:
		return Clone(n.literal), nil
	case nodeTransform:
		return n.transform.Apply(input, ctx)
	case nodeObj:
		om := NewOrderedMap()
		var updValues []*OrderedMap
		for _, entry := range n.obj {
			if entry.isUpd {
				uv, err := entry.updSource.Apply(input, ctx)
				if err != nil {
					return Null, err
				}
				if uv.Kind() == KindMap {
					updValues = append(updValues, uv.Map())
				}
				continue
			}
			key := entry.keyLiteral
			if entry.keyTemplate != nil {
				kv, err := entry.keyTemplate.Apply(input, ctx)
				if err != nil {
					return Null, err
				}
				key = stringifyForTemplate(kv)
			}
			val, err := entry.val.materialize(input, ctx)
			if err != nil {
				return Null, err
			}
			om.Set(key, val)
		}
		for _, uv := range updValues {
			om.Merge(uv)
		}
		return Map(om), nil
	case nodeArr:
		var out []Value
		for _, item := range n.arr {
			if item.isIns {
				v, err := item.insSource.Apply(input, ctx)
				if err != nil {
					return Null, err
				}
				if v.Kind() == KindSeq {
					out = append(out, v.Seq()...)
				} else {
					out = append(out, v)
				}
				continue
			}
			v, err := item.val.materialize(input, ctx)
			if err != nil {
				return Null, err
			}
			out = append(out, v)
		}
		return Seq(out), nil
	default:
		return Null, nil
	}
}

// compileJSONTemplate implements the "json" transform kind (SPEC_FULL.md
// §4.4.4): resolves its "content" skeleton once at compile time; apply then
// cheaply walks the already-resolved skeleton.
func compileJSONTemplate(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "content", nil)
	}
	cv, ok := config.Map().Get("content")
	if !ok {
		return nil, NewConfigError(ErrMissingParam, name, "content", nil)
	}
	root, err := compileJSONNode(e, cv)
	if err != nil {
		return nil, err
	}
	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		return root.materialize(input, ctx)
	}}, nil
}
