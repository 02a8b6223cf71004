package jsont

import (
	"strconv"
	"strings"
)

// DataPointer is a parsed "target:path" selector. target is one of the
// built-ins "$in"/"$context" or a user-defined prefix name pending
// expansion; path is an RFC 6901 JSON Pointer (the empty string selects the
// whole document). Grounded in
// original_source/tools/python/jsont/engine.py's DataPointer.
type DataPointer struct {
	Target string
	Path   string
}

// TargetIn names the built-in target selecting the input document.
const TargetIn = "$in"

// TargetContext names the built-in target selecting the context.
const TargetContext = "$context"

// ParseDataPointer parses a pointer string by splitting it at its colon
// (SPEC_FULL.md §3). With no colon the target is empty (normalized to "$in"
// later); a string with more than one colon is rejected as a format error.
func ParseDataPointer(s string) (DataPointer, error) {
	if strings.Count(s, ":") > 1 {
		return DataPointer{}, &pointerError{msg: "more than one ':' in data pointer: " + s}
	}
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return DataPointer{Target: "", Path: s}, nil
	}
	return DataPointer{Target: s[:idx], Path: s[idx+1:]}, nil
}

// String reconstructs the pointer's string form.
func (p DataPointer) String() string {
	if p.Target == "" {
		return p.Path
	}
	return p.Target + ":" + p.Path
}

// IsDataPointerLike reports whether s looks like a data-pointer reference
// rather than a named-transform reference, per the pre-selector and
// function-argument classification rules of SPEC_FULL.md §4.3/§4.4.10: the
// empty string, a string containing ':', or a string starting with '/'.
func IsDataPointerLike(s string) bool {
	return s == "" || strings.Contains(s, ":") || strings.HasPrefix(s, "/")
}

// normalizeDataPointer resolves p's target to one of the two built-ins by
// iteratively expanding user-defined prefixes looked up in e's prefixes
// ScopedDict. Expansion is bounded: it fails with a Cycle ConfigError once
// it performs more expansions than there are distinct prefix names visible
// to e, so a cyclic or otherwise malicious prefix table cannot loop forever
// (SPEC_FULL.md §4.2, Testable Property 3; the Python original has no such
// bound).
func normalizeDataPointer(p DataPointer, e *Engine) (DataPointer, error) {
	if p.Target == "" {
		p.Target = TargetIn
	}
	limit := len(e.prefixes.Keys()) + 1
	for steps := 0; p.Target != TargetIn && p.Target != TargetContext; steps++ {
		if steps >= limit {
			return DataPointer{}, NewConfigError(ErrCycle, "", p.Target,
				nil)
		}
		exp, ok := e.prefixes.Get(p.Target)
		if !ok {
			// no further expansion: target stays as-is, caller treats
			// this as an unresolved/unknown target.
			break
		}
		expansion, ok := exp.(string)
		if !ok {
			return DataPointer{}, NewConfigError(ErrStylesheetContent, "", p.Target, nil)
		}
		next, err := ParseDataPointer(expansion + p.Path)
		if err != nil {
			return DataPointer{}, NewConfigError(ErrStylesheetContent, "", p.Target, err)
		}
		p = next
	}
	return p, nil
}

// extract resolves ptr against e and returns the selected Value from either
// the input document or the context.
func (e *Engine) extract(input Value, ctx *Context, ptrStr string) (Value, error) {
	ptr, err := ParseDataPointer(ptrStr)
	if err != nil {
		return Null, NewApplicationError(ErrDataPointer, "", ptrStr, input, ctx, err)
	}
	norm, err := normalizeDataPointer(ptr, e)
	if err != nil {
		return Null, NewApplicationError(ErrDataPointer, "", ptrStr, input, ctx, err)
	}

	var root Value
	switch norm.Target {
	case TargetIn:
		root = input
	case TargetContext:
		root = contextToValue(ctx)
	default:
		return Null, NewApplicationError(ErrDataPointer, "", ptrStr, input, ctx,
			NewConfigError(ErrUnknownName, "", norm.Target, nil))
	}

	if norm.Path != "" && !strings.HasPrefix(norm.Path, "/") {
		return Null, NewApplicationError(ErrDataPointer, "", ptrStr, input, ctx,
			NewPointerSyntaxError(norm.Path))
	}
	v, err := jsonPointerExtract(root, norm.Path)
	if err != nil {
		return Null, NewApplicationError(ErrDataExtraction, "", ptrStr, input, ctx, err)
	}
	return v, nil
}

// contextToValue snapshots the Context's visible keys into a Value map so
// RFC 6901 pointer extraction can select into it the same way it selects
// into the input document.
func contextToValue(ctx *Context) Value {
	om := NewOrderedMap()
	for _, k := range ctx.Keys() {
		v, _ := ctx.Get(k)
		if val, ok := v.(Value); ok {
			om.Set(k, val)
		} else {
			om.Set(k, Wrap(v))
		}
	}
	return Map(om)
}

// jsonPointerExtract implements RFC 6901 JSON Pointer extraction: "" selects
// the whole document; otherwise the pointer is split on '/' (after the
// mandatory leading '/'), with '~1' and '~0' unescaped to '/' and '~'
// respectively at each token.
func jsonPointerExtract(root Value, ptr string) (Value, error) {
	if ptr == "" {
		return root, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return Null, NewConfigError(ErrTemplateSyntax, "", ptr,
			NewPointerSyntaxError(ptr))
	}
	cur := root
	for _, tok := range strings.Split(ptr[1:], "/") {
		tok = unescapePointerToken(tok)
		switch cur.Kind() {
		case KindMap:
			v, ok := cur.Map().Get(tok)
			if !ok {
				return Null, NewPointerNotFoundError(ptr)
			}
			cur = v
		case KindSeq:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(cur.Seq()) {
				return Null, NewPointerNotFoundError(ptr)
			}
			cur = cur.Seq()[i]
		default:
			return Null, NewPointerNotFoundError(ptr)
		}
	}
	return cur, nil
}

func unescapePointerToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

// NewPointerSyntaxError builds the cause for a malformed JSON pointer
// string (one that does not start with '/').
func NewPointerSyntaxError(ptr string) error {
	return &pointerError{msg: "pointer must start with '/': " + ptr}
}

// NewPointerNotFoundError builds the cause for a pointer whose path does
// not resolve within its target document.
func NewPointerNotFoundError(ptr string) error {
	return &pointerError{msg: "no such path: " + ptr}
}

type pointerError struct{ msg string }

func (e *pointerError) Error() string { return e.msg }
