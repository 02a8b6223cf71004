package jsont

import "strings"

// templateToken is one piece of a tokenized template string: either a
// literal run of text, or a compiled sub-transform whose result is
// stringified and substituted in at apply time.
type templateToken struct {
	literal   string
	transform *Transform
}

// tokenizeTemplate scans content left-to-right, splitting it into literal
// runs and balanced "{...}" substitution tokens. An unterminated '{' (one
// with no matching '}') is emitted as literal text rather than erroring,
// per SPEC_FULL.md §4.4.3. Each token's inner text is compiled by
// resolveTemplateToken (data pointer, function form, or named transform).
func tokenizeTemplate(e *Engine, content string) ([]templateToken, error) {
	var tokens []templateToken
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, templateToken{literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(content) {
		c := content[i]
		if c != '{' {
			lit.WriteByte(c)
			i++
			continue
		}
		// find the matching close brace, respecting nested braces.
		depth := 1
		j := i + 1
		for j < len(content) && depth > 0 {
			switch content[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		if depth > 0 {
			// unterminated '{': pass through verbatim as literal text.
			lit.WriteString(content[i:])
			i = len(content)
			break
		}
		inner := content[i+1 : j-1]
		flushLit()
		t, err := resolveTemplateToken(e, inner)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, templateToken{transform: t})
		i = j
	}
	flushLit()
	return tokens, nil
}

// resolveTemplateToken compiles the inner text of one "{...}" template
// token: a data pointer (empty, starts with '/', or contains ':'), a
// function-call form, or a named transform reference.
func resolveTemplateToken(e *Engine, inner string) (*Transform, error) {
	if IsDataPointerLike(inner) {
		return e.MakeTransform(extractConfig(inner), "", "extract")
	}
	if isFunctionForm(inner) {
		return e.compileFunctionForm(inner)
	}
	return e.ResolveTransform(inner)
}

// stringifyForTemplate renders a Value for concatenation into a
// stringtemplate/delimit result: strings are kept verbatim, everything else
// is JSON-encoded.
func stringifyForTemplate(v Value) string {
	if v.Kind() == KindString {
		return v.Str()
	}
	return toJSONString(v)
}

// compileStringTemplate implements the "stringtemplate" kind (SPEC_FULL.md
// §4.4.3).
func compileStringTemplate(e *Engine, name string, config Value) (*Transform, error) {
	if config.Kind() != KindMap {
		return nil, NewConfigError(ErrMissingParam, name, "content", nil)
	}
	cv, ok := config.Map().Get("content")
	if !ok || cv.Kind() != KindString {
		return nil, NewConfigError(ErrMissingParam, name, "content", nil)
	}
	tokens, err := tokenizeTemplate(e, cv.Str())
	if err != nil {
		return nil, NewConfigError(ErrTemplateSyntax, name, "content", err)
	}
	return buildTemplateTransform(tokens), nil
}

// buildTemplateTransform wraps a tokenized template into a Transform,
// shared by compileStringTemplate and the json kind's string-with-braces
// handling.
func buildTemplateTransform(tokens []templateToken) *Transform {
	return &Transform{apply: func(input Value, ctx *Context, args ...Value) (Value, error) {
		var sb strings.Builder
		for _, tok := range tokens {
			if tok.transform == nil {
				sb.WriteString(tok.literal)
				continue
			}
			v, err := tok.transform.Apply(input, ctx)
			if err != nil {
				return Null, err
			}
			sb.WriteString(stringifyForTemplate(v))
		}
		return Str(sb.String()), nil
	}}
}
