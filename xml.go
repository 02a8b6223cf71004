package jsont

import (
	"strconv"
	"strings"
)

// xmlNode is one decoded element-tree node, read out of a transform's
// output Value per SPEC_FULL.md §4.5's `{name, content: {attrs, children},
// prefix?, namespace?, prefixes?, hints?}` shape. The Python original's
// transforms/xml.py retrieval is corrupted (syntax errors partway through
// its element-tree construction helpers) and never reaches the
// string-layout algorithm, so this renderer is written directly from
// §4.5's prescriptive rules rather than ported from that source.
type xmlNode struct {
	name      string
	attrs     []xmlAttr
	children  []xmlChild
	prefix    string
	namespace string
	prefixes  map[string]string // local namespace -> prefix declarations
	hints     *OrderedMap       // per-node xml.* overrides, §4.5
}

type xmlAttr struct {
	name  string
	value string
}

// xmlChild is either a nested element (elem != nil) or a text run (elem ==
// nil, text holds the string content).
type xmlChild struct {
	elem *xmlNode
	text string
}

// xmlRenderState carries the layout options and namespace-prefix allocation
// table for one top-level Render call. It is never shared across calls,
// matching SPEC_FULL.md §5's synchronous, non-shared engine model.
type xmlRenderState struct {
	opts       RenderOptions
	ctx        *Context
	nsPrefixes map[string]string // namespace URI -> allocated prefix
	nextNS     int
}

// RenderXML renders tree -- the output of a compiled transform expected to
// hold an element-tree Value -- as an XML string per SPEC_FULL.md §4.5.
// Renderer context keys in the `xml.*` namespace, if present on ctx,
// override opts field-by-field (so a stylesheet's declared context can
// drive layout without every caller constructing its own RenderOptions).
func RenderXML(tree Value, ctx *Context, opts RenderOptions) (string, error) {
	opts = applyXMLContextOverrides(ctx, opts)
	node, err := decodeXMLNode(tree)
	if err != nil {
		return "", err
	}
	state := &xmlRenderState{
		opts:       opts,
		ctx:        ctx,
		nsPrefixes: map[string]string{},
	}
	if opts.PreferPrefix {
		log.Debugf("jsont: xml render: prefer_prefix set, default xmlns %q always gets a prefix", opts.XMLNS)
	}
	var b strings.Builder
	if err := renderElement(&b, node, opts.Indent, state); err != nil {
		return "", err
	}
	return b.String(), nil
}

func applyXMLContextOverrides(ctx *Context, opts RenderOptions) RenderOptions {
	if ctx == nil {
		return opts
	}
	if v, ok := ctx.Get("xml.style"); ok {
		if s, ok := asStr(v); ok {
			opts.Style = s
		}
	}
	if v, ok := ctx.Get("xml.indent"); ok {
		if i, ok := asInt(v); ok {
			opts.Indent = i
		}
	}
	if v, ok := ctx.Get("xml.indent_step"); ok {
		if i, ok := asInt(v); ok {
			opts.IndentStep = i
		}
	}
	if v, ok := ctx.Get("xml.max_line_length"); ok {
		if i, ok := asInt(v); ok {
			opts.MaxLineLength = i
		}
	}
	if v, ok := ctx.Get("xml.min_line_length"); ok {
		if i, ok := asInt(v); ok {
			opts.MinLineLength = i
		}
	}
	if v, ok := ctx.Get("xml.text_packing"); ok {
		if s, ok := asStr(v); ok {
			opts.TextPacking = s
		}
	}
	if v, ok := ctx.Get("xml.value_pad"); ok {
		if i, ok := asInt(v); ok {
			opts.ValuePad = i
		}
	}
	if v, ok := ctx.Get("xml.xmlns"); ok {
		if s, ok := asStr(v); ok {
			opts.XMLNS = s
		}
	}
	if v, ok := ctx.Get("xml.prefer_prefix"); ok {
		if vv, ok := v.(Value); ok {
			opts.PreferPrefix = vv.Truthy()
		}
	}
	return opts
}

// applyXMLHints overrides opts field-by-field from a node's own `hints` map,
// the same `xml.*` keys a rendering context accepts, but scoped to this one
// element rather than the whole render.
func applyXMLHints(hints *OrderedMap, opts RenderOptions) RenderOptions {
	if hints == nil {
		return opts
	}
	get := func(k string) (Value, bool) { return hints.Get(k) }
	if v, ok := get("xml.style"); ok {
		if s, ok := asStr(v); ok {
			opts.Style = s
		}
	}
	if v, ok := get("xml.indent_step"); ok {
		if i, ok := asInt(v); ok {
			opts.IndentStep = i
		}
	}
	if v, ok := get("xml.max_line_length"); ok {
		if i, ok := asInt(v); ok {
			opts.MaxLineLength = i
		}
	}
	if v, ok := get("xml.min_line_length"); ok {
		if i, ok := asInt(v); ok {
			opts.MinLineLength = i
		}
	}
	if v, ok := get("xml.text_packing"); ok {
		if s, ok := asStr(v); ok {
			opts.TextPacking = s
		}
	}
	if v, ok := get("xml.value_pad"); ok {
		if i, ok := asInt(v); ok {
			opts.ValuePad = i
		}
	}
	if v, ok := get("xml.xmlns"); ok {
		if s, ok := asStr(v); ok {
			opts.XMLNS = s
		}
	}
	if v, ok := get("xml.prefer_prefix"); ok {
		opts.PreferPrefix = v.Truthy()
	}
	return opts
}

func asStr(v interface{}) (string, bool) {
	if vv, ok := v.(Value); ok && vv.Kind() == KindString {
		return vv.Str(), true
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}

// decodeXMLNode validates and extracts an xmlNode from v.
func decodeXMLNode(v Value) (*xmlNode, error) {
	if v.Kind() != KindMap {
		return nil, NewRenderError(ErrMissingXMLData, "name", nil)
	}
	m := v.Map()
	nameV, ok := m.Get("name")
	if !ok || nameV.Kind() != KindString {
		return nil, NewRenderError(ErrMissingXMLData, "name", nil)
	}
	node := &xmlNode{name: nameV.Str()}

	if pv, ok := m.Get("prefix"); ok && pv.Kind() == KindString {
		node.prefix = pv.Str()
	}
	if nv, ok := m.Get("namespace"); ok && nv.Kind() == KindString {
		node.namespace = nv.Str()
	}
	if pv, ok := m.Get("prefixes"); ok && pv.Kind() == KindMap {
		node.prefixes = map[string]string{}
		for _, k := range pv.Map().Keys() {
			ev, _ := pv.Map().Get(k)
			if ev.Kind() == KindString {
				node.prefixes[k] = ev.Str()
			}
		}
	}
	if hv, ok := m.Get("hints"); ok && hv.Kind() == KindMap {
		node.hints = hv.Map()
	}

	contentV, ok := m.Get("content")
	if !ok || contentV.Kind() != KindMap {
		return node, nil
	}
	content := contentV.Map()
	if av, ok := content.Get("attrs"); ok && av.Kind() == KindMap {
		for _, k := range av.Map().Keys() {
			ev, _ := av.Map().Get(k)
			node.attrs = append(node.attrs, xmlAttr{name: k, value: stringifyForTemplate(ev)})
		}
	}
	if cv, ok := content.Get("children"); ok && cv.Kind() == KindSeq {
		for _, item := range cv.Seq() {
			if item.Kind() == KindMap {
				child, err := decodeXMLNode(item)
				if err != nil {
					return nil, err
				}
				node.children = append(node.children, xmlChild{elem: child})
			} else {
				node.children = append(node.children, xmlChild{text: stringifyForTemplate(item)})
			}
		}
	}
	return node, nil
}

// resolvePrefix implements SPEC_FULL.md §4.5's prefix-allocation rule,
// returning the prefix to use for node (empty string for "no prefix") and
// any newly-allocated "xmlns:<p>"="<ns>" attribute to emit on this element.
func resolvePrefix(node *xmlNode, state *xmlRenderState) (prefix string, newDecl *xmlAttr) {
	ns := node.namespace
	if ns == "" {
		return "", nil
	}
	if ns == state.opts.XMLNS && !state.opts.PreferPrefix {
		return "", nil
	}
	if node.prefix != "" {
		if existing, ok := state.nsPrefixes[ns]; !ok || existing != node.prefix {
			state.nsPrefixes[ns] = node.prefix
			return node.prefix, &xmlAttr{name: "xmlns:" + node.prefix, value: ns}
		}
		return node.prefix, nil
	}
	if node.prefixes != nil {
		if p, ok := node.prefixes[ns]; ok {
			if existing, seen := state.nsPrefixes[ns]; !seen || existing != p {
				state.nsPrefixes[ns] = p
				return p, &xmlAttr{name: "xmlns:" + p, value: ns}
			}
			return p, nil
		}
	}
	if p, ok := state.nsPrefixes[ns]; ok {
		return p, nil
	}
	p := "ns" + strconv.Itoa(state.nextNS)
	state.nextNS++
	state.nsPrefixes[ns] = p
	log.Debugf("jsont: xml render: auto-allocated prefix %q for namespace %q", p, ns)
	return p, &xmlAttr{name: "xmlns:" + p, value: ns}
}

func qualifiedName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ":" + name
}

// renderElement writes node to b at the given indent column, recursing into
// children with indent increased by opts.IndentStep.
func renderElement(b *strings.Builder, node *xmlNode, indent int, state *xmlRenderState) error {
	if node.hints != nil {
		saved := state.opts
		state.opts = applyXMLHints(node.hints, state.opts)
		defer func() { state.opts = saved }()
	}
	pretty := state.opts.Style != "compact" && state.opts.IndentStep >= 0
	pad := ""
	if pretty {
		pad = strings.Repeat(" ", indent)
	}

	prefix, newDecl := resolvePrefix(node, state)
	qname := qualifiedName(prefix, node.name)

	attrs := node.attrs
	if newDecl != nil {
		attrs = append([]xmlAttr{*newDecl}, attrs...)
	}

	b.WriteString(pad)
	b.WriteString("<")
	b.WriteString(qname)
	writeAttrs(b, attrs, indent+len(qname)+2, state)

	if len(node.children) == 0 {
		b.WriteString("/>")
		if pretty {
			b.WriteString("\n")
		}
		return nil
	}
	b.WriteString(">")

	if len(node.children) == 1 && node.children[0].elem == nil {
		text := node.children[0].text
		writeInlineOrWrappedText(b, text, indent, state)
		b.WriteString("</")
		b.WriteString(qname)
		b.WriteString(">")
		if pretty {
			b.WriteString("\n")
		}
		return nil
	}

	if pretty {
		b.WriteString("\n")
	}
	childIndent := indent + state.opts.IndentStep
	for _, c := range node.children {
		if c.elem != nil {
			if err := renderElement(b, c.elem, childIndent, state); err != nil {
				return err
			}
			continue
		}
		if pretty {
			b.WriteString(strings.Repeat(" ", childIndent))
		}
		writeWrappedText(b, c.text, childIndent, state)
		if pretty {
			b.WriteString("\n")
		}
	}
	if pretty {
		b.WriteString(pad)
	}
	b.WriteString("</")
	b.WriteString(qname)
	b.WriteString(">")
	if pretty {
		b.WriteString("\n")
	}
	return nil
}

// writeAttrs packs attrs onto the opening tag until exceeding
// xml.max_line_length measured from startCol, then wraps subsequent
// attributes onto new lines aligned to startCol, per SPEC_FULL.md §4.5.
func writeAttrs(b *strings.Builder, attrs []xmlAttr, startCol int, state *xmlRenderState) {
	pretty := state.opts.Style != "compact" && state.opts.IndentStep >= 0
	col := startCol
	for _, a := range attrs {
		rendered := " " + a.name + `="` + escapeXMLAttr(a.value) + `"`
		if pretty && state.opts.MaxLineLength > 0 && col+len(rendered) > state.opts.MaxLineLength && col != startCol {
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", startCol))
			col = startCol
			rendered = a.name + `="` + escapeXMLAttr(a.value) + `"`
		}
		b.WriteString(rendered)
		col += len(rendered)
	}
}

// writeInlineOrWrappedText renders a single short text child on the same
// line as the open/close tags, padded by xml.value_pad spaces on each side;
// longer text falls back to writeWrappedText's wrapped, indented form.
func writeInlineOrWrappedText(b *strings.Builder, text string, indent int, state *xmlRenderState) {
	pretty := state.opts.Style != "compact" && state.opts.IndentStep >= 0
	if !pretty || state.opts.TextPacking == "compact" {
		b.WriteString(escapeXMLText(text))
		return
	}
	pad := strings.Repeat(" ", state.opts.ValuePad)
	if len(text)+indent <= state.opts.MaxLineLength {
		b.WriteString(pad)
		b.WriteString(escapeXMLText(text))
		b.WriteString(pad)
		return
	}
	b.WriteString("\n")
	writeWrappedText(b, text, indent+state.opts.IndentStep, state)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", indent))
}

// writeWrappedText wraps text to xml.max_line_length - indent (clamped to
// xml.min_line_length), each resulting line indented to indent.
// xml.text_packing == "compact" disables wrapping outright.
func writeWrappedText(b *strings.Builder, text string, indent int, state *xmlRenderState) {
	if state.opts.TextPacking == "compact" || state.opts.MaxLineLength <= 0 {
		b.WriteString(escapeXMLText(text))
		return
	}
	width := state.opts.MaxLineLength - indent
	if width < state.opts.MinLineLength {
		width = state.opts.MinLineLength
	}
	lines := wordWrap(text, width)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", indent))
		}
		b.WriteString(escapeXMLText(line))
	}
}

func escapeXMLText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeXMLAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
