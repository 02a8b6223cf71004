package jsont

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"

	yaml "github.com/ghodss/yaml"
	"github.com/jinzhu/copier"
	"github.com/qri-io/qfs"
	"github.com/qri-io/qfs/localfs"

	"github.com/qri-io/jsont/dsio"
	"github.com/qri-io/jsont/dsutil"
)

// Document is the thin top-level driver described in SPEC_FULL.md §10.3: it
// owns a root stylesheet's compiled root Transform and exposes the public
// Transform/Render entry points a host application calls. Grounded in
// original_source/tools/python/jsont/engine.py's DocEngine and in the
// teacher's own Dataset type, which plays the same "one public struct holds
// the loaded document and its path" role (dataset.go's Dataset/path/Meta()
// shape, generalized here from DCAT metadata to a compiled stylesheet).
type Document struct {
	engine *Engine
	root   *Transform
	path   string
}

// RenderOptions controls how Document.Render lays out its XML output.
// defaultRenderOptions holds SPEC_FULL.md §4.5's defaults; the zero value is
// not those defaults (its IndentStep, MaxLineLength and ValuePad are all 0).
type RenderOptions struct {
	Style         string // "pretty" or "compact"
	Indent        int
	IndentStep    int
	MaxLineLength int
	MinLineLength int
	TextPacking   string
	ValuePad      int
	XMLNS         string
	PreferPrefix  bool
}

// defaultRenderOptions returns a fresh RenderOptions set to the §4.5
// defaults; callers mutate a copy rather than these shared defaults, which
// is the one place this engine reaches for jinzhu/copier (already in the
// teacher's go.mod) instead of a hand-written field-by-field copy, mirroring
// how the teacher's Structure type round-trips format-config values.
func defaultRenderOptions() RenderOptions {
	return RenderOptions{
		Style:         "pretty",
		Indent:        0,
		IndentStep:    2,
		MaxLineLength: 79,
		MinLineLength: 20,
		TextPacking:   "wrap",
		ValuePad:      1,
		XMLNS:         "",
		PreferPrefix:  false,
	}
}

// cloneRenderOptions deep-copies opts via copier.Copy, so a caller that
// starts from defaultRenderOptions() and overrides a few fields never
// mutates another caller's in-flight options.
func cloneRenderOptions(opts RenderOptions) RenderOptions {
	var out RenderOptions
	if err := copier.Copy(&out, &opts); err != nil {
		return opts
	}
	return out
}

// LoadStylesheet reads a stylesheet from r, which may hold either JSON or
// YAML (sniffed by the first non-whitespace byte: '{', '[' or '"' is read
// as JSON, anything else is converted from YAML, as
// Structure's own format-config round-trip does in the teacher package),
// installs its prefixes/transforms/context into a fresh standard engine,
// and compiles its root transform.
func LoadStylesheet(r io.Reader) (*Document, error) {
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err = normalizeToJSON(raw)
	if err != nil {
		return nil, NewConfigError(ErrStylesheetContent, "", "", err)
	}

	js, err := dsio.ReadAll("json", bytes.NewReader(raw))
	if err != nil {
		return nil, NewConfigError(ErrStylesheetContent, "", "", err)
	}
	return newDocumentFromValue(Wrap(js))
}

// LoadStylesheetModule is like LoadStylesheet, but reads the stylesheet from
// path through fs, opening the file only long enough to read and parse it
// and closing it before returning -- the "module stylesheet opened once at
// engine construction, closed before apply" resource-safety rule of
// SPEC_FULL.md §5, backed by qri-io/qfs's Filesystem abstraction rather than
// a bare os.Open.
func LoadStylesheetModule(fs qfs.Filesystem, path string) (*Document, error) {
	raw, err := dsutil.ReadAndClose(context.Background(), fs, path)
	if err != nil {
		return nil, err
	}
	return LoadStylesheet(bytes.NewReader(raw))
}

// LoadLocalStylesheetModule opens path on the local filesystem through
// qfs/localfs, matching LoadStylesheetModule's resource-safety contract for
// the common case of a stylesheet living on disk.
func LoadLocalStylesheetModule(path string) (*Document, error) {
	fs, err := localfs.NewFS(nil)
	if err != nil {
		return nil, err
	}
	return LoadStylesheetModule(fs, path)
}

func normalizeToJSON(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"') {
		return raw, nil
	}
	return yaml.YAMLToJSON(raw)
}

// newDocumentFromValue installs stylesheet's top-level prefixes/transforms/
// context (SPEC_FULL.md §6) into a fresh standard engine and compiles the
// root transform from stylesheet itself.
func newDocumentFromValue(stylesheet Value) (*Document, error) {
	e := NewStdEngine()
	if stylesheet.Kind() == KindMap {
		m := stylesheet.Map()
		if pv, ok := m.Get("prefixes"); ok && pv.Kind() == KindMap {
			for _, k := range pv.Map().Keys() {
				v, _ := pv.Map().Get(k)
				if v.Kind() != KindString {
					return nil, NewConfigError(ErrWrongParamType, "", "prefixes."+k, nil)
				}
				if err := e.DeclarePrefix(k, v.Str()); err != nil {
					return nil, err
				}
			}
		}
		if tv, ok := m.Get("transforms"); ok && tv.Kind() == KindMap {
			for _, k := range tv.Map().Keys() {
				cfg, _ := tv.Map().Get(k)
				if err := e.DeclareTransform(k, cfg); err != nil {
					return nil, err
				}
			}
		}
		if cv, ok := m.Get("context"); ok && cv.Kind() == KindMap {
			for _, k := range cv.Map().Keys() {
				v, _ := cv.Map().Get(k)
				if isProtected(k) {
					continue
				}
				_ = e.context.Set(k, v)
			}
		}
	}

	root, err := e.MakeTransform(stylesheet, "", "")
	if err != nil {
		return nil, err
	}
	return &Document{engine: e, root: root}, nil
}

// Engine returns the Document's backing Engine, for callers that need to
// register additional contrib functions or inspect named transforms before
// applying.
func (d *Document) Engine() *Engine { return d.engine }

// Transform applies the document's compiled root transform to input,
// producing a JSON Value per SPEC_FULL.md §2's "Applying the root
// transform to an input produces an output" data flow.
func (d *Document) Transform(input Value) (Value, error) {
	return d.root.Apply(input, d.engine.Context())
}

// TransformJSON is a convenience wrapper around Transform for callers
// working with raw JSON bytes rather than Values, decoding/encoding
// through the dsio package's "json" codec.
func (d *Document) TransformJSON(input []byte) ([]byte, error) {
	return d.transformWire("json", input)
}

// TransformCBOR is TransformJSON's CBOR counterpart, using the dsio
// package's "cbor" codec (github.com/ugorji/go/codec under the hood) for
// the same input/output format parity the teacher's dsio package offers
// for Dataset I/O (SPEC_FULL.md §11/§12).
func (d *Document) TransformCBOR(input []byte) ([]byte, error) {
	return d.transformWire("cbor", input)
}

// transformWire decodes input in the named dsio format, applies the
// document's root transform, and re-encodes the result in the same
// format.
func (d *Document) transformWire(format string, input []byte) ([]byte, error) {
	js, err := dsio.ReadAll(format, bytes.NewReader(input))
	if err != nil {
		return nil, NewConfigError(ErrStylesheetContent, "", "", err)
	}
	out, err := d.Transform(Wrap(js))
	if err != nil {
		return nil, err
	}
	plain, err := Unwrap(out)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dsio.WriteAll(format, &buf, plain); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render applies the document's root transform to input, then renders the
// resulting element-tree Value as an XML string via the renderer adapter
// described in SPEC_FULL.md §4.5, using opts to control layout. A zero
// RenderOptions is replaced with the §4.5 defaults.
func (d *Document) Render(input Value, opts RenderOptions) (string, error) {
	tree, err := d.Transform(input)
	if err != nil {
		return "", err
	}
	if opts.MaxLineLength == 0 && opts.IndentStep == 0 && opts.Style == "" {
		opts = defaultRenderOptions()
	} else {
		opts = cloneRenderOptions(opts)
	}
	return RenderXML(tree, d.engine.Context(), opts)
}
