// Package dsio provides format-agnostic decode/encode of a document's wire
// representation: JSON, YAML, or CBOR in, a plain Go value tree out (and
// back). Adapted from the teacher's dsio package, which dispatched
// NewEntryReader/NewEntryWriter on a dataset Structure's declared "format"
// string (csv/json/cbor) to stream dataset rows; here there is no row
// stream or schema, only a single JSON-shaped document, so Reader/Writer
// decode and encode that document whole rather than entry-by-entry. This
// package intentionally has no dependency on the root jsont package -- it
// hands back/takes a plain interface{} tree, leaving Value wrapping to the
// caller, so that document.go (in the root package) can depend on dsio
// without a import cycle.
package dsio

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/ioutil"
	"reflect"

	yaml "github.com/ghodss/yaml"
	codec "github.com/ugorji/go/codec"
)

// ErrNoFormat is returned by NewReader/NewWriter when format is empty,
// mirroring the teacher's "structure must have a data format" check.
var ErrNoFormat = errors.New("dsio: must specify a data format")

// Reader decodes one document from an underlying stream.
type Reader interface {
	ReadAll() (interface{}, error)
}

// Writer encodes one document to an underlying stream.
type Writer interface {
	WriteAll(v interface{}) error
}

// NewReader returns a Reader for the named format ("json", "yaml", or
// "cbor") reading from r.
func NewReader(format string, r io.Reader) (Reader, error) {
	switch format {
	case "":
		return nil, ErrNoFormat
	case "json":
		return &jsonReader{r: r}, nil
	case "yaml":
		return &yamlReader{r: r}, nil
	case "cbor":
		return &cborReader{r: r}, nil
	default:
		return nil, errors.New("dsio: unsupported format: " + format)
	}
}

// NewWriter returns a Writer for the named format ("json", "yaml", or
// "cbor") writing to w.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case "":
		return nil, ErrNoFormat
	case "json":
		return &jsonWriter{w: w}, nil
	case "yaml":
		return &yamlWriter{w: w}, nil
	case "cbor":
		return &cborWriter{w: w}, nil
	default:
		return nil, errors.New("dsio: unsupported format: " + format)
	}
}

// ReadAll is a convenience wrapper equivalent to NewReader(format,
// r).ReadAll().
func ReadAll(format string, r io.Reader) (interface{}, error) {
	rd, err := NewReader(format, r)
	if err != nil {
		return nil, err
	}
	return rd.ReadAll()
}

// WriteAll is a convenience wrapper equivalent to NewWriter(format,
// w).WriteAll(v).
func WriteAll(format string, w io.Writer, v interface{}) error {
	wr, err := NewWriter(format, w)
	if err != nil {
		return err
	}
	return wr.WriteAll(v)
}

type jsonReader struct{ r io.Reader }

func (jr *jsonReader) ReadAll() (interface{}, error) {
	dec := json.NewDecoder(jr.r)
	dec.UseNumber()
	return decodeOrdered(dec)
}

// decodeOrdered recursively decodes the next JSON value off dec, building
// objects as *OrderedMap at every depth instead of the map[string]interface{}
// a bare dec.Decode(&v) would produce -- Go's map iteration order is random,
// so once an object has been decoded into one, its source key order is gone
// for good; decodeOrdered never makes that round trip.
func decodeOrdered(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			om := NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				om.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return om, nil
		case '[':
			var seq []interface{}
			for dec.More() {
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return seq, nil
		default:
			return nil, errors.New("dsio: unexpected JSON delimiter")
		}
	default:
		return tok, nil
	}
}

type jsonWriter struct{ w io.Writer }

func (jw *jsonWriter) WriteAll(v interface{}) error {
	return json.NewEncoder(jw.w).Encode(v)
}

type yamlReader struct{ r io.Reader }

func (yr *yamlReader) ReadAll() (interface{}, error) {
	raw, err := ioutil.ReadAll(yr.r)
	if err != nil {
		return nil, err
	}
	jsonRaw, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(jsonRaw))
	dec.UseNumber()
	return decodeOrdered(dec)
}

type yamlWriter struct{ w io.Writer }

func (yw *yamlWriter) WriteAll(v interface{}) error {
	jsonRaw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	yamlRaw, err := yaml.JSONToYAML(jsonRaw)
	if err != nil {
		return err
	}
	_, err = yw.w.Write(yamlRaw)
	return err
}

type cborReader struct{ r io.Reader }

// ReadAll decodes generically into interface{}, with the handle's MapType
// set so every CBOR map comes back as a plain map[string]interface{} and
// SignedInteger set so CBOR integers come back as int64: ugorji/go/codec's generic
// decode path (unlike encoding/json's token-by-token Decoder used by
// decodeOrdered above) always materializes maps through reflect.MakeMap,
// and a Go map has no iteration order to preserve regardless of the order
// its keys arrived on the wire. A stylesheet or input document that needs
// deterministic multi-key object order should be authored as JSON.
func (cr *cborReader) ReadAll() (interface{}, error) {
	h := &codec.CborHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	h.SignedInteger = true
	var v interface{}
	if err := codec.NewDecoder(cr.r, h).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

type cborWriter struct{ w io.Writer }

func (cw *cborWriter) WriteAll(v interface{}) error {
	return codec.NewEncoder(cw.w, &codec.CborHandle{}).Encode(v)
}
