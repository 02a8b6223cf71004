package jsont

import "github.com/qri-io/jsont/vals"

// valueIterator adapts a Value's ordered collection (array elements or
// object properties) to vals.Iterator, giving "foreach" a single
// traversal loop regardless of which kind of collection it received.
type valueIterator struct {
	entries []vals.Entry
	pos     int
}

// newValueIterator builds a valueIterator over v's elements (KindSeq) or
// properties in insertion order (KindMap). Any other kind yields a single
// entry holding v itself.
func newValueIterator(v Value) *valueIterator {
	var entries []vals.Entry
	switch v.Kind() {
	case KindSeq:
		for i, item := range v.Seq() {
			entries = append(entries, vals.Entry{Index: i, Value: item})
		}
	case KindMap:
		for i, k := range v.Map().Keys() {
			item, _ := v.Map().Get(k)
			entries = append(entries, vals.Entry{Index: i, Key: k, Value: item})
		}
	default:
		entries = append(entries, vals.Entry{Value: v})
	}
	return &valueIterator{entries: entries}
}

// Next implements vals.Iterator.
func (it *valueIterator) Next() (*vals.Entry, bool) {
	if it.pos >= len(it.entries) {
		return nil, false
	}
	e := it.entries[it.pos]
	it.pos++
	return &e, true
}

// Done implements vals.Iterator. The iterator holds no external resources,
// so this is a no-op.
func (it *valueIterator) Done() {}

// valueForKey looks up key among v's KindMap properties, the lookup
// vals.Keyable describes; no type here implements that interface.
func valueForKey(v Value, key string) (interface{}, error) {
	if v.Kind() != KindMap {
		return nil, NewApplicationError(ErrWrongInputType, "", "", v, nil, nil)
	}
	item, ok := v.Map().Get(key)
	if !ok {
		return nil, NewApplicationError(ErrDataExtraction, "", key, v, nil, nil)
	}
	return item, nil
}

// valueForIndex looks up index i among v's KindSeq elements, the lookup
// vals.Indexable describes; no type here implements that interface.
func valueForIndex(v Value, i int) (interface{}, error) {
	if v.Kind() != KindSeq || i < 0 || i >= len(v.Seq()) {
		return nil, NewApplicationError(ErrDataExtraction, "", "", v, nil, nil)
	}
	return v.Seq()[i], nil
}
