package dsio

// OrderedMap is dsio's format-agnostic insertion-ordered object
// representation. The "json" and "yaml" Readers build one of these in place
// of a plain map[string]interface{} for every JSON object they decode, at
// every nesting depth, so a caller that cares about source key order (the
// root jsont package's Wrap) can recover it; this package stays
// Value-agnostic (see the package doc), so an OrderedMap's values are left
// as interface{} -- nested objects are themselves *OrderedMap, nested
// arrays are []interface{}.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]interface{}{}}
}

// Set inserts or overwrites key, appending it to the key order on first
// insertion and leaving its position unchanged on overwrite.
func (m *OrderedMap) Set(key string, v interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. Callers must not mutate the
// returned slice.
func (m *OrderedMap) Keys() []string {
	return m.keys
}
