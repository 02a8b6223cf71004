package jsont

import "fmt"

// ScopedDict is a stack-structured key/value container: a child's local
// storage is checked first, falling through to a borrowed defaults chain.
// Grounded in original_source/tools/python/jsont/base.py's ScopedDict.
//
// Ownership: each ScopedDict exclusively owns its local storage; defaults
// is a shared, read-only reference whose lifetime must outlive the child's.
// All operations are O(1) amortized except Keys, which is O(union-size).
type ScopedDict struct {
	data     map[string]interface{}
	defaults *ScopedDict
}

// NewScopedDict returns a root ScopedDict with no defaults chain.
func NewScopedDict() *ScopedDict {
	return &ScopedDict{data: map[string]interface{}{}}
}

// Get returns the value stored under key, checking local storage first and
// then the defaults chain. The second return value is false if key is
// absent everywhere in the chain.
func (d *ScopedDict) Get(key string) (interface{}, bool) {
	if v, ok := d.data[key]; ok {
		return v, true
	}
	if d.defaults != nil {
		return d.defaults.Get(key)
	}
	return nil, false
}

// MustGet is like Get but returns an error instead of a false ok, mirroring
// the source's KeyError-raising __getitem__.
func (d *ScopedDict) MustGet(key string) (interface{}, error) {
	if v, ok := d.Get(key); ok {
		return v, nil
	}
	return nil, fmt.Errorf("jsont: key not found: %s", key)
}

// Set stores val under key in this ScopedDict's own local storage; it never
// touches the defaults chain.
func (d *ScopedDict) Set(key string, val interface{}) {
	d.data[key] = val
}

// Delete removes key from local storage only. Deleting a key that exists
// only in the defaults chain has no effect, matching the source's
// __delitem__ (which operates on self._data).
func (d *ScopedDict) Delete(key string) {
	delete(d.data, key)
}

// Keys returns the union of locally-set keys and all keys reachable through
// the defaults chain, each appearing once.
func (d *ScopedDict) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for cur := d; cur != nil; cur = cur.defaults {
		for k := range cur.data {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// Derive creates a new ScopedDict whose defaults chain is d. The child owns
// its own local storage from the start; writes to the child never affect d.
func (d *ScopedDict) Derive() *ScopedDict {
	return &ScopedDict{data: map[string]interface{}{}, defaults: d}
}

// Defaults returns the defaults this ScopedDict falls back to, or nil for a
// root ScopedDict.
func (d *ScopedDict) Defaults() *ScopedDict {
	return d.defaults
}
