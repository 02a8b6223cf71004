package jsont

import "strings"

// Context is a ScopedDict specialization holding evaluation parameters for a
// transform application. Per SPEC_FULL.md §3, any key whose first character
// is '$' is immutable and immortal: Set/Delete on such a key is rejected,
// while Update silently skips protected keys instead of failing, so that
// bulk-merging untrusted input (e.g. CLI -D flags, or a choose default's
// whole result) can never smuggle in a new protected value.
type Context struct {
	*ScopedDict
}

// NewContext returns a root Context with no defaults chain.
func NewContext() *Context {
	return &Context{ScopedDict: NewScopedDict()}
}

// isProtected reports whether key is a protected ("$"-prefixed) key.
func isProtected(key string) bool {
	return strings.HasPrefix(key, "$")
}

// Set stores val under key. It returns an error instead of mutating the
// Context when key is protected.
func (c *Context) Set(key string, val interface{}) error {
	if isProtected(key) {
		return NewConfigError(ErrProtectedKey, "", key, nil)
	}
	c.ScopedDict.Set(key, val)
	return nil
}

// Delete removes key from local storage. It returns an error instead of
// mutating the Context when key is protected.
func (c *Context) Delete(key string) error {
	if isProtected(key) {
		return NewConfigError(ErrProtectedKey, "", key, nil)
	}
	c.ScopedDict.Delete(key)
	return nil
}

// Update merges updates into the Context, skipping any protected key
// silently rather than failing the whole update.
func (c *Context) Update(updates map[string]interface{}) {
	for k, v := range updates {
		if isProtected(k) {
			continue
		}
		c.ScopedDict.Set(k, v)
	}
}

// Derive creates a child Context whose defaults chain is c.
func (c *Context) Derive() *Context {
	return &Context{ScopedDict: c.ScopedDict.Derive()}
}

// SetProtected installs a protected key. It is the only way a "$"-prefixed
// key is ever set, used once by the engine at module-install time to seed
// entries like $sys.contrib_pkg; ordinary transform code can never reach it.
func (c *Context) SetProtected(key string, val interface{}) {
	c.ScopedDict.Set(key, val)
}
