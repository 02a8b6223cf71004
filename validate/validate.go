// Package validate centralizes the name-validity rules the engine applies
// whenever a stylesheet introduces a new identifier: a named transform or
// a prefix. Adapted from the teacher's validate package,
// which existed to validate dataset/peer names against the same
// github.com/qri-io/varName rules this package wraps; here the "name"
// being validated is a stylesheet-declared transform or prefix name rather
// than a dataset handle.
package validate

import (
	"fmt"

	varname "github.com/qri-io/varName"
)

// TransformName reports whether name is valid for use as a key in an
// engine's transforms arena (SPEC_FULL.md §6 "transforms" top-level
// property, and the "transforms" scope-override key accepted by any kind's
// configuration).
func TransformName(name string) error {
	if err := varname.ValidName(name); err != nil {
		return fmt.Errorf("invalid transform name %q: %w", name, err)
	}
	return nil
}

// PrefixName reports whether name is valid for use as a key in an engine's
// prefixes table (SPEC_FULL.md §6 "prefixes" top-level property).
func PrefixName(name string) error {
	if err := varname.ValidName(name); err != nil {
		return fmt.Errorf("invalid prefix name %q: %w", name, err)
	}
	return nil
}
