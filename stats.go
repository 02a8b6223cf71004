package jsont

import "github.com/qri-io/jsont/dsio/stats"

// nativeStats implements the supplemented "stats" native function
// (SPEC_FULL.md §12): reports structural statistics (counts, numeric
// min/max, string length bounds, boolean tallies) over the input, or over
// a selected sub-value when args[0] is given. Adapted from the teacher's
// dsio/stats package, which accumulated the same statistics by streaming
// a dataset's rows through a schema-driven EntryReader; here there is no
// row stream, so stats.Compute walks one already-decoded value tree.
func nativeStats(e *Engine, input Value, ctx *Context, args []Value) (Value, error) {
	target := input
	if len(args) >= 1 {
		v, err := e.extract(input, ctx, args[0].Str())
		if err != nil {
			return Null, err
		}
		target = v
	}
	plain, err := Unwrap(target)
	if err != nil {
		return Null, err
	}
	return Wrap(stats.Compute(toPlain(plain))), nil
}

func init() {
	registerNative("stats", nativeStats)
}
