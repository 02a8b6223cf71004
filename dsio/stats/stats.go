// Package stats computes structural statistics over a decoded JSON value:
// per-field counts, numeric min/max, string length bounds, and boolean
// true/false tallies. Adapted from the teacher's stats package, which
// wrapped a streaming dsio.EntryReader to accumulate the same statistics
// row-by-row over a dataset's entries read through a Structure-declared
// schema; this package instead walks one already-decoded value (an array
// of row-like objects, an object of column-like arrays, or a single
// scalar) in a single recursive pass, since the engine has no row stream
// or schema -- only Compute's caller (the "stats" native function, see
// native.go) supplies the value to walk.
package stats

// Compute returns a structural statistics summary of v. v is treated as a
// stream of "entries" -- the elements of an array, or the property values
// of an object -- and the shape of its first entry decides how the
// stream is folded:
//
//   - entries that are objects are folded by field name: the result is a
//     map from each field encountered to the aggregate stats of that
//     field's values across every entry (e.g. stats of an array of JSON
//     records);
//   - entries that are arrays are folded by position: the result is a
//     slice where index i holds the aggregate stats of every entry's i'th
//     element (e.g. stats of an object whose values are parallel columns);
//   - scalar entries are folded into one aggregate.
//
// A bare scalar at the top is treated as a single-entry stream.
func Compute(v interface{}) interface{} {
	switch x := v.(type) {
	case []interface{}:
		return computeEntries(x)
	case map[string]interface{}:
		entries := make([]interface{}, 0, len(x))
		for _, val := range x {
			entries = append(entries, val)
		}
		return computeEntries(entries)
	default:
		return computeEntries([]interface{}{v})
	}
}

func computeEntries(entries []interface{}) interface{} {
	if len(entries) == 0 {
		return map[string]interface{}{}
	}
	switch entries[0].(type) {
	case map[string]interface{}:
		return computeByField(entries)
	case []interface{}:
		return computeByIndex(entries)
	default:
		return computeColumn(entries)
	}
}

// computeByField aggregates per-field stats across a stream of row
// objects, keyed by field name.
func computeByField(rows []interface{}) map[string]interface{} {
	gens := map[string]generator{}
	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		for key, val := range m {
			g, ok := gens[key]
			if !ok {
				g = newGenerator(val)
				gens[key] = g
			}
			g.add(val)
		}
	}
	out := map[string]interface{}{}
	for key, g := range gens {
		out[key] = g.stats()
	}
	return out
}

// computeByIndex aggregates per-position stats across a stream of row
// arrays, keyed by index.
func computeByIndex(rows []interface{}) []interface{} {
	var gens []generator
	for _, row := range rows {
		arr, ok := row.([]interface{})
		if !ok {
			continue
		}
		for i, val := range arr {
			if i == len(gens) {
				gens = append(gens, newGenerator(val))
			}
			gens[i].add(val)
		}
	}
	out := make([]interface{}, len(gens))
	for i, g := range gens {
		out[i] = g.stats()
	}
	return out
}

// computeColumn aggregates stats for a single stream of like-kind values.
func computeColumn(values []interface{}) interface{} {
	var g generator
	for _, v := range values {
		if g == nil {
			g = newGenerator(v)
		}
		g.add(v)
	}
	if g == nil {
		g = &nullGen{}
	}
	return g.stats()
}

type generator interface {
	add(v interface{})
	stats() interface{}
}

func newGenerator(v interface{}) generator {
	switch v.(type) {
	default:
		return &nullGen{}
	case float64, float32, int, int64:
		return &numericGen{max: float64(minInt), min: float64(maxInt)}
	case string:
		return &stringGen{maxLength: minInt, minLength: maxInt}
	case bool:
		return &boolGen{}
	}
}

const maxUint = ^uint(0)
const maxInt = int(maxUint >> 1)
const minInt = -maxInt - 1

type numericGen struct {
	count int
	min   float64
	max   float64
}

func (g *numericGen) add(v interface{}) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	default:
		return
	}
	g.count++
	if f > g.max {
		g.max = f
	}
	if f < g.min {
		g.min = f
	}
}

func (g *numericGen) stats() interface{} {
	if g.count == 0 {
		return map[string]interface{}{"count": 0}
	}
	return map[string]interface{}{"count": g.count, "min": g.min, "max": g.max}
}

type stringGen struct {
	count     int
	minLength int
	maxLength int
}

func (g *stringGen) add(v interface{}) {
	s, ok := v.(string)
	if !ok {
		return
	}
	g.count++
	if len(s) < g.minLength {
		g.minLength = len(s)
	}
	if len(s) > g.maxLength {
		g.maxLength = len(s)
	}
}

func (g *stringGen) stats() interface{} {
	if g.count == 0 {
		return map[string]interface{}{"count": 0}
	}
	return map[string]interface{}{"count": g.count, "minLength": g.minLength, "maxLength": g.maxLength}
}

type boolGen struct {
	count      int
	trueCount  int
	falseCount int
}

func (g *boolGen) add(v interface{}) {
	b, ok := v.(bool)
	if !ok {
		return
	}
	g.count++
	if b {
		g.trueCount++
	} else {
		g.falseCount++
	}
}

func (g *boolGen) stats() interface{} {
	return map[string]interface{}{"count": g.count, "trueCount": g.trueCount, "falseCount": g.falseCount}
}

type nullGen struct {
	count int
}

func (g *nullGen) add(v interface{}) {
	if v == nil {
		g.count++
	}
}

func (g *nullGen) stats() interface{} {
	return map[string]interface{}{"count": g.count}
}
