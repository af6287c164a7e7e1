package optimize

import "sort"

// expandGrid expands the Cartesian product of every parameter range into
// candidate parameter sets in a fixed generation order: parameter names are
// sorted and the last name varies fastest, so identical settings always yield
// an identical candidate sequence. The second return reports whether the cap
// truncated the product
func expandGrid(ranges map[string]Range, limit int) ([]map[string]float64, bool) {
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([][]float64, len(names))
	capped := false
	for x, name := range names {
		var c bool
		values[x], c = rangeValues(ranges[name], limit)
		capped = capped || c
	}

	var candidates []map[string]float64
	counters := make([]int, len(names))
	for {
		if len(candidates) >= limit {
			return candidates, true
		}
		candidate := make(map[string]float64, len(names))
		for x, name := range names {
			candidate[name] = values[x][counters[x]]
		}
		candidates = append(candidates, candidate)

		// odometer increment, last parameter fastest
		pos := len(counters) - 1
		for pos >= 0 {
			counters[pos]++
			if counters[pos] < len(values[pos]) {
				break
			}
			counters[pos] = 0
			pos--
		}
		if pos < 0 {
			return candidates, capped
		}
	}
}

// rangeValues enumerates min..max inclusive by step. A small tolerance keeps
// the endpoint when floating point accumulation lands just past max. The
// count is bounded by limit so an oversized range cannot allocate beyond the
// combination cap; the generation loop never indexes past the cap because a
// counter value of v cannot be reached before v candidates exist. The second
// return reports whether the bound dropped values
func rangeValues(r Range, limit int) ([]float64, bool) {
	const epsilon = 1e-9
	capped := false
	count := limit
	// compared in floating point before conversion so an enormous range
	// cannot overflow the count
	if spanned := (r.Max-r.Min)/r.Step + epsilon; spanned < float64(limit) {
		count = int(spanned) + 1
	} else {
		capped = true
	}
	values := make([]float64, 0, count)
	for x := 0; x < count; x++ {
		values = append(values, r.Min+float64(x)*r.Step)
	}
	return values, capped
}
