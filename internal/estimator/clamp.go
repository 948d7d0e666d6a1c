package estimator

import "sort"

const clampIterations = 200

// ClampDistribution renormalises probs to sum to 1 and projects them into [lo, hi].
// The projection shifts every probability by one common offset and clips, so the
// ordering of outcomes is preserved and the result still sums to 1. Bounds that
// cannot hold n outcomes summing to 1 are ignored.
func ClampDistribution(probs map[string]float64, lo, hi float64) map[string]float64 {
	keys := make([]string, 0, len(probs))
	for k := range probs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(keys))
	if len(keys) == 0 {
		return out
	}

	total := 0.0
	for _, k := range keys {
		if v := probs[k]; v > 0 {
			total += v
		}
	}
	for _, k := range keys {
		v := probs[k]
		switch {
		case total <= 0:
			out[k] = 1 / float64(len(keys))
		case v > 0:
			out[k] = v / total
		default:
			out[k] = 0
		}
	}

	n := float64(len(keys))
	if lo*n > 1 || hi*n < 1 || lo >= hi {
		return out
	}

	sumShifted := func(tau float64) float64 {
		s := 0.0
		for _, k := range keys {
			s += clip(out[k]+tau, lo, hi)
		}
		return s
	}

	low, high := lo-1, hi
	for i := 0; i < clampIterations; i++ {
		mid := (low + high) / 2
		if sumShifted(mid) < 1 {
			low = mid
		} else {
			high = mid
		}
	}
	tau := (low + high) / 2

	sum := 0.0
	var free []string
	for _, k := range keys {
		out[k] = clip(out[k]+tau, lo, hi)
		sum += out[k]
		if out[k] > lo && out[k] < hi {
			free = append(free, k)
		}
	}
	// bisection residue goes to the unclipped outcomes so bound values stay exact
	if len(free) > 0 {
		share := (1 - sum) / float64(len(free))
		for _, k := range free {
			out[k] = clip(out[k]+share, lo, hi)
		}
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
