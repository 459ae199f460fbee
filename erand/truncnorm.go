package erand

import "gonum.org/v1/gonum/stat/distuv"

// BoundedNormal draws from a normal distribution with the given mean and
// stddev, rejecting and re-drawing any sample outside [lo, hi]. Used both
// for node-kernel weight initialization (clipped to [-10, 10]) and for the
// recurrent-delay normal-fit sampler, which rejects draws outside
// [delay_min, delay_max].
func BoundedNormal(r *Rand, mean, stddev, lo, hi float64) float64 {
	if stddev <= 0 {
		if mean < lo {
			return lo
		}
		if mean > hi {
			return hi
		}
		return mean
	}
	dist := distuv.Normal{Mu: mean, Sigma: stddev, Src: r.Source()}
	for attempt := 0; attempt < 1000; attempt++ {
		v := dist.Rand()
		if v >= lo && v <= hi {
			return v
		}
	}
	// Pathological parameters: clamp rather than loop forever.
	v := mean
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
