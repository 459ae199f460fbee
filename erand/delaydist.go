package erand

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DelayDist samples recurrent-edge delays from [Min, Max] and can be
// rebuilt from the current population's observed delays.
type DelayDist interface {
	// Sample draws a single delay in [Min(), Max()].
	Sample(r *Rand) int
	// Rebuild recomputes the distribution's internal state from the
	// delays of every enabled recurrent edge currently in the population
	// (or island) being sampled for. Implementations that evolve purely
	// by event (PheromoneDist) ignore this.
	Rebuild(delays []int)
	Min() int
	Max() int
}

func span(min, max int) int { return max - min + 1 }

// UniformDist ignores the observed-delay table entirely and samples
// uniformly from [Min, Max].
type UniformDist struct {
	min, max int
}

func NewUniformDist(min, max int) *UniformDist { return &UniformDist{min: min, max: max} }

func (d *UniformDist) Sample(r *Rand) int { return r.IntRange(d.min, d.max) }
func (d *UniformDist) Rebuild([]int)       {}
func (d *UniformDist) Min() int            { return d.min }
func (d *UniformDist) Max() int            { return d.max }

// HistogramDist expands the observed-delay frequency table (with +1
// smoothing per bucket) and samples a uniform index into that expansion.
type HistogramDist struct {
	min, max int
	counts   []int // length span(min,max), counts[i] is bucket (min+i)'s count, already +1 smoothed
}

func NewHistogramDist(min, max int) *HistogramDist {
	d := &HistogramDist{min: min, max: max}
	d.Rebuild(nil)
	return d
}

func (d *HistogramDist) Rebuild(delays []int) {
	n := span(d.min, d.max)
	counts := make([]int, n)
	for i := range counts {
		counts[i] = 1 // +1 smoothing per bucket
	}
	for _, dl := range delays {
		if dl < d.min || dl > d.max {
			continue
		}
		counts[dl-d.min]++
	}
	d.counts = counts
}

func (d *HistogramDist) Sample(r *Rand) int {
	total := 0
	for _, c := range d.counts {
		total += c
	}
	if total <= 0 {
		return r.IntRange(d.min, d.max)
	}
	pick := r.Choose(total)
	run := 0
	for i, c := range d.counts {
		run += c
		if pick < run {
			return d.min + i
		}
	}
	return d.max
}

func (d *HistogramDist) Min() int { return d.min }
func (d *HistogramDist) Max() int { return d.max }

// NormalDist fits a normal distribution's mean/stddev to the observed
// delay frequencies and samples from it, rejecting and re-drawing any
// sample that rounds outside [Min, Max].
type NormalDist struct {
	min, max   int
	mean, std  float64
	haveSample bool
}

func NewNormalDist(min, max int) *NormalDist {
	d := &NormalDist{min: min, max: max}
	d.Rebuild(nil)
	return d
}

func (d *NormalDist) Rebuild(delays []int) {
	if len(delays) == 0 {
		d.mean = float64(d.min+d.max) / 2
		d.std = float64(d.max-d.min) / 4
		if d.std <= 0 {
			d.std = 1
		}
		return
	}
	xs := make([]float64, len(delays))
	for i, dl := range delays {
		xs[i] = float64(dl)
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if std <= 0 {
		std = 1
	}
	d.mean, d.std = mean, std
}

func (d *NormalDist) Sample(r *Rand) int {
	v := BoundedNormal(r, d.mean, d.std, float64(d.min), float64(d.max))
	return int(math.Round(v))
}

func (d *NormalDist) Min() int { return d.min }
func (d *NormalDist) Max() int { return d.max }

// PheromoneDist is a reinforcement-learning-inspired categorical
// distribution over delays: deposits reinforce a delay and its
// neighbors, decay attenuates all levels, and sampling is proportional to
// (level + baseline). It evolves purely by Deposit/Decay events, so
// Rebuild is a no-op.
type PheromoneDist struct {
	min, max  int
	baseline  float64
	decayRate float64
	levels    []float64 // length span(min,max)
}

func NewPheromoneDist(min, max int, baseline, decayRate float64) *PheromoneDist {
	return &PheromoneDist{
		min:       min,
		max:       max,
		baseline:  baseline,
		decayRate: decayRate,
		levels:    make([]float64, span(min, max)),
	}
}

func (d *PheromoneDist) Rebuild([]int) {}

// Deposit reinforces delay dStar and, with exponentially decreasing
// weight 2^-k, every delay k steps away from it within [Min, Max].
func (d *PheromoneDist) Deposit(dStar int) {
	for i := range d.levels {
		delay := d.min + i
		k := delay - dStar
		if k < 0 {
			k = -k
		}
		d.levels[i] += math.Pow(0.5, float64(k))
	}
}

// Decay multiplies every pheromone level by the configured decay rate.
func (d *PheromoneDist) Decay() {
	for i := range d.levels {
		d.levels[i] *= d.decayRate
	}
}

func (d *PheromoneDist) Sample(r *Rand) int {
	weights := make([]float64, len(d.levels))
	total := 0.0
	for i, lv := range d.levels {
		w := lv + d.baseline
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return r.IntRange(d.min, d.max)
	}
	pick := r.Float64() * total
	run := 0.0
	for i, w := range weights {
		run += w
		if pick < run {
			return d.min + i
		}
	}
	return d.max
}

// Level returns the current pheromone level for delay d (for testing and
// diagnostics).
func (d *PheromoneDist) Level(delay int) float64 {
	if delay < d.min || delay > d.max {
		return 0
	}
	return d.levels[delay-d.min]
}

func (d *PheromoneDist) Min() int { return d.min }
func (d *PheromoneDist) Max() int { return d.max }

// Sampling is the configured choice of which DelayDist kind to build.
type Sampling int

const (
	SamplingUniform Sampling = iota
	SamplingHistogram
	SamplingNormal
	SamplingPheromone
)

// New constructs the configured DelayDist kind.
func New(kind Sampling, min, max int, baseline, decayRate float64) DelayDist {
	switch kind {
	case SamplingHistogram:
		return NewHistogramDist(min, max)
	case SamplingNormal:
		return NewNormalDist(min, max)
	case SamplingPheromone:
		return NewPheromoneDist(min, max, baseline, decayRate)
	default:
		return NewUniformDist(min, max)
	}
}
