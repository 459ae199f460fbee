package erand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformDistFrequency(t *testing.T) {
	r := NewRand(1)
	d := NewUniformDist(1, 10)
	counts := make(map[int]int)
	const n = 200000
	for i := 0; i < n; i++ {
		counts[d.Sample(r)]++
	}
	for v := 1; v <= 10; v++ {
		freq := float64(counts[v]) / float64(n)
		assert.InDelta(t, 0.10, freq, 0.015, "bucket %d frequency out of range", v)
	}
}

func TestHistogramDistFavorsObserved(t *testing.T) {
	r := NewRand(2)
	d := NewHistogramDist(1, 5)
	d.Rebuild([]int{3, 3, 3, 3, 3, 3, 3, 3})
	counts := make(map[int]int)
	for i := 0; i < 20000; i++ {
		counts[d.Sample(r)]++
	}
	mode, modeCount := 0, -1
	for v, c := range counts {
		if c > modeCount {
			mode, modeCount = v, c
		}
	}
	require.Equal(t, 3, mode)
}

func TestNormalDistStaysInRange(t *testing.T) {
	r := NewRand(3)
	d := NewNormalDist(1, 10)
	d.Rebuild([]int{2, 2, 3, 3, 3, 4, 4, 5})
	for i := 0; i < 5000; i++ {
		v := d.Sample(r)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 10)
	}
}

func TestPheromoneDepositExactBump(t *testing.T) {
	d := NewPheromoneDist(1, 10, 0.01, 0.99)
	before := make([]float64, 10)
	for i := 1; i <= 10; i++ {
		before[i-1] = d.Level(i)
	}
	d.Deposit(4)
	assert.InDelta(t, before[3]+1, d.Level(4), 1e-9)
	for k := 1; k <= 3; k++ {
		if 4-k >= 1 {
			assert.InDelta(t, before[4-k-1]+pow2(-k), d.Level(4-k), 1e-9)
		}
		if 4+k <= 10 {
			assert.InDelta(t, before[4+k-1]+pow2(-k), d.Level(4+k), 1e-9)
		}
	}
}

func pow2(k int) float64 {
	v := 1.0
	for i := 0; i < -k; i++ {
		v /= 2
	}
	return v
}

func TestPheromoneSamplingBiasTowardDeposits(t *testing.T) {
	r := NewRand(4)
	d := NewPheromoneDist(1, 10, 0.01, 1.0)
	for i := 0; i < 20; i++ {
		d.Deposit(4)
	}
	counts := make(map[int]int)
	for i := 0; i < 100000; i++ {
		counts[d.Sample(r)]++
	}
	mode, modeCount := 0, -1
	for v, c := range counts {
		if c > modeCount {
			mode, modeCount = v, c
		}
	}
	require.Equal(t, 4, mode)
}

func TestBoundedNormalRespectsBounds(t *testing.T) {
	r := NewRand(5)
	for i := 0; i < 2000; i++ {
		v := BoundedNormal(r, 0, 3, -10, 10)
		require.GreaterOrEqual(t, v, -10.0)
		require.LessOrEqual(t, v, 10.0)
	}
}
