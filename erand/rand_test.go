package erand

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShuffleIntsIsPermutation(t *testing.T) {
	r := NewRand(7)
	order := make([]int, 20)
	for i := range order {
		order[i] = i
	}
	r.ShuffleInts(order)

	got := append([]int(nil), order...)
	sort.Ints(got)
	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, got)
}

func TestShuffleIntsChangesOrderAcrossSeeds(t *testing.T) {
	base := make([]int, 50)
	for i := range base {
		base[i] = i
	}

	a := append([]int(nil), base...)
	NewRand(1).ShuffleInts(a)

	b := append([]int(nil), base...)
	NewRand(2).ShuffleInts(b)

	require.NotEqual(t, a, b)
}

func TestIntRangeStaysWithinBounds(t *testing.T) {
	r := NewRand(3)
	for i := 0; i < 1000; i++ {
		v := r.IntRange(5, 5)
		require.Equal(t, 5, v)
	}
	for i := 0; i < 1000; i++ {
		v := r.IntRange(-2, 2)
		require.GreaterOrEqual(t, v, -2)
		require.LessOrEqual(t, v, 2)
	}
}
