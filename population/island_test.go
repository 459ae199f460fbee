package population

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/genome"
)

func genomeWithMSE(mse float64) *genome.Genome {
	g := genome.New()
	g.BestMSE = mse
	return g
}

func TestIslandStaysSortedAndBounded(t *testing.T) {
	isl := NewIsland(0, 3)
	require.True(t, isl.insert(genomeWithMSE(0.5)))
	require.True(t, isl.insert(genomeWithMSE(0.2)))
	require.True(t, isl.insert(genomeWithMSE(0.8)))
	require.Equal(t, StateFilled, isl.State)

	require.False(t, isl.insert(genomeWithMSE(0.9)))
	require.True(t, isl.insert(genomeWithMSE(0.1)))

	require.LessOrEqual(t, isl.Len(), isl.Capacity)
	mses := make([]float64, isl.Len())
	for i, g := range isl.Genomes() {
		mses[i] = g.BestMSE
	}
	for i := 1; i < len(mses); i++ {
		require.LessOrEqual(t, mses[i-1], mses[i])
	}
	require.InDelta(t, 0.1, isl.Best().BestMSE, 1e-9)
}

func TestIslandRepopulatesOnStagnation(t *testing.T) {
	isl := NewIsland(0, 2)
	require.True(t, isl.insert(genomeWithMSE(0.1)))
	require.True(t, isl.insert(genomeWithMSE(0.2)))

	for i := 0; i < 3; i++ {
		if !isl.insert(genomeWithMSE(1.0)) {
			isl.failedInsertsInRow++
			isl.maybeRepopulate(3)
		}
	}
	require.Equal(t, StateRepopulating, isl.State)
	require.Equal(t, 1, isl.Len())
	require.InDelta(t, 0.1, isl.Best().BestMSE, 1e-9)
}

func TestIslandReturnsToFilledAfterRepopulateRefill(t *testing.T) {
	isl := NewIsland(0, 2)
	require.True(t, isl.insert(genomeWithMSE(0.1)))
	require.True(t, isl.insert(genomeWithMSE(0.2)))
	require.Equal(t, StateFilled, isl.State)

	for i := 0; i < 3; i++ {
		if !isl.insert(genomeWithMSE(1.0)) {
			isl.failedInsertsInRow++
			isl.maybeRepopulate(3)
		}
	}
	require.Equal(t, StateRepopulating, isl.State)
	require.Equal(t, 1, isl.Len())

	require.True(t, isl.insert(genomeWithMSE(0.3)))
	require.Equal(t, StateFilled, isl.State, "island must report filled again once it refills to capacity")
}
