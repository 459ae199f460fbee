package series

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProviderExportAndBounds(t *testing.T) {
	inputs := [][][]float64{
		{{0, 5, 10}},
		{{2, 4, 6}},
	}
	outputs := [][][]float64{
		{{1, 1, 1}},
		{{2, 2, 2}},
	}
	m := NewMemory([]string{"x"}, []string{"y"}, inputs, outputs)

	require.Equal(t, 2, m.NumSeries())
	min, max := m.Bounds("x")
	require.Equal(t, 0.0, min)
	require.Equal(t, 10.0, max)

	examples := m.Export(0, 2)
	require.Len(t, examples, 2)
	require.Equal(t, []float64{0, 5, 10}, examples[0].Inputs[0])
}

func TestNormalizeScalesToUnitRange(t *testing.T) {
	values := []float64{0, 5, 10}
	Normalize(values, 0, 10)
	require.InDelta(t, 0.0, values[0], 1e-12)
	require.InDelta(t, 0.5, values[1], 1e-12)
	require.InDelta(t, 1.0, values[2], 1e-12)
}
