package serialize

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
	"github.com/examm-go/examm/genome/cell"
)

func buildSampleGenome(t *testing.T) *genome.Genome {
	t.Helper()
	counter := genome.NewInnovationCounter()
	r := erand.NewRand(3)
	g := genome.Seed(counter, []string{"x"}, []string{"y"}, r, 0.5)
	require.NoError(t, mutateTestHelper(g, counter, r))
	g.Params = genome.HyperParams{LearningRate: 0.01, BPIterations: 5}
	return g
}

// mutateTestHelper applies one add_node mutation via the public Mutate
// entry point so the sample genome carries a hidden node worth
// round-tripping.
func mutateTestHelper(g *genome.Genome, counter *genome.InnovationCounter, r *erand.Rand) error {
	child, err := genome.Mutate(g, counter, genome.MutationWeights{AddNode: 1}, erand.NewUniformDist(1, 5), cell.Types, r, 20)
	if err != nil {
		return err
	}
	*g = *child
	return nil
}

func TestSerializationRoundTrip(t *testing.T) {
	g := buildSampleGenome(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, g, false))

	reloaded, err := ReadJSON(&buf, false)
	require.NoError(t, err)

	series := [][]float64{{0.1, -0.2, 0.3, 0.05}}
	before := g.Forward(series, nil, 1)
	after := reloaded.Forward(series, nil, 1)

	require.Equal(t, before, after, "reloaded genome must produce bitwise-identical outputs")
}

func TestSerializationGzipRoundTrip(t *testing.T) {
	g := buildSampleGenome(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, g, true))

	reloaded, err := ReadJSON(&buf, true)
	require.NoError(t, err)
	require.Equal(t, g.ParamCount(), reloaded.ParamCount())
}

func TestReadJSONRejectsParamLengthMismatch(t *testing.T) {
	g := buildSampleGenome(t)
	doc := ToDocument(g)
	doc.Header.ParamLength++

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(doc))

	_, err := ReadJSON(&buf, false)
	require.Error(t, err)
}
