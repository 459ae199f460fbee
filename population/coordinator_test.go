package population

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
	"github.com/examm-go/examm/genome/cell"
)

func sineExamples(n int) []genome.Example {
	inputs := make([]float64, n)
	outputs := make([]float64, n)
	for i := 0; i < n; i++ {
		inputs[i] = float64(i)
		outputs[i] = math.Sin(2 * math.Pi * float64(i) / 20)
	}
	return []genome.Example{{Inputs: [][]float64{inputs}, Outputs: [][]float64{outputs}}}
}

func TestCoordinatorGenerateInsertCycleKeepsBestMonotonic(t *testing.T) {
	cfg := Config{
		NumberIslands:       2,
		IslandCapacity:      3,
		MaxGenomes:          12,
		InputNames:          []string{"t"},
		OutputNames:         []string{"sin"},
		HyperParams:         genome.HyperParams{LearningRate: 0.02, BPIterations: 3},
		MutationWeights:     genome.DefaultMutationWeights(),
		CrossoverParams:     genome.CrossoverParams{MoreFitCrossover: 0.8, LessFitCrossover: 0.3},
		GenerateWeights:     DefaultGenerateWeights(),
		CellTypes:           cell.Types,
		WeightStd:           0.5,
		MaxMutationAttempts: 10,
		StagnationLimit:     5,
		DelaySampling:       erand.SamplingUniform,
		DelayMin:            1,
		DelayMax:            5,
		GlobalDelaySampling: true,
		Seed:                123,
	}
	coord := New(cfg, nil)
	examples := sineExamples(40)
	trainRNG := erand.NewRand(7)

	var bestSeen = math.Inf(1)
	for !coord.Terminated() {
		g := coord.Generate()
		if g == nil {
			break
		}
		result := g.Train(examples, examples, trainRNG)
		if result.Failed {
			g.BestMSE = math.Inf(1)
		}
		retained := coord.Insert(g)
		if result.Failed {
			require.False(t, retained)
		}

		if b := coord.Best(); b != nil {
			require.LessOrEqual(t, b.BestMSE, bestSeen+1e-12)
			bestSeen = b.BestMSE
		}
	}

	require.True(t, coord.Terminated())
	generated, inserted := coord.Counts()
	require.GreaterOrEqual(t, generated, inserted)
	require.Equal(t, cfg.MaxGenomes, inserted)
	require.NotNil(t, coord.Best())
}

func TestCoordinatorRejectsFailedGenomeDuringFill(t *testing.T) {
	cfg := Config{
		NumberIslands:       1,
		IslandCapacity:      3,
		MaxGenomes:          5,
		InputNames:          []string{"t"},
		OutputNames:         []string{"sin"},
		HyperParams:         genome.HyperParams{LearningRate: 0.02, BPIterations: 1},
		MutationWeights:     genome.DefaultMutationWeights(),
		CrossoverParams:     genome.CrossoverParams{MoreFitCrossover: 0.8, LessFitCrossover: 0.3},
		GenerateWeights:     DefaultGenerateWeights(),
		CellTypes:           cell.Types,
		WeightStd:           0.5,
		MaxMutationAttempts: 10,
		StagnationLimit:     5,
		DelaySampling:       erand.SamplingUniform,
		DelayMin:            1,
		DelayMax:            5,
		GlobalDelaySampling: true,
		Seed:                9,
	}
	coord := New(cfg, nil)

	g := coord.Generate()
	require.NotNil(t, g)
	g.BestMSE = math.Inf(1) // simulate a training failure (non-finite parameters)

	retained := coord.Insert(g)
	require.False(t, retained)
	require.Equal(t, 0, coord.Islands()[g.Island].Len())

	_, inserted := coord.Counts()
	require.Equal(t, 1, inserted, "a failed genome still counts toward inserted_count")
}
