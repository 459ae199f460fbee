package genome

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome/cell"
)

func seedGenome(t *testing.T) *Genome {
	t.Helper()
	counter := NewInnovationCounter()
	r := erand.NewRand(1)
	g := Seed(counter, []string{"x"}, []string{"y"}, r, 1)
	g.Params = HyperParams{LearningRate: 0.01, BPIterations: 1}
	return g
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	g := seedGenome(t)
	expected := 0
	for _, n := range g.liveNodesDepthOrder() {
		expected += n.ParamCount()
	}
	expected += len(g.liveForwardEdgesByOutputDepth(false))
	expected += len(g.liveRecurrentEdges())

	require.Equal(t, expected, g.ParamCount())

	flat := g.Flatten()
	require.Len(t, flat, g.ParamCount())

	perturbed := append([]float64(nil), flat...)
	for i := range perturbed {
		perturbed[i] += float64(i) + 1
	}
	require.NoError(t, g.Unflatten(perturbed))
	require.Equal(t, perturbed, g.Flatten())
}

func TestForwardEdgeDepthInvariant(t *testing.T) {
	counter := NewInnovationCounter()
	g := Seed(counter, []string{"x"}, []string{"y"}, erand.NewRand(1), 1)
	r := erand.NewRand(2)
	require.NoError(t, mutateSplitEdge(g, counter, cell.Types, r))
	for _, e := range g.forwardEdges {
		if !e.Enabled {
			continue
		}
		in, out := g.nodeByInn[e.Input], g.nodeByInn[e.Output]
		require.Less(t, in.Depth, out.Depth)
	}
}

func TestFiredCountsMatchFanInFanOutAfterPasses(t *testing.T) {
	g := seedGenome(t)
	inputs := [][]float64{{0.1, 0.2, 0.3}}
	targets := [][]float64{{0.1, 0.1, 0.1}}

	predicted := g.Forward(inputs, nil, 1)
	for _, n := range g.nodes {
		if !n.Live() {
			continue
		}
		for t := 0; t < 3; t++ {
			require.Equal(t, n.fanIn, n.firedInputs[t], "node %d time %d", n.Innovation, t)
		}
	}

	grad := lossGradient(predicted, targets)
	g.Backward(grad, nil, 1)
	for _, n := range g.nodes {
		if !n.Live() {
			continue
		}
		for t := 0; t < 3; t++ {
			require.Equal(t, n.fanOut, n.firedOutputs[t], "node %d time %d", n.Innovation, t)
		}
	}
}

func TestOneCellIdentityLSTM(t *testing.T) {
	counter := NewInnovationCounter()
	g := New()
	in := NewInputNode(counter.NextNode(), "x", 0)
	hidden := NewHiddenNode(counter.NextNode(), cell.TypeLSTM, 0.5)
	out := NewOutputNode(counter.NextNode(), "y", 1)
	g.addNode(in)
	g.addNode(hidden)
	g.addNode(out)
	g.inputOrder = []int{in.Innovation}
	g.outputOrder = []int{out.Innovation}

	lstm := hidden.Kernel.(*cell.LSTM)
	lstm.Wc, lstm.Bc = 1, 0
	lstm.Bi = 20   // i_t saturates to ~1
	lstm.Bf = -20  // f_t saturates to ~0 even after the +1 compute-time shift
	lstm.Bo = 20   // o_t saturates to ~1
	lstm.Wi, lstm.Pi = 0, 0
	lstm.Wf, lstm.Pf = 0, 0
	lstm.Wo, lstm.Po = 0, 0

	g.addForwardEdge(&ForwardEdge{Innovation: counter.NextEdge(), Input: in.Innovation, Output: hidden.Innovation, Weight: 1, Enabled: true})
	g.addForwardEdge(&ForwardEdge{Innovation: counter.NextEdge(), Input: hidden.Innovation, Output: out.Innovation, Weight: 1, Enabled: true})
	g.ComputeReachability()
	require.True(t, g.OutputsLive())

	series := []float64{0.1, 0.2, 0.3}
	outputs := g.Forward([][]float64{series}, nil, 1)
	for i, x := range series {
		require.InDelta(t, math.Tanh(x), outputs[0][i], 1e-3)
	}
}

func TestRecurrentPassThrough(t *testing.T) {
	counter := NewInnovationCounter()
	g := New()
	in := NewInputNode(counter.NextNode(), "x", 0)
	hidden := NewHiddenNode(counter.NextNode(), cell.TypeSimple, 0.5)
	out := NewOutputNode(counter.NextNode(), "y", 1)
	g.addNode(in)
	g.addNode(hidden)
	g.addNode(out)
	g.inputOrder = []int{in.Innovation}
	g.outputOrder = []int{out.Innovation}

	simple := hidden.Kernel.(*cell.SimpleCell)
	simple.W, simple.B = 1, 0

	g.addForwardEdge(&ForwardEdge{Innovation: counter.NextEdge(), Input: in.Innovation, Output: hidden.Innovation, Weight: 1, Enabled: true})
	g.addForwardEdge(&ForwardEdge{Innovation: counter.NextEdge(), Input: hidden.Innovation, Output: out.Innovation, Weight: 1, Enabled: true})
	g.addRecurrentEdge(&RecurrentEdge{Innovation: counter.NextEdge(), Input: hidden.Innovation, Output: hidden.Innovation, Delay: 1, Weight: 1, Enabled: true})
	g.ComputeReachability()
	require.True(t, g.OutputsLive())

	outputs := g.Forward([][]float64{{1, 0, 0, 0}}, nil, 1)
	require.InDelta(t, sigmoid(1), outputs[0][0], 1e-9)
	require.InDelta(t, sigmoid(outputs[0][0]), outputs[0][1], 1e-9)
	require.InDelta(t, sigmoid(outputs[0][1]), outputs[0][2], 1e-9)
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestCrossoverInheritsOnlyParentEdges(t *testing.T) {
	counter := NewInnovationCounter()
	r := erand.NewRand(5)
	base := Seed(counter, []string{"x"}, []string{"y"}, r, 1)

	p1 := base.Clone()
	p2 := base.Clone()
	require.NoError(t, mutateAddNode(p1, counter, cell.Types, r))
	require.NoError(t, mutateAddNode(p2, counter, cell.Types, r))
	p1.ComputeReachability()
	p2.ComputeReachability()

	child, err := Crossover(p1, p2, counter, CrossoverParams{MoreFitCrossover: 1, LessFitCrossover: 1}, r)
	require.NoError(t, err)

	for _, e := range child.forwardEdges {
		_, inP1 := p1.forwardByInn[e.Innovation]
		_, inP2 := p2.forwardByInn[e.Innovation]
		require.True(t, inP1 || inP2)
	}
	for _, n := range child.nodes {
		found := false
		for _, e := range child.forwardEdges {
			if e.Input == n.Innovation || e.Output == n.Innovation {
				found = true
				break
			}
		}
		isIO := n.Role == RoleInput || n.Role == RoleOutput
		require.True(t, found || isIO)
	}
}

func TestTrainReducesLoss(t *testing.T) {
	counter := NewInnovationCounter()
	r := erand.NewRand(9)
	g := Seed(counter, []string{"x"}, []string{"y"}, r, 0.1)
	g.Params = HyperParams{LearningRate: 0.05, BPIterations: 50}

	examples := []Example{{
		Inputs:  [][]float64{{0.1, 0.2, 0.3, 0.4}},
		Outputs: [][]float64{{0.2, 0.3, 0.4, 0.5}},
	}}

	before := g.evaluateMSE(examples)
	result := g.Train(examples, examples, r)
	require.False(t, result.Failed)
	require.Less(t, result.MSE, before)
}
