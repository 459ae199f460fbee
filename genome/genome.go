package genome

import (
	"fmt"
	"math"
	"sort"

	"github.com/examm-go/examm/erand"
)

// Operator records which mutation or crossover operation produced a
// genome, for lineage and logging.
type Operator string

const (
	OpSeed             Operator = "seed"
	OpClone            Operator = "clone"
	OpAddEdge          Operator = "add_edge"
	OpAddRecurrentEdge Operator = "add_recurrent_edge"
	OpEnableEdge       Operator = "enable_edge"
	OpDisableEdge      Operator = "disable_edge"
	OpSplitEdge        Operator = "split_edge"
	OpAddNode          Operator = "add_node"
	OpEnableNode       Operator = "enable_node"
	OpDisableNode      Operator = "disable_node"
	OpSplitNode        Operator = "split_node"
	OpMergeNode        Operator = "merge_node"
	OpCrossover        Operator = "crossover"
)

// HyperParams holds the per-genome training configuration.
type HyperParams struct {
	LearningRate      float64
	BPIterations      int
	DropoutProb       float64
	LowThreshold      *float64
	HighThreshold     *float64
}

// Genome is a directed graph of recurrent nodes and forward/recurrent
// edges, uniquely owning all of its structural elements (design note
// "shared ownership of structural elements").
type Genome struct {
	Generation int
	Island     int
	Producer   Operator
	Params     HyperParams

	nodes           []*Node
	forwardEdges    []*ForwardEdge
	recurrentEdges  []*RecurrentEdge
	nodeByInn       map[int]*Node
	forwardByInn    map[int]*ForwardEdge
	recurrentByInn  map[int]*RecurrentEdge

	inputOrder  []int // node innovations, in series-channel order
	outputOrder []int

	BestMSE    float64
	BestParams []float64

	seriesLen int
}

// New constructs an empty genome skeleton (no nodes or edges); callers use
// Seed to populate an initial input/output topology.
func New() *Genome {
	return &Genome{
		nodeByInn:      make(map[int]*Node),
		forwardByInn:   make(map[int]*ForwardEdge),
		recurrentByInn: make(map[int]*RecurrentEdge),
		BestMSE:        math.Inf(1),
	}
}

// Seed builds the minimal genome: one input node per input name, one
// output node per output name, and a forward edge from every input to
// every output, using innovation numbers drawn from counter.
func Seed(counter *InnovationCounter, inputNames, outputNames []string, r *erand.Rand, weightStd float64) *Genome {
	g := New()
	g.Producer = OpSeed
	for _, name := range inputNames {
		n := NewInputNode(counter.NextNode(), name, 0)
		g.addNode(n)
		g.inputOrder = append(g.inputOrder, n.Innovation)
	}
	for _, name := range outputNames {
		n := NewOutputNode(counter.NextNode(), name, 1)
		g.addNode(n)
		g.outputOrder = append(g.outputOrder, n.Innovation)
	}
	for _, in := range g.inputOrder {
		for _, out := range g.outputOrder {
			e := &ForwardEdge{
				Innovation: counter.NextEdge(),
				Input:      in,
				Output:     out,
				Weight:     erand.BoundedNormal(r, 0, weightStd, -10, 10),
				Enabled:    true,
			}
			g.addForwardEdge(e)
		}
	}
	g.ComputeReachability()
	return g
}

func (g *Genome) addNode(n *Node) {
	g.nodes = append(g.nodes, n)
	g.nodeByInn[n.Innovation] = n
}

func (g *Genome) addForwardEdge(e *ForwardEdge) {
	g.forwardEdges = append(g.forwardEdges, e)
	g.forwardByInn[e.Innovation] = e
}

func (g *Genome) addRecurrentEdge(e *RecurrentEdge) {
	g.recurrentEdges = append(g.recurrentEdges, e)
	g.recurrentByInn[e.Innovation] = e
}

func (g *Genome) Nodes() []*Node                      { return g.nodes }
func (g *Genome) ForwardEdges() []*ForwardEdge         { return g.forwardEdges }
func (g *Genome) RecurrentEdges() []*RecurrentEdge     { return g.recurrentEdges }
func (g *Genome) Node(inn int) *Node                   { return g.nodeByInn[inn] }
func (g *Genome) InputOrder() []int                    { return g.inputOrder }
func (g *Genome) OutputOrder() []int                   { return g.outputOrder }

// ComputeReachability recomputes every node's forward/backward reachability
// flags from the current enabled mask.
func (g *Genome) ComputeReachability() {
	fwdAdj := make(map[int][]int)
	revAdj := make(map[int][]int)
	for _, e := range g.forwardEdges {
		if !e.Enabled {
			continue
		}
		fwdAdj[e.Input] = append(fwdAdj[e.Input], e.Output)
		revAdj[e.Output] = append(revAdj[e.Output], e.Input)
	}
	for _, e := range g.recurrentEdges {
		if !e.Enabled {
			continue
		}
		fwdAdj[e.Input] = append(fwdAdj[e.Input], e.Output)
		revAdj[e.Output] = append(revAdj[e.Output], e.Input)
	}

	forward := bfs(g.nodeByInn, fwdAdj, g.inputOrder)
	backward := bfs(g.nodeByInn, revAdj, g.outputOrder)

	for inn, n := range g.nodeByInn {
		if !n.Enabled {
			n.forwardReachable, n.backwardReachable = false, false
			continue
		}
		n.forwardReachable = forward[inn]
		n.backwardReachable = backward[inn]
	}
}

func bfs(nodes map[int]*Node, adj map[int][]int, seeds []int) map[int]bool {
	visited := make(map[int]bool, len(nodes))
	queue := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if n := nodes[s]; n != nil && n.Enabled {
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if n := nodes[next]; n == nil || !n.Enabled {
				continue
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// OutputsLive reports whether every output node of the genome is live;
// generators reject a candidate otherwise.
func (g *Genome) OutputsLive() bool {
	for _, inn := range g.outputOrder {
		if n := g.nodeByInn[inn]; n == nil || !n.Live() {
			return false
		}
	}
	return true
}

// liveNodesDepthOrder returns live nodes sorted by depth ascending, ties
// broken by innovation number for a stable canonical order.
func (g *Genome) liveNodesDepthOrder() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Live() {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].Innovation < out[j].Innovation
	})
	return out
}

// liveForwardEdgesByOutputDepth returns live forward edges sorted by the
// output endpoint's depth, ascending (used for forward propagation and the
// canonical flatten order) or descending (used for backward propagation).
func (g *Genome) liveForwardEdgesByOutputDepth(descending bool) []*ForwardEdge {
	var out []*ForwardEdge
	for _, e := range g.forwardEdges {
		if e.Live(g.nodeByInn) {
			out = append(out, e)
		}
	}
	depth := func(e *ForwardEdge) float64 { return g.nodeByInn[e.Output].Depth }
	sort.Slice(out, func(i, j int) bool {
		di, dj := depth(out[i]), depth(out[j])
		if di != dj {
			if descending {
				return di > dj
			}
			return di < dj
		}
		if descending {
			return out[i].Innovation > out[j].Innovation
		}
		return out[i].Innovation < out[j].Innovation
	})
	return out
}

func (g *Genome) liveRecurrentEdges() []*RecurrentEdge {
	var out []*RecurrentEdge
	for _, e := range g.recurrentEdges {
		if e.Live(g.nodeByInn) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Innovation < out[j].Innovation })
	return out
}

// ParamCount is the length flatten/unflatten operate over: live nodes'
// kernel parameters, plus one scalar per live forward edge, plus one
// scalar per live recurrent edge.
func (g *Genome) ParamCount() int {
	n := 0
	for _, node := range g.liveNodesDepthOrder() {
		n += node.ParamCount()
	}
	n += len(g.liveForwardEdgesByOutputDepth(false))
	n += len(g.liveRecurrentEdges())
	return n
}

// Flatten writes every live parameter into a single vector in the
// canonical order: nodes in depth order, forward edges in depth-then-
// insertion order, recurrent edges in insertion order.
func (g *Genome) Flatten() []float64 {
	out := make([]float64, 0, g.ParamCount())
	offset := 0
	for _, node := range g.liveNodesDepthOrder() {
		if node.ParamCount() == 0 {
			continue
		}
		buf := make([]float64, node.ParamCount())
		o := 0
		node.readParams(buf, &o)
		out = append(out, buf...)
		offset += o
	}
	for _, e := range g.liveForwardEdgesByOutputDepth(false) {
		out = append(out, e.Weight)
	}
	for _, e := range g.liveRecurrentEdges() {
		out = append(out, e.Weight)
	}
	return out
}

// Unflatten reverses Flatten exactly, writing back into live nodes and
// edges in the same canonical order.
func (g *Genome) Unflatten(params []float64) error {
	if len(params) != g.ParamCount() {
		return fmt.Errorf("genome: unflatten expects %d params, got %d", g.ParamCount(), len(params))
	}
	offset := 0
	for _, node := range g.liveNodesDepthOrder() {
		if node.ParamCount() == 0 {
			continue
		}
		o := 0
		node.writeParams(params[offset:offset+node.ParamCount()], &o)
		offset += o
	}
	for _, e := range g.liveForwardEdgesByOutputDepth(false) {
		e.Weight = params[offset]
		offset++
	}
	for _, e := range g.liveRecurrentEdges() {
		e.Weight = params[offset]
		offset++
	}
	return nil
}

// Gradients returns the flat gradient vector in the same canonical order
// as Flatten, after a completed forward+backward pass.
func (g *Genome) Gradients() []float64 {
	out := make([]float64, 0, g.ParamCount())
	for _, node := range g.liveNodesDepthOrder() {
		out = node.gradients(out)
	}
	for _, e := range g.liveForwardEdgesByOutputDepth(false) {
		out = append(out, e.dWeight)
	}
	for _, e := range g.liveRecurrentEdges() {
		out = append(out, e.dWeight)
	}
	return out
}

// Clone deep-copies the genome: fresh node and edge instances, no shared
// mutable state with the original (design note "shared ownership").
func (g *Genome) Clone() *Genome {
	cp := New()
	cp.Generation = g.Generation
	cp.Island = g.Island
	cp.Producer = g.Producer
	cp.Params = g.Params
	cp.BestMSE = g.BestMSE
	cp.BestParams = append([]float64(nil), g.BestParams...)
	cp.inputOrder = append([]int(nil), g.inputOrder...)
	cp.outputOrder = append([]int(nil), g.outputOrder...)

	for _, n := range g.nodes {
		cp.addNode(n.clone())
	}
	for _, e := range g.forwardEdges {
		cp.addForwardEdge(e.clone())
	}
	for _, e := range g.recurrentEdges {
		cp.addRecurrentEdge(e.clone())
	}
	cp.ComputeReachability()
	return cp
}
