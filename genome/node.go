// Package genome implements the time-unrolled recurrent computation graph:
// nodes wrapping cell kernels, forward and recurrent edges between them,
// the canonical flatten/unflatten parameter view, BPTT training, and the
// mutation and crossover operators that evolve the graph itself.
package genome

import "github.com/examm-go/examm/genome/cell"

// Role distinguishes a node's position in the graph. Input and output
// nodes are fixed at genome creation; only hidden nodes carry a cell
// kernel and can be added, split, or merged by mutation.
type Role int

const (
	RoleInput Role = iota
	RoleHidden
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	default:
		return "hidden"
	}
}

// Node is one vertex of the recurrent graph. Input nodes have their
// activation supplied from outside the graph each timestep; output nodes
// have their delta supplied from outside during backprop. Hidden nodes
// carry a cell.Kernel and fire once every live incoming edge has
// contributed to their timestep's accumulator.
type Node struct {
	Innovation int
	Role       Role
	Name       string // input/output series name, empty for hidden
	CellType   cell.Type
	Kernel     cell.Kernel
	Depth      float64
	Enabled    bool

	forwardReachable  bool
	backwardReachable bool

	fanIn  int
	fanOut int

	activation   []float64
	delta        []float64
	sumInput     []float64
	sumDelta     []float64
	firedInputs  []int
	firedOutputs []int
}

// NewInputNode creates an input-role node with no kernel.
func NewInputNode(innovation int, name string, depth float64) *Node {
	return &Node{Innovation: innovation, Role: RoleInput, Name: name, Depth: depth, Enabled: true}
}

// NewOutputNode creates an output-role node with no kernel.
func NewOutputNode(innovation int, name string, depth float64) *Node {
	return &Node{Innovation: innovation, Role: RoleOutput, Name: name, Depth: depth, Enabled: true}
}

// NewHiddenNode creates a hidden-role node with a freshly constructed
// kernel of the given cell type.
func NewHiddenNode(innovation int, ct cell.Type, depth float64) *Node {
	return &Node{Innovation: innovation, Role: RoleHidden, CellType: ct, Kernel: cell.New(ct), Depth: depth, Enabled: true}
}

// Live reports whether the node participates in the current graph: enabled
// and reachable both forward from an input and backward from an output.
func (n *Node) Live() bool {
	return n.Enabled && n.forwardReachable && n.backwardReachable
}

// ParamCount is the number of trainable scalars this node's kernel owns.
// Input and output nodes always report zero.
func (n *Node) ParamCount() int {
	if n.Kernel == nil {
		return 0
	}
	return n.Kernel.ParamCount()
}

func (n *Node) readParams(out []float64, offset *int) {
	if n.Kernel != nil {
		n.Kernel.ReadParams(out, offset)
	}
}

func (n *Node) writeParams(in []float64, offset *int) {
	if n.Kernel != nil {
		n.Kernel.WriteParams(in, offset)
	}
}

func (n *Node) gradients(out []float64) []float64 {
	if n.Kernel == nil {
		return out
	}
	return n.Kernel.Gradients(out)
}

// reset (re)allocates every per-timestep buffer for a series of length T
// and records the node's current fan-in/fan-out, computed by the genome
// from its live incoming/outgoing edges.
func (n *Node) reset(T, fanIn, fanOut int) {
	n.fanIn, n.fanOut = fanIn, fanOut
	n.activation = make([]float64, T)
	n.delta = make([]float64, T)
	n.sumInput = make([]float64, T)
	n.sumDelta = make([]float64, T)
	n.firedInputs = make([]int, T)
	n.firedOutputs = make([]int, T)
	if n.Kernel != nil {
		n.Kernel.Reset(T)
	}
}

func (n *Node) Activation(t int) float64 { return n.activation[t] }
func (n *Node) Delta(t int) float64      { return n.delta[t] }

// SetInputValue assigns an input node's activation for timestep t directly,
// bypassing the fan-in firing mechanism (input nodes have no incoming
// edges).
func (n *Node) SetInputValue(t int, v float64) { n.activation[t] = v }

// SetOutputDelta assigns an output node's delta for timestep t directly,
// bypassing the fan-out firing mechanism (output nodes have no outgoing
// edges).
func (n *Node) SetOutputDelta(t int, v float64) { n.delta[t] = v }

// bumpFiredInput pre-increments the fan-in counter without contributing a
// value; used by the recurrent-edge forward prelude for delays that reach
// before the start of the series.
func (n *Node) bumpFiredInput(t int) {
	n.firedInputs[t]++
	if n.firedInputs[t] == n.fanIn {
		n.activate(t)
	}
}

// bumpFiredOutput is the backward-prelude dual of bumpFiredInput, for
// delays that reach past the end of the series.
func (n *Node) bumpFiredOutput(t int) {
	n.firedOutputs[t]++
	if n.firedOutputs[t] == n.fanOut {
		n.computeBackward(t)
	}
}

// FireInput accumulates one incoming edge's contribution to n's input sum
// at timestep t, firing the node once every live incoming edge has
// reported in.
func (n *Node) FireInput(t int, x float64) {
	n.sumInput[t] += x
	n.firedInputs[t]++
	if n.firedInputs[t] == n.fanIn {
		n.activate(t)
	}
}

// FireOutput accumulates one outgoing edge's backward contribution to n's
// delta sum at timestep t, firing the node's backward computation once
// every live outgoing edge has reported in.
func (n *Node) FireOutput(t int, d float64) {
	n.sumDelta[t] += d
	n.firedOutputs[t]++
	if n.firedOutputs[t] == n.fanOut {
		n.computeBackward(t)
	}
}

func (n *Node) activate(t int) {
	if n.Kernel != nil {
		n.activation[t] = n.Kernel.Forward(t, n.sumInput[t])
		return
	}
	n.activation[t] = n.sumInput[t]
}

func (n *Node) computeBackward(t int) {
	if n.Kernel != nil {
		n.delta[t] = n.Kernel.Backward(t, n.sumDelta[t])
		return
	}
	n.delta[t] = n.sumDelta[t]
}

func (n *Node) clone() *Node {
	cp := *n
	cp.activation, cp.delta, cp.sumInput, cp.sumDelta = nil, nil, nil, nil
	cp.firedInputs, cp.firedOutputs = nil, nil
	if n.Kernel != nil {
		cp.Kernel = n.Kernel.Clone()
	}
	return &cp
}
