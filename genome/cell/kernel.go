// Package cell implements the per-type recurrent node kernels: the uniform
// contract every cell type exposes (parameter count, weight read/write at
// an offset, random initialization, forward/backward accumulation, deep
// copy), and the concrete LSTM, Simple, GRU, and MGU kernels.
package cell

import (
	"math"

	"github.com/examm-go/examm/erand"
)

// Type is the closed set of recurrent cell kinds a hidden node may carry.
// A small hand-written enum rather than a reflection/codegen-backed one.
type Type int

const (
	TypeSimple Type = iota
	TypeLSTM
	TypeGRU
	TypeMGU
)

func (t Type) String() string {
	switch t {
	case TypeSimple:
		return "simple"
	case TypeLSTM:
		return "lstm"
	case TypeGRU:
		return "gru"
	case TypeMGU:
		return "mgu"
	default:
		return "unknown"
	}
}

// Types is the configured set of cell types new hidden nodes may be drawn
// from when a node is added.
var Types = []Type{TypeSimple, TypeLSTM, TypeGRU, TypeMGU}

// Kernel is the uniform interface every recurrent cell type implements.
// Firing-count bookkeeping (fan-in/fan-out, when to call Forward/Backward)
// lives on genome.Node, not here: a Kernel only ever sees the single
// already-summed input value for a timestep and returns the single output
// value.
type Kernel interface {
	Type() Type
	ParamCount() int

	// InitRandom draws every parameter from a truncated normal clipped to
	// [-10, 10].
	InitRandom(r *erand.Rand, mean, stddev float64)

	// ReadParams/WriteParams consume exactly ParamCount() scalars at
	// *offset and advance it, in a fixed per-type order.
	ReadParams(out []float64, offset *int)
	WriteParams(in []float64, offset *int)

	// Reset zeroes all per-timestep buffers to length t and clears any
	// carried-over backward-pass state.
	Reset(t int)

	// Forward computes this cell's output at timestep t given the
	// already-summed incoming activation x. Must be called in increasing
	// t order exactly once per timestep.
	Forward(t int, x float64) float64

	// Backward accumulates this cell's parameter gradients for timestep t
	// given the already-summed incoming delta, and returns the delta to
	// propagate to x at t. Must be called in decreasing t order (T-1
	// down to 0) exactly once per timestep.
	Backward(t int, delta float64) float64

	// Gradients appends this cell's per-parameter partial derivatives,
	// summed over every timestep seen since Reset, in the same order as
	// ReadParams/WriteParams.
	Gradients(out []float64) []float64

	Clone() Kernel
}

func sigmoid(x float64) float64 {
	switch {
	case x >= 0:
		z := math.Exp(-x)
		return 1 / (1 + z)
	default:
		z := math.Exp(x)
		return z / (1 + z)
	}
}

func tanh(x float64) float64 { return math.Tanh(x) }

func dsigmoid(activated float64) float64 { return activated * (1 - activated) }
func dtanh(activated float64) float64    { return 1 - activated*activated }

func initScalar(r *erand.Rand, mean, stddev float64) float64 {
	return erand.BoundedNormal(r, mean, stddev, -10, 10)
}

// New constructs a zero-valued kernel of the given type.
func New(t Type) Kernel {
	switch t {
	case TypeLSTM:
		return NewLSTM()
	case TypeGRU:
		return NewGRU()
	case TypeMGU:
		return NewMGU()
	default:
		return NewSimpleCell()
	}
}
