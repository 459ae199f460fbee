package cell

import "github.com/examm-go/examm/erand"

// SimpleCell is a plain logistic-sigmoid unit with no internal recurrent
// state: any memory it exhibits comes entirely from the genome graph's
// structural recurrent edges feeding its own past output back in as
// input.
type SimpleCell struct {
	W, B float64

	x, h []float64

	dW, dB float64
}

func NewSimpleCell() *SimpleCell { return &SimpleCell{} }

func (s *SimpleCell) Type() Type      { return TypeSimple }
func (s *SimpleCell) ParamCount() int { return 2 }

func (s *SimpleCell) InitRandom(r *erand.Rand, mean, stddev float64) {
	s.W = initScalar(r, mean, stddev)
	s.B = initScalar(r, mean, stddev)
}

func (s *SimpleCell) ReadParams(out []float64, offset *int) {
	out[*offset] = s.W
	out[*offset+1] = s.B
	*offset += 2
}

func (s *SimpleCell) WriteParams(in []float64, offset *int) {
	s.W = in[*offset]
	s.B = in[*offset+1]
	*offset += 2
}

func (s *SimpleCell) Reset(t int) {
	s.x = make([]float64, t)
	s.h = make([]float64, t)
	s.dW, s.dB = 0, 0
}

func (s *SimpleCell) Forward(t int, x float64) float64 {
	s.x[t] = x
	s.h[t] = sigmoid(s.W*x + s.B)
	return s.h[t]
}

func (s *SimpleCell) Backward(t int, delta float64) float64 {
	dPre := delta * dsigmoid(s.h[t])
	s.dW += dPre * s.x[t]
	s.dB += dPre
	return dPre * s.W
}

func (s *SimpleCell) Gradients(out []float64) []float64 {
	return append(out, s.dW, s.dB)
}

func (s *SimpleCell) Clone() Kernel {
	cp := *s
	cp.x = append([]float64(nil), s.x...)
	cp.h = append([]float64(nil), s.h...)
	return &cp
}
