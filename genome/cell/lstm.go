package cell

import "github.com/examm-go/examm/erand"

// LSTM is the canonical peephole long short-term memory cell. The
// forget-gate "+1" bias shift is applied only at compute time inside
// Forward, never folded into the stored Bf, so mutation's weight
// perturbation and InitRandom both see the unshifted parameter.
//
// The cell's output is linear (Ot * Ct), not tanh(Ct): this is a
// deliberate deviation from textbook LSTMs, preserved from the system this
// cell is modeled on (see DESIGN.md, Open Question 1).
type LSTM struct {
	// parameters
	Wi, Pi, Bi float64 // input gate: input weight, peephole weight, bias
	Wf, Pf, Bf float64 // forget gate
	Wo, Po, Bo float64 // output gate
	Wc, Bc     float64 // cell

	// per-timestep forward state
	x, i, f, o, g, c, h []float64

	// backward-pass carry: gradient of loss w.r.t. c[t] flowing in from
	// the t+1 backward step, via c[t+1] = f[t+1]*c[t] + ...
	deltaCNext float64

	// accumulated parameter gradients
	dWi, dPi, dBi float64
	dWf, dPf, dBf float64
	dWo, dPo, dBo float64
	dWc, dBc      float64
}

func NewLSTM() *LSTM { return &LSTM{} }

func (l *LSTM) Type() Type      { return TypeLSTM }
func (l *LSTM) ParamCount() int { return 11 }

func (l *LSTM) InitRandom(r *erand.Rand, mean, stddev float64) {
	l.Wi, l.Pi, l.Bi = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
	l.Wf, l.Pf, l.Bf = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
	l.Wo, l.Po, l.Bo = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
	l.Wc, l.Bc = initScalar(r, mean, stddev), initScalar(r, mean, stddev)
}

func (l *LSTM) ReadParams(out []float64, offset *int) {
	vals := [11]float64{l.Wi, l.Pi, l.Bi, l.Wf, l.Pf, l.Bf, l.Wo, l.Po, l.Bo, l.Wc, l.Bc}
	copy(out[*offset:*offset+11], vals[:])
	*offset += 11
}

func (l *LSTM) WriteParams(in []float64, offset *int) {
	v := in[*offset : *offset+11]
	l.Wi, l.Pi, l.Bi = v[0], v[1], v[2]
	l.Wf, l.Pf, l.Bf = v[3], v[4], v[5]
	l.Wo, l.Po, l.Bo = v[6], v[7], v[8]
	l.Wc, l.Bc = v[9], v[10]
	*offset += 11
}

func (l *LSTM) Reset(t int) {
	l.x = make([]float64, t)
	l.i = make([]float64, t)
	l.f = make([]float64, t)
	l.o = make([]float64, t)
	l.g = make([]float64, t)
	l.c = make([]float64, t)
	l.h = make([]float64, t)
	l.deltaCNext = 0
	l.dWi, l.dPi, l.dBi = 0, 0, 0
	l.dWf, l.dPf, l.dBf = 0, 0, 0
	l.dWo, l.dPo, l.dBo = 0, 0, 0
	l.dWc, l.dBc = 0, 0
}

func (l *LSTM) cPrev(t int) float64 {
	if t == 0 {
		return 0
	}
	return l.c[t-1]
}

func (l *LSTM) Forward(t int, x float64) float64 {
	cPrev := l.cPrev(t)
	l.x[t] = x
	l.i[t] = sigmoid(l.Wi*x + l.Pi*cPrev + l.Bi)
	l.f[t] = sigmoid(l.Wf*x + l.Pf*cPrev + l.Bf + 1)
	l.o[t] = sigmoid(l.Wo*x + l.Po*cPrev + l.Bo)
	l.g[t] = tanh(l.Wc*x + l.Bc)
	l.c[t] = l.f[t]*cPrev + l.i[t]*l.g[t]
	l.h[t] = l.o[t] * l.c[t]
	return l.h[t]
}

func (l *LSTM) Backward(t int, delta float64) float64 {
	cPrev := l.cPrev(t)

	dC := delta*l.o[t] + l.deltaCNext
	dO := delta * l.c[t]
	dI := dC * l.g[t]
	dG := dC * l.i[t]
	dFCell := dC * cPrev

	dOPre := dO * dsigmoid(l.o[t])
	dIPre := dI * dsigmoid(l.i[t])
	dFPre := dFCell * dsigmoid(l.f[t])
	dGPre := dG * dtanh(l.g[t])

	l.dWi += dIPre * l.x[t]
	l.dPi += dIPre * cPrev
	l.dBi += dIPre

	l.dWf += dFPre * l.x[t]
	l.dPf += dFPre * cPrev
	l.dBf += dFPre

	l.dWo += dOPre * l.x[t]
	l.dPo += dOPre * cPrev
	l.dBo += dOPre

	l.dWc += dGPre * l.x[t]
	l.dBc += dGPre

	deltaToInput := dIPre*l.Wi + dFPre*l.Wf + dOPre*l.Wo + dGPre*l.Wc
	l.deltaCNext = dC*l.f[t] + dIPre*l.Pi + dFPre*l.Pf + dOPre*l.Po

	return deltaToInput
}

func (l *LSTM) Gradients(out []float64) []float64 {
	return append(out,
		l.dWi, l.dPi, l.dBi,
		l.dWf, l.dPf, l.dBf,
		l.dWo, l.dPo, l.dBo,
		l.dWc, l.dBc,
	)
}

func (l *LSTM) Clone() Kernel {
	cp := *l
	cp.x = append([]float64(nil), l.x...)
	cp.i = append([]float64(nil), l.i...)
	cp.f = append([]float64(nil), l.f...)
	cp.o = append([]float64(nil), l.o...)
	cp.g = append([]float64(nil), l.g...)
	cp.c = append([]float64(nil), l.c...)
	cp.h = append([]float64(nil), l.h...)
	return &cp
}
