package cell

import "github.com/examm-go/examm/erand"

// MGU is a minimal gated unit: a single forget/update gate replaces the
// GRU's separate reset and update gates.
type MGU struct {
	Wf, Uf, Bf float64 // forget/update gate
	Wh, Uh, Bh float64 // candidate

	x, f, u, g, h []float64

	deltaNext float64

	dWf, dUf, dBf float64
	dWh, dUh, dBh float64
}

func NewMGU() *MGU { return &MGU{} }

func (c *MGU) Type() Type      { return TypeMGU }
func (c *MGU) ParamCount() int { return 6 }

func (c *MGU) InitRandom(r *erand.Rand, mean, stddev float64) {
	c.Wf, c.Uf, c.Bf = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
	c.Wh, c.Uh, c.Bh = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
}

func (c *MGU) ReadParams(out []float64, offset *int) {
	vals := [6]float64{c.Wf, c.Uf, c.Bf, c.Wh, c.Uh, c.Bh}
	copy(out[*offset:*offset+6], vals[:])
	*offset += 6
}

func (c *MGU) WriteParams(in []float64, offset *int) {
	v := in[*offset : *offset+6]
	c.Wf, c.Uf, c.Bf = v[0], v[1], v[2]
	c.Wh, c.Uh, c.Bh = v[3], v[4], v[5]
	*offset += 6
}

func (c *MGU) Reset(t int) {
	c.x = make([]float64, t)
	c.f = make([]float64, t)
	c.u = make([]float64, t)
	c.g = make([]float64, t)
	c.h = make([]float64, t)
	c.deltaNext = 0
	c.dWf, c.dUf, c.dBf = 0, 0, 0
	c.dWh, c.dUh, c.dBh = 0, 0, 0
}

func (c *MGU) hPrev(t int) float64 {
	if t == 0 {
		return 0
	}
	return c.h[t-1]
}

func (c *MGU) Forward(t int, x float64) float64 {
	hPrev := c.hPrev(t)
	c.x[t] = x
	c.f[t] = sigmoid(c.Wf*x + c.Uf*hPrev + c.Bf)
	c.u[t] = c.f[t] * hPrev
	c.g[t] = tanh(c.Wh*x + c.Uh*c.u[t] + c.Bh)
	c.h[t] = (1-c.f[t])*hPrev + c.f[t]*c.g[t]
	return c.h[t]
}

func (c *MGU) Backward(t int, delta float64) float64 {
	hPrev := c.hPrev(t)
	total := delta + c.deltaNext

	df := total * (c.g[t] - hPrev)
	dg := total * c.f[t]
	dhPrevDirect := total * (1 - c.f[t])

	dgPre := dg * dtanh(c.g[t])
	c.dWh += dgPre * c.x[t]
	c.dUh += dgPre * c.u[t]
	c.dBh += dgPre

	du := dgPre * c.Uh
	dfFromU := du * hPrev
	dhPrevFromU := du * c.f[t]

	dfPre := (df + dfFromU) * dsigmoid(c.f[t])
	c.dWf += dfPre * c.x[t]
	c.dUf += dfPre * hPrev
	c.dBf += dfPre
	dhPrevFromF := dfPre * c.Uf

	c.deltaNext = dhPrevDirect + dhPrevFromU + dhPrevFromF

	return dfPre*c.Wf + dgPre*c.Wh
}

func (c *MGU) Gradients(out []float64) []float64 {
	return append(out,
		c.dWf, c.dUf, c.dBf,
		c.dWh, c.dUh, c.dBh,
	)
}

func (c *MGU) Clone() Kernel {
	cp := *c
	cp.x = append([]float64(nil), c.x...)
	cp.f = append([]float64(nil), c.f...)
	cp.u = append([]float64(nil), c.u...)
	cp.g = append([]float64(nil), c.g...)
	cp.h = append([]float64(nil), c.h...)
	return &cp
}
