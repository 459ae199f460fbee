package cell

import "github.com/examm-go/examm/erand"

// GRU is a gated recurrent unit with its own internal previous-hidden-state
// recurrence (delay 1), distinct from the genome graph's structural
// recurrent edges.
type GRU struct {
	Wz, Uz, Bz float64 // update gate
	Wr, Ur, Br float64 // reset gate
	Wh, Uh, Bh float64 // candidate

	x, z, r, u, g, h []float64

	deltaNext float64

	dWz, dUz, dBz float64
	dWr, dUr, dBr float64
	dWh, dUh, dBh float64
}

func NewGRU() *GRU { return &GRU{} }

func (c *GRU) Type() Type      { return TypeGRU }
func (c *GRU) ParamCount() int { return 9 }

func (c *GRU) InitRandom(r *erand.Rand, mean, stddev float64) {
	c.Wz, c.Uz, c.Bz = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
	c.Wr, c.Ur, c.Br = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
	c.Wh, c.Uh, c.Bh = initScalar(r, mean, stddev), initScalar(r, mean, stddev), initScalar(r, mean, stddev)
}

func (c *GRU) ReadParams(out []float64, offset *int) {
	vals := [9]float64{c.Wz, c.Uz, c.Bz, c.Wr, c.Ur, c.Br, c.Wh, c.Uh, c.Bh}
	copy(out[*offset:*offset+9], vals[:])
	*offset += 9
}

func (c *GRU) WriteParams(in []float64, offset *int) {
	v := in[*offset : *offset+9]
	c.Wz, c.Uz, c.Bz = v[0], v[1], v[2]
	c.Wr, c.Ur, c.Br = v[3], v[4], v[5]
	c.Wh, c.Uh, c.Bh = v[6], v[7], v[8]
	*offset += 9
}

func (c *GRU) Reset(t int) {
	c.x = make([]float64, t)
	c.z = make([]float64, t)
	c.r = make([]float64, t)
	c.u = make([]float64, t)
	c.g = make([]float64, t)
	c.h = make([]float64, t)
	c.deltaNext = 0
	c.dWz, c.dUz, c.dBz = 0, 0, 0
	c.dWr, c.dUr, c.dBr = 0, 0, 0
	c.dWh, c.dUh, c.dBh = 0, 0, 0
}

func (c *GRU) hPrev(t int) float64 {
	if t == 0 {
		return 0
	}
	return c.h[t-1]
}

func (c *GRU) Forward(t int, x float64) float64 {
	hPrev := c.hPrev(t)
	c.x[t] = x
	c.z[t] = sigmoid(c.Wz*x + c.Uz*hPrev + c.Bz)
	c.r[t] = sigmoid(c.Wr*x + c.Ur*hPrev + c.Br)
	c.u[t] = c.r[t] * hPrev
	c.g[t] = tanh(c.Wh*x + c.Uh*c.u[t] + c.Bh)
	c.h[t] = (1-c.z[t])*hPrev + c.z[t]*c.g[t]
	return c.h[t]
}

func (c *GRU) Backward(t int, delta float64) float64 {
	hPrev := c.hPrev(t)
	total := delta + c.deltaNext

	dz := total * (c.g[t] - hPrev)
	dg := total * c.z[t]
	dhPrevDirect := total * (1 - c.z[t])

	dgPre := dg * dtanh(c.g[t])
	c.dWh += dgPre * c.x[t]
	c.dUh += dgPre * c.u[t]
	c.dBh += dgPre

	du := dgPre * c.Uh
	dhPrevFromU := du * c.r[t]
	drFromU := du * hPrev

	dzPre := dz * dsigmoid(c.z[t])
	c.dWz += dzPre * c.x[t]
	c.dUz += dzPre * hPrev
	c.dBz += dzPre
	dhPrevFromZ := dzPre * c.Uz

	drPre := drFromU * dsigmoid(c.r[t])
	c.dWr += drPre * c.x[t]
	c.dUr += drPre * hPrev
	c.dBr += drPre
	dhPrevFromR := drPre * c.Ur

	c.deltaNext = dhPrevDirect + dhPrevFromU + dhPrevFromZ + dhPrevFromR

	return dzPre*c.Wz + drPre*c.Wr + dgPre*c.Wh
}

func (c *GRU) Gradients(out []float64) []float64 {
	return append(out,
		c.dWz, c.dUz, c.dBz,
		c.dWr, c.dUr, c.dBr,
		c.dWh, c.dUh, c.dBh,
	)
}

func (c *GRU) Clone() Kernel {
	cp := *c
	cp.x = append([]float64(nil), c.x...)
	cp.z = append([]float64(nil), c.z...)
	cp.r = append([]float64(nil), c.r...)
	cp.u = append([]float64(nil), c.u...)
	cp.g = append([]float64(nil), c.g...)
	cp.h = append([]float64(nil), c.h...)
	return &cp
}
