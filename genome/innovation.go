package genome

// InnovationCounter is coordinator-owned monotonic state handed explicitly
// to every genome-producing call; it is never a process-wide global
// (design note "process-wide counters").
type InnovationCounter struct {
	nextNode int
	nextEdge int
}

func NewInnovationCounter() *InnovationCounter {
	return &InnovationCounter{}
}

func (c *InnovationCounter) NextNode() int {
	n := c.nextNode
	c.nextNode++
	return n
}

func (c *InnovationCounter) NextEdge() int {
	n := c.nextEdge
	c.nextEdge++
	return n
}
