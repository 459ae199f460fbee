package dotexport

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
)

func TestWriteEmitsNodesAndEnabledEdges(t *testing.T) {
	counter := genome.NewInnovationCounter()
	r := erand.NewRand(4)
	g := genome.Seed(counter, []string{"x"}, []string{"y"}, r, 1)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "digraph genome {"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
	for _, n := range g.Nodes() {
		require.Contains(t, out, "n"+strconv.Itoa(n.Innovation))
	}
	for _, e := range g.ForwardEdges() {
		if e.Enabled {
			require.Contains(t, out, "n"+strconv.Itoa(e.Input)+" -> n"+strconv.Itoa(e.Output))
		}
	}
}
