// Package dotexport writes a genome as a textual dot-language graph, one
// node per cell and one directed edge per enabled edge.
package dotexport

import (
	"fmt"
	"io"

	"github.com/examm-go/examm/genome"
)

// Write emits g as a dot-language digraph to w.
func Write(w io.Writer, g *genome.Genome) error {
	if _, err := fmt.Fprintln(w, "digraph genome {"); err != nil {
		return err
	}

	for _, n := range g.Nodes() {
		label := fmt.Sprintf("%d\\n%s", n.Innovation, n.Role)
		if n.Role == genome.RoleHidden {
			label = fmt.Sprintf("%d\\n%s\\ndepth=%.3f", n.Innovation, n.CellType, n.Depth)
		}
		style := "solid"
		if !n.Enabled {
			style = "dashed"
		}
		if _, err := fmt.Fprintf(w, "  n%d [label=\"%s\", style=%s];\n", n.Innovation, label, style); err != nil {
			return err
		}
	}

	for _, e := range g.ForwardEdges() {
		if !e.Enabled {
			continue
		}
		if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"%.4f\"];\n", e.Input, e.Output, e.Weight); err != nil {
			return err
		}
	}
	for _, e := range g.RecurrentEdges() {
		if !e.Enabled {
			continue
		}
		if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"%.4f / d=%d\", style=dotted];\n", e.Input, e.Output, e.Weight, e.Delay); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
