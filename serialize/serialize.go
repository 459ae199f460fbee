// Package serialize persists and reloads genomes as a header, node/
// forward-edge/recurrent-edge tables, and the canonical flat parameter
// vector, optionally gzip-compressed.
package serialize

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/examm-go/examm/genome"
	"github.com/examm-go/examm/genome/cell"
)

// Header identifies a serialized genome's shape before the tables are
// read, so a reader can preallocate and cross-check.
type Header struct {
	Generation  int `json:"generation"`
	InputCount  int `json:"input_count"`
	OutputCount int `json:"output_count"`
	ParamLength int `json:"param_length"`
}

type NodeRecord struct {
	Innovation int     `json:"innovation"`
	Role       string  `json:"role"`
	CellType   string  `json:"cell_type,omitempty"`
	Name       string  `json:"name,omitempty"`
	Depth      float64 `json:"depth"`
	Enabled    bool    `json:"enabled"`
}

type ForwardEdgeRecord struct {
	Innovation int     `json:"innovation"`
	Input      int     `json:"input"`
	Output     int     `json:"output"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
}

type RecurrentEdgeRecord struct {
	ForwardEdgeRecord
	Delay int `json:"delay"`
}

// Document is the full on-disk shape: header, node/edge tables, input and
// output name order, hyperparameters, and the canonical flat parameter
// vector.
type Document struct {
	Header         Header                `json:"header"`
	InputNames     []string              `json:"input_names"`
	OutputNames    []string              `json:"output_names"`
	HyperParams    genome.HyperParams    `json:"hyper_params"`
	Nodes          []NodeRecord          `json:"nodes"`
	ForwardEdges   []ForwardEdgeRecord   `json:"forward_edges"`
	RecurrentEdges []RecurrentEdgeRecord `json:"recurrent_edges"`
	Params         []float64             `json:"params"`
}

func roleString(r genome.Role) string { return r.String() }

func roleFromString(s string) genome.Role {
	switch s {
	case "input":
		return genome.RoleInput
	case "output":
		return genome.RoleOutput
	default:
		return genome.RoleHidden
	}
}

func cellTypeFromString(s string) cell.Type {
	for _, t := range cell.Types {
		if t.String() == s {
			return t
		}
	}
	return cell.TypeSimple
}

// ToDocument snapshots g into the on-disk representation. Every node and
// edge is included regardless of liveness, so a disabled gene survives a
// round trip; only Params is restricted to the live canonical order.
func ToDocument(g *genome.Genome) Document {
	doc := Document{
		Header: Header{
			Generation:  g.Generation,
			InputCount:  len(g.InputOrder()),
			OutputCount: len(g.OutputOrder()),
			ParamLength: g.ParamCount(),
		},
		HyperParams: g.Params,
		Params:      g.Flatten(),
	}
	inputSet := make(map[int]bool)
	for _, inn := range g.InputOrder() {
		inputSet[inn] = true
	}
	outputSet := make(map[int]bool)
	for _, inn := range g.OutputOrder() {
		outputSet[inn] = true
	}
	for _, inn := range g.InputOrder() {
		doc.InputNames = append(doc.InputNames, g.Node(inn).Name)
	}
	for _, inn := range g.OutputOrder() {
		doc.OutputNames = append(doc.OutputNames, g.Node(inn).Name)
	}
	for _, n := range g.Nodes() {
		rec := NodeRecord{
			Innovation: n.Innovation,
			Role:       roleString(n.Role),
			Depth:      n.Depth,
			Enabled:    n.Enabled,
			Name:       n.Name,
		}
		if n.Role == genome.RoleHidden {
			rec.CellType = n.CellType.String()
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, e := range g.ForwardEdges() {
		doc.ForwardEdges = append(doc.ForwardEdges, ForwardEdgeRecord{
			Innovation: e.Innovation, Input: e.Input, Output: e.Output, Weight: e.Weight, Enabled: e.Enabled,
		})
	}
	for _, e := range g.RecurrentEdges() {
		doc.RecurrentEdges = append(doc.RecurrentEdges, RecurrentEdgeRecord{
			ForwardEdgeRecord: ForwardEdgeRecord{
				Innovation: e.Innovation, Input: e.Input, Output: e.Output, Weight: e.Weight, Enabled: e.Enabled,
			},
			Delay: e.Delay,
		})
	}
	return doc
}

// FromDocument reconstructs a Genome from doc, rejecting it if the
// recomputed canonical parameter length disagrees with the header's
// declared length.
func FromDocument(doc Document) (*genome.Genome, error) {
	var nodes []*genome.Node
	var inputOrder, outputOrder []int
	for _, rec := range doc.Nodes {
		var n *genome.Node
		switch roleFromString(rec.Role) {
		case genome.RoleInput:
			n = genome.NewInputNode(rec.Innovation, rec.Name, rec.Depth)
			inputOrder = append(inputOrder, rec.Innovation)
		case genome.RoleOutput:
			n = genome.NewOutputNode(rec.Innovation, rec.Name, rec.Depth)
			outputOrder = append(outputOrder, rec.Innovation)
		default:
			n = genome.NewHiddenNode(rec.Innovation, cellTypeFromString(rec.CellType), rec.Depth)
		}
		n.Enabled = rec.Enabled
		nodes = append(nodes, n)
	}

	var fwd []*genome.ForwardEdge
	for _, rec := range doc.ForwardEdges {
		fwd = append(fwd, &genome.ForwardEdge{
			Innovation: rec.Innovation, Input: rec.Input, Output: rec.Output, Weight: rec.Weight, Enabled: rec.Enabled,
		})
	}
	var rec []*genome.RecurrentEdge
	for _, r := range doc.RecurrentEdges {
		rec = append(rec, &genome.RecurrentEdge{
			Innovation: r.Innovation, Input: r.Input, Output: r.Output, Weight: r.Weight, Enabled: r.Enabled, Delay: r.Delay,
		})
	}

	g := genome.Assemble(doc.Header.Generation, doc.HyperParams, inputOrder, outputOrder, nodes, fwd, rec)

	if g.ParamCount() != doc.Header.ParamLength {
		return nil, fmt.Errorf("serialize: header declares %d params, recomputed canonical length is %d", doc.Header.ParamLength, g.ParamCount())
	}
	if err := g.Unflatten(doc.Params); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return g, nil
}

// WriteJSON writes g to w as JSON, gzip-compressed when gzipCompress is
// true.
func WriteJSON(w io.Writer, g *genome.Genome, gzipCompress bool) error {
	doc := ToDocument(g)
	if gzipCompress {
		gw := gzip.NewWriter(w)
		if err := json.NewEncoder(gw).Encode(doc); err != nil {
			gw.Close()
			return fmt.Errorf("serialize: encode: %w", err)
		}
		return gw.Close()
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("serialize: encode: %w", err)
	}
	return nil
}

// ReadJSON reads a genome previously written by WriteJSON.
func ReadJSON(r io.Reader, gzipCompress bool) (*genome.Genome, error) {
	var doc Document
	if gzipCompress {
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("serialize: gzip reader: %w", err)
		}
		defer gr.Close()
		if err := json.NewDecoder(gr).Decode(&doc); err != nil {
			return nil, fmt.Errorf("serialize: decode: %w", err)
		}
	} else if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("serialize: decode: %w", err)
	}
	return FromDocument(doc)
}
