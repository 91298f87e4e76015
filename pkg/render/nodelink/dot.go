package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/beltflow/pkg/products"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's resolved items to its label.
	// When false, only the node label is shown.
	Detailed bool

	// Cluster draws the nodes of each object inside a box labelled with the
	// object ID.
	Cluster bool
}

// ToDOT converts a products graph to Graphviz DOT format. Items flow along
// the edges, so the layout runs left to right.
//
// Nodes with an override (assemblers) are filled yellow; nodes still
// awaiting resolution are drawn dashed. ToDOT never resolves anything.
func ToDOT(g *products.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph products {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var order []int
	byObject := make(map[int][]*products.Node)
	for _, id := range g.Nodes() {
		n, _ := g.Node(id)
		obj := n.Meta().ObjectID
		if _, seen := byObject[obj]; !seen {
			order = append(order, obj)
		}
		byObject[obj] = append(byObject[obj], n)
	}

	for _, obj := range order {
		indent := "  "
		if opts.Cluster {
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", obj)
			fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("#%d", obj))
			buf.WriteString("    style=\"rounded,dotted\";\n")
			indent = "    "
		}
		for _, n := range byObject[obj] {
			attrs := fmtAttrs(g, n, fmtLabel(n, opts.Detailed))
			fmt.Fprintf(&buf, "%s%s [%s];\n", indent, nodeName(n.ID()), strings.Join(attrs, ", "))
		}
		if opts.Cluster {
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeName(e.From), nodeName(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id products.NodeID) string {
	return "n" + strconv.FormatUint(uint64(id), 10)
}

func fmtLabel(n *products.Node, detailed bool) string {
	label := n.Meta().Label
	if label == "" {
		label = nodeName(n.ID())
	}
	if !detailed {
		return label
	}
	return label + "\n" + n.Resolved().String()
}

func fmtAttrs(g *products.Graph, n *products.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Fixed().Len() > 0 {
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	if g.IsDirty(n.ID()) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// viewBox anchored at the origin, so the diagram scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
