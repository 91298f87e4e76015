// Package nodelink draws a products graph as a node-link diagram.
//
// Each node becomes a box labelled with its description (for example
// "transport_belt-0") and each edge an arrow in the direction items flow.
// [ToDOT] produces Graphviz DOT source; [RenderSVG] lays it out in-process
// with [github.com/goccy/go-graphviz]:
//
//	dot := nodelink.ToDOT(engine.Graph(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// ToDOT reads cached values only. Call [products.Engine.Products] first if
// the diagram should show fully resolved items.
package nodelink
