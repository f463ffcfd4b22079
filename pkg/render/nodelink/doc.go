// Package nodelink renders diagram projections as Graphviz node-link diagrams.
//
// # Usage
//
// Convert an installed diagram to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(d, hints, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [Encode] and [EncodeSVG] have the render.Encoder signature and plug into a
// render.Recorder.
//
// # Styling
//
// Rendering hints pick the graph direction: UML and bipartite layouts run left
// to right, the hierarchical WIT layout top to bottom. Orthogonal edge style
// maps to splines=ortho. Each element type gets its own shape and arrowhead,
// and nodes built from synthesized interfaces are drawn dashed and grey.
//
// With [Options].Pinned, node bounds become fixed positions, so the output
// matches the coordinates computed by the projection.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
