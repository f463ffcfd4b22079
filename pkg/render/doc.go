// Package render provides headless renderers for diagram projections.
//
// # Overview
//
// A renderer displays whatever element set a view mode coordinator installs.
// This package contains the [Recorder], a renderer with no screen: each
// Render call encodes the installed diagram with an [Encoder] and writes the
// bytes to an io.Writer. It also records canvas opacity so transitions can be
// observed.
//
// Encoders live in subpackages:
//
//   - [nodelink]: Graphviz DOT and SVG (via go-graphviz)
//   - [mermaid]: Mermaid flowchart text
//
// [JSON] encodes the canonical diagram form and needs no subpackage.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.EncodeSVG(d, hints)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/witview/pkg/render/nodelink
// [mermaid]: github.com/matzehuels/witview/pkg/render/mermaid
package render
