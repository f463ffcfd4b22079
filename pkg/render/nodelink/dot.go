package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/transform"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed lists interface functions in interface node labels.
	Detailed bool
	// Pinned places nodes at their bounds instead of letting Graphviz lay
	// them out.
	Pinned bool
}

// pointsPerInch converts diagram coordinates, which are in pixels at 72 dpi.
const pointsPerInch = 72.0

// ToDOT converts a diagram to Graphviz DOT format.
func ToDOT(d *diagram.Model, hints transform.RenderingHints, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", d.ID)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankDir(hints.Layout))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
	}
	if hints.EdgeStyle == transform.EdgeOrthogonal {
		buf.WriteString("  splines=ortho;\n")
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed && hints.ShowFunctions))
		if opts.Pinned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"",
				fmtFloat((n.Bounds.X+n.Bounds.Width/2)/pointsPerInch),
				fmtFloat(-(n.Bounds.Y+n.Bounds.Height/2)/pointsPerInch)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges() {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.SourceID, e.TargetID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.SourceID, e.TargetID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rankDir(layout string) string {
	switch layout {
	case transform.LayoutUML, transform.LayoutBipartite:
		return "LR"
	default:
		return "TB"
	}
}

func fmtLabel(n *diagram.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	fns, _ := n.Prop("functions")
	var names []string
	switch v := fns.(type) {
	case []string:
		names = v
	case []any:
		for _, x := range v {
			if s, ok := x.(string); ok {
				names = append(names, s)
			}
		}
	}
	if len(names) == 0 {
		return label
	}
	return label + "\n" + strings.Join(names, "\n")
}

var shapes = map[string]string{
	diagram.NodeWasmComponent:       "component",
	diagram.NodeUMLComponent:        "component",
	diagram.NodeUMLInterface:        "box",
	diagram.NodeWitPackage:          "tab",
	diagram.NodeWitInterface:        "box",
	diagram.NodeWitFunction:         "ellipse",
	diagram.NodeWitType:             "hexagon",
	diagram.NodeDependencyComponent: "component",
}

func fmtAttrs(n *diagram.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if shape, ok := shapes[n.Type]; ok && shape != "box" {
		attrs = append(attrs, "shape="+shape)
	}
	if s, _ := n.Prop(diagram.PropSynthetic); s == true {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

func edgeAttrs(e *diagram.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	switch e.Type {
	case diagram.EdgeUMLDependency:
		attrs = append(attrs, "style=dashed", "arrowhead=vee")
	case diagram.EdgeUMLRealization:
		attrs = append(attrs, "style=dashed", "arrowhead=empty")
	case diagram.EdgeWitContains:
		attrs = append(attrs, "arrowhead=none")
	case diagram.EdgeWitImport:
		attrs = append(attrs, "arrowhead=vee")
	}
	return attrs
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// Encode returns the DOT source of d.
func Encode(d *diagram.Model, hints transform.RenderingHints) ([]byte, error) {
	return []byte(ToDOT(d, hints, Options{Detailed: true})), nil
}

// EncodeSVG renders d to SVG.
func EncodeSVG(d *diagram.Model, hints transform.RenderingHints) ([]byte, error) {
	return RenderSVG(ToDOT(d, hints, Options{Detailed: true}))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
