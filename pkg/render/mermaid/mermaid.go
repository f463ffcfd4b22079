// Package mermaid renders diagram projections as Mermaid flowcharts.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/transform"
)

// ToMermaid converts d to Mermaid flowchart syntax. Node ids are rewritten to
// Mermaid-safe identifiers; labels keep the original text.
func ToMermaid(d *diagram.Model, hints transform.RenderingHints) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "flowchart %s\n", direction(hints.Layout))

	ids := make(map[string]string)
	used := make(map[string]bool)
	for _, n := range d.Nodes() {
		id := safeID(n.ID)
		for i := 2; used[id]; i++ {
			id = fmt.Sprintf("%s_%d", safeID(n.ID), i)
		}
		used[id] = true
		ids[n.ID] = id
		left, right := shape(n.Type)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, left, escape(n.DisplayLabel()), right)
	}

	edges := d.Edges()
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range edges {
		from, ok := ids[e.SourceID]
		if !ok {
			continue
		}
		to, ok := ids[e.TargetID]
		if !ok {
			continue
		}
		arrow := arrowFor(e.Type)
		if e.Label != "" {
			fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n", from, arrow, escape(e.Label), to)
		} else {
			fmt.Fprintf(&sb, "    %s %s %s\n", from, arrow, to)
		}
	}

	var synthetic []string
	for _, n := range d.Nodes() {
		if s, _ := n.Prop(diagram.PropSynthetic); s == true {
			synthetic = append(synthetic, ids[n.ID])
		}
	}
	if len(synthetic) > 0 {
		sb.WriteString("\n    classDef synthetic stroke-dasharray: 5 5,fill:#eee\n")
		fmt.Fprintf(&sb, "    class %s synthetic\n", strings.Join(synthetic, ","))
	}
	return sb.String()
}

// Encode has the render.Encoder signature.
func Encode(d *diagram.Model, hints transform.RenderingHints) ([]byte, error) {
	return []byte(ToMermaid(d, hints)), nil
}

func direction(layout string) string {
	switch layout {
	case transform.LayoutUML, transform.LayoutBipartite:
		return "LR"
	default:
		return "TB"
	}
}

func shape(elementType string) (string, string) {
	switch elementType {
	case diagram.NodeWitPackage:
		return "[[", "]]"
	case diagram.NodeWitInterface, diagram.NodeUMLInterface:
		return "(", ")"
	case diagram.NodeWitFunction:
		return "([", "])"
	case diagram.NodeWitType:
		return "{{", "}}"
	default:
		return "[", "]"
	}
}

func arrowFor(edgeType string) string {
	switch edgeType {
	case diagram.EdgeUMLDependency, diagram.EdgeUMLRealization:
		return "-.->"
	case diagram.EdgeWitContains:
		return "---"
	default:
		return "-->"
	}
}

// safeID maps an element id to [A-Za-z0-9_]. Mermaid reserves "end" as a
// keyword, so every id gets a prefix.
func safeID(id string) string {
	var b strings.Builder
	b.WriteString("n_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, "\n", "<br/>")
}
