package transform

import (
	"strings"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/layout"
	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/wit"
)

// WitProjection renders each component as a package tree: the package box,
// its interfaces below it (imports first, then exports), and each interface's
// functions and types below the interface. Box sizes adapt to the most complex
// interface and the most crowded component of the whole diagram.
//
// Packages are tiled left to right, ComponentsPerRow to a row; a new row
// starts below the tallest tree of the previous one.
type WitProjection struct{}

// Mode implements Projection.
func (WitProjection) Mode() view.Mode { return view.ModeWitInterface }

// Project implements Projection.
func (WitProjection) Project(d *diagram.Model) ([]diagram.Element, RenderingHints, error) {
	comps := wit.Components(d)
	p := layout.Measure(comps)

	var (
		out       []diagram.Element
		alloc     IDAlloc
		synthetic bool
	)

	rowY, rowBottom := layout.Margin, layout.Margin
	for i, comp := range comps {
		col := i % layout.ComponentsPerRow
		if i > 0 && col == 0 {
			rowY = rowBottom + layout.ComponentGap
		}
		x := layout.Margin + float64(col)*p.HorizontalSpacing

		var (
			elems  []diagram.Element
			bottom float64
		)
		elems, bottom, alloc = witPackage(comp, x, rowY, p, alloc)
		out = append(out, elems...)

		rowBottom = max(rowBottom, bottom)
		synthetic = synthetic || comp.Synthetic()
	}

	hints := RenderingHints{
		Layout:        LayoutTree,
		EdgeStyle:     EdgeOrthogonal,
		ShowFunctions: true,
		ShowTypes:     true,
		Synthetic:     synthetic,
	}
	return out, hints, nil
}

// witPackage lays out one component tree with its package box at (x, y) and
// returns the elements and the lowest y coordinate used.
func witPackage(comp wit.Component, x, y float64, p layout.Params, alloc IDAlloc) ([]diagram.Element, float64, IDAlloc) {
	imports, exports := comp.Imports(), comp.Exports()

	var pkgID string
	pkgID, alloc = alloc.Next(diagram.NodeWitPackage)
	pkg := &diagram.Node{
		ID:     pkgID,
		Type:   diagram.NodeWitPackage,
		Label:  comp.Name,
		Bounds: diagram.Bounds{X: x, Y: y, Width: p.PackageWidth, Height: p.PackageHeight},
		Properties: map[string]any{
			diagram.PropComponentID:   comp.ID,
			diagram.PropComponentName: comp.Name,
			"interfaceCount":          len(comp.Interfaces),
			diagram.PropSynthetic:     comp.Synthetic(),
		},
	}
	out := []diagram.Element{pkg}
	bottom := pkg.Bounds.Bottom()

	cursor := y + layout.PackageToInterfaces
	groups := []struct {
		ifaces []wit.Interface
		label  string
	}{
		{imports, "imports"},
		{exports, "exports"},
	}
	for g, group := range groups {
		if g > 0 && len(imports) > 0 && len(exports) > 0 {
			cursor += layout.InterfaceGroupGap
		}
		for _, iface := range group.ifaces {
			var (
				elems []diagram.Element
				end   float64
			)
			elems, end, alloc = witInterface(comp, iface, pkgID, group.label, x, cursor, p, alloc)
			out = append(out, elems...)
			bottom = max(bottom, end)
			cursor = max(cursor, end-p.InterfaceHeight) + p.InterfaceVerticalSpacing
		}
	}

	return out, bottom, alloc
}

// witInterface lays out an interface box at (x, y) with its leaves below it.
func witInterface(comp wit.Component, iface wit.Interface, pkgID, label string, x, y float64, p layout.Params, alloc IDAlloc) ([]diagram.Element, float64, IDAlloc) {
	var id, edgeID string
	id, alloc = alloc.Next(diagram.NodeWitInterface)
	box := &diagram.Node{
		ID:         id,
		Type:       diagram.NodeWitInterface,
		Label:      iface.Name,
		Bounds:     diagram.Bounds{X: x, Y: y, Width: p.InterfaceWidth, Height: p.InterfaceHeight},
		Properties: interfaceProps(comp, iface),
	}
	edgeID, alloc = alloc.Next(diagram.EdgeWitContains)
	out := []diagram.Element{box, &diagram.Edge{
		ID:       edgeID,
		Type:     diagram.EdgeWitContains,
		SourceID: pkgID,
		TargetID: id,
		Label:    label,
	}}

	bottom := box.Bounds.Bottom()
	at := diagram.Bounds{
		X:      x + layout.LeafIndent,
		Y:      bottom + layout.InterfaceToLeaves,
		Width:  p.LeafWidth,
		Height: p.LeafHeight,
	}

	for _, fn := range iface.Functions {
		var elems []diagram.Element
		elems, alloc = witLeaf(id, diagram.NodeWitFunction, Signature(fn), "", at, map[string]any{
			diagram.PropComponentID:   comp.ID,
			diagram.PropInterfaceName: iface.Name,
			"functionName":            fn.Name,
			"paramCount":              len(fn.Params),
			"returnCount":             len(fn.Returns),
		}, alloc)
		out = append(out, elems...)
		bottom = at.Bottom()
		at.Y += p.LeafVerticalSpacing
	}
	for _, t := range iface.Types {
		var elems []diagram.Element
		elems, alloc = witLeaf(id, diagram.NodeWitType, t.Name, "defines", at, map[string]any{
			diagram.PropComponentID:   comp.ID,
			diagram.PropInterfaceName: iface.Name,
			"typeName":                t.Name,
			"typeKind":                t.Kind,
		}, alloc)
		out = append(out, elems...)
		bottom = at.Bottom()
		at.Y += p.LeafVerticalSpacing
	}

	return out, bottom, alloc
}

// witLeaf emits a function or type box and the edge from its interface.
func witLeaf(ifaceID, typ, label, edgeLabel string, at diagram.Bounds, props map[string]any, alloc IDAlloc) ([]diagram.Element, IDAlloc) {
	var id, edgeID string
	id, alloc = alloc.Next(typ)
	edgeID, alloc = alloc.Next(diagram.EdgeWitContains)
	return []diagram.Element{
		&diagram.Node{ID: id, Type: typ, Label: label, Bounds: at, Properties: props},
		&diagram.Edge{ID: edgeID, Type: diagram.EdgeWitContains, SourceID: ifaceID, TargetID: id, Label: edgeLabel},
	}, alloc
}

// Signature formats a function the way WIT declares it, for example
// "get-frame(id: u32) -> frame: list<u8>".
func Signature(fn wit.Function) string {
	var b strings.Builder
	b.WriteString(fn.Name)
	b.WriteByte('(')
	writeParams(&b, fn.Params)
	b.WriteByte(')')
	if len(fn.Returns) > 0 {
		b.WriteString(" -> ")
		writeParams(&b, fn.Returns)
	}
	return b.String()
}

func writeParams(b *strings.Builder, params []wit.Param) {
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case p.Name != "" && p.Type != "":
			b.WriteString(p.Name + ": " + p.Type)
		case p.Type != "":
			b.WriteString(p.Type)
		default:
			b.WriteString(p.Name)
		}
	}
}
