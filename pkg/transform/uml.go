package transform

import (
	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/layout"
	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/wit"
)

// UMLProjection renders each component as a compact box with its import
// interfaces stacked on the left and its exports on the right. Imports depend
// on the component ("requires"), the component realizes its exports
// ("provides"). Components are laid out top to bottom.
type UMLProjection struct{}

// Mode implements Projection.
func (UMLProjection) Mode() view.Mode { return view.ModeUML }

// Project implements Projection.
func (UMLProjection) Project(d *diagram.Model) ([]diagram.Element, RenderingHints, error) {
	var (
		out       []diagram.Element
		alloc     IDAlloc
		synthetic bool
	)

	y := layout.Margin
	for _, comp := range wit.Components(d) {
		var elems []diagram.Element
		elems, alloc = umlComponent(comp, y, alloc)
		out = append(out, elems...)

		synthetic = synthetic || comp.Synthetic()
		y += layout.UMLComponentOffset(len(comp.Imports()), len(comp.Exports()))
	}

	hints := RenderingHints{
		Layout:        LayoutUML,
		EdgeStyle:     EdgeOrthogonal,
		ShowFunctions: true,
		Synthetic:     synthetic,
	}
	return out, hints, nil
}

func umlComponent(comp wit.Component, y float64, alloc IDAlloc) ([]diagram.Element, IDAlloc) {
	imports, exports := comp.Imports(), comp.Exports()

	var mainID string
	mainID, alloc = alloc.Next(diagram.NodeUMLComponent)
	main := &diagram.Node{
		ID:    mainID,
		Type:  diagram.NodeUMLComponent,
		Label: comp.Name,
		Bounds: diagram.Bounds{
			X:      layout.UMLComponentX,
			Y:      y,
			Width:  layout.UMLComponentWidth,
			Height: layout.UMLComponentHeight,
		},
		Properties: map[string]any{
			diagram.PropComponentID:   comp.ID,
			diagram.PropComponentName: comp.Name,
			"importCount":             len(imports),
			"exportCount":             len(exports),
			diagram.PropSynthetic:     comp.Synthetic(),
		},
	}
	out := []diagram.Element{main}

	leftX := layout.UMLComponentX - layout.UMLSideGap - layout.UMLInterfaceWidth
	for i, iface := range imports {
		var box *diagram.Node
		box, alloc = umlInterface(comp, iface, leftX, y+float64(i)*layout.UMLInterfaceSpacing, alloc)

		var edgeID string
		edgeID, alloc = alloc.Next(diagram.EdgeUMLDependency)
		out = append(out, box, &diagram.Edge{
			ID:       edgeID,
			Type:     diagram.EdgeUMLDependency,
			SourceID: box.ID,
			TargetID: mainID,
			Label:    "requires",
		})
	}

	rightX := layout.UMLComponentX + layout.UMLComponentWidth + layout.UMLSideGap
	for i, iface := range exports {
		var box *diagram.Node
		box, alloc = umlInterface(comp, iface, rightX, y+float64(i)*layout.UMLInterfaceSpacing, alloc)

		var edgeID string
		edgeID, alloc = alloc.Next(diagram.EdgeUMLRealization)
		out = append(out, box, &diagram.Edge{
			ID:       edgeID,
			Type:     diagram.EdgeUMLRealization,
			SourceID: mainID,
			TargetID: box.ID,
			Label:    "provides",
		})
	}

	return out, alloc
}

func umlInterface(comp wit.Component, iface wit.Interface, x, y float64, alloc IDAlloc) (*diagram.Node, IDAlloc) {
	id, alloc := alloc.Next(diagram.NodeUMLInterface)
	return &diagram.Node{
		ID:    id,
		Type:  diagram.NodeUMLInterface,
		Label: iface.Name,
		Bounds: diagram.Bounds{
			X:      x,
			Y:      y,
			Width:  layout.UMLInterfaceWidth,
			Height: layout.UMLInterfaceHeight(len(iface.Functions)),
		},
		Properties: interfaceProps(comp, iface),
	}, alloc
}

// interfaceProps are the properties shared by every derived interface node.
func interfaceProps(comp wit.Component, iface wit.Interface) map[string]any {
	names := make([]string, len(iface.Functions))
	for i, fn := range iface.Functions {
		names[i] = fn.Name
	}
	return map[string]any{
		diagram.PropComponentID:   comp.ID,
		diagram.PropInterfaceName: iface.Name,
		diagram.PropInterfaceKind: string(iface.Direction),
		diagram.PropFunctionCount: len(iface.Functions),
		"functions":               names,
		diagram.PropSynthetic:     iface.Synthetic,
	}
}
