package transform

import (
	"cmp"
	"slices"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/layout"
	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/wit"
)

// DependencyProjection groups components around the interfaces they share.
// An interface name appears only when at least one component exports it and at
// least one component imports it: exporters on the left, the interface in the
// middle, importers on the right. Groups are ordered by interface name.
type DependencyProjection struct{}

// Mode implements Projection.
func (DependencyProjection) Mode() view.Mode { return view.ModeWitDependencies }

// Dependency is one interface shared between components.
type Dependency struct {
	Interface string
	Exporters []wit.Component
	Importers []wit.Component
}

// Dependencies returns the qualifying interfaces of comps, sorted by name. A
// component is listed at most once per side of an interface.
func Dependencies(comps []wit.Component) []Dependency {
	byName := make(map[string]*Dependency)
	for _, comp := range comps {
		for _, iface := range comp.Interfaces {
			dep, ok := byName[iface.Name]
			if !ok {
				dep = &Dependency{Interface: iface.Name}
				byName[iface.Name] = dep
			}
			switch iface.Direction {
			case wit.Export:
				dep.Exporters = appendComponent(dep.Exporters, comp)
			case wit.Import:
				dep.Importers = appendComponent(dep.Importers, comp)
			}
		}
	}

	var out []Dependency
	for _, dep := range byName {
		if len(dep.Exporters) > 0 && len(dep.Importers) > 0 {
			out = append(out, *dep)
		}
	}
	slices.SortFunc(out, func(a, b Dependency) int {
		return cmp.Compare(a.Interface, b.Interface)
	})
	return out
}

func appendComponent(list []wit.Component, c wit.Component) []wit.Component {
	if slices.ContainsFunc(list, func(x wit.Component) bool { return x.ID == c.ID }) {
		return list
	}
	return append(list, c)
}

// Project implements Projection.
func (DependencyProjection) Project(d *diagram.Model) ([]diagram.Element, RenderingHints, error) {
	var (
		out   []diagram.Element
		alloc IDAlloc
	)

	y := layout.Margin
	for _, dep := range Dependencies(wit.Components(d)) {
		var elems []diagram.Element
		elems, alloc = dependencyGroup(dep, y, alloc)
		out = append(out, elems...)
		y += layout.DependencyGroupOffset(len(dep.Exporters), len(dep.Importers))
	}

	return out, RenderingHints{Layout: LayoutBipartite, EdgeStyle: EdgeStraight, Compact: true}, nil
}

func dependencyGroup(dep Dependency, y float64, alloc IDAlloc) ([]diagram.Element, IDAlloc) {
	var ifaceID string
	ifaceID, alloc = alloc.Next(diagram.NodeWitInterface)
	center := &diagram.Node{
		ID:    ifaceID,
		Type:  diagram.NodeWitInterface,
		Label: dep.Interface,
		Bounds: diagram.Bounds{
			X:      layout.DepInterfaceX,
			Y:      y,
			Width:  layout.DepInterfaceWidth,
			Height: layout.DepInterfaceHeight,
		},
		Properties: map[string]any{
			diagram.PropInterfaceName: dep.Interface,
			"exporters":               componentNames(dep.Exporters),
			"importers":               componentNames(dep.Importers),
		},
	}
	out := []diagram.Element{center}

	for i, comp := range dep.Exporters {
		var node *diagram.Node
		node, alloc = dependencyComponent(comp, layout.DepExporterX, y+float64(i)*layout.DepRowSpacing, "exporter", alloc)

		var edgeID string
		edgeID, alloc = alloc.Next(diagram.EdgeWitExport)
		out = append(out, node, &diagram.Edge{
			ID:       edgeID,
			Type:     diagram.EdgeWitExport,
			SourceID: node.ID,
			TargetID: ifaceID,
			Label:    "exports",
		})
	}
	for i, comp := range dep.Importers {
		var node *diagram.Node
		node, alloc = dependencyComponent(comp, layout.DepImporterX, y+float64(i)*layout.DepRowSpacing, "importer", alloc)

		var edgeID string
		edgeID, alloc = alloc.Next(diagram.EdgeWitImport)
		out = append(out, node, &diagram.Edge{
			ID:       edgeID,
			Type:     diagram.EdgeWitImport,
			SourceID: ifaceID,
			TargetID: node.ID,
			Label:    "imports",
		})
	}
	return out, alloc
}

func dependencyComponent(comp wit.Component, x, y float64, role string, alloc IDAlloc) (*diagram.Node, IDAlloc) {
	id, alloc := alloc.Next(diagram.NodeDependencyComponent)
	return &diagram.Node{
		ID:    id,
		Type:  diagram.NodeDependencyComponent,
		Label: comp.Name,
		Bounds: diagram.Bounds{
			X:      x,
			Y:      y,
			Width:  layout.DepComponentWidth,
			Height: layout.DepComponentHeight,
		},
		Properties: map[string]any{
			diagram.PropComponentID:   comp.ID,
			diagram.PropComponentName: comp.Name,
			"role":                    role,
		},
	}, alloc
}

func componentNames(comps []wit.Component) []string {
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.Name
	}
	return out
}
