package transform

import (
	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/view"
)

// ComponentProjection is the default view: the canonical elements, copied,
// with any node left over from a derived view typed back to wasm-component
// and any such edge typed back to connection.
// Element ids are preserved. Edges whose endpoints are not nodes of the
// diagram are dropped.
type ComponentProjection struct{}

// Mode implements Projection.
func (ComponentProjection) Mode() view.Mode { return view.ModeComponent }

// Project implements Projection.
func (ComponentProjection) Project(d *diagram.Model) ([]diagram.Element, RenderingHints, error) {
	nodes := d.Nodes()
	ids := make(map[string]bool, len(nodes))
	out := make([]diagram.Element, 0, d.Len())

	for _, n := range nodes {
		c := n.CloneElement().(*diagram.Node)
		if diagram.IsDerivedType(c.Type) {
			c.Type = diagram.NodeWasmComponent
		}
		ids[c.ID] = true
		out = append(out, c)
	}
	for _, e := range d.Edges() {
		if !ids[e.SourceID] || !ids[e.TargetID] {
			continue
		}
		c := e.CloneElement().(*diagram.Edge)
		if diagram.IsDerivedType(c.Type) {
			c.Type = diagram.EdgeConnection
		}
		out = append(out, c)
	}

	return out, RenderingHints{Layout: LayoutFree, EdgeStyle: EdgeStraight}, nil
}
