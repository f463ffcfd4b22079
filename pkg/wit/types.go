package wit

import (
	"github.com/matzehuels/witview/pkg/diagram"
)

// Direction says whether a component provides or requires an interface.
type Direction string

const (
	Import Direction = "import"
	Export Direction = "export"
)

// Param is a named, typed function parameter or result.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Function is one function of a WIT interface.
type Function struct {
	Name    string  `json:"name"`
	Params  []Param `json:"params,omitempty"`
	Returns []Param `json:"returns,omitempty"`
}

// TypeDef is a named type declared by an interface.
type TypeDef struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// Interface is an import or export of a component.
type Interface struct {
	Name      string     `json:"name"`
	Direction Direction  `json:"direction"`
	Functions []Function `json:"functions,omitempty"`
	Types     []TypeDef  `json:"types,omitempty"`
	Synthetic bool       `json:"synthetic,omitempty"`
}

// Component is the interface view of one wasm-component node.
type Component struct {
	ID         string
	Name       string
	Interfaces []Interface
	Position   diagram.Bounds
	Properties map[string]any
}

// Imports returns the component's import interfaces in declaration order.
func (c Component) Imports() []Interface { return c.filter(Import) }

// Exports returns the component's export interfaces in declaration order.
func (c Component) Exports() []Interface { return c.filter(Export) }

// Synthetic reports whether any of the component's interfaces is a placeholder.
func (c Component) Synthetic() bool {
	for _, iface := range c.Interfaces {
		if iface.Synthetic {
			return true
		}
	}
	return false
}

func (c Component) filter(d Direction) []Interface {
	var out []Interface
	for _, iface := range c.Interfaces {
		if iface.Direction == d {
			out = append(out, iface)
		}
	}
	return out
}

// MaxFunctions returns the largest function count of any interface in comps.
func MaxFunctions(comps []Component) int {
	n := 0
	for _, c := range comps {
		for _, iface := range c.Interfaces {
			n = max(n, len(iface.Functions))
		}
	}
	return n
}

// MaxInterfaces returns the largest interface count of any component in comps.
func MaxInterfaces(comps []Component) int {
	n := 0
	for _, c := range comps {
		n = max(n, len(c.Interfaces))
	}
	return n
}
