package diagram

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/witview/pkg/errors"
)

// =============================================================================
// Diagram Types
// =============================================================================

// Type identifies the kind of diagram. The set is closed.
type Type string

// Supported diagram types.
const (
	TypeWasmComponent      Type = "wasm-component"
	TypeWorkflow           Type = "workflow"
	TypeUMLClass           Type = "uml-class"
	TypeSystemArchitecture Type = "system-architecture"
)

var allTypes = []Type{TypeWasmComponent, TypeWorkflow, TypeUMLClass, TypeSystemArchitecture}

// Types returns every supported diagram type.
func Types() []Type { return slices.Clone(allTypes) }

// Valid reports whether t is one of the supported diagram types.
func (t Type) Valid() bool { return slices.Contains(allTypes, t) }

func (t Type) String() string { return string(t) }

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", errors.New(errors.ErrCodeInvalidDiagramType, "unknown diagram type: %q", s)
	}
	return t, nil
}

// =============================================================================
// Element Types
// =============================================================================

// Canonical element types.
const (
	NodeWasmComponent = "wasm-component"
	EdgeConnection    = "connection"
	NodeGraphRoot     = "graph" // container root written by older stores; dropped on decode
)

// Prefixes shared by derived (projection-only) element types.
const (
	DerivedWitPrefix = "wit-"
	DerivedUMLPrefix = "uml-"
)

// IsDerivedType reports whether an element type belongs to one of the
// projection-only families.
func IsDerivedType(t string) bool {
	return strings.HasPrefix(t, DerivedWitPrefix) ||
		strings.HasPrefix(t, DerivedUMLPrefix) ||
		t == NodeDependencyComponent
}

// Property keys written on derived nodes.
const (
	PropSynthetic     = "synthetic"
	PropComponentID   = "componentId"
	PropComponentName = "componentName"
	PropInterfaceName = "interfaceName"
	PropInterfaceKind = "interfaceType"
	PropFunctionCount = "functionCount"
)

// UML projection element types.
const (
	NodeUMLComponent   = "uml-component"
	NodeUMLInterface   = "uml-interface"
	EdgeUMLDependency  = "uml-dependency"
	EdgeUMLRealization = "uml-realization"
)

// WIT interface projection element types.
const (
	NodeWitPackage   = "wit-package"
	NodeWitInterface = "wit-interface"
	NodeWitFunction  = "wit-function"
	NodeWitType      = "wit-type"
	EdgeWitContains  = "wit-contains"
)

// Dependency projection element types.
const (
	NodeDependencyComponent = "dependency-component"
	EdgeWitExport           = "wit-export"
	EdgeWitImport           = "wit-import"
)

// =============================================================================
// Elements
// =============================================================================

// Element is a node or an edge. The interface is sealed: only [*Node] and
// [*Edge] implement it.
type Element interface {
	// ElementID returns the element id, unique within one diagram.
	ElementID() string
	// ElementType returns the element type tag.
	ElementType() string
	// CloneElement returns a deep copy.
	CloneElement() Element

	isElement()
}

// Bounds is a node's position and size.
type Bounds struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (b Bounds) Bottom() float64 { return b.Y + b.Height }

// Right returns the x coordinate of the right edge.
func (b Bounds) Right() float64 { return b.X + b.Width }

// Node is a positioned diagram box.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label,omitempty"`
	Bounds     Bounds         `json:"bounds"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (n *Node) ElementID() string   { return n.ID }
func (n *Node) ElementType() string { return n.Type }
func (n *Node) isElement()          {}

// CloneElement returns a deep copy of the node.
func (n *Node) CloneElement() Element {
	c := *n
	c.Properties = CopyProperties(n.Properties)
	return &c
}

// Prop returns a property value.
func (n *Node) Prop(key string) (any, bool) {
	if n.Properties == nil {
		return nil, false
	}
	v, ok := n.Properties[key]
	return v, ok
}

// StringProp returns a string property, or "" when absent or not a string.
func (n *Node) StringProp(key string) string {
	v, _ := n.Prop(key)
	s, _ := v.(string)
	return s
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two elements.
type Edge struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Label    string `json:"label,omitempty"`
}

func (e *Edge) ElementID() string   { return e.ID }
func (e *Edge) ElementType() string { return e.Type }
func (e *Edge) isElement()          {}

// CloneElement returns a copy of the edge.
func (e *Edge) CloneElement() Element {
	c := *e
	return &c
}

// =============================================================================
// Model
// =============================================================================

// Model is the canonical diagram: a set of elements keyed by id.
type Model struct {
	ID       string
	Type     Type
	Revision int
	Elements map[string]Element
}

// New creates an empty model.
func New(id string, t Type) *Model {
	return &Model{ID: id, Type: t, Elements: make(map[string]Element)}
}

// FromElements builds a model from an element slice.
// Returns an error on duplicate ids.
func FromElements(id string, t Type, elems []Element) (*Model, error) {
	m := New(id, t)
	for _, e := range elems {
		if err := m.Add(e); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add inserts an element. Returns an error if the id is empty or taken.
func (m *Model) Add(e Element) error {
	if e == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil element")
	}
	id := e.ElementID()
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "element of type %q has no id", e.ElementType())
	}
	if _, dup := m.Elements[id]; dup {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate element id: %s", id)
	}
	if m.Elements == nil {
		m.Elements = make(map[string]Element)
	}
	m.Elements[id] = e
	return nil
}

// Element returns the element with the given id.
func (m *Model) Element(id string) (Element, bool) {
	e, ok := m.Elements[id]
	return e, ok
}

// Node returns the node with the given id.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.Elements[id].(*Node)
	return n, ok
}

// Nodes returns all nodes sorted by id.
func (m *Model) Nodes() []*Node {
	var out []*Node
	for _, id := range m.sortedIDs() {
		if n, ok := m.Elements[id].(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// NodesOfType returns the nodes with the given element type, sorted by id.
func (m *Model) NodesOfType(elementType string) []*Node {
	var out []*Node
	for _, n := range m.Nodes() {
		if n.Type == elementType {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns all edges sorted by id.
func (m *Model) Edges() []*Edge {
	var out []*Edge
	for _, id := range m.sortedIDs() {
		if e, ok := m.Elements[id].(*Edge); ok {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.Nodes()) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.Edges()) }

// Len returns the number of elements.
func (m *Model) Len() int { return len(m.Elements) }

// Slice returns all elements sorted by id.
func (m *Model) Slice() []Element {
	out := make([]Element, 0, len(m.Elements))
	for _, id := range m.sortedIDs() {
		out = append(out, m.Elements[id])
	}
	return out
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	c := &Model{ID: m.ID, Type: m.Type, Revision: m.Revision, Elements: make(map[string]Element, len(m.Elements))}
	for id, e := range m.Elements {
		c.Elements[id] = e.CloneElement()
	}
	return c
}

// WithElements returns a new model with the same identity and type but a
// different element set. The diagram type is carried over unchanged.
func (m *Model) WithElements(elems []Element) (*Model, error) {
	out, err := FromElements(m.ID, m.Type, elems)
	if err != nil {
		return nil, err
	}
	out.Revision = m.Revision
	return out, nil
}

func (m *Model) sortedIDs() []string {
	return slices.Sorted(maps.Keys(m.Elements))
}

func (m *Model) String() string {
	return fmt.Sprintf("%s(%s, %d nodes, %d edges)", m.ID, m.Type, m.NodeCount(), m.EdgeCount())
}

// CopyProperties deep-copies a property map. Nested maps and slices are copied;
// other values are shared.
func CopyProperties(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyProperties(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
