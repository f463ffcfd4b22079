// Package view defines the fixed set of view modes a diagram can be projected
// into.
//
// A view mode is static configuration: the list returned by [Modes] never
// changes at runtime. Each mode names the diagram types it can be applied to;
// [Available] filters the list for one type.
//
//	for _, m := range view.Available(diagram.TypeWasmComponent) {
//	    fmt.Println(m.ID, m.Label)
//	}
package view

import (
	"slices"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
)

// Mode identifies a view mode.
type Mode string

// Supported view modes.
const (
	ModeComponent       Mode = "component"
	ModeUML             Mode = "uml"
	ModeWitInterface    Mode = "wit-interface"
	ModeWitDependencies Mode = "wit-dependencies"
)

// Default is the mode every coordinator starts in and restores to.
const Default = ModeComponent

func (m Mode) String() string { return string(m) }

// ViewMode describes one projection.
type ViewMode struct {
	ID              Mode           `json:"id"`
	Label           string         `json:"label"`
	Icon            string         `json:"icon"`
	Tooltip         string         `json:"tooltip"`
	CompatibleTypes []diagram.Type `json:"compatibleDiagramTypes"`
}

// Supports reports whether the mode can be applied to diagrams of type t.
func (v ViewMode) Supports(t diagram.Type) bool {
	return slices.Contains(v.CompatibleTypes, t)
}

var modes = []ViewMode{
	{
		ID:              ModeComponent,
		Label:           "Component View",
		Icon:            "component",
		Tooltip:         "Standard component diagram view",
		CompatibleTypes: diagram.Types(),
	},
	{
		ID:              ModeUML,
		Label:           "UML View",
		Icon:            "uml",
		Tooltip:         "UML-style class diagram with interface boxes",
		CompatibleTypes: []diagram.Type{diagram.TypeWasmComponent},
	},
	{
		ID:              ModeWitInterface,
		Label:           "WIT Interface View",
		Icon:            "wit-interface",
		Tooltip:         "Package, interface and function hierarchy",
		CompatibleTypes: []diagram.Type{diagram.TypeWasmComponent},
	},
	{
		ID:              ModeWitDependencies,
		Label:           "WIT Dependencies View",
		Icon:            "wit-dependencies",
		Tooltip:         "Interface dependencies between components",
		CompatibleTypes: []diagram.Type{diagram.TypeWasmComponent},
	},
}

// Modes returns every view mode in display order.
func Modes() []ViewMode {
	out := make([]ViewMode, len(modes))
	for i, m := range modes {
		m.CompatibleTypes = slices.Clone(m.CompatibleTypes)
		out[i] = m
	}
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id Mode) (ViewMode, bool) {
	for _, m := range Modes() {
		if m.ID == id {
			return m, true
		}
	}
	return ViewMode{}, false
}

// Parse converts a string to a known Mode.
func Parse(s string) (Mode, error) {
	if _, ok := Lookup(Mode(s)); !ok {
		return "", errors.New(errors.ErrCodeInvalidViewMode, "unknown view mode: %q", s)
	}
	return Mode(s), nil
}

// Available returns the modes that support diagrams of type t, in display
// order. The result is empty when no mode supports t.
func Available(t diagram.Type) []ViewMode {
	var out []ViewMode
	for _, m := range Modes() {
		if m.Supports(t) {
			out = append(out, m)
		}
	}
	return out
}

// Compatible reports whether mode id exists and supports t.
func Compatible(id Mode, t diagram.Type) bool {
	m, ok := Lookup(id)
	return ok && m.Supports(t)
}
