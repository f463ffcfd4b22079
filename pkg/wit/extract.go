package wit

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/witview/pkg/diagram"
)

// Property keys read from component nodes.
const (
	keyImportInterfaces = "importInterfaces"
	keyExportInterfaces = "exportInterfaces"
	keyInterfaces       = "interfaces"
	keyImports          = "imports"
	keyExports          = "exports"
	keyWitInterfaces    = "wit_interfaces"
	keyInterfaceCount   = "interfaceCount"
)

// Names of the interfaces synthesized for a component that declares none.
const (
	DefaultExportName = "main-interface"
	DefaultImportName = "config-interface"
)

// MaxPlaceholders bounds the interfaces synthesized from an interface count.
// A larger count is treated as unusable and the defaults are returned.
const MaxPlaceholders = 64

// Components returns the wasm-component nodes of m ordered top to bottom, then
// left to right, then by id.
func Components(m *diagram.Model) []Component {
	if m == nil {
		return nil
	}
	nodes := m.NodesOfType(diagram.NodeWasmComponent)
	slices.SortStableFunc(nodes, func(a, b *diagram.Node) int {
		return cmp.Or(
			cmp.Compare(a.Bounds.Y, b.Bounds.Y),
			cmp.Compare(a.Bounds.X, b.Bounds.X),
			cmp.Compare(a.ID, b.ID),
		)
	})

	out := make([]Component, len(nodes))
	for i, n := range nodes {
		out[i] = FromNode(n)
	}
	return out
}

// FromNode builds the component view of a node. The node is not modified and
// the returned properties are a copy.
func FromNode(n *diagram.Node) Component {
	name := n.StringProp(diagram.PropComponentName)
	if name == "" {
		name = n.DisplayLabel()
	}
	return Component{
		ID:         n.ID,
		Name:       name,
		Interfaces: Extract(n.Properties),
		Position:   n.Bounds,
		Properties: diagram.CopyProperties(n.Properties),
	}
}

// Extract recovers the interfaces declared in a component's properties. It
// never returns an empty slice.
func Extract(props map[string]any) []Interface {
	if out, ok := extractSeparate(props); ok {
		return out
	}
	if out, ok := extractCombined(props); ok {
		return out
	}
	if n, ok := interfaceCount(props); ok && n > 0 && n <= MaxPlaceholders {
		return Placeholders(n)
	}
	return Defaults()
}

// Defaults returns the two interfaces synthesized for a component that
// declares nothing.
func Defaults() []Interface {
	return []Interface{
		{
			Name:      DefaultExportName,
			Direction: Export,
			Functions: []Function{{Name: "main"}},
			Synthetic: true,
		},
		{
			Name:      DefaultImportName,
			Direction: Import,
			Functions: []Function{{Name: "get-config", Returns: []Param{{Name: "config", Type: "string"}}}},
			Synthetic: true,
		},
	}
}

// Placeholders synthesizes n interfaces named interface-1..interface-n,
// alternating export and import, each with one function. n is clamped to
// [0, MaxPlaceholders].
func Placeholders(n int) []Interface {
	n = max(0, min(n, MaxPlaceholders))
	out := make([]Interface, n)
	for i := range out {
		dir := Export
		if i%2 == 1 {
			dir = Import
		}
		out[i] = Interface{
			Name:      fmt.Sprintf("interface-%d", i+1),
			Direction: dir,
			Functions: []Function{{Name: fmt.Sprintf("function-%d", i+1)}},
			Synthetic: true,
		}
	}
	return out
}

func extractSeparate(props map[string]any) ([]Interface, bool) {
	imps, hasImps := props[keyImportInterfaces].([]any)
	exps, hasExps := props[keyExportInterfaces].([]any)
	if !hasImps && !hasExps {
		return nil, false
	}
	out := decodeInterfaces(imps, Import, true)
	out = append(out, decodeInterfaces(exps, Export, true)...)
	return out, len(out) > 0
}

func extractCombined(props map[string]any) ([]Interface, bool) {
	var out []Interface
	for _, src := range []struct {
		key string
		dir Direction
	}{
		{keyInterfaces, Export},
		{keyWitInterfaces, Export},
		{keyImports, Import},
		{keyExports, Export},
	} {
		arr, ok := props[src.key].([]any)
		if !ok {
			continue
		}
		force := src.key == keyImports || src.key == keyExports
		out = append(out, decodeInterfaces(arr, src.dir, force)...)
	}
	return out, len(out) > 0
}

func interfaceCount(props map[string]any) (int, bool) {
	for _, k := range []string{keyInterfaceCount, "interface_count", keyInterfaces} {
		if n, ok := asInt(props[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// decodeInterfaces maps raw records to interfaces. When force is set every
// interface gets dir; otherwise dir is the fallback for records that carry no
// direction of their own.
func decodeInterfaces(raw []any, dir Direction, force bool) []Interface {
	var out []Interface
	for _, r := range raw {
		switch v := r.(type) {
		case string:
			if v != "" {
				out = append(out, Interface{Name: v, Direction: dir})
			}
		case map[string]any:
			name := str(v, "name")
			if name == "" {
				continue
			}
			iface := Interface{
				Name:      name,
				Direction: dir,
				Functions: decodeFunctions(v["functions"]),
				Types:     decodeTypes(v["types"]),
			}
			if !force {
				if d, ok := parseDirection(str(v, "interface_type", "interfaceType", "direction", "type")); ok {
					iface.Direction = d
				}
			}
			out = append(out, iface)
		}
	}
	return out
}

func parseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "import", "imports", "in":
		return Import, true
	case "export", "exports", "out":
		return Export, true
	}
	return "", false
}

func decodeFunctions(v any) []Function {
	raw, _ := v.([]any)
	var out []Function
	for _, r := range raw {
		switch f := r.(type) {
		case string:
			out = append(out, Function{Name: f})
		case map[string]any:
			name := str(f, "name")
			if name == "" {
				continue
			}
			out = append(out, Function{
				Name:    name,
				Params:  decodeParams(f["params"]),
				Returns: decodeParams(firstOf(f, "returns", "results")),
			})
		}
	}
	return out
}

func decodeParams(v any) []Param {
	raw, _ := v.([]any)
	var out []Param
	for _, r := range raw {
		p, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Param{Name: str(p, "name"), Type: str(p, "param_type", "paramType", "type")})
	}
	return out
}

func decodeTypes(v any) []TypeDef {
	raw, _ := v.([]any)
	var out []TypeDef
	for _, r := range raw {
		switch t := r.(type) {
		case string:
			out = append(out, TypeDef{Name: t})
		case map[string]any:
			if name := str(t, "name"); name != "" {
				out = append(out, TypeDef{Name: name, Kind: str(t, "kind", "type")})
			}
		}
	}
	return out
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
