package transform

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/witview/pkg/diagram"
)

// comp builds a wasm-component node with properties given as JSON.
func comp(t *testing.T, id string, x, y float64, props string) *diagram.Node {
	t.Helper()
	var p map[string]any
	if props != "" {
		if err := json.Unmarshal([]byte(props), &p); err != nil {
			t.Fatalf("bad props for %s: %v", id, err)
		}
	}
	return &diagram.Node{
		ID:         id,
		Type:       diagram.NodeWasmComponent,
		Label:      id,
		Bounds:     diagram.Bounds{X: x, Y: y, Width: 200, Height: 120},
		Properties: p,
	}
}

func model(t *testing.T, elems ...diagram.Element) *diagram.Model {
	t.Helper()
	m, err := diagram.FromElements("test", diagram.TypeWasmComponent, elems)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// abModel is the two-component example: A exports io, B imports io.
func abModel(t *testing.T) *diagram.Model {
	return model(t,
		comp(t, "A", 100, 100, `{"exportInterfaces": [{"name": "io", "functions": [{"name": "read"}, {"name": "write"}]}]}`),
		comp(t, "B", 400, 100, `{"importInterfaces": [{"name": "io", "functions": [{"name": "read"}]}]}`),
		&diagram.Edge{ID: "ab", Type: diagram.EdgeConnection, SourceID: "A", TargetID: "B"},
	)
}

func richModel(t *testing.T) *diagram.Model {
	return model(t,
		comp(t, "camera", 100, 100, `{"interfaces": [
			{"name": "sensor-data", "interface_type": "export", "functions": [
				{"name": "get-frame", "returns": [{"name": "frame", "param_type": "list<u8>"}]},
				{"name": "get-meta"}
			], "types": [{"name": "frame", "kind": "record"}]},
			{"name": "wasi:clocks", "interface_type": "import", "functions": [{"name": "now"}]}
		]}`),
		comp(t, "fusion", 400, 100, `{
			"importInterfaces": [{"name": "sensor-data"}, {"name": "wasi:clocks"}],
			"exportInterfaces": [{"name": "objects", "functions": ["a", "b", "c", "d", "e", "f", "g"]}]
		}`),
		comp(t, "planner", 700, 100, `{"imports": [{"name": "objects"}], "exports": [{"name": "plan"}]}`),
		comp(t, "logger", 100, 400, `{"interfaceCount": 3}`),
		comp(t, "empty", 400, 400, ``),
		&diagram.Node{ID: "note", Type: "note", Label: "not a component"},
		&diagram.Edge{ID: "c1", Type: diagram.EdgeConnection, SourceID: "camera", TargetID: "fusion"},
	)
}

// shape is the id-independent structure of an element set.
type shape struct {
	nodes map[string]int // type|label -> count
	edges map[string]int // type|label|source->target -> count
}

func shapeOf(elems []diagram.Element) shape {
	s := shape{nodes: map[string]int{}, edges: map[string]int{}}
	byID := map[string]*diagram.Node{}
	for _, e := range elems {
		if n, ok := e.(*diagram.Node); ok {
			byID[n.ID] = n
			s.nodes[n.Type+"|"+n.Label]++
		}
	}
	for _, e := range elems {
		if ed, ok := e.(*diagram.Edge); ok {
			src, tgt := byID[ed.SourceID], byID[ed.TargetID]
			key := ed.Type + "|" + ed.Label + "|"
			if src != nil && tgt != nil {
				key += src.Type + ":" + src.Label + "->" + tgt.Type + ":" + tgt.Label
			}
			s.edges[key]++
		}
	}
	return s
}

func equalCounts(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func nodesOf(elems []diagram.Element, typ string) []*diagram.Node {
	var out []*diagram.Node
	for _, e := range elems {
		if n, ok := e.(*diagram.Node); ok && n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func edgesOf(elems []diagram.Element, typ string) []*diagram.Edge {
	var out []*diagram.Edge
	for _, e := range elems {
		if ed, ok := e.(*diagram.Edge); ok && ed.Type == typ {
			out = append(out, ed)
		}
	}
	return out
}

func findNode(elems []diagram.Element, id string) *diagram.Node {
	for _, e := range elems {
		if n, ok := e.(*diagram.Node); ok && n.ID == id {
			return n
		}
	}
	return nil
}
