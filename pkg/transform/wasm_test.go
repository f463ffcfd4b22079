package transform

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/witview/pkg/cache"
	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/view"
)

func TestWasmTransformerCanTransform(t *testing.T) {
	tr := NewWasmTransformer(nil)
	wasm := abModel(t)
	flow := diagram.New("f", diagram.TypeWorkflow)

	tests := []struct {
		name string
		to   view.Mode
		d    *diagram.Model
		want bool
	}{
		{"uml", view.ModeUML, wasm, true},
		{"wit", view.ModeWitInterface, wasm, true},
		{"deps", view.ModeWitDependencies, wasm, true},
		{"component", view.ModeComponent, wasm, true},
		{"unknown mode", "sequence", wasm, false},
		{"wrong type", view.ModeUML, flow, false},
		{"nil diagram", view.ModeUML, nil, false},
	}
	for _, tt := range tests {
		if got := tr.CanTransform(view.ModeComponent, tt.to, tt.d); got != tt.want {
			t.Errorf("%s: CanTransform() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWasmTransformerTransform(t *testing.T) {
	tr := NewWasmTransformer(nil)
	res := tr.Transform(abModel(t), view.ModeWitDependencies)
	if !res.Success {
		t.Fatalf("Transform() failed: %s", res.Error)
	}
	hints, ok := res.Hints()
	if !ok || hints.Layout != LayoutBipartite {
		t.Errorf("hints = %+v, %v", hints, ok)
	}
	if res.Data[DataViewMode] != view.ModeWitDependencies {
		t.Errorf("viewMode = %v", res.Data[DataViewMode])
	}
}

func TestWasmTransformerFailures(t *testing.T) {
	tr := NewWasmTransformer(nil)

	tests := []struct {
		name   string
		d      *diagram.Model
		target view.Mode
		substr string
	}{
		{"nil", nil, view.ModeUML, "no diagram"},
		{"wrong type", diagram.New("f", diagram.TypeWorkflow), view.ModeUML, "not wasm-component"},
		{"unknown mode", abModel(t), "sequence", "no projection"},
	}
	for _, tt := range tests {
		res := tr.Transform(tt.d, tt.target)
		if res.Success {
			t.Errorf("%s: expected failure", tt.name)
			continue
		}
		if !strings.Contains(res.Error, tt.substr) {
			t.Errorf("%s: error = %q, want it to contain %q", tt.name, res.Error, tt.substr)
		}
	}
}

type panicProjection struct{}

func (panicProjection) Mode() view.Mode { return view.ModeUML }
func (panicProjection) Project(*diagram.Model) ([]diagram.Element, RenderingHints, error) {
	panic("boom")
}

type duplicateProjection struct{}

func (duplicateProjection) Mode() view.Mode { return view.ModeUML }
func (duplicateProjection) Project(*diagram.Model) ([]diagram.Element, RenderingHints, error) {
	return []diagram.Element{&diagram.Node{ID: "x"}, &diagram.Node{ID: "x"}}, RenderingHints{}, nil
}

func TestWasmTransformerNeverPanics(t *testing.T) {
	tr := NewWasmTransformer(nil)
	tr.Register(panicProjection{})

	res := tr.Transform(abModel(t), view.ModeUML)
	if res.Success {
		t.Fatal("panicking projection reported success")
	}
	if !strings.Contains(res.Error, "boom") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestWasmTransformerRejectsInvalidOutput(t *testing.T) {
	tr := NewWasmTransformer(nil)
	tr.Register(duplicateProjection{})

	res := tr.Transform(abModel(t), view.ModeUML)
	if res.Success {
		t.Fatal("duplicate ids reported as success")
	}
}

func TestWasmTransformerModes(t *testing.T) {
	modes := NewWasmTransformer(nil).Modes()
	want := []view.Mode{view.ModeComponent, view.ModeUML, view.ModeWitInterface, view.ModeWitDependencies}
	if len(modes) != len(want) {
		t.Fatalf("Modes() = %v", modes)
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Errorf("Modes()[%d] = %s, want %s", i, modes[i], want[i])
		}
	}
}

// countingTransformer counts Transform calls.
type countingTransformer struct {
	Transformer
	calls atomic.Int32
}

func (c *countingTransformer) Transform(d *diagram.Model, target view.Mode) Result {
	c.calls.Add(1)
	return c.Transformer.Transform(d, target)
}

func TestCached(t *testing.T) {
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingTransformer{Transformer: NewWasmTransformer(nil)}
	c := NewCached(inner, mem, nil, nil)
	ctx := context.Background()
	m := richModel(t)

	first := c.TransformContext(ctx, m, view.ModeUML)
	second := c.TransformContext(ctx, m, view.ModeUML)
	if !first.Success || !second.Success {
		t.Fatalf("results: %v / %v", first.Error, second.Error)
	}
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner called %d times, want 1", n)
	}

	s1, s2 := shapeOf(first.Elements), shapeOf(second.Elements)
	if !equalCounts(s1.nodes, s2.nodes) || !equalCounts(s1.edges, s2.edges) {
		t.Error("cached result differs in structure")
	}
	h1, _ := first.Hints()
	h2, ok := second.Hints()
	if !ok || h1 != h2 {
		t.Errorf("hints = %+v, want %+v", h2, h1)
	}

	// A different mode is a different key.
	c.TransformContext(ctx, m, view.ModeWitInterface)
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("inner called %d times, want 2", n)
	}

	// A changed diagram is a different key.
	m.Add(comp(t, "late", 900, 900, ""))
	c.TransformContext(ctx, m, view.ModeUML)
	if n := inner.calls.Load(); n != 3 {
		t.Errorf("inner called %d times, want 3", n)
	}
}

func TestCachedSkipsFailures(t *testing.T) {
	mem, _ := cache.NewMemoryCache(16)
	inner := &countingTransformer{Transformer: NewWasmTransformer(nil)}
	c := NewCached(inner, mem, nil, nil)
	flow := diagram.New("f", diagram.TypeWorkflow)

	c.Transform(flow, view.ModeUML)
	c.Transform(flow, view.ModeUML)
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("failed results were cached: %d calls", n)
	}
	if mem.(*cache.MemoryCache).Len() != 0 {
		t.Error("cache holds a failed result")
	}
}

func TestCachedDelegatesCanTransform(t *testing.T) {
	c := NewCached(NewWasmTransformer(nil), nil, nil, nil)
	if !c.CanTransform(view.ModeComponent, view.ModeUML, abModel(t)) {
		t.Error("CanTransform should delegate to the inner transformer")
	}
}
