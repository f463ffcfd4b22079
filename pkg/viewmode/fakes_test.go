package viewmode

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/view"
)

type fakeStore struct {
	mu  sync.Mutex
	d   *diagram.Model
	err error
}

func (s *fakeStore) Current(context.Context) (*diagram.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d, s.err
}

func (s *fakeStore) set(d *diagram.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = d
}

type fakeCanvas struct {
	mu        sync.Mutex
	opacities []float64
}

func (c *fakeCanvas) SetOpacity(a float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opacities = append(c.opacities, a)
}

type fakeRenderer struct {
	mu       sync.Mutex
	diagram  *diagram.Model
	mode     view.Mode
	hints    transform.RenderingHints
	sets     int
	renders  int
	canvas   *fakeCanvas
	panicSet bool
	onSet    func()
}

func (r *fakeRenderer) SetDiagram(d *diagram.Model) {
	if r.panicSet {
		panic("renderer exploded")
	}
	if r.onSet != nil {
		r.onSet()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagram = d
	r.sets++
}

func (r *fakeRenderer) SetViewMode(m view.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
}

func (r *fakeRenderer) SetRenderingHints(h transform.RenderingHints) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = h
}

func (r *fakeRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
	return nil
}

func (r *fakeRenderer) Canvas() Canvas {
	if r.canvas == nil {
		return nil
	}
	return r.canvas
}

func (r *fakeRenderer) snapshot() (*diagram.Model, view.Mode, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diagram, r.mode, r.sets
}

// stubTransformer returns a fixed result and counts calls.
type stubTransformer struct {
	mu      sync.Mutex
	calls   int
	decline bool
	result  transform.Result
	panics  bool
	block   chan struct{}
}

func (s *stubTransformer) CanTransform(from, to view.Mode, d *diagram.Model) bool {
	return !s.decline
}

func (s *stubTransformer) Transform(d *diagram.Model, target view.Mode) transform.Result {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if s.panics {
		panic("strategy exploded")
	}
	return s.result
}

func (s *stubTransformer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func wasmDiagram(t *testing.T) *diagram.Model {
	t.Helper()
	m, err := diagram.Unmarshal([]byte(`{
		"id": "d1",
		"diagramType": "wasm-component",
		"elements": {
			"A": {"id": "A", "type": "wasm-component", "label": "A",
			      "bounds": {"x": 100, "y": 100, "width": 200, "height": 120},
			      "properties": {"exportInterfaces": [{"name": "io", "functions": [{"name": "read"}]}]}},
			"B": {"id": "B", "type": "wasm-component", "label": "B",
			      "bounds": {"x": 400, "y": 100, "width": 200, "height": 120},
			      "properties": {"importInterfaces": [{"name": "io"}]}},
			"ab": {"id": "ab", "type": "connection", "sourceId": "A", "targetId": "B"}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func canonicalJSON(t *testing.T, d *diagram.Model) string {
	t.Helper()
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

type recorded struct{ newMode, previous view.Mode }

type listenerLog struct {
	mu    sync.Mutex
	calls []recorded
}

func (l *listenerLog) listen(newMode, previous view.Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, recorded{newMode, previous})
}

func (l *listenerLog) get() []recorded {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recorded(nil), l.calls...)
}
