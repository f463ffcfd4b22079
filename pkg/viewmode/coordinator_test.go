package viewmode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/witview/pkg/diagram"
	werrors "github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/view"
)

func setup(t *testing.T, opts ...Option) (*Coordinator, *fakeStore, *fakeRenderer) {
	t.Helper()
	store := &fakeStore{d: wasmDiagram(t)}
	r := &fakeRenderer{}
	c := New(store, r, append([]Option{WithTransition(0, 0)}, opts...)...)
	if err := c.RegisterTransformer(diagram.TypeWasmComponent, transform.NewWasmTransformer(nil)); err != nil {
		t.Fatal(err)
	}
	return c, store, r
}

func stubResult() transform.Result {
	return transform.Succeed(view.ModeUML, []diagram.Element{
		&diagram.Node{ID: "x", Type: diagram.NodeUMLComponent},
	}, transform.RenderingHints{Layout: transform.LayoutUML})
}

func wantCode(t *testing.T, err error, code werrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if !werrors.Is(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func TestInitialState(t *testing.T) {
	c, _, _ := setup(t)
	if c.CurrentViewMode() != view.ModeComponent {
		t.Errorf("initial mode = %s", c.CurrentViewMode())
	}
	if c.State().Phase != Idle {
		t.Errorf("initial state = %s", c.State())
	}
	if _, ok := c.LastResult(); ok {
		t.Error("initial last result should be absent")
	}
}

func TestSwitchToDerivedView(t *testing.T) {
	c, store, r := setup(t)
	var log listenerLog
	c.AddViewModeListener(log.listen)

	if err := c.SwitchViewMode(context.Background(), view.ModeUML); err != nil {
		t.Fatalf("SwitchViewMode() error: %v", err)
	}

	if c.CurrentViewMode() != view.ModeUML {
		t.Errorf("mode = %s", c.CurrentViewMode())
	}
	d, mode, _ := r.snapshot()
	if mode != view.ModeUML {
		t.Errorf("renderer mode = %s", mode)
	}
	if d.Type != diagram.TypeWasmComponent || d.ID != "d1" {
		t.Errorf("derived diagram identity changed: %s/%s", d.ID, d.Type)
	}
	if len(d.NodesOfType(diagram.NodeUMLComponent)) != 2 {
		t.Errorf("derived diagram = %v", d)
	}
	if r.hints.Layout != transform.LayoutUML {
		t.Errorf("hints = %+v", r.hints)
	}
	if res, ok := c.LastResult(); !ok || !res.Success {
		t.Error("last result not recorded")
	}
	if got := log.get(); len(got) != 1 || got[0] != (recorded{view.ModeUML, view.ModeComponent}) {
		t.Errorf("listener calls = %v", got)
	}

	// The canonical diagram is untouched.
	if len(store.d.NodesOfType(diagram.NodeUMLComponent)) != 0 {
		t.Error("canonical diagram was mutated")
	}
	if c.State().Phase != Idle {
		t.Errorf("state after switch = %s", c.State())
	}
}

func TestSwitchIdempotent(t *testing.T) {
	c, _, r := setup(t)
	stub := &stubTransformer{result: stubResult()}
	c.RegisterTransformer(diagram.TypeWasmComponent, stub)
	var log listenerLog
	c.AddViewModeListener(log.listen)
	ctx := context.Background()

	if err := c.SwitchViewMode(ctx, view.ModeUML); err != nil {
		t.Fatal(err)
	}
	_, _, sets := r.snapshot()

	if err := c.SwitchViewMode(ctx, view.ModeUML); err != nil {
		t.Fatalf("repeated switch error: %v", err)
	}
	if stub.count() != 1 {
		t.Errorf("transformer called %d times, want 1", stub.count())
	}
	if _, _, again := r.snapshot(); again != sets {
		t.Error("repeated switch touched the renderer")
	}
	if len(log.get()) != 1 {
		t.Errorf("listener calls = %v", log.get())
	}

	// Already in the default mode: nothing happens either.
	c2, _, r2 := setup(t)
	if err := c2.SwitchViewMode(ctx, view.ModeComponent); err != nil {
		t.Fatal(err)
	}
	if _, _, n := r2.snapshot(); n != 0 {
		t.Error("no-op switch touched the renderer")
	}
}

func TestRestorationExact(t *testing.T) {
	c, store, r := setup(t)
	stub := &stubTransformer{result: stubResult()}
	c.RegisterTransformer(diagram.TypeWasmComponent, stub)
	ctx := context.Background()

	if err := c.SwitchViewMode(ctx, view.ModeUML); err != nil {
		t.Fatal(err)
	}

	// The store may change while a derived view is shown; restoring uses
	// the diagram held at the time of the switch.
	updated := wasmDiagram(t)
	updated.Add(&diagram.Node{ID: "C", Type: diagram.NodeWasmComponent, Label: "C"})
	store.set(updated)

	if err := c.SwitchViewMode(ctx, view.ModeComponent); err != nil {
		t.Fatalf("restore error: %v", err)
	}
	if stub.count() != 1 {
		t.Errorf("restore invoked the transformer (%d calls)", stub.count())
	}
	d, mode, _ := r.snapshot()
	if mode != view.ModeComponent {
		t.Errorf("renderer mode = %s", mode)
	}
	if canonicalJSON(t, d) != canonicalJSON(t, updated) {
		t.Errorf("restored diagram differs from the store:\n%s\n%s", canonicalJSON(t, d), canonicalJSON(t, updated))
	}
	if d == updated {
		t.Error("renderer shares the store's diagram")
	}
	if _, ok := c.LastResult(); ok {
		t.Error("last result should be cleared")
	}
}

func TestSwitchFailuresLeaveStateUnchanged(t *testing.T) {
	flow := diagram.New("f", diagram.TypeWorkflow)

	tests := []struct {
		name    string
		prepare func(c *Coordinator, s *fakeStore, r *fakeRenderer)
		target  view.Mode
		code    werrors.Code
	}{
		{
			name:    "NoDiagram",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) { s.set(nil) },
			target:  view.ModeUML,
			code:    werrors.ErrCodeNoDiagram,
		},
		{
			name:    "StoreError",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) { s.err = errors.New("disk on fire") },
			target:  view.ModeUML,
			code:    werrors.ErrCodeNoDiagram,
		},
		{
			name:    "NoTransformer",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) { s.set(flow) },
			target:  view.ModeUML,
			code:    werrors.ErrCodeNoTransformer,
		},
		{
			name:    "UnknownMode",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) {},
			target:  "sequence",
			code:    werrors.ErrCodeIncompatibleView,
		},
		{
			name: "ModeDoesNotSupportType",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) {
				s.set(flow)
				c.RegisterTransformer(diagram.TypeWorkflow, &stubTransformer{result: stubResult()})
			},
			target: view.ModeUML,
			code:   werrors.ErrCodeIncompatibleView,
		},
		{
			name: "TransformerDeclines",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) {
				c.RegisterTransformer(diagram.TypeWasmComponent, &stubTransformer{decline: true})
			},
			target: view.ModeUML,
			code:   werrors.ErrCodeIncompatibleView,
		},
		{
			name: "TransformFailed",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) {
				c.RegisterTransformer(diagram.TypeWasmComponent, &stubTransformer{result: transform.Fail("bad input")})
			},
			target: view.ModeUML,
			code:   werrors.ErrCodeTransformFailed,
		},
		{
			name: "TransformerPanics",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) {
				c.RegisterTransformer(diagram.TypeWasmComponent, &stubTransformer{panics: true})
			},
			target: view.ModeUML,
			code:   werrors.ErrCodeTransformFailed,
		},
		{
			name: "InvalidDerivedElements",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) {
				c.RegisterTransformer(diagram.TypeWasmComponent, &stubTransformer{result: transform.Succeed(view.ModeUML,
					[]diagram.Element{&diagram.Node{ID: "x"}, &diagram.Node{ID: "x"}}, transform.RenderingHints{})})
			},
			target: view.ModeUML,
			code:   werrors.ErrCodeTransformFailed,
		},
		{
			name:    "RendererPanics",
			prepare: func(c *Coordinator, s *fakeStore, r *fakeRenderer) { r.panicSet = true },
			target:  view.ModeUML,
			code:    werrors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s, r := setup(t)
			var log listenerLog
			c.AddViewModeListener(log.listen)
			tt.prepare(c, s, r)

			err := c.SwitchViewMode(context.Background(), tt.target)
			wantCode(t, err, tt.code)

			if c.CurrentViewMode() != view.ModeComponent {
				t.Errorf("mode changed to %s", c.CurrentViewMode())
			}
			if _, ok := c.LastResult(); ok {
				t.Error("last result recorded on failure")
			}
			if _, _, sets := r.snapshot(); sets != 0 {
				t.Error("renderer touched on failure")
			}
			if len(log.get()) != 0 {
				t.Error("listeners notified on failure")
			}
			if c.State().Phase != Idle {
				t.Errorf("state = %s", c.State())
			}
		})
	}
}

func TestFailedSwitchKeepsDerivedProjection(t *testing.T) {
	c, _, r := setup(t)
	ctx := context.Background()
	if err := c.SwitchViewMode(ctx, view.ModeWitInterface); err != nil {
		t.Fatal(err)
	}
	before, _, _ := r.snapshot()

	c.RegisterTransformer(diagram.TypeWasmComponent, &stubTransformer{result: transform.Fail("nope")})
	wantCode(t, c.SwitchViewMode(ctx, view.ModeUML), werrors.ErrCodeTransformFailed)

	after, mode, _ := r.snapshot()
	if after != before || mode != view.ModeWitInterface || c.CurrentViewMode() != view.ModeWitInterface {
		t.Error("failed switch replaced the installed projection")
	}
	if res, ok := c.LastResult(); !ok || res.Data[transform.DataViewMode] != view.ModeWitInterface {
		t.Error("failed switch replaced the last result")
	}
}

func TestListenerIsolation(t *testing.T) {
	c, _, _ := setup(t)
	var log listenerLog
	c.AddViewModeListener(func(view.Mode, view.Mode) { panic("listener exploded") })
	c.AddViewModeListener(log.listen)

	if err := c.SwitchViewMode(context.Background(), view.ModeUML); err != nil {
		t.Fatalf("panicking listener failed the switch: %v", err)
	}
	if len(log.get()) != 1 {
		t.Error("second listener not called")
	}
	if c.CurrentViewMode() != view.ModeUML {
		t.Error("panicking listener corrupted state")
	}
}

func TestRemoveListener(t *testing.T) {
	c, _, _ := setup(t)
	var kept, removed listenerLog
	c.AddViewModeListener(kept.listen)
	id := c.AddViewModeListener(removed.listen)
	c.RemoveViewModeListener(id)
	c.RemoveViewModeListener(999)

	c.SwitchViewMode(context.Background(), view.ModeUML)
	if len(kept.get()) != 1 || len(removed.get()) != 0 {
		t.Errorf("kept %d, removed %d calls", len(kept.get()), len(removed.get()))
	}
}

func TestListenerMaySwitch(t *testing.T) {
	c, _, _ := setup(t)
	done := make(chan error, 1)
	c.AddViewModeListener(func(newMode, _ view.Mode) {
		if newMode == view.ModeUML {
			done <- c.SwitchViewMode(context.Background(), view.ModeWitDependencies)
		}
	})

	if err := c.SwitchViewMode(context.Background(), view.ModeUML); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("nested switch error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("nested switch deadlocked")
	}
	if c.CurrentViewMode() != view.ModeWitDependencies {
		t.Errorf("mode = %s", c.CurrentViewMode())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConcurrentSwitchesAreSerialized(t *testing.T) {
	c, _, r := setup(t)
	block := make(chan struct{})
	stub := &stubTransformer{result: stubResult(), block: block}
	c.RegisterTransformer(diagram.TypeWasmComponent, stub)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = c.SwitchViewMode(ctx, view.ModeUML)
	}()
	waitFor(t, func() bool { return stub.count() == 1 })

	if s := c.State(); s.Phase != Transitioning || s.Target != view.ModeUML {
		t.Errorf("state during switch = %s", s)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = c.SwitchViewMode(ctx, view.ModeWitInterface)
	}()
	waitFor(t, func() bool { return c.Pending() == 1 })

	if stub.count() != 1 {
		t.Error("second switch ran while the first was in progress")
	}
	close(block)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("switch %d error: %v", i, err)
		}
	}
	if c.CurrentViewMode() != view.ModeWitInterface {
		t.Errorf("final mode = %s, want the last requested", c.CurrentViewMode())
	}
	if _, mode, _ := r.snapshot(); mode != c.CurrentViewMode() {
		t.Errorf("renderer mode %s disagrees with coordinator mode %s", mode, c.CurrentViewMode())
	}
	if c.State().Phase != Idle {
		t.Errorf("final state = %s", c.State())
	}
}

func TestQueuedSwitchHonoursContext(t *testing.T) {
	c, _, _ := setup(t)
	block := make(chan struct{})
	stub := &stubTransformer{result: stubResult(), block: block}
	c.RegisterTransformer(diagram.TypeWasmComponent, stub)

	first := make(chan error, 1)
	go func() { first <- c.SwitchViewMode(context.Background(), view.ModeUML) }()
	waitFor(t, func() bool { return stub.count() == 1 })

	ctx, cancel := context.WithCancel(context.Background())
	second := make(chan error, 1)
	go func() { second <- c.SwitchViewMode(ctx, view.ModeWitInterface) }()
	waitFor(t, func() bool { return c.Pending() == 1 })
	cancel()

	if err := <-second; !errors.Is(err, context.Canceled) {
		t.Errorf("queued switch error = %v, want context.Canceled", err)
	}
	if c.Pending() != 0 {
		t.Error("cancelled switch still queued")
	}

	close(block)
	if err := <-first; err != nil {
		t.Fatal(err)
	}
	if c.CurrentViewMode() != view.ModeUML {
		t.Errorf("mode = %s", c.CurrentViewMode())
	}

	// The slot is free again.
	if err := c.SwitchViewMode(context.Background(), view.ModeComponent); err != nil {
		t.Errorf("switch after cancellation: %v", err)
	}
}

func TestTransitionFadesCanvas(t *testing.T) {
	store := &fakeStore{d: wasmDiagram(t)}
	canvas := &fakeCanvas{}
	r := &fakeRenderer{canvas: canvas}
	c := New(store, r, WithTransition(5*time.Millisecond, 5))
	c.RegisterTransformer(diagram.TypeWasmComponent, transform.NewWasmTransformer(nil))

	if err := c.SwitchViewMode(context.Background(), view.ModeUML); err != nil {
		t.Fatal(err)
	}

	canvas.mu.Lock()
	ops := append([]float64(nil), canvas.opacities...)
	canvas.mu.Unlock()
	if len(ops) < 10 {
		t.Fatalf("opacity steps = %v", ops)
	}
	if ops[4] != 0 {
		t.Errorf("fade-out should end fully transparent: %v", ops)
	}
	if ops[len(ops)-1] != 1 {
		t.Errorf("canvas left at opacity %v", ops[len(ops)-1])
	}
	if r.renders != 1 {
		t.Errorf("renders = %d, want 1", r.renders)
	}
}

func TestOnDiagramChangedAbsent(t *testing.T) {
	c, _, r := setup(t)
	ctx := context.Background()
	c.SwitchViewMode(ctx, view.ModeUML)
	var log listenerLog
	c.AddViewModeListener(log.listen)

	if err := c.OnDiagramChanged(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if c.CurrentViewMode() != view.ModeComponent {
		t.Errorf("mode = %s", c.CurrentViewMode())
	}
	if d, _, _ := r.snapshot(); d != nil {
		t.Error("renderer still shows a diagram")
	}
	if got := log.get(); len(got) != 1 || got[0] != (recorded{view.ModeComponent, view.ModeUML}) {
		t.Errorf("listener calls = %v", got)
	}
}

func TestOnDiagramChangedIncompatibleType(t *testing.T) {
	c, store, r := setup(t)
	ctx := context.Background()
	c.SwitchViewMode(ctx, view.ModeUML)
	var log listenerLog
	c.AddViewModeListener(log.listen)

	flow := diagram.New("flow", diagram.TypeWorkflow)
	flow.Add(&diagram.Node{ID: "s1", Type: "step"})
	store.set(flow)
	if err := c.OnDiagramChanged(ctx, flow); err != nil {
		t.Fatal(err)
	}

	if c.CurrentViewMode() != view.ModeComponent {
		t.Errorf("mode = %s, want first compatible", c.CurrentViewMode())
	}
	d, _, _ := r.snapshot()
	if d == nil || d.ID != "flow" {
		t.Errorf("renderer diagram = %v", d)
	}
	if got := log.get(); len(got) != 1 || got[0].newMode != view.ModeComponent {
		t.Errorf("listener calls = %v", got)
	}
	if modes := c.AvailableViewModes(ctx); len(modes) != 1 {
		t.Errorf("available modes = %d", len(modes))
	}
}

func TestOnDiagramChangedRefreshesProjection(t *testing.T) {
	c, store, r := setup(t)
	ctx := context.Background()
	c.SwitchViewMode(ctx, view.ModeUML)
	var log listenerLog
	c.AddViewModeListener(log.listen)

	updated := wasmDiagram(t)
	updated.Add(&diagram.Node{ID: "C", Type: diagram.NodeWasmComponent, Label: "C", Bounds: diagram.Bounds{Y: 900}})
	store.set(updated)
	if err := c.OnDiagramChanged(ctx, updated); err != nil {
		t.Fatal(err)
	}

	if c.CurrentViewMode() != view.ModeUML {
		t.Errorf("mode = %s", c.CurrentViewMode())
	}
	d, _, _ := r.snapshot()
	if n := len(d.NodesOfType(diagram.NodeUMLComponent)); n != 3 {
		t.Errorf("refreshed projection has %d components, want 3", n)
	}
	if len(log.get()) != 0 {
		t.Error("refresh notified listeners")
	}
}

func TestDiagramChangeWaitsForQueuedSwitches(t *testing.T) {
	c, store, r := setup(t)
	var log listenerLog
	c.AddViewModeListener(log.listen)
	block := make(chan struct{})
	stub := &stubTransformer{result: stubResult(), block: block}
	c.RegisterTransformer(diagram.TypeWasmComponent, stub)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- c.SwitchViewMode(ctx, view.ModeWitInterface) }()
	waitFor(t, func() bool { return stub.count() == 1 })

	second := make(chan error, 1)
	go func() { second <- c.SwitchViewMode(ctx, view.ModeWitDependencies) }()
	waitFor(t, func() bool { return c.Pending() == 1 })

	updated := wasmDiagram(t)
	updated.Add(&diagram.Node{ID: "C", Type: diagram.NodeWasmComponent, Label: "C"})
	store.set(updated)
	changed := make(chan error, 1)
	go func() { changed <- c.OnDiagramChanged(ctx, updated) }()
	waitFor(t, func() bool { return c.Pending() == 2 })

	close(block)
	for name, ch := range map[string]chan error{"first": first, "second": second, "changed": changed} {
		if err := <-ch; err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	if c.CurrentViewMode() != view.ModeWitDependencies {
		t.Errorf("final mode = %s, want the last requested %s", c.CurrentViewMode(), view.ModeWitDependencies)
	}
	if _, mode, _ := r.snapshot(); mode != view.ModeWitDependencies {
		t.Errorf("renderer mode = %s", mode)
	}
	if stub.count() != 3 {
		t.Errorf("transforms = %d, want 3 (two switches and one refresh)", stub.count())
	}
	want := []recorded{
		{view.ModeWitInterface, view.ModeComponent},
		{view.ModeWitDependencies, view.ModeWitInterface},
	}
	got := log.get()
	if len(got) != len(want) {
		t.Fatalf("listener calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("listener call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestListenersSeeChangesInOrder(t *testing.T) {
	c, _, _ := setup(t)
	var log listenerLog
	c.AddViewModeListener(log.listen)
	ctx := context.Background()

	modes := []view.Mode{view.ModeUML, view.ModeWitInterface, view.ModeWitDependencies, view.ModeComponent}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(m view.Mode) {
			defer wg.Done()
			if err := c.SwitchViewMode(ctx, m); err != nil {
				t.Errorf("switch to %s: %v", m, err)
			}
		}(modes[i%len(modes)])
	}
	wg.Wait()

	calls := log.get()
	if len(calls) == 0 {
		t.Fatal("no listener calls")
	}
	prev := view.ModeComponent
	for i, call := range calls {
		if call.previous != prev {
			t.Fatalf("call %d = %v, previous should be %s: %v", i, call, prev, calls)
		}
		prev = call.newMode
	}
	if prev != c.CurrentViewMode() {
		t.Errorf("listeners last told %s, coordinator is in %s", prev, c.CurrentViewMode())
	}
}

func TestRendererMayReadCoordinator(t *testing.T) {
	store := &fakeStore{d: wasmDiagram(t)}
	r := &fakeRenderer{}
	c := New(store, r, WithTransition(0, 0))
	c.RegisterTransformer(diagram.TypeWasmComponent, transform.NewWasmTransformer(nil))
	var seen []State
	r.onSet = func() {
		seen = append(seen, c.State())
		c.CurrentViewMode()
	}

	done := make(chan error, 1)
	go func() { done <- c.SwitchViewMode(context.Background(), view.ModeUML) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("renderer callback deadlocked")
	}
	if len(seen) != 1 || seen[0].Target != view.ModeUML {
		t.Errorf("renderer saw states %v", seen)
	}
}

func TestRegisterTransformer(t *testing.T) {
	c, _, _ := setup(t)
	wantCode(t, c.RegisterTransformer("flowchart", transform.NewWasmTransformer(nil)), werrors.ErrCodeInvalidDiagramType)
	wantCode(t, c.RegisterTransformer(diagram.TypeWorkflow, nil), werrors.ErrCodeInvalidInput)
}

func TestAvailableAndCompatible(t *testing.T) {
	c, store, _ := setup(t)
	ctx := context.Background()

	if n := len(c.AvailableViewModes(ctx)); n != 4 {
		t.Errorf("available = %d, want 4", n)
	}
	if n := len(c.AvailableViewModesFor(diagram.TypeWorkflow)); n != 1 {
		t.Errorf("available for workflow = %d, want 1", n)
	}
	if !c.IsViewModeCompatible(ctx, view.ModeWitDependencies) {
		t.Error("wit-dependencies should be compatible")
	}
	if c.IsViewModeCompatible(ctx, "sequence") {
		t.Error("unknown mode reported compatible")
	}

	store.set(diagram.New("f", diagram.TypeWorkflow))
	if c.IsViewModeCompatible(ctx, view.ModeUML) {
		t.Error("uml reported compatible with a workflow diagram")
	}
	if !c.IsViewModeCompatible(ctx, view.ModeComponent) {
		t.Error("component should support every type")
	}

	fresh := New(&fakeStore{}, &fakeRenderer{})
	if modes := fresh.AvailableViewModes(ctx); len(modes) != 0 {
		t.Errorf("no diagram: available = %v", modes)
	}
}

func TestStateString(t *testing.T) {
	if s := (State{}).String(); s != "idle" {
		t.Errorf("idle = %q", s)
	}
	if s := (State{Phase: Transitioning, Target: view.ModeUML}).String(); s != "transitioning(uml)" {
		t.Errorf("transitioning = %q", s)
	}
}
