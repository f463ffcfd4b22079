package viewmode

import (
	"context"
	"time"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/view"
)

// SwitchViewMode makes target the active mode. It returns nil on success and
// a coded error otherwise; on error the active mode, the last result and the
// renderer are left as they were. Panics raised by the store, the transformer
// or the renderer are recovered and returned as errors.
//
// A call made while another switch is in progress waits for it. Waiting
// honours ctx; once the switch has started it runs to completion.
func (c *Coordinator) SwitchViewMode(ctx context.Context, target view.Mode) error {
	if err := c.acquire(ctx, target); err != nil {
		return err
	}
	defer c.deliver()
	defer c.release()
	return c.switchHeld(ctx, target)
}

// switchHeld runs a switch for a caller that holds the switch slot. A mode
// change is recorded for the listeners before the slot is released.
func (c *Coordinator) switchHeld(ctx context.Context, target view.Mode) (err error) {
	start := time.Now()
	previous := c.CurrentViewMode()
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "view switch to %s panicked: %v", target, r)
		}
		c.setState(State{Phase: Idle})

		observability.Switch().OnSwitch(ctx, string(previous), string(target), time.Since(start), err)
		if err != nil {
			c.logger.Warn("view switch failed", "from", previous, "to", target, "error", err)
		}
		if now := c.CurrentViewMode(); now != previous {
			c.announce(now, previous)
		}
	}()

	if target == previous {
		return nil
	}
	c.setState(State{Phase: Transitioning, Target: target})

	c.mu.Lock()
	restoring := target == view.Default && c.lastResult != nil
	c.mu.Unlock()

	if restoring {
		return c.restore(ctx, previous)
	}
	return c.project(ctx, previous, target)
}

// restore reinstalls the canonical diagram without running a transform.
func (c *Coordinator) restore(ctx context.Context, previous view.Mode) error {
	d, err := c.canonical(ctx)
	if err != nil {
		return err
	}
	c.install(d.Clone(), view.Default, nil, nil)
	c.render()
	c.logger.Info("restored canonical view", "diagram", d.ID, "from", previous)
	return nil
}

// project runs the transformer for target and installs its result.
func (c *Coordinator) project(ctx context.Context, previous, target view.Mode) error {
	d, err := c.canonical(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	tr, ok := c.transformers[d.Type]
	c.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeNoTransformer, "no transformer registered for diagram type %s", d.Type)
	}

	mode, ok := view.Lookup(target)
	if !ok {
		return errors.New(errors.ErrCodeIncompatibleView, "unknown view mode %q", target)
	}
	if !mode.Supports(d.Type) {
		return errors.New(errors.ErrCodeIncompatibleView, "view mode %s does not support diagram type %s", target, d.Type)
	}
	if !tr.CanTransform(previous, target, d) {
		return errors.New(errors.ErrCodeIncompatibleView, "transformer declined %s -> %s", previous, target)
	}

	derived, res, err := c.derive(ctx, tr, d, target)
	if err != nil {
		return err
	}

	hints, _ := res.Hints()
	c.install(derived, target, &res, &hints)
	c.transition(ctx)
	c.logger.Info("switched view mode",
		"diagram", d.ID,
		"from", previous,
		"to", target,
		"elements", len(res.Elements))
	return nil
}

// derive runs the transformer and builds the diagram handed to the renderer.
// The renderer gets its own copy of the elements.
func (c *Coordinator) derive(ctx context.Context, tr transform.Transformer, d *diagram.Model, target view.Mode) (*diagram.Model, transform.Result, error) {
	res := runTransform(ctx, tr, d, target)
	if !res.Success {
		return nil, res, errors.New(errors.ErrCodeTransformFailed, "%s", res.Error)
	}
	derived, err := d.WithElements(res.Clone().Elements)
	if err != nil {
		return nil, res, errors.Wrap(errors.ErrCodeTransformFailed, err, "install %s projection", target)
	}
	return derived, res, nil
}

// runTransform calls the transformer, converting a panic into a failed result.
func runTransform(ctx context.Context, tr transform.Transformer, d *diagram.Model, target view.Mode) (res transform.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = transform.Fail("transformer panicked: %v", r)
		}
	}()
	return transform.Run(ctx, tr, d, target)
}

func (c *Coordinator) canonical(ctx context.Context) (*diagram.Model, error) {
	d, err := c.store.Current(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNoDiagram, err, "load diagram")
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeNoDiagram, "no diagram loaded")
	}
	c.mu.Lock()
	c.diagramType = d.Type
	c.mu.Unlock()
	return d, nil
}

// install hands d to the renderer, then records mode and res as the active
// mode and last result. Callers hold the switch slot, which keeps renderer
// calls one at a time; c.mu is not held while the renderer runs.
func (c *Coordinator) install(d *diagram.Model, mode view.Mode, res *transform.Result, hints *transform.RenderingHints) {
	c.renderer.SetDiagram(d)
	c.renderer.SetViewMode(mode)
	if hr, ok := c.renderer.(HintsRenderer); ok {
		if hints == nil {
			hints = &transform.RenderingHints{Layout: transform.LayoutFree}
		}
		hr.SetRenderingHints(*hints)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = mode
	c.lastResult = res
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// render redraws the renderer. Failures are logged: the projection is
// already installed and stays authoritative.
func (c *Coordinator) render() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("render panicked", "panic", r)
		}
	}()
	if err := c.renderer.Render(); err != nil {
		c.logger.Warn("render failed", "error", err)
	}
}

// transition fades the canvas out, renders and fades it back in. When ctx
// ends the remaining delays are skipped but the canvas is always left opaque
// and rendered.
func (c *Coordinator) transition(ctx context.Context) {
	canvas := c.renderer.Canvas()
	if canvas == nil || c.fade <= 0 || c.fadeSteps <= 0 {
		c.render()
		return
	}

	step := c.fade / time.Duration(c.fadeSteps)
	for i := 1; i <= c.fadeSteps; i++ {
		canvas.SetOpacity(1 - float64(i)/float64(c.fadeSteps))
		if !sleep(ctx, step) {
			break
		}
	}
	c.render()
	for i := 1; i <= c.fadeSteps; i++ {
		if ctx.Err() != nil {
			break
		}
		canvas.SetOpacity(float64(i) / float64(c.fadeSteps))
		if i < c.fadeSteps && !sleep(ctx, step) {
			break
		}
	}
	canvas.SetOpacity(1)
}

// sleep waits for d and reports whether it ran to completion.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// =============================================================================
// Diagram Changes
// =============================================================================

// OnDiagramChanged tells the coordinator the store's diagram was replaced or
// removed. With no diagram the mode resets to the default. With a diagram
// whose type the active mode does not support, the first compatible mode is
// selected and listeners are notified. Otherwise the active projection is
// recomputed from the new diagram.
//
// The call takes its turn in the switch queue, so the mode it refreshes is
// the one left by every switch requested before it.
func (c *Coordinator) OnDiagramChanged(ctx context.Context, d *diagram.Model) error {
	if err := c.acquire(ctx, c.CurrentViewMode()); err != nil {
		return err
	}
	defer c.deliver()
	defer c.release()

	if d == nil {
		c.clear()
		return nil
	}

	c.mu.Lock()
	c.diagramType = d.Type
	current := c.current
	c.mu.Unlock()

	if view.Compatible(current, d.Type) {
		return c.refresh(ctx, d, current)
	}

	modes := view.Available(d.Type)
	if len(modes) == 0 {
		return errors.New(errors.ErrCodeIncompatibleView, "no view mode supports diagram type %s", d.Type)
	}
	first := modes[0].ID
	c.logger.Info("diagram type changed, selecting compatible view", "type", d.Type, "from", current, "to", first)
	if first == view.Default {
		c.reset(d)
		return nil
	}
	return c.switchHeld(ctx, first)
}

// clear empties the renderer and returns to the default mode.
func (c *Coordinator) clear() {
	previous := c.CurrentViewMode()
	c.install(nil, view.Default, nil, nil)
	c.mu.Lock()
	c.diagramType = ""
	c.mu.Unlock()
	c.render()
	if previous != view.Default {
		c.announce(view.Default, previous)
	}
}

// reset installs d in the default mode.
func (c *Coordinator) reset(d *diagram.Model) {
	previous := c.CurrentViewMode()
	c.install(d.Clone(), view.Default, nil, nil)
	c.render()
	if previous != view.Default {
		c.announce(view.Default, previous)
	}
}

// refresh re-projects the active mode from d. The mode does not change, so
// listeners are not notified unless the projection no longer applies and the
// coordinator falls back to the default mode.
func (c *Coordinator) refresh(ctx context.Context, d *diagram.Model, mode view.Mode) error {
	if mode == view.Default {
		c.reset(d)
		return nil
	}

	c.mu.Lock()
	tr, ok := c.transformers[d.Type]
	c.mu.Unlock()
	if !ok || !tr.CanTransform(mode, mode, d) {
		c.reset(d)
		return nil
	}

	derived, res, err := c.derive(ctx, tr, d, mode)
	if err != nil {
		return err
	}
	hints, _ := res.Hints()
	c.install(derived, mode, &res, &hints)
	c.render()
	c.logger.Debug("refreshed projection", "diagram", d.ID, "mode", mode)
	return nil
}
