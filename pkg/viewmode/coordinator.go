package viewmode

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/view"
)

// =============================================================================
// Collaborators
// =============================================================================

// DiagramStore provides the canonical diagram. Current returns (nil, nil)
// when no diagram is loaded.
type DiagramStore interface {
	Current(ctx context.Context) (*diagram.Model, error)
}

// Renderer displays an element set. The coordinator calls it from one
// goroutine at a time without holding its own lock, so a renderer may read
// the coordinator's mode and state from inside these methods.
type Renderer interface {
	// SetDiagram replaces the displayed diagram. nil clears the display.
	SetDiagram(d *diagram.Model)
	SetViewMode(m view.Mode)
	Render() error
	// Canvas returns the drawing surface used for the fade transition, or nil
	// when the renderer has none.
	Canvas() Canvas
}

// Canvas is the part of a drawing surface the fade transition needs.
type Canvas interface {
	SetOpacity(alpha float64)
}

// HintsRenderer is implemented by renderers that honour rendering hints.
type HintsRenderer interface {
	SetRenderingHints(h transform.RenderingHints)
}

// =============================================================================
// State
// =============================================================================

// Phase is the coordinator's transition phase.
type Phase int

const (
	Idle Phase = iota
	Transitioning
)

func (p Phase) String() string {
	if p == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// State is the transition state. Target is set only while Transitioning.
type State struct {
	Phase  Phase
	Target view.Mode
}

func (s State) String() string {
	if s.Phase == Transitioning {
		return fmt.Sprintf("transitioning(%s)", s.Target)
	}
	return "idle"
}

// Listener is called after the active mode changed. Listeners see changes in
// the order they were installed. A listener may switch views; the change it
// causes is delivered after the current round of listeners returns.
type Listener func(newMode, previous view.Mode)

// ListenerID identifies a registered listener.
type ListenerID int

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// =============================================================================
// Coordinator
// =============================================================================

// Coordinator owns the active view mode of one diagram session. It is safe for
// concurrent use.
type Coordinator struct {
	store    DiagramStore
	renderer Renderer
	logger   *log.Logger

	fade      time.Duration
	fadeSteps int

	mu           sync.Mutex
	current      view.Mode
	lastResult   *transform.Result
	state        State
	diagramType  diagram.Type
	transformers map[diagram.Type]transform.Transformer
	listeners    []listenerEntry
	nextListener ListenerID

	// switch queue, guarded by mu
	busy  bool
	queue []chan struct{}

	// mode changes awaiting delivery, guarded by mu
	changes    []modeChange
	delivering bool
}

type modeChange struct {
	newMode, previous view.Mode
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTransition sets the length of each fade and the number of opacity
// steps it is split into. A zero duration or step count disables the fade.
func WithTransition(d time.Duration, steps int) Option {
	return func(c *Coordinator) {
		c.fade, c.fadeSteps = d, steps
	}
}

// Default transition.
const (
	DefaultFade      = 150 * time.Millisecond
	DefaultFadeSteps = 5
)

// New creates a coordinator in the default view mode with no transformers
// registered.
func New(store DiagramStore, renderer Renderer, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:        store,
		renderer:     renderer,
		logger:       log.NewWithOptions(io.Discard, log.Options{}),
		fade:         DefaultFade,
		fadeSteps:    DefaultFadeSteps,
		current:      view.Default,
		transformers: make(map[diagram.Type]transform.Transformer),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RegisterTransformer sets the transformer for diagrams of type t, replacing
// any previous one.
func (c *Coordinator) RegisterTransformer(t diagram.Type, tr transform.Transformer) error {
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidDiagramType, "unknown diagram type: %q", t)
	}
	if tr == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil transformer for %s", t)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transformers[t] = tr
	return nil
}

// CurrentViewMode returns the active mode.
func (c *Coordinator) CurrentViewMode() view.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// State returns the transition state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastResult returns a copy of the most recent derived projection. It is
// absent in the component mode.
func (c *Coordinator) LastResult() (transform.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastResult == nil {
		return transform.Result{}, false
	}
	return c.lastResult.Clone(), true
}

// AvailableViewModes returns the modes compatible with the store's current
// diagram, or with the last diagram seen when the store has none.
func (c *Coordinator) AvailableViewModes(ctx context.Context) []view.ViewMode {
	t, ok := c.activeType(ctx)
	if !ok {
		return nil
	}
	return view.Available(t)
}

// AvailableViewModesFor returns the modes compatible with diagrams of type t.
func (c *Coordinator) AvailableViewModesFor(t diagram.Type) []view.ViewMode {
	return view.Available(t)
}

// IsViewModeCompatible reports whether mode can be applied to the store's
// current diagram.
func (c *Coordinator) IsViewModeCompatible(ctx context.Context, mode view.Mode) bool {
	t, ok := c.activeType(ctx)
	if !ok || !view.Compatible(mode, t) {
		return false
	}
	if mode == view.Default {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, registered := c.transformers[t]
	return registered
}

func (c *Coordinator) activeType(ctx context.Context) (diagram.Type, bool) {
	if d, err := c.store.Current(ctx); err == nil && d != nil {
		return d.Type, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diagramType, c.diagramType != ""
}

// AddViewModeListener registers fn and returns its id.
func (c *Coordinator) AddViewModeListener(fn Listener) ListenerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextListener++
	c.listeners = append(c.listeners, listenerEntry{id: c.nextListener, fn: fn})
	return c.nextListener
}

// RemoveViewModeListener unregisters a listener. Unknown ids are ignored.
func (c *Coordinator) RemoveViewModeListener(id ListenerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = slices.DeleteFunc(c.listeners, func(e listenerEntry) bool { return e.id == id })
}

// announce records a mode change for the listeners. Callers hold the switch
// slot, so changes are recorded in the order they were installed.
func (c *Coordinator) announce(newMode, previous view.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, modeChange{newMode: newMode, previous: previous})
}

// deliver calls the listeners for every recorded change, oldest first. When
// another call is already delivering it returns at once and that call picks
// up the remaining changes.
func (c *Coordinator) deliver() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.changes) > 0 {
		ch := c.changes[0]
		c.changes = c.changes[1:]
		ls := slices.Clone(c.listeners)
		c.mu.Unlock()
		c.notify(ls, ch)
		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}

// notify calls each listener in ls. A panicking listener is logged and
// skipped.
func (c *Coordinator) notify(ls []listenerEntry, ch modeChange) {
	for _, l := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("view mode listener panicked", "listener", l.id, "panic", r)
				}
			}()
			l.fn(ch.newMode, ch.previous)
		}()
	}
}
