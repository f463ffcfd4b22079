package transform

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/view"
)

// WasmTransformer serves every projection of wasm-component diagrams by
// dispatching to one Projection per view mode.
type WasmTransformer struct {
	projections map[view.Mode]Projection
	Logger      *log.Logger
}

// NewWasmTransformer creates a transformer with the component, UML, WIT
// interface and dependency projections registered. A nil logger discards
// output.
func NewWasmTransformer(logger *log.Logger) *WasmTransformer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	t := &WasmTransformer{
		projections: make(map[view.Mode]Projection),
		Logger:      logger,
	}
	t.Register(ComponentProjection{})
	t.Register(UMLProjection{})
	t.Register(WitProjection{})
	t.Register(DependencyProjection{})
	return t
}

// Register adds or replaces the projection for p.Mode().
func (t *WasmTransformer) Register(p Projection) {
	t.projections[p.Mode()] = p
}

// Modes returns the modes with a registered projection, in display order.
func (t *WasmTransformer) Modes() []view.Mode {
	var out []view.Mode
	for _, m := range view.Modes() {
		if _, ok := t.projections[m.ID]; ok {
			out = append(out, m.ID)
		}
	}
	return out
}

// CanTransform implements Transformer.
func (t *WasmTransformer) CanTransform(from, to view.Mode, d *diagram.Model) bool {
	if d == nil || d.Type != diagram.TypeWasmComponent {
		return false
	}
	if _, ok := t.projections[to]; !ok {
		return false
	}
	return view.Compatible(to, d.Type)
}

// Transform implements Transformer.
func (t *WasmTransformer) Transform(d *diagram.Model, target view.Mode) Result {
	return t.TransformContext(context.Background(), d, target)
}

// TransformContext implements ContextTransformer. A panic inside a projection
// is recovered and reported as a failed result.
func (t *WasmTransformer) TransformContext(ctx context.Context, d *diagram.Model, target view.Mode) (res Result) {
	if d == nil {
		return Fail("no diagram")
	}
	if d.Type != diagram.TypeWasmComponent {
		return Fail("diagram type %s is not %s", d.Type, diagram.TypeWasmComponent)
	}
	p, ok := t.projections[target]
	if !ok {
		return Fail("no projection for view mode %s", target)
	}

	hooks := observability.Transform()
	hooks.OnTransformStart(ctx, string(d.Type), string(target), d.Len())
	start := time.Now()

	defer func() {
		var err error
		if r := recover(); r != nil {
			res = Fail("projection %s panicked: %v", target, r)
		}
		if !res.Success {
			err = errors.New(errors.ErrCodeTransformFailed, "%s", res.Error)
		}
		hooks.OnTransformComplete(ctx, string(d.Type), string(target), len(res.Elements), time.Since(start), err)
		if err != nil {
			t.Logger.Warn("transform failed", "mode", target, "diagram", d.ID, "error", err)
		}
	}()

	elems, hints, err := p.Project(d)
	if err != nil {
		return Fail("%s projection: %v", target, err)
	}
	if err := diagram.Validate(elems); err != nil {
		return Fail("%s projection produced an invalid element set: %v", target, err)
	}

	t.Logger.Debug("projected diagram",
		"diagram", d.ID,
		"mode", target,
		"elements", len(elems),
		"duration", time.Since(start))
	return Succeed(target, slices.Clip(elems), hints)
}

var _ ContextTransformer = (*WasmTransformer)(nil)
