package transform

import (
	"context"
	"fmt"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/view"
)

// Transformer produces every projection of one diagram type.
type Transformer interface {
	// CanTransform reports whether d can be projected from one mode into
	// another. It has no side effects.
	CanTransform(from, to view.Mode, d *diagram.Model) bool

	// Transform projects d into target. It never mutates d and never panics.
	Transform(d *diagram.Model, target view.Mode) Result
}

// ContextTransformer is implemented by transformers that accept a context for
// cache lookups and instrumentation. Callers holding a context should prefer it.
type ContextTransformer interface {
	Transformer
	TransformContext(ctx context.Context, d *diagram.Model, target view.Mode) Result
}

// Projection computes one view mode from a canonical diagram.
type Projection interface {
	Mode() view.Mode
	Project(d *diagram.Model) ([]diagram.Element, RenderingHints, error)
}

// Run calls TransformContext when tr supports it, and Transform otherwise.
func Run(ctx context.Context, tr Transformer, d *diagram.Model, target view.Mode) Result {
	if ct, ok := tr.(ContextTransformer); ok {
		return ct.TransformContext(ctx, d, target)
	}
	return tr.Transform(d, target)
}

// =============================================================================
// Result
// =============================================================================

// DataRenderingHints is the Result.Data key holding the RenderingHints.
const DataRenderingHints = "renderingHints"

// DataViewMode is the Result.Data key holding the target view.Mode.
const DataViewMode = "viewMode"

// Result is the outcome of one transform.
type Result struct {
	Success  bool              `json:"success"`
	Elements []diagram.Element `json:"transformedElements,omitempty"`
	Error    string            `json:"error,omitempty"`
	Data     map[string]any    `json:"additionalData,omitempty"`
}

// Succeed builds a successful result.
func Succeed(mode view.Mode, elems []diagram.Element, hints RenderingHints) Result {
	if elems == nil {
		elems = []diagram.Element{}
	}
	return Result{
		Success:  true,
		Elements: elems,
		Data: map[string]any{
			DataRenderingHints: hints,
			DataViewMode:       mode,
		},
	}
}

// Fail builds a failed result.
func Fail(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Hints returns the rendering hints carried by r.
func (r Result) Hints() (RenderingHints, bool) {
	h, ok := r.Data[DataRenderingHints].(RenderingHints)
	return h, ok
}

// Clone returns a copy of r whose elements can be handed out without aliasing.
func (r Result) Clone() Result {
	out := r
	if r.Elements != nil {
		out.Elements = make([]diagram.Element, len(r.Elements))
		for i, e := range r.Elements {
			out.Elements[i] = e.CloneElement()
		}
	}
	if r.Data != nil {
		out.Data = make(map[string]any, len(r.Data))
		for k, v := range r.Data {
			out.Data[k] = v
		}
	}
	return out
}

// RenderingHints tell a renderer how a projection is meant to be presented.
// They carry no structure.
type RenderingHints struct {
	Layout        string `json:"layout"`
	EdgeStyle     string `json:"edgeStyle,omitempty"`
	ShowFunctions bool   `json:"showFunctions,omitempty"`
	ShowTypes     bool   `json:"showTypes,omitempty"`
	Compact       bool   `json:"compact,omitempty"`
	// Synthetic is set when at least one interface was synthesized.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Layout names used in RenderingHints.
const (
	LayoutFree      = "free"
	LayoutUML       = "uml"
	LayoutTree      = "hierarchical"
	LayoutBipartite = "bipartite"
)

// Edge styles used in RenderingHints.
const (
	EdgeStraight   = "straight"
	EdgeOrthogonal = "orthogonal"
)
