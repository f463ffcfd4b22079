package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// Encoder turns an installed diagram into output bytes.
type Encoder func(d *diagram.Model, hints transform.RenderingHints) ([]byte, error)

// JSON encodes the diagram in its canonical JSON form.
func JSON(d *diagram.Model, _ transform.RenderingHints) ([]byte, error) {
	return diagram.Marshal(d)
}

// Recorder is a headless renderer. It implements viewmode.Renderer,
// viewmode.Canvas and viewmode.HintsRenderer.
type Recorder struct {
	// Out receives the encoded diagram on every Render. Nil discards it.
	Out io.Writer
	// Encode defaults to JSON.
	Encode Encoder
	Logger *log.Logger

	mu      sync.Mutex
	d       *diagram.Model
	mode    view.Mode
	hints   transform.RenderingHints
	opacity float64
	fades   []float64
	frames  int
	last    []byte
}

var (
	_ viewmode.Renderer      = (*Recorder)(nil)
	_ viewmode.Canvas        = (*Recorder)(nil)
	_ viewmode.HintsRenderer = (*Recorder)(nil)
)

// NewRecorder creates a recorder writing to out with enc. A nil enc means JSON.
func NewRecorder(out io.Writer, enc Encoder) *Recorder {
	if enc == nil {
		enc = JSON
	}
	return &Recorder{
		Out:     out,
		Encode:  enc,
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
		mode:    view.Default,
		hints:   transform.RenderingHints{Layout: transform.LayoutFree},
		opacity: 1,
	}
}

// SetDiagram implements viewmode.Renderer. nil clears the display.
func (r *Recorder) SetDiagram(d *diagram.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.d = d
}

// SetViewMode implements viewmode.Renderer.
func (r *Recorder) SetViewMode(m view.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
}

// SetRenderingHints implements viewmode.HintsRenderer.
func (r *Recorder) SetRenderingHints(h transform.RenderingHints) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = h
}

// Canvas implements viewmode.Renderer.
func (r *Recorder) Canvas() viewmode.Canvas { return r }

// SetOpacity implements viewmode.Canvas.
func (r *Recorder) SetOpacity(a float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opacity = a
	r.fades = append(r.fades, a)
}

// Render encodes the installed diagram and writes it to Out. With no diagram
// installed nothing is written.
func (r *Recorder) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames++
	if r.d == nil {
		r.last = nil
		return nil
	}
	enc := r.Encode
	if enc == nil {
		enc = JSON
	}
	data, err := enc(r.d, r.hints)
	if err != nil {
		return fmt.Errorf("encode %s view: %w", r.mode, err)
	}
	r.last = data
	if r.Logger != nil {
		r.Logger.Debug("rendered", "mode", r.mode, "diagram", r.d.ID, "bytes", len(data))
	}
	if r.Out != nil {
		if _, err := r.Out.Write(data); err != nil {
			return fmt.Errorf("write %s view: %w", r.mode, err)
		}
	}
	return nil
}

// Diagram returns the installed diagram.
func (r *Recorder) Diagram() *diagram.Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.d
}

// Mode returns the installed view mode.
func (r *Recorder) Mode() view.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Hints returns the installed rendering hints.
func (r *Recorder) Hints() transform.RenderingHints {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hints
}

// Last returns the output of the most recent Render.
func (r *Recorder) Last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Frames returns how many times Render was called.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Opacity returns the current canvas opacity.
func (r *Recorder) Opacity() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opacity
}

// Fades returns every opacity set so far.
func (r *Recorder) Fades() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.fades...)
}
