// Package server exposes a view mode coordinator over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness
//	GET  /api/views         view modes with availability for the current diagram
//	GET  /api/view          the installed projection (?format=json|dot|svg|mermaid)
//	PUT  /api/view/{mode}   switch the active view mode
//	GET  /api/diagram       the canonical diagram
//	PUT  /api/diagram       replace the canonical diagram
//	GET  /api/events        websocket stream of view mode changes
//
// Errors are JSON objects with the coded error's code and message.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/render"
	"github.com/matzehuels/witview/pkg/render/mermaid"
	"github.com/matzehuels/witview/pkg/render/nodelink"
	"github.com/matzehuels/witview/pkg/store"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// maxDiagramBytes bounds PUT /api/diagram bodies.
const maxDiagramBytes = 8 << 20

// Server serves one coordinator.
type Server struct {
	coord    *viewmode.Coordinator
	store    store.Store
	recorder *render.Recorder
	logger   *log.Logger
	hub      *hub
	listener viewmode.ListenerID
	unfollow func()
}

// New creates a server. recorder must be the renderer the coordinator was
// built with; it is read to serve the installed projection. When s publishes
// changes the coordinator follows them. A nil logger discards output.
func New(coord *viewmode.Coordinator, s store.Store, recorder *render.Recorder, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	srv := &Server{
		coord:    coord,
		store:    s,
		recorder: recorder,
		logger:   logger,
		hub:      newHub(),
	}
	srv.listener = coord.AddViewModeListener(func(newMode, previous view.Mode) {
		srv.hub.broadcast(Event{Type: EventViewChanged, Mode: newMode, Previous: previous})
	})
	if sub, ok := s.(store.Subscriber); ok {
		srv.unfollow = sub.Subscribe(func(ctx context.Context, d *diagram.Model) {
			if err := coord.OnDiagramChanged(ctx, d); err != nil {
				logger.Warn("diagram change not applied", "error", err)
			}
		})
	}
	return srv
}

// Close unregisters the server from the coordinator and disconnects every
// event subscriber.
func (s *Server) Close() {
	s.coord.RemoveViewModeListener(s.listener)
	if s.unfollow != nil {
		s.unfollow()
	}
	s.hub.close()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(hooksMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/views", s.handleViews)
		r.Get("/view", s.handleView)
		r.Put("/view/{mode}", s.handleSwitch)
		r.Get("/diagram", s.handleGetDiagram)
		r.Put("/diagram", s.handlePutDiagram)
		r.Get("/events", s.handleEvents)
	})
	return r
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.hub.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// hooksMiddleware reports requests to observability.HTTP().
func hooksMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// =============================================================================
// Views
// =============================================================================

// ModeInfo describes a view mode for clients.
type ModeInfo struct {
	view.ViewMode
	Available bool `json:"available"`
	Active    bool `json:"active"`
}

// ViewsResponse is the body of GET /api/views.
type ViewsResponse struct {
	Current view.Mode  `json:"current"`
	State   string     `json:"state"`
	Modes   []ModeInfo `json:"modes"`
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	current := s.coord.CurrentViewMode()
	resp := ViewsResponse{Current: current, State: s.coord.State().String()}
	for _, m := range view.Modes() {
		resp.Modes = append(resp.Modes, ModeInfo{
			ViewMode:  m,
			Available: s.coord.IsViewModeCompatible(r.Context(), m.ID),
			Active:    m.ID == current,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ViewResponse is the JSON body of GET /api/view and PUT /api/view/{mode}.
type ViewResponse struct {
	Mode    view.Mode                `json:"mode"`
	Hints   transform.RenderingHints `json:"renderingHints"`
	Diagram *diagram.Model           `json:"diagram"`
}

var encoders = map[string]struct {
	contentType string
	encode      render.Encoder
}{
	render.FormatDOT:     {"text/vnd.graphviz; charset=utf-8", nodelink.Encode},
	render.FormatSVG:     {"image/svg+xml", nodelink.EncodeSVG},
	render.FormatMermaid: {"text/plain; charset=utf-8", mermaid.Encode},
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	d := s.recorder.Diagram()
	if d == nil {
		writeError(w, errors.New(errors.ErrCodeNoDiagram, "no diagram installed"))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == render.FormatJSON {
		writeJSON(w, http.StatusOK, ViewResponse{Mode: s.recorder.Mode(), Hints: s.recorder.Hints(), Diagram: d})
		return
	}
	enc, ok := encoders[format]
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format))
		return
	}
	data, err := enc.encode(d, s.recorder.Hints())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", enc.contentType)
	w.Write(data)
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	mode, err := view.Parse(chi.URLParam(r, "mode"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.coord.SwitchViewMode(r.Context(), mode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewResponse{Mode: s.recorder.Mode(), Hints: s.recorder.Hints(), Diagram: s.recorder.Diagram()})
}

// =============================================================================
// Diagram
// =============================================================================

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if d == nil {
		writeError(w, errors.New(errors.ErrCodeNoDiagram, "no diagram stored"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePutDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := diagram.Read(http.MaxBytesReader(w, r.Body, maxDiagramBytes))
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "read diagram")
		}
		writeError(w, err)
		return
	}
	if err := diagram.Validate(d.Slice()); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Set(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	stored, err := s.store.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// =============================================================================
// Responses
// =============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoDiagram, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeIncompatibleView:
		return http.StatusConflict
	case errors.ErrCodeTransformFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNoTransformer, errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidViewMode, errors.ErrCodeInvalidDiagramType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, StatusFor(err), ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
