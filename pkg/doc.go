// Package pkg provides the core libraries for witview.
//
// # Overview
//
// witview shows one logical diagram of WASM components through several view
// modes. The canonical diagram is the single source of truth; every other
// view is a derived projection computed on demand and discarded when the user
// returns to the component view. The pkg directory is organized into four
// areas:
//
//  1. Model - [diagram], [view] and [wit] describe diagrams, view modes and
//     WIT interface metadata
//  2. Projection - [transform] and [layout] derive the alternative views
//  3. Coordination - [viewmode] owns the active mode and the switch lifecycle
//  4. Infrastructure - [store], [cache], [render], [server], [config],
//     [observability] and [errors]
//
// # Architecture
//
// The data flow of a view switch:
//
//	store.Store (canonical diagram)
//	         ↓
//	    [viewmode] coordinator (validate, queue, fade)
//	         ↓
//	    [transform] strategy (project, cached by [cache])
//	         ↓
//	    renderer ([render.Recorder] → JSON, DOT, SVG, Mermaid)
//
// # Quick Start
//
//	d, _ := diagram.ReadFile("app.json")
//	st := store.NewMemory(d)
//	rec := render.NewRecorder(os.Stdout, mermaid.Encode)
//
//	coord := viewmode.New(st, rec)
//	coord.RegisterTransformer(diagram.TypeWasmComponent, transform.NewWasmTransformer(nil))
//	coord.OnDiagramChanged(ctx, d)
//
//	if err := coord.SwitchViewMode(ctx, view.ModeUML); err != nil {
//	    // the previous view is still installed
//	}
//	coord.SwitchViewMode(ctx, view.ModeComponent) // exact canonical restore
//
// # Main Packages
//
// [diagram] - The element model (nodes, edges, bounds, properties) and its
// tolerant JSON codec.
//
// [wit] - Reads exported and imported WIT interfaces from component
// properties.
//
// [transform] - One strategy per diagram type. [transform.WasmTransformer]
// dispatches to the UML, WIT interface and WIT dependency projections;
// [transform.Cached] memoizes their results.
//
// [viewmode] - The coordinator: availability, serialized switching, fade
// transitions, listeners and store-change refresh.
//
// [store] - Canonical diagram storage: memory, JSON file and MongoDB.
//
// [cache] - Projection cache backends: memory LRU, file, Redis and null.
//
// [render] - Headless renderer plus DOT/SVG ([render/nodelink]) and Mermaid
// ([render/mermaid]) encoders.
//
// [server] - HTTP API and websocket change events over one coordinator.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/viewmode/...   # Specific package
//	go test -run Example ./...   # Examples only
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/diagram
// [view]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/view
// [wit]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/wit
// [transform]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/layout
// [viewmode]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/viewmode
// [store]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/render/nodelink
// [render/mermaid]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/render/mermaid
// [server]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/errors
// [render.Recorder]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/render#Recorder
// [transform.WasmTransformer]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/transform#WasmTransformer
// [transform.Cached]: https://pkg.go.dev/github.com/matzehuels/witview/pkg/transform#Cached
package pkg
