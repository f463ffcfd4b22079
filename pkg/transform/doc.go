// Package transform converts a canonical diagram into derived projections.
//
// # Protocol
//
// A [Transformer] handles every projection of one diagram type. It answers a
// cheap compatibility question ([Transformer.CanTransform]) and produces a
// [Result] ([Transformer.Transform]). Transform is pure and never panics: a
// strategy failure is reported as a Result with Success false.
//
// # Projections
//
// The wasm-component diagram type is served by [WasmTransformer], which
// dispatches to one [Projection] per view mode:
//
//   - [ComponentProjection]: identity pass, derived node types mapped back to wasm-component
//   - [UMLProjection]: a component box with import interfaces to its left and exports to its right
//   - [WitProjection]: package, interface and function/type tree with adaptive sizing
//   - [DependencyProjection]: exporters and importers grouped around each shared interface
//
// Derived ids come from an [IDAlloc] value seeded at 1 for every transform and
// threaded through the layout steps. Numbering is therefore stable for an
// unchanged diagram, and the relationship structure never depends on it.
//
// # Caching
//
// [Cached] decorates any Transformer with a [cache.Cache], keyed by a hash of
// the canonical diagram JSON and the target mode.
package transform
