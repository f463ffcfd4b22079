// Package viewmode coordinates switching the active projection of a diagram.
//
// A [Coordinator] sits between a diagram store, which owns the canonical
// diagram, and a renderer, which displays whatever element set it is given.
// It tracks the active view mode, looks up the [transform.Transformer]
// registered for the diagram's type, installs derived projections into the
// renderer and notifies listeners.
//
// # Switching
//
// [Coordinator.SwitchViewMode] validates in a fixed order and fails with a
// coded error, leaving all state unchanged:
//
//   - NO_DIAGRAM: the store has no diagram
//   - NO_TRANSFORMER: nothing is registered for the diagram type
//   - INCOMPATIBLE_VIEW: unknown mode, wrong diagram type, or the transformer declined
//   - TRANSFORM_FAILED: the transformer reported a failure
//
// Switching to the mode already active is a no-op. Switching back to the
// component mode from a derived projection reinstalls the store's canonical
// diagram without running a transform.
//
// # Concurrency
//
// Switches are serialized through a FIFO queue: a switch issued while another
// is in its visual transition waits for it to finish. The renderer install and
// the coordinator's mode and last result are updated inside one critical
// section, so readers never observe one without the other. [Coordinator.State]
// reports whether a transition is in progress and toward which mode.
package viewmode
