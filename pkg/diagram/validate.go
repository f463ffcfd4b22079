package diagram

import (
	"github.com/matzehuels/witview/pkg/errors"
)

// Validate checks the structural invariants of a derived element set:
// every id is non-empty and unique, and every edge endpoint names a node in
// the same set.
func Validate(elems []Element) error {
	nodes := make(map[string]bool, len(elems))
	seen := make(map[string]bool, len(elems))

	for _, e := range elems {
		if e == nil {
			return errors.New(errors.ErrCodeInvalidInput, "nil element")
		}
		id := e.ElementID()
		if id == "" {
			return errors.New(errors.ErrCodeInvalidInput, "element of type %q has no id", e.ElementType())
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate element id: %s", id)
		}
		seen[id] = true
		if _, ok := e.(*Node); ok {
			nodes[id] = true
		}
	}

	for _, e := range elems {
		edge, ok := e.(*Edge)
		if !ok {
			continue
		}
		if !nodes[edge.SourceID] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s: source %s is not a node in the set", edge.ID, edge.SourceID)
		}
		if !nodes[edge.TargetID] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s: target %s is not a node in the set", edge.ID, edge.TargetID)
		}
	}
	return nil
}
