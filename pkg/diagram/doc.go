// Package diagram defines the canonical diagram model shared by every view
// projection.
//
// A [Model] is the authoritative node/edge graph owned by a diagram store. View
// projections read it and produce fresh element slices; they never mutate it.
//
// # Elements
//
// [Element] is a closed tagged union with exactly two variants:
//
//   - [*Node]: a positioned box with a type tag, label, bounds and free-form properties
//   - [*Edge]: a directed connection between two element ids
//
// The element Type string ("wasm-component", "uml-component", "wit-function", …)
// is a rendering hint and a branching tag for strategies. The constants in this
// package are the complete vocabulary used by the built-in projections.
//
// # Diagram Types
//
// [Type] is a closed enum. Projection strategies are registered per Type, so the
// set of diagram kinds is fixed at compile time:
//
//	diagram.TypeWasmComponent      // "wasm-component"
//	diagram.TypeWorkflow           // "workflow"
//	diagram.TypeUMLClass           // "uml-class"
//	diagram.TypeSystemArchitecture // "system-architecture"
//
// # Serialization
//
// The canonical JSON form is:
//
//	{
//	  "id": "adas",
//	  "diagramType": "wasm-component",
//	  "revision": 3,
//	  "elements": {
//	    "n1": {"id": "n1", "type": "wasm-component", "label": "camera", "bounds": {...}},
//	    "e1": {"id": "e1", "type": "connection", "sourceId": "n1", "targetId": "n2"}
//	  }
//	}
//
// Decoding is the single place where historical field aliases are migrated
// (element_type, source/target, diagram_type, position+size, flattened
// properties). Nothing downstream of [Unmarshal] ever sees an alias.
package diagram
