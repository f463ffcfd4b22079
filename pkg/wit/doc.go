// Package wit recovers WASM component and WIT interface data from canonical
// diagram nodes.
//
// Component nodes carry their interfaces as loosely structured properties
// written by different producers over time. [Extract] normalizes them into
// [Interface] values using a fixed priority:
//
//  1. separate importInterfaces / exportInterfaces arrays
//  2. a combined interfaces, imports, exports or wit_interfaces array
//  3. a numeric interface count, which synthesizes placeholder interfaces
//  4. two default interfaces, main-interface (export) and config-interface (import)
//
// Interfaces produced by steps 3 and 4 have Synthetic set so that renderers can
// mark them as placeholders.
//
// [Components] returns every wasm-component node of a diagram in a stable
// order (top to bottom, then left to right, then by id), which is the order
// all projections lay components out in.
package wit
