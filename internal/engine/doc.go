// Package engine implements the mutation pipeline: a pure reducer turning
// (state, action) into the next normalized state.
//
// PIPELINE:
//
// Every mutating action (ADD_ALL_MODELS, ADD_MODEL, EDIT_MODEL, DELETE_MODEL)
// runs the same steps:
//  1. The model's PreAction hook may rewrite the state and the action.
//  2. The model's Validation hook may reject the action. Rejection is not an
//     error: the state comes back unchanged.
//  3. compiler.CheckIntegrity checks the schema carried by the payload.
//  4. The action is dispatched to its handler, which uses the store
//     primitives (NextID, BuildTable, ApplyBackrefs).
//
// HYDRATE swaps in a whole state. Unknown action types are ignored.
//
// CRITICAL PATTERNS:
//
// Copy-on-write: the input state is never written to. Handlers copy the
// top-level map, the touched table and the touched rows; everything else is
// shared with the input.
//
// Atomic actions: when any step fails, Reduce returns the input state
// together with the error, so a failed action has no partial effect.
//
// Deterministic ids: bulk loads assign ids in input order, and each record's
// back-references see every earlier record of the batch already installed.
package engine
