// Package store holds the primitives the reducer builds normalized state
// from: id allocation, table construction and back-reference application.
//
// # Critical Patterns
//
// Logical ids:
//   - Sequence ids are max(integer id) + 1, starting at 0
//   - Models may opt into generated string ids through an IDResolver
//   - Table keys come from ir.IDKey, so integer 3 and string "3" share a key
//
// Copy-on-write:
//   - No function here writes to a state, table or row it was given
//   - Results share every table and row they did not change
//
// Fail before write:
//   - ApplyBackrefs checks every target row exists before touching any
//   - On error the input state is returned as-is
package store
