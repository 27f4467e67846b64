// Package snapshot exports normalized states to SQLite fixture files.
//
// A snapshot is keyed by its state hash (ir.StateHash), so writing the same
// state twice stores it once. Rows are stored as RFC 8785 canonical JSON,
// one SQL row per (model, key), which lets other tools query fixtures with
// plain SQL.
//
// The store is an export target only. The reducer never reads from it; use
// ReadSnapshot plus an ir.Hydrate action to bring a snapshot back into a
// running store.
//
// Snapshots are listed in write order: ORDER BY seq ASC, id COLLATE BINARY
// ASC.
package snapshot
