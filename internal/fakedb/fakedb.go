// Package fakedb is the store facade: it owns a schema and a private
// normalized state for static fixtures, and resolves rows from either that
// private state or a host state container's slice.
//
// The private state is a mutable accumulator filled by AddTable. Host state
// is never written to here; it changes only through the reducer.
package fakedb

import (
	"log/slog"

	"github.com/myurch/mock-rel/internal/compiler"
	"github.com/myurch/mock-rel/internal/engine"
	"github.com/myurch/mock-rel/internal/ir"
	"github.com/myurch/mock-rel/internal/resolve"
	"github.com/myurch/mock-rel/internal/store"
)

// DefaultSliceName is the host state key the normalized state lives under.
const DefaultSliceName = "fakeDBReducer"

// HostState is the host container's root state: slice name to state.
type HostState map[string]ir.State

// DB is the store facade. It is not safe for concurrent use: AddTable writes
// the private state that Get reads.
type DB struct {
	schema    ir.Schema
	db        ir.State
	resolver  *resolve.Resolver
	sliceName string
	depth     int
	logger    *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithDefaultDepth sets the traversal depth used when none is given.
// Non-positive values are ignored.
func WithDefaultDepth(depth int) Option {
	return func(d *DB) {
		if depth > 0 {
			d.depth = depth
		}
	}
}

// WithSliceName sets the host state key holding the normalized state.
func WithSliceName(name string) Option {
	return func(d *DB) {
		if name != "" {
			d.sliceName = name
		}
	}
}

// WithLogger sets the logger for table loads and the reducer middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DB) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a facade for schema. The schema must pass
// compiler.CheckIntegrity.
func New(schema ir.Schema, opts ...Option) (*DB, error) {
	if err := compiler.CheckIntegrity(schema); err != nil {
		return nil, err
	}

	d := &DB{
		schema:    schema,
		db:        ir.State{},
		sliceName: DefaultSliceName,
		depth:     resolve.DefaultMaxDepth,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.resolver = resolve.New(schema, resolve.WithMaxDepth(d.depth))
	return d, nil
}

// Schema returns the facade's schema.
func (d *DB) Schema() ir.Schema {
	return d.schema
}

// DefaultDepth returns the traversal depth used by Get and the host
// resolvers.
func (d *DB) DefaultDepth() int {
	return d.depth
}

// SliceName returns the host state key the facade reads.
func (d *DB) SliceName() string {
	return d.sliceName
}

// State returns the private state. Callers must not modify it.
func (d *DB) State() ir.State {
	return d.db
}

// AddTable bulk-loads dataList as the table for modelName, replacing any
// table loaded before. idAutomatic defaults to true; automatic ids start at
// 0 regardless of earlier loads.
//
// Reverse fields in the records stamp back-references into rows already in
// the private state. On error nothing is changed.
func (d *DB) AddTable(modelName string, dataList []ir.Row, idAutomatic ...bool) error {
	auto := true
	if len(idAutomatic) > 0 {
		auto = idAutomatic[0]
	}

	table, ids, err := store.BuildTable(nil, modelName, dataList, auto)
	if err != nil {
		return err
	}

	next := d.db
	for i, rec := range dataList {
		next, err = store.ApplyBackrefs(d.schema, modelName, next, rec, ids[i])
		if err != nil {
			return err
		}
	}

	for key, row := range table {
		table[key] = store.StripReverse(d.schema, modelName, row)
	}

	next = next.Clone()
	next[modelName] = table
	d.db = next

	d.logger.Debug("table loaded",
		"model", modelName,
		"rows", len(table),
		"id_automatic", auto)
	return nil
}

// Get resolves modelName[id] against the private state at the default depth.
func (d *DB) Get(modelName string, id ir.IRValue) any {
	return d.resolver.Resolve(d.db, modelName, id)
}

// GetDepth resolves modelName[id] against state, or the private state when
// state is nil, with at most depth relation hops.
func (d *DB) GetDepth(modelName string, id ir.IRValue, depth int, state ir.State) any {
	if state == nil {
		state = d.db
	}
	return d.resolver.Row(state, modelName, id, depth)
}

// SelectDB returns the normalized state from host, or an empty state.
func (d *DB) SelectDB(host HostState) ir.State {
	if state, ok := host[d.sliceName]; ok && state != nil {
		return state
	}
	return ir.State{}
}

// SelectModel returns the raw row modelName[id] from host, or an empty row.
func (d *DB) SelectModel(host HostState, modelName string, id ir.IRValue) ir.Row {
	key, err := ir.IDKey(id)
	if err != nil {
		return ir.Row{}
	}
	if row := d.SelectDB(host).Row(modelName, key); row != nil {
		return row
	}
	return ir.Row{}
}

// SelectAllModels returns the raw table for modelName from host, or an
// empty table.
func (d *DB) SelectAllModels(host HostState, modelName string) ir.Table {
	if table := d.SelectDB(host).Table(modelName); table != nil {
		return table
	}
	return ir.Table{}
}

// ResolveModel resolves modelName[id] from host at the default depth.
func (d *DB) ResolveModel(host HostState, modelName string, id ir.IRValue) any {
	return d.resolver.Resolve(d.SelectDB(host), modelName, id)
}

// ResolveAllModels resolves every row of modelName in host. Table keys are
// coerced back to ids with ir.ParseKey and visited in ascending order.
func (d *DB) ResolveAllModels(host HostState, modelName string) []any {
	return d.resolver.All(d.SelectDB(host), modelName)
}

// Reducer returns engine.Reduce wrapped in the facade's logger.
func (d *DB) Reducer() engine.ReduceFunc {
	return engine.Logged(d.logger, engine.Reduce)
}

// Dispatch runs action through the reducer against host's slice and returns
// a new host state with the slice replaced. host itself is not modified.
func (d *DB) Dispatch(host HostState, action ir.Action) (HostState, error) {
	state, err := d.Reducer()(d.SelectDB(host), action)
	if err != nil {
		return host, err
	}

	out := make(HostState, len(host)+1)
	for k, v := range host {
		out[k] = v
	}
	out[d.sliceName] = state
	return out, nil
}
