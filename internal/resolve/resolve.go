// Package resolve turns normalized state into nested object graphs.
//
// Foreign fields are replaced by the related row and Reverse fields by the
// list of rows whose back-reference points at the current row, recursively,
// up to a maximum traversal depth. Every Foreign or Reverse descent costs one
// level; when the budget is spent the relation is omitted from the result
// entirely, not set to nil.
//
// Resolution never fails. Missing rows, missing ids and unknown models
// resolve to nil or to objects with absent fields.
package resolve

import (
	"github.com/myurch/mock-rel/internal/ir"
)

// DefaultMaxDepth is the traversal depth used when none is configured.
const DefaultMaxDepth = 5

// Object is a resolved row: field name to plain Go value (see ir.ToNative),
// nested Object or constructed value for Foreign fields, and []any for
// Reverse fields.
type Object = map[string]any

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth sets the depth Resolve uses. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// Resolver resolves rows against a fixed schema. It holds no state of its
// own and is safe for concurrent use as long as the states passed in are not
// being written to.
type Resolver struct {
	schema   ir.Schema
	maxDepth int
}

// New creates a Resolver for schema.
func New(schema ir.Schema, opts ...Option) *Resolver {
	r := &Resolver{
		schema:   schema,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDepth returns the default traversal depth.
func (r *Resolver) MaxDepth() int {
	return r.maxDepth
}

// Schema returns the schema the resolver was built with.
func (r *Resolver) Schema() ir.Schema {
	return r.schema
}

// Resolve resolves modelName[id] at the default depth.
func (r *Resolver) Resolve(state ir.State, modelName string, id ir.IRValue) any {
	return r.Row(state, modelName, id, r.maxDepth)
}

// Row resolves modelName[id] with at most maxDepth relation hops.
//
// It returns nil for a nil or null id and for a model the schema does not
// declare. A row missing from the table still resolves: every field is
// simply absent. When the model has a Construct hook its result is returned
// instead of the Object.
func (r *Resolver) Row(state ir.State, modelName string, id ir.IRValue, maxDepth int) any {
	if isNullID(id) {
		return nil
	}
	model := r.schema.Model(modelName)
	if model == nil {
		return nil
	}

	var raw ir.Row
	if key, err := ir.IDKey(id); err == nil {
		raw = state.Row(modelName, key)
	}

	obj := make(Object, len(model.Fields))
	for _, field := range model.Fields {
		switch field.Kind {
		case ir.Plain:
			if v, ok := raw[field.Name]; ok {
				obj[field.Name] = ir.ToNative(v)
			}
		case ir.Foreign:
			if maxDepth <= 0 {
				continue
			}
			obj[field.Name] = r.Row(state, field.ModelName, raw[field.Name], maxDepth-1)
		case ir.Reverse:
			if maxDepth <= 0 {
				continue
			}
			obj[field.Name] = r.Backrefs(state, field.ModelName, field.Backref, id, maxDepth-1)
		}
	}

	if model.Construct != nil {
		return model.Construct(obj)
	}
	return obj
}

// Backrefs resolves every row of relatedModel whose backrefField equals
// ownerID, at maxDepth (callers have already paid for the hop).
//
// Rows are scanned in table key order (integer keys ascending, then the
// rest); callers should not depend on it. The result is never nil.
func (r *Resolver) Backrefs(state ir.State, relatedModel, backrefField string, ownerID ir.IRValue, maxDepth int) []any {
	out := []any{}
	table := state.Table(relatedModel)
	for _, key := range table.Keys() {
		row := table[key]
		if !ir.Equal(row[backrefField], ownerID) {
			continue
		}
		id, ok := row[ir.IDField]
		if !ok {
			id = ir.ParseKey(key)
		}
		out = append(out, r.Row(state, relatedModel, id, maxDepth))
	}
	return out
}

// All resolves every row of modelName in key order at the default depth.
func (r *Resolver) All(state ir.State, modelName string) []any {
	table := state.Table(modelName)
	out := make([]any, 0, len(table))
	for _, key := range table.Keys() {
		out = append(out, r.Resolve(state, modelName, ir.ParseKey(key)))
	}
	return out
}

func isNullID(id ir.IRValue) bool {
	if id == nil {
		return true
	}
	_, isNull := id.(ir.IRNull)
	return isNull
}
