package store

import (
	"github.com/myurch/mock-rel/internal/ir"
)

// backrefWrite is one pending pointer write: state[model][key][field] = id.
type backrefWrite struct {
	model string
	key   string
	field string
}

// ApplyBackrefs stamps nextID into the back-reference field of every row
// listed by a Reverse field of data.
//
// It is a no-op when schema is nil or does not declare modelName. Every
// target is checked before anything is written: a missing target fails with
// ErrCodeBackrefTargetMissing and the input state is returned untouched.
// On success the result shares every table and row it did not write to.
func ApplyBackrefs(schema ir.Schema, modelName string, state ir.State, data ir.Row, nextID ir.IRValue) (ir.State, error) {
	model := schema.Model(modelName)
	if model == nil {
		return state, nil
	}

	var writes []backrefWrite
	for _, name := range data.SortedKeys() {
		field, ok := model.Field(name)
		if !ok || field.Kind != ir.Reverse {
			continue
		}

		for _, target := range targetIDs(data[name]) {
			key, err := ir.IDKey(target)
			if err != nil {
				return state, ir.NewInvalidIDError(modelName, err)
			}
			if state.Row(field.ModelName, key) == nil {
				return state, ir.NewBackrefTargetMissingError(modelName, name, field.ModelName, key)
			}
			writes = append(writes, backrefWrite{model: field.ModelName, key: key, field: field.Backref})
		}
	}

	if len(writes) == 0 {
		return state, nil
	}

	out := state.Clone()
	copied := make(map[string]bool)
	for _, w := range writes {
		if !copied[w.model] {
			out[w.model] = out[w.model].Clone()
			copied[w.model] = true
		}
		row := out[w.model][w.key].Clone()
		row[w.field] = nextID
		out[w.model][w.key] = row
	}
	return out, nil
}

// targetIDs normalizes a Reverse field value into a list of ids. A scalar is
// a one-element list; null lists nothing.
func targetIDs(v ir.IRValue) []ir.IRValue {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil
	case ir.IRArray:
		return val
	default:
		return []ir.IRValue{val}
	}
}
