package engine

import (
	"fmt"

	"github.com/myurch/mock-rel/internal/compiler"
	"github.com/myurch/mock-rel/internal/ir"
	"github.com/myurch/mock-rel/internal/store"
)

// ReduceFunc is the reducer signature shared by Reduce and its middleware.
type ReduceFunc func(state ir.State, action ir.Action) (ir.State, error)

// Reduce applies one action to state and returns the next state.
//
// A nil state is treated as empty. On error the input state is returned
// unchanged alongside the error; no part of a failed action is applied.
func Reduce(state ir.State, action ir.Action) (ir.State, error) {
	if state == nil {
		state = ir.State{}
	}

	switch action.Type {
	case ir.ActionHydrate:
		if action.Payload.Hydration != nil {
			return action.Payload.Hydration, nil
		}
		return state, nil
	case ir.ActionAddAllModels, ir.ActionAddModel, ir.ActionEditModel, ir.ActionDeleteModel:
	default:
		return state, nil
	}

	next, action, ok := runHooks(state, action)
	if !ok {
		return next, nil
	}

	if err := compiler.CheckIntegrity(action.Payload.Schema); err != nil {
		return state, fmt.Errorf("reduce %s: %w", action.Type, err)
	}

	var err error
	switch action.Type {
	case ir.ActionAddAllModels:
		next, err = addAllModels(next, action.Payload)
	case ir.ActionAddModel:
		next, err = addModel(next, action.Payload)
	case ir.ActionEditModel:
		next, err = editModel(next, action.Payload)
	case ir.ActionDeleteModel:
		next, err = deleteModel(next, action.Payload)
	}
	if err != nil {
		return state, fmt.Errorf("reduce %s: %w", action.Type, err)
	}
	return next, nil
}

// runHooks runs the PreAction then the Validation hook of the payload's
// model. ok is false when validation rejected the action.
func runHooks(state ir.State, action ir.Action) (ir.State, ir.Action, bool) {
	if model := action.Payload.Schema.Model(action.Payload.ModelName); model != nil && model.PreAction != nil {
		state, action = model.PreAction(state, action)
	}

	// PreAction may have changed the model name, so look it up again.
	if model := action.Payload.Schema.Model(action.Payload.ModelName); model != nil && model.Validation != nil {
		if !model.Validation(state, action) {
			return state, action, false
		}
	}
	return state, action, true
}

// addAllModels installs each record of the batch in input order, merging it
// over any existing row with the same id, then applies the record's
// back-references. Record k therefore sees records 0..k already present.
func addAllModels(state ir.State, p ir.Payload) (ir.State, error) {
	table, ids, err := store.BuildTable(state, p.ModelName, p.DataList, p.AutomaticIDs())
	if err != nil {
		return nil, err
	}

	next := state.Clone()
	next[p.ModelName] = next[p.ModelName].Clone()
	for i, rec := range p.DataList {
		key, err := ir.IDKey(ids[i])
		if err != nil {
			return nil, ir.NewInvalidIDError(p.ModelName, err)
		}

		// Every table of p.ModelName reachable from next is a copy owned
		// by this call, including ones ApplyBackrefs produced.
		row := store.StripReverse(p.Schema, p.ModelName, table[key])
		next[p.ModelName][key] = mergeRows(next[p.ModelName][key], row)

		next, err = store.ApplyBackrefs(p.Schema, p.ModelName, next, rec, ids[i])
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

func addModel(state ir.State, p ir.Payload) (ir.State, error) {
	if p.ModelName == "" {
		return nil, ir.NewInvalidModelNameError(string(ir.ActionAddModel))
	}
	id := store.NextID(state, p.ModelName, p.Data, p.Schema)
	return upsert(state, p, id, false)
}

// editModel upserts at the payload id, keeping fields of the existing row
// that data does not mention. A missing id allocates a new one.
func editModel(state ir.State, p ir.Payload) (ir.State, error) {
	if p.ModelName == "" {
		return nil, ir.NewInvalidModelNameError(string(ir.ActionEditModel))
	}
	id := p.ID
	if id == nil {
		id = store.NextID(state, p.ModelName, p.Data, p.Schema)
	}
	return upsert(state, p, id, true)
}

func upsert(state ir.State, p ir.Payload, id ir.IRValue, merge bool) (ir.State, error) {
	key, err := ir.IDKey(id)
	if err != nil {
		return nil, ir.NewInvalidIDError(p.ModelName, err)
	}

	row := store.StripReverse(p.Schema, p.ModelName, p.Data).Clone()
	row[ir.IDField] = id
	if merge {
		row = mergeRows(state.Row(p.ModelName, key), row)
	}

	next := state.Clone()
	next[p.ModelName] = next[p.ModelName].Clone()
	next[p.ModelName][key] = row

	return store.ApplyBackrefs(p.Schema, p.ModelName, next, p.Data, id)
}

// deleteModel drops the row. Rows pointing at it keep their now dangling
// references. Deleting an absent row, or passing no id, changes nothing.
func deleteModel(state ir.State, p ir.Payload) (ir.State, error) {
	if p.ModelName == "" {
		return nil, ir.NewInvalidModelNameError(string(ir.ActionDeleteModel))
	}
	if p.ID == nil {
		return state, nil
	}
	key, err := ir.IDKey(p.ID)
	if err != nil {
		return nil, ir.NewInvalidIDError(p.ModelName, err)
	}
	if _, ok := state.Table(p.ModelName)[key]; !ok {
		return state, nil
	}

	next := state.Clone()
	next[p.ModelName] = next[p.ModelName].Clone()
	delete(next[p.ModelName], key)
	return next, nil
}
