package store

import (
	"github.com/myurch/mock-rel/internal/ir"
)

// BuildTable converts records into an id-keyed table for modelName.
//
// With idAutomatic, ids continue from NextID(state, modelName, nil, nil) in
// input order (a nil state starts at 0). Otherwise every record must already
// carry an id; duplicates collapse with the last record winning.
//
// Records are copied, never mutated. The returned ids follow input order.
func BuildTable(state ir.State, modelName string, records []ir.Row, idAutomatic bool) (ir.Table, []ir.IRValue, error) {
	if modelName == "" {
		return nil, nil, ir.NewInvalidModelNameError("BuildTable")
	}

	table := make(ir.Table, len(records))
	ids := make([]ir.IRValue, 0, len(records))

	if idAutomatic {
		start, _ := NextID(state, modelName, nil, nil).(ir.IRInt)
		for i, rec := range records {
			id := start + ir.IRInt(i)
			key, _ := ir.IDKey(id)

			row := rec.Clone()
			row[ir.IDField] = id
			table[key] = row
			ids = append(ids, id)
		}
		return table, ids, nil
	}

	for i, rec := range records {
		id, ok := rec[ir.IDField]
		if _, isNull := id.(ir.IRNull); !ok || isNull {
			return nil, nil, ir.NewMissingIDError(modelName, i)
		}
		key, err := ir.IDKey(id)
		if err != nil {
			return nil, nil, ir.NewInvalidIDError(modelName, err)
		}
		table[key] = rec.Clone()
		ids = append(ids, id)
	}
	return table, ids, nil
}

// StripReverse returns data without the model's Reverse fields. Reverse
// values only drive back-reference application and are never stored. data is
// returned as-is when there is nothing to strip.
func StripReverse(schema ir.Schema, modelName string, data ir.Row) ir.Row {
	model := schema.Model(modelName)
	if model == nil {
		return data
	}

	var out ir.Row
	for _, f := range model.Fields {
		if f.Kind != ir.Reverse {
			continue
		}
		if _, present := data[f.Name]; !present {
			continue
		}
		if out == nil {
			out = data.Clone()
		}
		delete(out, f.Name)
	}
	if out == nil {
		return data
	}
	return out
}
