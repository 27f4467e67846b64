package fakedb

import "github.com/myurch/mock-rel/internal/ir"

// AddAllModels builds an ADD_ALL_MODELS action carrying the facade's schema.
func (d *DB) AddAllModels(modelName string, dataList []ir.Row, idAutomatic bool) ir.Action {
	return ir.AddAllModels(d.schema, modelName, dataList, idAutomatic)
}

// AddModel builds an ADD_MODEL action carrying the facade's schema.
func (d *DB) AddModel(modelName string, data ir.Row) ir.Action {
	return ir.AddModel(d.schema, modelName, data)
}

// EditModel builds an EDIT_MODEL action carrying the facade's schema.
func (d *DB) EditModel(modelName string, id ir.IRValue, data ir.Row) ir.Action {
	return ir.EditModel(d.schema, modelName, id, data)
}

// DeleteModel builds a DELETE_MODEL action carrying the facade's schema.
func (d *DB) DeleteModel(modelName string, id ir.IRValue) ir.Action {
	return ir.DeleteModel(d.schema, modelName, id)
}
