package compiler

import (
	"slices"

	"github.com/myurch/mock-rel/internal/ir"
)

// CheckIntegrity is the structural sanity check every mutating operation
// runs before touching state. A nil schema is valid. Any model that is nil or
// has no Fields fails with ir.ErrCodeSchemaIntegrity.
//
// Models are checked in name order so the reported model is deterministic.
func CheckIntegrity(schema ir.Schema) error {
	if schema == nil {
		return nil
	}

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		model := schema[name]
		if model == nil || model.Fields == nil {
			return ir.NewSchemaIntegrityError(name)
		}
	}
	return nil
}
