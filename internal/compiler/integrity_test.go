package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myurch/mock-rel/internal/ir"
)

func TestCheckIntegrity(t *testing.T) {
	tests := []struct {
		name    string
		schema  ir.Schema
		wantErr bool
		model   string
	}{
		{name: "nil schema", schema: nil},
		{name: "empty schema", schema: ir.Schema{}},
		{name: "valid", schema: validSchema()},
		{name: "empty fields list", schema: ir.Schema{"Tag": {Fields: []ir.FieldDef{}}}},
		{name: "missing fields", schema: ir.Schema{"Tag": {}}, wantErr: true, model: "Tag"},
		{name: "nil model", schema: ir.Schema{"Tag": nil}, wantErr: true, model: "Tag"},
		{
			name:    "first broken model in name order",
			schema:  ir.Schema{"Zed": {}, "Alpha": {}, "Mid": {Fields: []ir.FieldDef{}}},
			wantErr: true,
			model:   "Alpha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIntegrity(tt.schema)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ir.IsSchemaIntegrityError(err))
			assert.Contains(t, err.Error(), "model="+tt.model)
			assert.Contains(t, err.Error(), `"fields"`)
		})
	}
}
