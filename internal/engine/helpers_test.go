package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/myurch/mock-rel/internal/ir"
)

// librarySchema is Author -< Book -< Chapter.
func librarySchema() ir.Schema {
	return ir.Schema{
		"Author": {Fields: []ir.FieldDef{
			ir.PlainField("id"),
			ir.PlainField("name"),
			ir.ReverseField("books", "Book", "author"),
		}},
		"Book": {Fields: []ir.FieldDef{
			ir.PlainField("id"),
			ir.PlainField("title"),
			ir.ForeignField("author", "Author"),
			ir.ReverseField("chapters", "Chapter", "book"),
		}},
		"Chapter": {Fields: []ir.FieldDef{
			ir.PlainField("id"),
			ir.PlainField("title"),
			ir.ForeignField("book", "Book"),
		}},
	}
}

func mustReduce(t *testing.T, state ir.State, action ir.Action) ir.State {
	t.Helper()
	next, err := Reduce(state, action)
	require.NoError(t, err)
	return next
}

func hashOf(t *testing.T, state ir.State) string {
	t.Helper()
	h, err := ir.StateHash(state)
	require.NoError(t, err)
	return h
}

func titles(n int) []ir.Row {
	rows := make([]ir.Row, n)
	for i := range rows {
		rows[i] = ir.Row{"title": ir.IRString(string(rune('A' + i)))}
	}
	return rows
}
