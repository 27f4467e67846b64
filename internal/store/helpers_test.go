package store

import (
	"testing"

	"github.com/myurch/mock-rel/internal/ir"
)

// librarySchema is Author -< Book -< Chapter with reverse fields both ways.
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

// chapterState holds chapters 1 and 2, neither pointing at a book yet.
func chapterState() ir.State {
	return ir.State{
		"Chapter": ir.Table{
			"1": {"id": ir.IRInt(1), "title": ir.IRString("One")},
			"2": {"id": ir.IRInt(2), "title": ir.IRString("Two")},
		},
	}
}

func mustHash(t *testing.T, s ir.State) string {
	t.Helper()
	h, err := ir.StateHash(s)
	if err != nil {
		t.Fatalf("StateHash() failed: %v", err)
	}
	return h
}
