package store

import (
	"errors"
	"testing"

	"github.com/myurch/mock-rel/internal/ir"
)

func TestApplyBackrefs_StampsTargets(t *testing.T) {
	state := chapterState()
	data := ir.Row{"title": ir.IRString("Dune"), "chapters": ir.IRArray{ir.IRInt(1), ir.IRInt(2)}}

	out, err := ApplyBackrefs(librarySchema(), "Book", state, data, ir.IRInt(7))
	if err != nil {
		t.Fatalf("ApplyBackrefs() failed: %v", err)
	}

	for _, key := range []string{"1", "2"} {
		if got := out["Chapter"][key]["book"]; got != ir.IRInt(7) {
			t.Errorf("Chapter[%s].book = %v, want 7", key, got)
		}
		if _, ok := state["Chapter"][key]["book"]; ok {
			t.Errorf("input Chapter[%s] was mutated", key)
		}
	}
}

func TestApplyBackrefs_ScalarTarget(t *testing.T) {
	data := ir.Row{"chapters": ir.IRInt(2)}

	out, err := ApplyBackrefs(librarySchema(), "Book", chapterState(), data, ir.IRInt(0))
	if err != nil {
		t.Fatalf("ApplyBackrefs() failed: %v", err)
	}
	if got := out["Chapter"]["2"]["book"]; got != ir.IRInt(0) {
		t.Errorf("Chapter[2].book = %v, want 0", got)
	}
	if _, ok := out["Chapter"]["1"]["book"]; ok {
		t.Error("Chapter[1] should be untouched")
	}
}

func TestApplyBackrefs_MissingTargetLeavesStateUntouched(t *testing.T) {
	state := chapterState()
	before := mustHash(t, state)
	data := ir.Row{"chapters": ir.IRArray{ir.IRInt(1), ir.IRInt(99)}}

	out, err := ApplyBackrefs(librarySchema(), "Book", state, data, ir.IRInt(3))
	if err == nil {
		t.Fatal("ApplyBackrefs() succeeded, want BACKREF_TARGET_MISSING")
	}
	if !ir.IsBackrefTargetMissingError(err) {
		t.Fatalf("error = %v, want BACKREF_TARGET_MISSING", err)
	}

	var se *ir.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a *ir.StoreError", err)
	}
	if se.Model != "Book" || se.Field != "chapters" {
		t.Errorf("error names %s.%s, want Book.chapters", se.Model, se.Field)
	}

	if mustHash(t, out) != before || mustHash(t, state) != before {
		t.Error("state changed on failed back-reference application")
	}
	if _, ok := state["Chapter"]["1"]["book"]; ok {
		t.Error("chapter 1 was stamped before the missing target was found")
	}
}

func TestApplyBackrefs_NoOps(t *testing.T) {
	state := chapterState()
	data := ir.Row{"chapters": ir.IRArray{ir.IRInt(1)}}

	tests := []struct {
		name      string
		schema    ir.Schema
		modelName string
		data      ir.Row
	}{
		{"nil schema", nil, "Book", data},
		{"undeclared model", librarySchema(), "Magazine", data},
		{"no reverse fields in data", librarySchema(), "Book", ir.Row{"title": ir.IRString("x")}},
		{"null reverse value", librarySchema(), "Book", ir.Row{"chapters": ir.IRNull{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyBackrefs(tt.schema, tt.modelName, state, tt.data, ir.IRInt(1))
			if err != nil {
				t.Fatalf("ApplyBackrefs() failed: %v", err)
			}
			if mustHash(t, out) != mustHash(t, state) {
				t.Errorf("state changed: %v", out)
			}
		})
	}
}

func TestApplyBackrefs_SharesUntouchedTables(t *testing.T) {
	state := chapterState()
	state["Author"] = ir.Table{"0": {"id": ir.IRInt(0)}}

	out, err := ApplyBackrefs(librarySchema(), "Book", state, ir.Row{"chapters": ir.IRArray{ir.IRInt(1)}}, ir.IRInt(5))
	if err != nil {
		t.Fatalf("ApplyBackrefs() failed: %v", err)
	}

	out["Author"]["0"]["marker"] = ir.IRBool(true)
	if _, ok := state["Author"]["0"]["marker"]; !ok {
		t.Error("untouched table was copied, want it shared")
	}
}
