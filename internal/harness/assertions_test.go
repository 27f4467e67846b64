package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myurch/mock-rel/internal/fakedb"
	"github.com/myurch/mock-rel/internal/ir"
)

func assertionSchema() ir.Schema {
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
		}},
	}
}

// newAssertionContext builds a facade with static authors and a host state
// holding one book by author 0.
func newAssertionContext(t *testing.T) *AssertionContext {
	t.Helper()
	db, err := fakedb.New(assertionSchema(), fakedb.WithDefaultDepth(2))
	require.NoError(t, err)
	require.NoError(t, db.AddTable("Author", []ir.Row{
		{"name": ir.IRString("Ann")},
		{"name": ir.IRString("Bo")},
	}))

	host := fakedb.HostState{db.SliceName(): ir.State{
		"Author": ir.Table{"0": {"id": ir.IRInt(0), "name": ir.IRString("Cy")}},
		"Book": ir.Table{
			"0": {"id": ir.IRInt(0), "title": ir.IRString("Dune"), "author": ir.IRInt(0)},
		},
	}}
	return &AssertionContext{DB: db, Host: host}
}

func TestEvaluateAssertions_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		pass      bool
	}{
		{
			name:      "store subset",
			assertion: Assertion{Type: AssertResolve, Model: "Book", ID: 0, Expect: map[string]any{"title": "Dune", "author": map[string]any{"name": "Cy"}}},
			pass:      true,
		},
		{
			name:      "static source",
			assertion: Assertion{Type: AssertResolve, Source: SourceStatic, Model: "Author", ID: 1, Expect: map[string]any{"name": "Bo"}},
			pass:      true,
		},
		{
			name:      "reverse list",
			assertion: Assertion{Type: AssertResolve, Model: "Author", ID: 0, Expect: map[string]any{"books": []any{map[string]any{"id": 0}}}},
			pass:      true,
		},
		{
			name:      "all rows",
			assertion: Assertion{Type: AssertResolve, Source: SourceStatic, Model: "Author", Expect: []any{map[string]any{"name": "Ann"}, map[string]any{"name": "Bo"}}},
			pass:      true,
		},
		{
			name:      "value mismatch",
			assertion: Assertion{Type: AssertResolve, Model: "Book", ID: 0, Expect: map[string]any{"title": "Emma"}},
		},
		{
			name:      "missing key",
			assertion: Assertion{Type: AssertResolve, Model: "Book", ID: 0, Expect: map[string]any{"isbn": "x"}},
		},
		{
			name:      "list length differs",
			assertion: Assertion{Type: AssertResolve, Model: "Author", ID: 0, Expect: map[string]any{"books": []any{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actx := newAssertionContext(t)
			result := NewResult()

			errs := EvaluateAssertions(result, []Assertion{tt.assertion}, actx)
			if tt.pass {
				assert.Empty(t, errs)
			} else {
				require.Len(t, errs, 1)
				assert.Contains(t, errs[0], "Assertion failed: resolve")
			}
			require.Len(t, result.Resolved, 1)
			assert.Equal(t, tt.assertion.Model, result.Resolved[0].Model)
		})
	}
}

func TestEvaluateAssertions_ResolveDepthLimit(t *testing.T) {
	actx := newAssertionContext(t)
	result := NewResult()

	// Depth 1 from Author reaches the book but not the book's author.
	errs := EvaluateAssertions(result, []Assertion{{
		Type: AssertResolve, Model: "Author", ID: 0, Depth: 1,
		Expect: map[string]any{"books": []any{map[string]any{"title": "Dune"}}},
	}}, actx)
	require.Empty(t, errs)

	value := result.Resolved[0].Value.(map[string]any)
	book := value["books"].([]any)[0].(map[string]any)
	assert.NotContains(t, book, "author")
	assert.Equal(t, int64(0), result.Resolved[0].ID)
	wantHash, err := ir.ResolvedHash(value)
	require.NoError(t, err)
	assert.Equal(t, wantHash, result.Resolved[0].Hash)
}

func TestEvaluateAssertions_RowCountAndAbsent(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		pass      bool
	}{
		{"store count", Assertion{Type: AssertRowCount, Model: "Book", Count: intPtr(1)}, true},
		{"static count", Assertion{Type: AssertRowCount, Source: SourceStatic, Model: "Author", Count: intPtr(2)}, true},
		{"missing table counts zero", Assertion{Type: AssertRowCount, Model: "Tag", Count: intPtr(0)}, true},
		{"wrong count", Assertion{Type: AssertRowCount, Model: "Book", Count: intPtr(3)}, false},
		{"absent row", Assertion{Type: AssertAbsent, Model: "Book", ID: 5}, true},
		{"present row", Assertion{Type: AssertAbsent, Model: "Book", ID: 0}, false},
		{"static present row", Assertion{Type: AssertAbsent, Source: SourceStatic, Model: "Author", ID: 1}, false},
		{"string id", Assertion{Type: AssertAbsent, Model: "Book", ID: "0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(NewResult(), []Assertion{tt.assertion}, newAssertionContext(t))
			if tt.pass {
				assert.Empty(t, errs)
			} else {
				assert.Len(t, errs, 1)
			}
		})
	}
}

func TestEvaluateAssertions_NoContext(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertRowCount, Model: "Book", Count: intPtr(0)}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a store context")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: "trace_count", Model: "Book"}}, newAssertionContext(t))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "trace_count"`)
}

func TestAssertionError_IncludesSteps(t *testing.T) {
	err := &AssertionError{
		Type:     AssertRowCount,
		Expected: "1 rows",
		Actual:   "0 rows",
		Steps: []StepRecord{
			{Index: 0, Type: "ADD_MODEL", Model: "Book", Error: "BACKREF_TARGET_MISSING"},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: row_count")
	assert.Contains(t, msg, "Expected: 1 rows")
	assert.Contains(t, msg, "[0] ADD_MODEL Book changed=false error=BACKREF_TARGET_MISSING")
}

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{
		"id":   int64(1),
		"tags": []any{"a", "b"},
		"meta": map[string]any{"x": true, "y": nil},
	}

	tests := []struct {
		name     string
		expected any
		ok       bool
		path     string
	}{
		{"empty object", map[string]any{}, true, ""},
		{"scalar", map[string]any{"id": int64(1)}, true, ""},
		{"nested", map[string]any{"meta": map[string]any{"x": true}}, true, ""},
		{"null", map[string]any{"meta": map[string]any{"y": nil}}, true, ""},
		{"list", map[string]any{"tags": []any{"a", "b"}}, true, ""},
		{"list order", map[string]any{"tags": []any{"b", "a"}}, false, "$.tags[0]"},
		{"wrong type", map[string]any{"id": "1"}, false, "$.id"},
		{"missing nested", map[string]any{"meta": map[string]any{"z": 1}}, false, "$.meta.z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := matchSubset(actual, tt.expected, "$")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}
