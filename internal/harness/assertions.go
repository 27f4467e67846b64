package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/myurch/mock-rel/internal/fakedb"
	"github.com/myurch/mock-rel/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Steps    []StepRecord // Action outcomes for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, step := range e.Steps {
			fmt.Fprintf(&buf, "  [%d] %s %s changed=%t", step.Index, step.Type, step.Model, step.Changed)
			if step.Error != "" {
				fmt.Fprintf(&buf, " error=%s", step.Error)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// AssertionContext provides the states assertions read.
type AssertionContext struct {
	DB   *fakedb.DB
	Host fakedb.HostState
}

// state returns the state an assertion reads.
func (c *AssertionContext) state(source string) ir.State {
	if source == SourceStatic {
		return c.DB.State()
	}
	return c.DB.SelectDB(c.Host)
}

func sourceName(source string) string {
	if source == "" {
		return SourceStore
	}
	return source
}

// assertResolve resolves the addressed row (or every row) and subset-matches
// the expected value. The observed value is recorded on result either way.
func assertResolve(result *Result, index int, actx *AssertionContext, a Assertion) error {
	state := actx.state(a.Source)
	depth := a.Depth
	if depth == 0 {
		depth = actx.DB.DefaultDepth()
	}

	var got any
	var idNative any
	if a.ID == nil {
		table := state.Table(a.Model)
		all := make([]any, 0, len(table))
		for _, key := range table.Keys() {
			all = append(all, actx.DB.GetDepth(a.Model, ir.ParseKey(key), depth, state))
		}
		got = all
	} else {
		id, err := ir.FromNative(a.ID)
		if err != nil {
			return fmt.Errorf("resolve: id: %w", err)
		}
		idNative = ir.ToNative(id)
		got = actx.DB.GetDepth(a.Model, id, depth, state)
	}

	hash, _ := ir.ResolvedHash(got)
	result.AddResolved(ResolvedSnapshot{
		Assertion: index,
		Source:    sourceName(a.Source),
		Model:     a.Model,
		ID:        idNative,
		Value:     got,
		Hash:      hash,
	})

	expected, err := normalizeExpected(a.Expect)
	if err != nil {
		return fmt.Errorf("resolve: expect: %w", err)
	}
	if path, ok := matchSubset(got, expected, a.Model); !ok {
		return &AssertionError{
			Type:     AssertResolve,
			Expected: fmt.Sprintf("%s[%v] to match %v", a.Model, a.ID, expected),
			Actual:   fmt.Sprintf("mismatch at %s in %v", path, got),
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertRowCount checks the number of rows in a table.
func assertRowCount(result *Result, actx *AssertionContext, a Assertion) error {
	count := len(actx.state(a.Source).Table(a.Model))
	if count != *a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s (%s)", *a.Count, a.Model, sourceName(a.Source)),
			Actual:   fmt.Sprintf("%d rows", count),
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertAbsent checks that no row is stored under the id.
func assertAbsent(result *Result, actx *AssertionContext, a Assertion) error {
	id, err := ir.FromNative(a.ID)
	if err != nil {
		return fmt.Errorf("absent: id: %w", err)
	}
	key, err := ir.IDKey(id)
	if err != nil {
		return fmt.Errorf("absent: id: %w", err)
	}
	if row := actx.state(a.Source).Row(a.Model, key); row != nil {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("no row %s[%s] (%s)", a.Model, key, sourceName(a.Source)),
			Actual:   fmt.Sprintf("found %v", row),
			Steps:    result.Steps,
		}
	}
	return nil
}

// normalizeExpected converts YAML-decoded values into the shapes the
// resolver produces (int64 integers, []any lists, map[string]any objects).
func normalizeExpected(v any) (any, error) {
	irv, err := ir.FromNative(v)
	if err != nil {
		return nil, err
	}
	return ir.ToNative(irv), nil
}

// matchSubset reports whether actual contains expected. Objects match when
// every expected key matches (extra keys in actual are OK); lists must have
// the same length and match element-wise. On mismatch the returned path
// names the first differing location.
func matchSubset(actual, expected any, path string) (string, bool) {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return path, false
		}
		for key, expVal := range exp {
			actVal, exists := act[key]
			if !exists {
				return path + "." + key, false
			}
			if p, ok := matchSubset(actVal, expVal, path+"."+key); !ok {
				return p, false
			}
		}
		return "", true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return path, false
		}
		for i := range exp {
			if p, ok := matchSubset(act[i], exp[i], fmt.Sprintf("%s[%d]", path, i)); !ok {
				return p, false
			}
		}
		return "", true
	default:
		if reflect.DeepEqual(actual, expected) {
			return "", true
		}
		return path, false
	}
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.DB == nil {
			err = fmt.Errorf("assertion[%d]: %s requires a store context", i, assertion.Type)
		} else {
			switch assertion.Type {
			case AssertResolve:
				err = assertResolve(result, i, actx, assertion)
			case AssertRowCount:
				err = assertRowCount(result, actx, assertion)
			case AssertAbsent:
				err = assertAbsent(result, actx, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
