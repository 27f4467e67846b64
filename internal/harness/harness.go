package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/myurch/mock-rel/internal/compiler"
	"github.com/myurch/mock-rel/internal/engine"
	"github.com/myurch/mock-rel/internal/fakedb"
	"github.com/myurch/mock-rel/internal/ir"
	"github.com/myurch/mock-rel/internal/testutil"
)

// Harness holds the per-run facade and host state.
type Harness struct {
	db     *fakedb.DB
	host   fakedb.HostState
	logger *slog.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger for step logs and the reducer middleware.
// Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each run compiles the schema afresh and starts from empty static and host
// states, so scenarios are isolated from each other.
//
// Execution flow:
// 1. Compile the schema with a deterministic id generator
// 2. Load static tables into the facade
// 3. Dispatch actions against the host state, checking expectations
// 4. Evaluate assertions
//
// An error is returned only when the scenario could not be executed
// (schema or table load failure). Failed expectations land in
// Result.Errors.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	prefix := scenario.IDPrefix
	if prefix == "" {
		prefix = scenario.Name
	}
	schema, err := compiler.LoadSchema(scenario.Schema,
		compiler.WithIDGenerator(testutil.NewPrefixedGenerator(prefix)))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	db, err := fakedb.New(schema,
		fakedb.WithDefaultDepth(scenario.Depth),
		fakedb.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	h := &Harness{
		db:     db,
		host:   fakedb.HostState{db.SliceName(): ir.State{}},
		logger: cfg.logger,
	}

	if err := LoadTables(db, scenario.Tables); err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	result := NewResult()
	if err := h.executeActions(scenario.Actions, result); err != nil {
		return nil, fmt.Errorf("failed to execute actions: %w", err)
	}

	actx := &AssertionContext{DB: db, Host: h.host}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	result.State = db.SelectDB(h.host)
	result.StateHash, err = ir.StateHash(result.State)
	if err != nil {
		return nil, fmt.Errorf("failed to hash final state: %w", err)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"steps", len(result.Steps),
		"errors", len(result.Errors),
	)
	return result, nil
}

// LoadTables bulk-loads every table step into db, in order.
func LoadTables(db *fakedb.DB, tables []TableStep) error {
	for i, t := range tables {
		rows, err := convertRows(t.Rows)
		if err != nil {
			return fmt.Errorf("tables[%d] (%s): %w", i, t.Model, err)
		}
		auto := t.IDAutomatic == nil || *t.IDAutomatic
		if err := db.AddTable(t.Model, rows, auto); err != nil {
			return fmt.Errorf("tables[%d] (%s): %w", i, t.Model, err)
		}
	}
	return nil
}

// executeActions dispatches each action and checks its expectation.
func (h *Harness) executeActions(steps []ActionStep, result *Result) error {
	for i, step := range steps {
		action, err := h.buildAction(step)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}

		before := h.db.SelectDB(h.host)
		next, err := h.db.Dispatch(h.host, action)
		after := h.db.SelectDB(next)
		h.host = next

		record := StepRecord{
			Index:   i,
			Type:    step.Type,
			Model:   step.Model,
			Changed: !engine.SameState(before, after),
		}
		if err != nil {
			record.Error = errorLabel(err)
		}
		result.AddStep(record)

		switch {
		case step.ExpectError != "":
			if err == nil {
				result.AddError(fmt.Sprintf("actions[%d]: expected error %s, got none", i, step.ExpectError))
			} else if record.Error != step.ExpectError {
				result.AddError(fmt.Sprintf("actions[%d]: expected error %s, got %v", i, step.ExpectError, err))
			}
		case err != nil:
			result.AddError(fmt.Sprintf("actions[%d]: unexpected error: %v", i, err))
		case step.ExpectUnchanged && record.Changed:
			result.AddError(fmt.Sprintf("actions[%d]: expected state to be unchanged", i))
		}

		h.logger.Info("action step completed",
			"step", i,
			"type", step.Type,
			"model", step.Model,
			"changed", record.Changed,
			"error", record.Error,
		)
	}
	return nil
}

func (h *Harness) buildAction(step ActionStep) (ir.Action, error) {
	var id ir.IRValue
	if step.ID != nil {
		v, err := ir.FromNative(step.ID)
		if err != nil {
			return ir.Action{}, fmt.Errorf("id: %w", err)
		}
		id = v
	}

	var data ir.Row
	if step.Data != nil {
		row, err := ir.ObjectFromNative(step.Data)
		if err != nil {
			return ir.Action{}, fmt.Errorf("data: %w", err)
		}
		data = row
	}

	switch ir.ActionType(step.Type) {
	case ir.ActionAddAllModels:
		rows, err := convertRows(step.DataList)
		if err != nil {
			return ir.Action{}, fmt.Errorf("data_list: %w", err)
		}
		auto := step.IDAutomatic == nil || *step.IDAutomatic
		return h.db.AddAllModels(step.Model, rows, auto), nil
	case ir.ActionAddModel:
		return h.db.AddModel(step.Model, data), nil
	case ir.ActionEditModel:
		return h.db.EditModel(step.Model, id, data), nil
	case ir.ActionDeleteModel:
		return h.db.DeleteModel(step.Model, id), nil
	default:
		return ir.Action{}, fmt.Errorf("unknown action type %q", step.Type)
	}
}

// errorLabel is the StoreError code of err, or its message.
func errorLabel(err error) string {
	if code := ir.ErrorCode(err); code != "" {
		return string(code)
	}
	return err.Error()
}

// convertRows converts YAML-decoded records into rows.
func convertRows(records []map[string]any) ([]ir.Row, error) {
	rows := make([]ir.Row, len(records))
	for i, rec := range records {
		row, err := ir.ObjectFromNative(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}
