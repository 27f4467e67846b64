package compiler

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/myurch/mock-rel/internal/ir"
)

// CompileValidation compiles an expr-lang predicate into a validation hook.
//
// The expression sees two variables:
//
//	state   map of model name to table (key to row), as plain Go values
//	action  {type, payload: {modelName, data, data_list, id}}
//
// Example: `action.payload.data.title != ""`.
//
// A result that is not a bool, or a runtime error, rejects the action.
func CompileValidation(src string) (ir.ValidationFunc, error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile validation %q: %w", src, err)
	}

	return func(state ir.State, action ir.Action) bool {
		out, err := expr.Run(program, map[string]any{
			"state":  StateEnv(state),
			"action": ActionEnv(action),
		})
		if err != nil {
			return false
		}
		ok, isBool := out.(bool)
		return isBool && ok
	}, nil
}

// StateEnv converts a state into nested maps for expression evaluation.
func StateEnv(state ir.State) map[string]any {
	env := make(map[string]any, len(state))
	for model, table := range state {
		rows := make(map[string]any, len(table))
		for key, row := range table {
			rows[key] = ir.ToNative(row)
		}
		env[model] = rows
	}
	return env
}

// ActionEnv converts an action into nested maps for expression evaluation.
// The schema is not exposed.
func ActionEnv(action ir.Action) map[string]any {
	payload := map[string]any{
		"modelName": action.Payload.ModelName,
		"id":        ir.ToNative(action.Payload.ID),
	}
	if action.Payload.Data != nil {
		payload["data"] = ir.ToNative(action.Payload.Data)
	}
	if action.Payload.DataList != nil {
		list := make([]any, len(action.Payload.DataList))
		for i, row := range action.Payload.DataList {
			list[i] = ir.ToNative(row)
		}
		payload["data_list"] = list
	}
	return map[string]any{
		"type":    string(action.Type),
		"payload": payload,
	}
}
