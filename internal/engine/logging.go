package engine

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/myurch/mock-rel/internal/ir"
)

// Logged wraps next with structured logging. Successful actions that changed
// the state log at debug, actions that left it untouched (validation
// rejection, unknown type, deleting an absent row) at warn, failures at error.
// A nil logger uses slog.Default().
func Logged(logger *slog.Logger, next ReduceFunc) ReduceFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(state ir.State, action ir.Action) (ir.State, error) {
		out, err := next(state, action)

		attrs := []any{
			"type", action.Type,
			"model", action.Payload.ModelName,
		}
		if action.Payload.ID != nil {
			attrs = append(attrs, "id", ir.ToNative(action.Payload.ID))
		}

		switch {
		case err != nil:
			logger.Error("action failed", append(attrs, "error", err)...)
		case SameState(state, out):
			logger.Warn("action left state unchanged", attrs...)
		default:
			logger.Debug("action applied", append(attrs, "rows", len(out.Table(action.Payload.ModelName)))...)
		}
		return out, err
	}
}

// SameState reports whether a and b are the same map value, not merely
// equal contents. Reduce returns its input when an action has no effect.
func SameState(a, b ir.State) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

// Apply folds actions over state with f, stopping at the first failure.
// On failure it returns the state reached before the failing action.
func (f ReduceFunc) Apply(state ir.State, actions ...ir.Action) (ir.State, error) {
	for i, action := range actions {
		next, err := f(state, action)
		if err != nil {
			return state, fmt.Errorf("action %d: %w", i, err)
		}
		state = next
	}
	return state, nil
}

// Apply folds actions over state with Reduce.
func Apply(state ir.State, actions ...ir.Action) (ir.State, error) {
	return ReduceFunc(Reduce).Apply(state, actions...)
}
