package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/myurch/mock-rel/internal/ir"
	"github.com/myurch/mock-rel/internal/store"
)

// ID strategies accepted by a model's id_strategy key.
const (
	IDStrategySequence = "sequence"
	IDStrategyUUID     = "uuid"
)

// CompileOption configures schema compilation.
type CompileOption func(*compileConfig)

type compileConfig struct {
	idGenerator store.IDGenerator
}

// WithIDGenerator sets the generator behind id_strategy: "uuid".
// Defaults to store.UUIDv7Generator.
func WithIDGenerator(gen store.IDGenerator) CompileOption {
	return func(c *compileConfig) {
		c.idGenerator = gen
	}
}

// CompileSchema parses the top-level CUE value of a schema file into an
// ir.Schema. Uses CUE SDK's Go API directly (not CLI subprocess).
//
// Models live under the "model" struct:
//
//	model: Author: {
//		fields: {
//			id:    "plain"
//			books: {type: "reverse", model: "Book", backref: "author"}
//		}
//	}
//
// Field order follows CUE declaration order.
func CompileSchema(v cue.Value, opts ...CompileOption) (ir.Schema, error) {
	// Validate rather than Err: conflicts nested in a field leave the root
	// value itself intact.
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := compileConfig{idGenerator: store.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, &CompileError{
			Field:   "model",
			Message: "at least one model is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	schema := make(ir.Schema)
	for iter.Next() {
		model, err := compileModel(iter.Label(), iter.Value(), cfg)
		if err != nil {
			return nil, err
		}
		schema[iter.Label()] = model
	}

	if len(schema) == 0 {
		return nil, &CompileError{
			Field:   "model",
			Message: "at least one model is required",
			Pos:     modelsVal.Pos(),
		}
	}

	return schema, nil
}

// CompileModel parses a single model struct, e.g. the value at "model.Author".
func CompileModel(v cue.Value, opts ...CompileOption) (*ir.ModelDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := compileConfig{idGenerator: store.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}
	return compileModel(name, v, cfg)
}

func compileModel(name string, v cue.Value, cfg compileConfig) (*ir.ModelDef, error) {
	prefix := "model." + name

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   prefix + ".fields",
			Message: `every model should have a "fields" key`,
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	model := &ir.ModelDef{Fields: []ir.FieldDef{}}
	for iter.Next() {
		field, err := compileField(prefix, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		model.Fields = append(model.Fields, field)
	}

	// Optional validation predicate
	validationVal := v.LookupPath(cue.ParsePath("validation"))
	if validationVal.Exists() {
		src, err := validationVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		hook, err := CompileValidation(src)
		if err != nil {
			return nil, &CompileError{
				Field:   prefix + ".validation",
				Message: err.Error(),
				Pos:     validationVal.Pos(),
			}
		}
		model.Validation = hook
	}

	// Optional id strategy
	strategyVal := v.LookupPath(cue.ParsePath("id_strategy"))
	if strategyVal.Exists() {
		strategy, err := strategyVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch strategy {
		case IDStrategySequence:
		case IDStrategyUUID:
			model.IDResolver = store.GeneratedIDResolver(cfg.idGenerator)
		default:
			return nil, &CompileError{
				Field:   prefix + ".id_strategy",
				Message: fmt.Sprintf("unknown id strategy %q: must be %q or %q", strategy, IDStrategySequence, IDStrategyUUID),
				Pos:     strategyVal.Pos(),
			}
		}
	}

	return model, nil
}

// compileField accepts either the shorthand kind string ("plain") or a
// struct {type, model?, backref?}.
func compileField(prefix, name string, v cue.Value) (ir.FieldDef, error) {
	path := fmt.Sprintf("%s.fields.%s", prefix, name)

	if err := v.Err(); err != nil {
		return ir.FieldDef{}, formatCUEError(err)
	}

	if v.IncompleteKind() == cue.StringKind {
		kind, err := parseKind(path, v)
		if err != nil {
			return ir.FieldDef{}, err
		}
		if kind != ir.Plain {
			return ir.FieldDef{}, &CompileError{
				Field:   path,
				Message: fmt.Sprintf("%s field needs a struct with a related model", kind),
				Pos:     v.Pos(),
			}
		}
		return ir.PlainField(name), nil
	}

	if v.IncompleteKind() != cue.StructKind {
		return ir.FieldDef{}, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("field must be a kind string or a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return ir.FieldDef{}, &CompileError{
			Field:   path + ".type",
			Message: "field type is required",
			Pos:     v.Pos(),
		}
	}
	kind, err := parseKind(path+".type", typeVal)
	if err != nil {
		return ir.FieldDef{}, err
	}

	field := ir.FieldDef{Name: name, Kind: kind}

	if modelVal := v.LookupPath(cue.ParsePath("model")); modelVal.Exists() {
		if field.ModelName, err = modelVal.String(); err != nil {
			return ir.FieldDef{}, formatCUEError(err)
		}
	}
	if backrefVal := v.LookupPath(cue.ParsePath("backref")); backrefVal.Exists() {
		if field.Backref, err = backrefVal.String(); err != nil {
			return ir.FieldDef{}, formatCUEError(err)
		}
	}

	switch kind {
	case ir.Plain:
	case ir.Foreign:
		if field.ModelName == "" {
			return ir.FieldDef{}, &CompileError{
				Field:   path + ".model",
				Message: "foreign field requires a related model",
				Pos:     v.Pos(),
			}
		}
	case ir.Reverse:
		if field.ModelName == "" || field.Backref == "" {
			return ir.FieldDef{}, &CompileError{
				Field:   path,
				Message: "reverse field requires a related model and a backref field",
				Pos:     v.Pos(),
			}
		}
	}

	return field, nil
}

func parseKind(path string, v cue.Value) (ir.FieldKind, error) {
	s, err := v.String()
	if err != nil {
		return 0, formatCUEError(err)
	}
	kind, err := ir.ParseFieldKind(s)
	if err != nil {
		return 0, &CompileError{Field: path, Message: err.Error(), Pos: v.Pos()}
	}
	return kind, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
