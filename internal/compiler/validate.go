package compiler

import (
	"fmt"
	"slices"

	"github.com/myurch/mock-rel/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrModelMissingFields    = "E201" // model has no fields mapping
	ErrDuplicateField        = "E202" // field declared twice on a model
	ErrRelationMissingModel  = "E203" // foreign/reverse field without a related model
	ErrUndeclaredModel       = "E204" // related model not declared in the schema
	ErrReverseMissingBackref = "E205" // reverse field without a backref field name
	ErrBackrefNotDeclared    = "E206" // backref field not declared on the related model
	ErrUnknownFieldKind      = "E207" // field kind outside plain/foreign/reverse
)

// ValidationError represents a schema lint finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate lints a schema and returns every problem found (does not
// fail-fast). It is stricter than CheckIntegrity: relations must point at
// declared models and reverse fields must name a backref the related model
// declares. The store itself tolerates these; the lint catches fixtures that
// would silently resolve to empty lists.
func Validate(schema ir.Schema) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		model := schema[name]
		if model == nil || model.Fields == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("model.%s", name),
				Message: `every model should have a "fields" key`,
				Code:    ErrModelMissingFields,
			})
			continue
		}
		errs = append(errs, validateModel(schema, name, model)...)
	}

	return errs
}

func validateModel(schema ir.Schema, name string, model *ir.ModelDef) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for _, f := range model.Fields {
		path := fmt.Sprintf("model.%s.fields.%s", name, f.Name)

		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateField,
			})
		}
		seen[f.Name] = true

		switch f.Kind {
		case ir.Plain:
			continue
		case ir.Foreign, ir.Reverse:
		default:
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("unknown field kind %v", f.Kind),
				Code:    ErrUnknownFieldKind,
			})
			continue
		}

		if f.ModelName == "" {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("%s field must name a related model", f.Kind),
				Code:    ErrRelationMissingModel,
			})
			continue
		}

		related := schema.Model(f.ModelName)
		if related == nil {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("related model %q is not declared", f.ModelName),
				Code:    ErrUndeclaredModel,
			})
			continue
		}

		if f.Kind != ir.Reverse {
			continue
		}
		if f.Backref == "" {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: "reverse field must name the backref field on the related model",
				Code:    ErrReverseMissingBackref,
			})
			continue
		}
		if _, ok := related.Field(f.Backref); !ok {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("backref field %q is not declared on model %q", f.Backref, f.ModelName),
				Code:    ErrBackrefNotDeclared,
			})
		}
	}

	return errs
}
