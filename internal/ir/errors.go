package ir

import (
	"errors"
	"fmt"
)

// StoreError represents a failed store operation.
//
// Store errors include:
//   - Schema integrity: a model declaration is missing its fields
//   - Invalid model name: an operation was given no usable model name
//   - Missing back-reference target: a REVERSE field lists an id with no row
//   - Missing id: a caller-supplied-id bulk load has a record without "id"
//   - Invalid id: an id is neither an integer nor a string
//
// A StoreError always aborts the whole operation; the state the caller
// passed in is left as it was.
type StoreError struct {
	// Code identifies the error category.
	Code StoreErrorCode

	// Message is a human-readable description.
	Message string

	// Model is the model the operation was acting on.
	Model string

	// Field is the offending field, when there is one.
	Field string
}

// StoreErrorCode categorizes store errors.
type StoreErrorCode string

const (
	// ErrCodeSchemaIntegrity indicates a model definition without fields.
	ErrCodeSchemaIntegrity StoreErrorCode = "SCHEMA_INTEGRITY"

	// ErrCodeInvalidModelName indicates a missing or non-string model name.
	ErrCodeInvalidModelName StoreErrorCode = "INVALID_MODEL_NAME"

	// ErrCodeBackrefTargetMissing indicates a REVERSE field pointing at a row
	// that does not exist.
	ErrCodeBackrefTargetMissing StoreErrorCode = "BACKREF_TARGET_MISSING"

	// ErrCodeMissingID indicates a record without an id where one is required.
	ErrCodeMissingID StoreErrorCode = "MISSING_ID"

	// ErrCodeInvalidID indicates an id that cannot be used as a table key.
	ErrCodeInvalidID StoreErrorCode = "INVALID_ID"
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Model != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s (model=%s, field=%s)", e.Code, e.Message, e.Model, e.Field)
	}
	if e.Model != "" {
		return fmt.Sprintf("%s: %s (model=%s)", e.Code, e.Message, e.Model)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode extracts the StoreErrorCode from err, or "" if err is not a
// StoreError. Uses errors.As to handle wrapped errors.
func ErrorCode(err error) StoreErrorCode {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsSchemaIntegrityError reports whether err is a schema integrity error.
func IsSchemaIntegrityError(err error) bool {
	return ErrorCode(err) == ErrCodeSchemaIntegrity
}

// IsInvalidModelNameError reports whether err is an invalid model name error.
func IsInvalidModelNameError(err error) bool {
	return ErrorCode(err) == ErrCodeInvalidModelName
}

// IsBackrefTargetMissingError reports whether err is a missing
// back-reference target error.
func IsBackrefTargetMissingError(err error) bool {
	return ErrorCode(err) == ErrCodeBackrefTargetMissing
}

// NewSchemaIntegrityError creates a StoreError for a model without fields.
func NewSchemaIntegrityError(modelName string) *StoreError {
	return &StoreError{
		Code:    ErrCodeSchemaIntegrity,
		Message: `schema integrity error: every model should have a "fields" key`,
		Model:   modelName,
	}
}

// NewInvalidModelNameError creates a StoreError for an unusable model name.
// op names the operation that needed it.
func NewInvalidModelNameError(op string) *StoreError {
	return &StoreError{
		Code:    ErrCodeInvalidModelName,
		Message: fmt.Sprintf("%s must take a non-empty string model name", op),
	}
}

// NewBackrefTargetMissingError creates a StoreError for a REVERSE field that
// lists an id with no row in the related table.
func NewBackrefTargetMissingError(modelName, fieldName, relatedModel, key string) *StoreError {
	return &StoreError{
		Code:    ErrCodeBackrefTargetMissing,
		Message: fmt.Sprintf("backref target %s[%s] does not exist", relatedModel, key),
		Model:   modelName,
		Field:   fieldName,
	}
}

// NewMissingIDError creates a StoreError for a record lacking an id.
func NewMissingIDError(modelName string, index int) *StoreError {
	return &StoreError{
		Code:    ErrCodeMissingID,
		Message: fmt.Sprintf("record %d has no id and automatic ids are disabled", index),
		Model:   modelName,
		Field:   IDField,
	}
}

// NewInvalidIDError creates a StoreError for an id that cannot key a table.
func NewInvalidIDError(modelName string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrCodeInvalidID,
		Message: cause.Error(),
		Model:   modelName,
		Field:   IDField,
	}
}
