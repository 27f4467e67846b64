package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/myurch/mock-rel/internal/compiler"
	"github.com/myurch/mock-rel/internal/fakedb"
	"github.com/myurch/mock-rel/internal/harness"
	"github.com/myurch/mock-rel/internal/ir"
)

// LoadError represents an error that occurred while loading a schema or a
// fixtures file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the CUE source line, or 0 when the error has no position.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeCompileFailed = "E004" // Schema declaration did not compile
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeFixtures      = "E006" // Fixtures file unreadable or invalid
	ErrCodeWriteFailed   = "E007" // Snapshot write error
	ErrCodeUnknownModel  = "E008" // Model not declared in the schema
)

// LoadSchema compiles the schema at path (a .cue file or a directory of
// them). Failures come back as *LoadError.
func LoadSchema(path string, opts ...compiler.CompileOption) (ir.Schema, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema: %v", err)}
	}

	if info.IsDir() {
		files, err := compiler.FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	schema, err := compiler.LoadSchema(path, opts...)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return schema, nil
}

// LoadFixtureDB compiles the schema, creates a facade for it and bulk-loads
// the fixture tables. A depth of 0 keeps the facade default.
func LoadFixtureDB(schemaPath, fixturesPath string, depth int, logger *slog.Logger) (*fakedb.DB, error) {
	schema, err := LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	db, err := fakedb.New(schema, fakedb.WithDefaultDepth(depth), fakedb.WithLogger(logger))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCompileFailed, Message: err.Error()}
	}

	if _, err := os.Stat(fixturesPath); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixtures not found: %s", fixturesPath)}
	}
	fixtures, err := harness.LoadFixtures(fixturesPath)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeFixtures, Message: err.Error()}
	}
	if err := harness.LoadTables(db, fixtures.Tables); err != nil {
		return nil, &LoadError{Code: ErrCodeFixtures, Message: err.Error()}
	}
	return db, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputLoadError reports err through formatter and returns the command
// error (exit code 2) the command should fail with.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
