package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myurch/mock-rel/internal/compiler"
)

// executeValidate runs the validate command and returns its output.
func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeSchema(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

const danglingBackrefSchema = `
model: Author: fields: {
	id:    "plain"
	books: {type: "reverse", model: "Book", backref: "writer"}
}
model: Book: fields: {
	id:     "plain"
	author: {type: "foreign", model: "Author"}
}
`

func TestValidateValidSchema(t *testing.T) {
	out, err := executeValidate(t, "text", librarySchema)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Schema valid (2 models)")
}

func TestValidateValidSchemaJSON(t *testing.T) {
	out, err := executeValidate(t, "json", librarySchema)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Models)
}

func TestValidateCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode string
		wantOut  string
	}{
		{
			name:     "missing path",
			path:     func(*testing.T) string { return "/nonexistent/schema.cue" },
			wantCode: ErrCodeNotFound,
			wantOut:  "schema not found",
		},
		{
			name:     "empty directory",
			path:     func(t *testing.T) string { return t.TempDir() },
			wantCode: ErrCodeNoFiles,
			wantOut:  "no CUE files found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeValidate(t, "text", tt.path(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestValidateLintFindings(t *testing.T) {
	out, err := executeValidate(t, "text", writeSchema(t, danglingBackrefSchema))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrBackrefNotDeclared)
	assert.Contains(t, out, `backref field "writer" is not declared on model "Book"`)
}

func TestValidateLintFindingsJSON(t *testing.T) {
	out, err := executeValidate(t, "json", writeSchema(t, danglingBackrefSchema))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "model.Author.fields.books", resp.Data.Errors[0].Field)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrBackrefNotDeclared, resp.Error.Code)
}

func TestValidateCompileFailureIsAFinding(t *testing.T) {
	out, err := executeValidate(t, "text", writeSchema(t, "other: 1\n"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCompileFailed)
	assert.Contains(t, out, "at least one model is required")
}

func TestValidateSchemaDirectory(t *testing.T) {
	out, err := executeValidate(t, "text", filepath.Join("..", "compiler", "testdata", "schema_dir"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Schema valid (2 models)")
}
