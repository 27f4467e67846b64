package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeResolve(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewResolveCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// resolveResponse mirrors the JSON envelope with a generic value.
type resolveResponse struct {
	Status string `json:"status"`
	Data   struct {
		Model string `json:"model"`
		ID    any    `json:"id"`
		Depth int    `json:"depth"`
		Value any    `json:"value"`
	} `json:"data"`
	Error *CLIError `json:"error"`
}

func TestResolveOneRow(t *testing.T) {
	out, err := executeResolve(t, "json", librarySchema, libraryFixtures, "Author", "0", "--depth", "2")
	require.NoError(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Author", resp.Data.Model)
	assert.Equal(t, float64(0), resp.Data.ID)
	assert.Equal(t, 2, resp.Data.Depth)

	author, ok := resp.Data.Value.(map[string]any)
	require.True(t, ok, "value should be an object, got %T", resp.Data.Value)
	assert.Equal(t, "Ann", author["name"])

	books, ok := author["books"].([]any)
	require.True(t, ok)
	require.Len(t, books, 2)

	dune := books[0].(map[string]any)
	assert.Equal(t, "Dune", dune["title"])
	assert.Equal(t, map[string]any{"id": float64(0), "name": "Ann"}, dune["author"],
		"the second hop stops before the author's books")
	assert.Equal(t, "Ubik", books[1].(map[string]any)["title"])
}

func TestResolveDepthCutoff(t *testing.T) {
	out, err := executeResolve(t, "json", librarySchema, libraryFixtures, "Author", "1", "--depth", "1")
	require.NoError(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	author := resp.Data.Value.(map[string]any)
	books := author["books"].([]any)
	require.Len(t, books, 1)
	emma := books[0].(map[string]any)
	assert.Equal(t, "Emma", emma["title"])
	assert.NotContains(t, emma, "author", "relations past the depth budget are omitted")
}

func TestResolveAllRows(t *testing.T) {
	out, err := executeResolve(t, "json", librarySchema, libraryFixtures, "Book", "--depth", "1")
	require.NoError(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Nil(t, resp.Data.ID)

	books, ok := resp.Data.Value.([]any)
	require.True(t, ok)
	require.Len(t, books, 3)

	var titles []string
	for _, b := range books {
		titles = append(titles, b.(map[string]any)["title"].(string))
	}
	assert.Equal(t, []string{"Dune", "Emma", "Ubik"}, titles)
	assert.Equal(t, "Bo", books[1].(map[string]any)["author"].(map[string]any)["name"])
}

func TestResolveTextOutput(t *testing.T) {
	out, err := executeResolve(t, "text", librarySchema, libraryFixtures, "Book", "2", "--depth", "1")
	require.NoError(t, err)

	var book map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &book))
	assert.Equal(t, "Ubik", book["title"])
	assert.Contains(t, out, "\n  \"", "text output is indented JSON")
}

func TestResolveMissingRow(t *testing.T) {
	out, err := executeResolve(t, "json", librarySchema, libraryFixtures, "Author", "9")
	require.NoError(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	author := resp.Data.Value.(map[string]any)
	assert.NotContains(t, author, "name")
	assert.Equal(t, []any{}, author["books"])
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"unknown model", []string{librarySchema, libraryFixtures, "Publisher"}, ErrCodeUnknownModel},
		{"missing schema", []string{"/nonexistent.cue", libraryFixtures, "Author"}, ErrCodeNotFound},
		{"missing fixtures", []string{librarySchema, "/nonexistent.yaml", "Author"}, ErrCodeNotFound},
		{"negative depth", []string{librarySchema, libraryFixtures, "Author", "--depth", "-1"}, ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeResolve(t, "json", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestResolveArgCount(t *testing.T) {
	_, err := executeResolve(t, "text", librarySchema, libraryFixtures)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts between 3 and 4 arg(s)")
}
