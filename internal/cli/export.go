package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/myurch/mock-rel/internal/snapshot"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out  string // SQLite database path
	Name string // snapshot name; defaults to the fixtures file name
}

// ExportResult is the JSON payload of the export command.
type ExportResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Inserted bool   `json:"inserted"`
	Models   int    `json:"models"`
	Rows     int    `json:"rows"`
	Out      string `json:"out"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <schema> <fixtures.yaml>",
		Short: "Export loaded fixtures as a SQLite snapshot",
		Long: `Load fixture tables into a store and write the resulting state to a
SQLite snapshot database.

The snapshot id is the state hash, so exporting the same fixtures twice
stores one snapshot; the first name wins.

Examples:
  mockrel export schema.cue fixtures.yaml --out fixtures.db
  mockrel export ./schema fixtures.yaml --out fixtures.db --name library`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "SQLite database path (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "snapshot name (default: fixtures file name)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(opts *ExportOptions, schemaPath, fixturesPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	db, err := LoadFixtureDB(schemaPath, fixturesPath, 0, newLogger(opts.RootOptions, cmd))
	if err != nil {
		return outputLoadError(formatter, err)
	}

	name := opts.Name
	if name == "" {
		base := filepath.Base(fixturesPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	store, err := snapshot.Open(opts.Out)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
	}
	defer store.Close()

	state := db.State()
	id, inserted, err := store.WriteSnapshot(cmd.Context(), name, state)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
	}

	result := ExportResult{
		ID:       id,
		Name:     name,
		Inserted: inserted,
		Models:   len(state),
		Out:      opts.Out,
	}
	for _, table := range state {
		result.Rows += len(table)
	}
	formatter.VerboseLog("Exported %d row(s) across %d model(s)", result.Rows, result.Models)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if inserted {
		fmt.Fprintf(formatter.Writer, "✓ Snapshot %s written to %s\n", id, opts.Out)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ Snapshot %s already present in %s\n", id, opts.Out)
	}
	return nil
}
