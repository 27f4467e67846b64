package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/myurch/mock-rel/internal/ir"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Depth int // relation hops; 0 keeps the store default
}

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	Model string `json:"model"`
	ID    any    `json:"id,omitempty"`
	Depth int    `json:"depth"`
	Value any    `json:"value"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <schema> <fixtures.yaml> <model> [id]",
		Short: "Resolve fixture rows into nested objects",
		Long: `Load fixture tables into a store and print a resolved object graph.

With an id, prints the one resolved object. Without, prints every row of
the model in key order. Numeric ids are read as integers.

Examples:
  mockrel resolve schema.cue fixtures.yaml Author 0
  mockrel resolve schema.cue fixtures.yaml Book --depth 1
  mockrel resolve ./schema fixtures.yaml Author --format json`,
		Args:          cobra.RangeArgs(3, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "maximum relation hops (0 = store default)")

	return cmd
}

func runResolve(opts *ResolveOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Depth < 0 {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: "depth must not be negative"})
	}

	db, err := LoadFixtureDB(args[0], args[1], opts.Depth, newLogger(opts.RootOptions, cmd))
	if err != nil {
		return outputLoadError(formatter, err)
	}

	model := args[2]
	if db.Schema().Model(model) == nil {
		return outputLoadError(formatter, &LoadError{
			Code:    ErrCodeUnknownModel,
			Message: fmt.Sprintf("model %q is not declared in the schema", model),
		})
	}

	result := ResolveResult{Model: model, Depth: db.DefaultDepth()}
	if len(args) == 4 {
		id := ir.ParseKey(args[3])
		result.ID = ir.ToNative(id)
		result.Value = db.GetDepth(model, id, result.Depth, nil)
	} else {
		table := db.State().Table(model)
		values := make([]any, 0, len(table))
		for _, key := range table.Keys() {
			values = append(values, db.GetDepth(model, ir.ParseKey(key), result.Depth, nil))
		}
		result.Value = values
	}
	formatter.VerboseLog("Resolved %s at depth %d", model, result.Depth)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	data, err := json.MarshalIndent(result.Value, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode resolved value", err)
	}
	fmt.Fprintln(formatter.Writer, string(data))
	return nil
}
