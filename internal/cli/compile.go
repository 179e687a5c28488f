package cli

import (
	"github.com/spf13/cobra"

	"github.com/forgo/surql/internal/where"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Entity string
	Where  string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a YAML filter to a SurrealQL condition",
		Long: `Compile a YAML filter document against an entity and print the
boolean expression that would follow WHERE.

Keys are field names; AND, OR and NOT take a mapping or a list of mappings;
operator mappings such as {gt: 10} or {containsAny: [a, b]} apply to the
field they are nested under. Values tagged !raw are emitted verbatim.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity name")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "-", "filter document (- for stdin)")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	Entity string `json:"entity"`
	Where  string `json:"where"`
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	if err := opts.entity(opts.Entity); err != nil {
		return err
	}
	data, err := readInput(cmd, opts.Where)
	if err != nil {
		return err
	}
	node, err := where.FromYAML(data)
	if err != nil {
		return err
	}
	text, err := opts.compiler().Compile(opts.Entity, node)
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(CompileResult{Entity: opts.Entity, Where: text})
	}
	return f.Success(text)
}
