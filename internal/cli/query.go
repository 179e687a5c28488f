package cli

import (
	"errors"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/repository"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	File   string
	Vars   map[string]string
	DryRun bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a SurrealQL script",
		Long: `Run a SurrealQL script and print the rows of its last statement.

--var name=value declares LET $name = 'value' ahead of the script.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "script file (- for stdin)")
	cmd.Flags().StringToStringVar(&opts.Vars, "var", nil, "variables to declare, name=value")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the script without running it")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	data, err := readInput(cmd, opts.File)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty script")
	}

	q, err := script(opts.cfg.Engine(), opts.Vars, string(data))
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	if opts.DryRun {
		return f.Success(q.String())
	}

	m, _, release, err := opts.open(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer release()

	rows, err := m.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	out, err := repository.Decode[interface{}](rows)
	if err != nil {
		return err
	}
	return f.Success(out)
}

// script prepends a LET declaration for each variable, in name order.
func script(e ql.Engine, vars map[string]string, body string) (ql.Query, error) {
	parts := []ql.Query{}
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		q, err := e.Compile([]string{"", ""}, ql.Let(name, vars[name]))
		if err != nil {
			return ql.Query{}, err
		}
		parts = append(parts, ql.Query{Declarations: q.Declarations})
	}
	parts = append(parts, ql.Raw(body))
	return ql.Join("", parts...)
}
