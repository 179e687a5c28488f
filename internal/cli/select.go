package cli

import (
	"github.com/spf13/cobra"

	"github.com/forgo/surql/internal/repository"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Entity  string
	Where   string
	Fields  []string
	Fetch   []string
	OrderBy []string
	ID      string
	Limit   int
	Start   int
	Value   bool
	DryRun  bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Build and run a SELECT for an entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity name")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter document (- for stdin)")
	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "fields to project (default: all)")
	cmd.Flags().StringSliceVar(&opts.Fetch, "fetch", nil, "record links to fetch")
	cmd.Flags().StringSliceVar(&opts.OrderBy, "order-by", nil, "ordering, e.g. \"name DESC\"")
	cmd.Flags().StringVar(&opts.ID, "id", "", "select a single record")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "rows to skip")
	cmd.Flags().BoolVar(&opts.Value, "value", false, "SELECT VALUE of a single field")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the statement without running it")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runSelect(opts *SelectOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	filter, err := readFilter(cmd, opts.Where)
	if err != nil {
		return err
	}
	sel := repository.SelectOptions{
		Fields:  opts.Fields,
		ID:      opts.ID,
		Value:   opts.Value,
		Where:   filter,
		OrderBy: opts.OrderBy,
		Limit:   opts.Limit,
		Start:   opts.Start,
		Fetch:   opts.Fetch,
	}

	f := opts.formatter(cmd)
	if opts.DryRun {
		b, err := opts.builder(opts.Entity)
		if err != nil {
			return err
		}
		st, err := b.BuildSelect(sel)
		if err != nil {
			return err
		}
		return f.Success(st.Text)
	}

	if err := opts.entity(opts.Entity); err != nil {
		return err
	}
	m, _, release, err := opts.open(cmd.Context(), opts.Entity)
	if err != nil {
		return err
	}
	defer release()

	rows, err := m.Select(cmd.Context(), sel)
	if err != nil {
		return err
	}
	out, err := repository.Decode[interface{}](rows)
	if err != nil {
		return err
	}
	return f.Success(out)
}
