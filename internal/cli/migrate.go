package cli

import (
	"github.com/spf13/cobra"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Entities []string
	DryRun   bool
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Define the declared indexes missing from the database",
		Long: `Compare the indexes declared on each entity with INFO FOR TABLE and
define the missing ones. Each entity is migrated in its own transaction.

--dry-run prints every declared index without connecting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Entities, "entity", "e", nil, "entities to migrate (default: all)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the statements without running them")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	entities := opts.Entities
	if len(entities) == 0 {
		entities = opts.catalog.Names()
	}
	for _, name := range entities {
		if err := opts.entity(name); err != nil {
			return err
		}
	}

	var stmts []string
	if opts.DryRun {
		for _, name := range entities {
			b, err := opts.builder(name)
			if err != nil {
				return err
			}
			s, err := b.BuildMigrate(nil)
			if err != nil {
				return err
			}
			stmts = append(stmts, s...)
		}
		return opts.formatter(cmd).Success(stmts)
	}

	m, _, release, err := opts.open(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer release()

	for _, name := range entities {
		m.Entity = name
		s, err := m.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		stmts = append(stmts, s...)
	}
	return opts.formatter(cmd).Success(stmts)
}
