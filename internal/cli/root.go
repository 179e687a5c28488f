package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/forgo/surql/internal/config"
	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/model"
	"github.com/forgo/surql/internal/repository"
	"github.com/forgo/surql/internal/schema"
	"github.com/forgo/surql/internal/where"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ConnectFunc opens a database for a command. The returned function
// releases it.
type ConnectFunc func(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (database.LiveDatabase, func(), error)

// RootOptions holds global flags and the state shared by subcommands.
type RootOptions struct {
	ConfigPath string
	SchemaPath string
	LogLevel   string
	Format     string // "json" | "text"

	// Connect is replaced in tests.
	Connect ConnectFunc

	cfg      *config.Config
	catalog  *schema.Catalog
	logger   *slog.Logger
	registry *prometheus.Registry
}

// NewRootCommand creates the root command for the surql CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Connect: connectSurrealDB})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surql",
		Short: "Typed SurrealQL mapping tools",
		Long:  "Compile filters, inspect statements and run queries against SurrealDB using declared entity schemas.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.SchemaPath, "schema", "", "YAML schema document (default: built-in example model)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewLiveCommand(opts))

	return cmd
}

// prepare loads configuration, logger and catalog once per invocation.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if o.cfg != nil {
		return nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.SchemaPath != "" {
		cfg.Schema.Path = o.SchemaPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	catalog := model.Catalog()
	if cfg.Schema.Path != "" {
		catalog, err = schema.LoadFile(cfg.Schema.Path)
		if err != nil {
			return err
		}
	}

	slog.SetDefault(logger)
	o.cfg = cfg
	o.logger = logger
	o.catalog = catalog
	o.registry = prometheus.NewRegistry()
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

func (o *RootOptions) compiler() *where.Compiler {
	return o.cfg.NewCompiler(o.catalog)
}

func (o *RootOptions) entity(name string) error {
	if _, ok := o.catalog.Entity(name); !ok {
		return fmt.Errorf("%w: %q (known: %s)", schema.ErrUnknownEntity, name, strings.Join(o.catalog.Names(), ", "))
	}
	return nil
}

// builder returns a statement builder for entity.
func (o *RootOptions) builder(entity string) (repository.Builder, error) {
	if err := o.entity(entity); err != nil {
		return repository.Builder{}, err
	}
	return repository.NewBuilder(o.catalog, o.compiler(), entity), nil
}

// open connects and returns a façade for entity.
func (o *RootOptions) open(ctx context.Context, entity string) (*repository.Model, database.LiveDatabase, func(), error) {
	db, release, err := o.Connect(ctx, o.cfg, o.registry)
	if err != nil {
		return nil, nil, nil, err
	}
	m := repository.NewModel(db, o.catalog, entity, o.compiler()).WithLogger(o.logger)
	return m, db, release, nil
}

func connectSurrealDB(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (database.LiveDatabase, func(), error) {
	db := database.NewSurrealDB(cfg.DB())
	if err := db.Connect(ctx); err != nil {
		return nil, nil, err
	}
	slog.Debug("connected to database",
		slog.String("endpoint", cfg.DB().Endpoint()),
		slog.String("namespace", cfg.Database.Namespace),
		slog.String("database", cfg.Database.Database),
	)
	release := func() { _ = db.Close() }
	if cfg.Metrics.Enabled {
		return database.Instrument(db, reg, cfg.Metrics.Namespace), release, nil
	}
	return db, release, nil
}

// readInput reads path, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// readFilter loads a YAML filter document. An empty path is no filter.
func readFilter(cmd *cobra.Command, path string) (interface{}, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	node, err := where.FromYAML(data)
	if err != nil {
		return nil, err
	}
	return node, nil
}
