package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/schema"
	"github.com/forgo/surql/internal/where"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SURQL_"

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Schema   SchemaConfig   `mapstructure:"schema"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Scheme    string `mapstructure:"scheme"`
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Database  string `mapstructure:"database"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CompilerConfig holds predicate compiler and template engine settings
type CompilerConfig struct {
	MaxDepth int  `mapstructure:"maxdepth"`
	GroupNot bool `mapstructure:"groupnot"`
	MapHoist bool `mapstructure:"maphoist"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

// SchemaConfig points at the entity declarations
type SchemaConfig struct {
	// Path to a YAML schema document. Empty uses the built-in example model.
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.scheme", "ws")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "8000")
	v.SetDefault("db.namespace", "surql")
	v.SetDefault("db.database", "main")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "root")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("compiler.maxdepth", where.DefaultMaxDepth)
	v.SetDefault("compiler.groupnot", false)
	v.SetDefault("compiler.maphoist", false)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.namespace", "surql")
	v.SetDefault("schema.path", "")
}

// Load reads configuration from defaults, the optional config file at path
// (yaml, json or toml) and SURQL_-prefixed environment variables, in
// increasing precedence. SURQL_DB_HOST sets db.host.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for _, envStr := range os.Environ() {
		key, value, ok := strings.Cut(envStr, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		// SURQL_DB_HOST -> db.host
		propKey := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
		v.Set(propKey, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	switch c.Database.Scheme {
	case "ws", "wss", "http", "https":
	default:
		errs = append(errs, fmt.Errorf("SURQL_DB_SCHEME must be ws, wss, http or https, got '%s'", c.Database.Scheme))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("SURQL_DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("SURQL_DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("SURQL_DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("SURQL_DB_DATABASE is required"))
	}

	// Log validation
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("SURQL_LOG_FORMAT must be 'json' or 'text', got '%s'", c.Log.Format))
	}

	// Compiler validation
	if c.Compiler.MaxDepth <= 0 {
		errs = append(errs, errors.New("SURQL_COMPILER_MAXDEPTH must be positive"))
	}

	// Metrics validation
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("SURQL_METRICS_ADDR is required when SURQL_METRICS_ENABLED is true"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DB returns the connection settings for database.NewSurrealDB.
func (c *Config) DB() database.Config {
	return database.Config{
		Scheme:    c.Database.Scheme,
		Host:      c.Database.Host,
		Port:      c.Database.Port,
		User:      c.Database.User,
		Password:  c.Database.Password,
		Namespace: c.Database.Namespace,
		Database:  c.Database.Database,
	}
}

// NewCompiler returns a predicate compiler over reg with the configured
// settings.
func (c *Config) NewCompiler(reg schema.Registry) *where.Compiler {
	return &where.Compiler{
		Registry: reg,
		MaxDepth: c.Compiler.MaxDepth,
		GroupNot: c.Compiler.GroupNot,
	}
}

// Engine returns the configured template engine.
func (c *Config) Engine() ql.Engine {
	return ql.Engine{MapHoist: c.Compiler.MapHoist}
}

// NewLogger builds the configured slog logger writing to w.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("SURQL_LOG_LEVEL must be debug, info, warn or error, got '%s'", s)
	}
	return level, nil
}
