// Package config manages application configuration.
//
// Configuration is layered with viper: built-in defaults, then an optional
// config file, then environment variables with the SURQL_ prefix.
//
//	cfg, err := config.Load("surql.yaml")
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - db: SurrealDB connection settings
//   - log: slog level and handler format
//   - compiler: predicate compiler depth limit, NOT rendering, map hoisting
//   - metrics: Prometheus endpoint
//   - schema: path of a YAML entity document
//
// # Environment Variables
//
// Underscores map to key separators, so keys are single words:
//
//	SURQL_DB_HOST            - db.host (default: localhost)
//	SURQL_DB_PORT            - db.port (default: 8000)
//	SURQL_DB_SCHEME          - db.scheme (default: ws)
//	SURQL_DB_NAMESPACE       - db.namespace (default: surql)
//	SURQL_LOG_LEVEL          - log.level (default: info)
//	SURQL_COMPILER_MAXDEPTH  - compiler.maxdepth (default: 32)
//	SURQL_METRICS_ENABLED    - metrics.enabled (default: false)
//	SURQL_SCHEMA_PATH        - schema.path
//
// Validate reports every problem at once with errors.Join.
package config
