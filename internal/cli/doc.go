// Package cli implements the surql command line.
//
// Every command shares the root flags:
//
//	--config     config file; SURQL_* environment variables override it
//	--schema     YAML entity schema, defaults to the built-in example model
//	--log-level  debug, info, warn or error
//	--format     text or json
//
// compile, select --dry-run and migrate --dry-run never connect. The other
// commands open one connection per invocation through RootOptions.Connect.
package cli
