// Package testdb provides test database utilities for e2e testing.
//
// This package creates isolated SurrealDB test environments that run real
// queries against a real database instance. Tests are skipped unless
// SURQL_TEST_DB is set.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t, model.Catalog())
//	    defer tdb.Close()
//
//	    users := tdb.Model(model.EntityUser)
//	    rows, err := users.Select(tdb.Ctx(), repository.SelectOptions{})
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/repository"
	"github.com/forgo/surql/internal/schema"
)

// EnvEnable turns the e2e tests on when set to any non-empty value.
const EnvEnable = "SURQL_TEST_DB"

// TestDB provides an isolated database environment for testing.
// Each TestDB instance gets a unique namespace to ensure test isolation.
type TestDB struct {
	DB        database.LiveDatabase
	Catalog   *schema.Catalog
	Namespace string
	Database  string
	t         *testing.T
}

// getTestConfig returns database config from environment or defaults
func getTestConfig() database.Config {
	return database.Config{
		Scheme:   getEnv("SURQL_TEST_DB_SCHEME", "ws"),
		Host:     getEnv("SURQL_TEST_DB_HOST", "localhost"),
		Port:     getEnv("SURQL_TEST_DB_PORT", "8000"),
		User:     getEnv("SURQL_TEST_DB_USER", "root"),
		Password: getEnv("SURQL_TEST_DB_PASSWORD", "root"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	return "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// New creates a new isolated test database and defines the indexes declared
// by catalog. Call Close() when done to clean up the namespace.
func New(t *testing.T, catalog *schema.Catalog) *TestDB {
	t.Helper()
	if os.Getenv(EnvEnable) == "" {
		t.Skipf("testdb: %s not set", EnvEnable)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Namespace = uniqueNamespace()
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	tdb := &TestDB{
		DB:        db,
		Catalog:   catalog,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		t:         t,
	}

	for _, name := range catalog.Names() {
		if _, err := tdb.Model(name).Migrate(ctx); err != nil {
			_ = db.Close()
			t.Fatalf("testdb: migrate %s: %v", name, err)
		}
	}

	return tdb
}

// Model returns a façade for entity bound to the test database.
func (tdb *TestDB) Model(entity string) *repository.Model {
	return repository.NewModel(tdb.DB, tdb.Catalog, entity, nil)
}

// Close cleans up the test database by removing the namespace.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace)
	_ = tdb.DB.Execute(ctx, query, nil) // Ignore errors on cleanup

	_ = tdb.DB.Close()
}

// Reset clears all data from the catalog's tables while preserving indexes.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range tdb.Catalog.Names() {
		if _, err := tdb.Model(name).Delete(ctx, "", nil); err != nil {
			t.Logf("testdb: warning - failed to clear %s: %v", name, err)
		}
	}
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustQuery executes a query and returns results, failing the test on error.
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}
