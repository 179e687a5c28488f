// Package helpers provides common test utilities for e2e testing.
//
// This package includes record assertions against a live database and
// small helpers for comparing compiled statements.
package helpers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/forgo/surql/internal/database"
)

// ============================================================================
// Database Assertion Helpers
// ============================================================================

// AssertRecordExists checks that a record exists in the database
func AssertRecordExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()

	found, err := recordExists(db, table, id)
	if err != nil {
		t.Fatalf("failed to query for record: %v", err)
	}
	if !found {
		t.Errorf("expected record %s:%s to exist, but it doesn't", table, recordPart(id))
	}
}

// AssertRecordNotExists checks that a record does not exist
func AssertRecordNotExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()

	found, err := recordExists(db, table, id)
	if err != nil {
		// Query error might mean not found, which is what we want
		return
	}
	if found {
		t.Errorf("expected record %s:%s to not exist, but it does", table, recordPart(id))
	}
}

func recordExists(db database.Database, table, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := "SELECT * FROM type::thing($table, $id)"
	results, err := db.Query(ctx, query, map[string]interface{}{
		"table": table,
		"id":    recordPart(id),
	})
	if err != nil {
		return false, err
	}
	return hasResults(results), nil
}

// recordPart strips the table from a full "table:id" record id.
func recordPart(id string) string {
	if _, rest, ok := strings.Cut(id, ":"); ok {
		return rest
	}
	return id
}

// hasResults checks if SurrealDB query returned any results
func hasResults(results []interface{}) bool {
	if len(results) == 0 {
		return false
	}

	resp, ok := results[0].(map[string]interface{})
	if !ok {
		return false
	}

	result, ok := resp["result"]
	if !ok {
		return false
	}

	switch v := result.(type) {
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return true
	case nil:
		return false
	default:
		return true
	}
}

// ============================================================================
// Statement Helpers
// ============================================================================

// Squash collapses runs of whitespace so multi-line statements compare equal
// to their single-line form.
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AssertJSONEqual compares two values by their JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !jsonEqual(expected, actual) {
		e, _ := json.Marshal(expected)
		a, _ := json.Marshal(actual)
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", e, a)
	}
}

// jsonEqual compares two JSON values for equality
func jsonEqual(a, b interface{}) bool {
	aBytes, _ := json.Marshal(a)
	bBytes, _ := json.Marshal(b)
	return string(aBytes) == string(bBytes)
}
