package repository

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/surql/internal/database"
)

// extractRecordID extracts record ID from SurrealDB result
func extractRecordID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return v.String()
	case *models.RecordID:
		if v != nil {
			return v.String()
		}
	case map[string]interface{}:
		// Handle {"tb": "table", "id": "xxx"} format
		if tb, ok := v["tb"].(string); ok {
			if id, ok := v["id"].(string); ok {
				return tb + ":" + id
			}
		}
	}

	// Try JSON marshaling as fallback
	if data, err := json.Marshal(id); err == nil {
		var recordID models.RecordID
		if err := json.Unmarshal(data, &recordID); err == nil {
			return recordID.String()
		}
	}

	return ""
}

// extractToID returns the id part of "table:id", or s unchanged.
func extractToID(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// normalize replaces driver types in a decoded result with plain values so
// the result can be re-encoded as JSON: record ids become "table:id"
// strings, datetimes become time.Time and UUIDs become strings.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case models.RecordID, *models.RecordID:
		return extractRecordID(t)
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
		return nil
	case models.UUID:
		return t.String()
	case *models.UUID:
		if t != nil {
			return t.String()
		}
		return nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

// resultRows returns the rows of the last statement of a script. SurrealDB
// answers with one {status, result} entry per statement; LET declarations
// come first, so the rows of interest are always last.
func resultRows(results []interface{}) []interface{} {
	if len(results) == 0 {
		return nil
	}
	last := results[len(results)-1]
	resp, ok := last.(map[string]interface{})
	if !ok {
		// Direct array format
		return results
	}
	if _, wrapped := resp["status"]; !wrapped {
		if _, wrapped := resp["result"]; !wrapped {
			return results
		}
	}
	switch r := resp["result"].(type) {
	case []interface{}:
		return r
	case nil:
		return nil
	default:
		return []interface{}{r}
	}
}

// extractCount extracts count from a SELECT count() ... GROUP ALL result
func extractCount(rows []interface{}) int {
	if len(rows) == 0 {
		return 0
	}
	if data, ok := rows[0].(map[string]interface{}); ok {
		return extractCountValue(data["count"])
	}
	return 0
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// liveID extracts the id returned by LIVE SELECT.
func liveID(rows []interface{}) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: live query failed to start", database.ErrQuery)
	}
	switch id := normalize(rows[0]).(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case fmt.Stringer:
		return id.String(), nil
	}
	return "", fmt.Errorf("%w: live query returned %T, want an id", database.ErrQuery, rows[0])
}

// Recorder is implemented by entity values that can stand in for their
// record id inside content.
type Recorder interface {
	RecordID() string
}

// contentOf converts create/update input into a JSON-shaped value. Maps are
// walked and Recorder values replaced by their record ids; anything else
// goes through encoding/json.
func contentOf(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: content is nil", ErrInvalidContent)
	}
	if m, ok := v.(map[string]interface{}); ok {
		return transform(m), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: content must be an object, got %T", ErrInvalidContent, v)
	}
	return out, nil
}

// rowsOf converts insert input (a slice of rows or a single row) into a list
// of content objects.
func rowsOf(v interface{}) ([]interface{}, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		row, err := contentOf(v)
		if err != nil {
			return nil, err
		}
		return []interface{}{row}, nil
	}
	rows := make([]interface{}, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		row, err := contentOf(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func transform(v interface{}) interface{} {
	switch t := v.(type) {
	case Recorder:
		return t.RecordID()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = transform(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = transform(val)
		}
		return out
	}
	return v
}
