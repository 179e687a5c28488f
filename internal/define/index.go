package define

import (
	"fmt"
	"strings"

	"github.com/forgo/surql/internal/schema"
)

// searchClause enables full-text search on an index.
const searchClause = "SEARCH ANALYZER ascii BM25 HIGHLIGHTS"

// Index is a DEFINE INDEX statement.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
	Search  bool
}

// TableIndex builds the index for a table-level hint. The name is derived
// from the first and last column.
func TableIndex(table string, ti schema.TableIndex) Index {
	return Index{
		Name:    ti.Name(),
		Table:   table,
		Columns: ti.Columns,
		Unique:  ti.Unique,
		Search:  ti.Search,
	}
}

// FieldIndex builds the index declared on a single field.
func FieldIndex(table, field string, h schema.IndexHint) Index {
	return Index{
		Name:    h.Name,
		Table:   table,
		Columns: []string{field},
		Unique:  h.Unique,
		Search:  h.Search,
	}
}

// Validate checks that the index names a table and at least one column.
func (i Index) Validate() error {
	switch {
	case i.Name == "":
		return fmt.Errorf("%w: index name is required", ErrInvalidDefinition)
	case i.Table == "":
		return fmt.Errorf("%w: index %s: table is required", ErrInvalidDefinition, i.Name)
	case len(i.Columns) == 0:
		return fmt.Errorf("%w: index %s: at least one column is required", ErrInvalidDefinition, i.Name)
	}
	return nil
}

// Statement renders the index definition.
func (i Index) Statement() (string, error) {
	if err := i.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("DEFINE INDEX ")
	b.WriteString(i.Name)
	b.WriteString(" ON TABLE ")
	b.WriteString(i.Table)
	b.WriteString(" COLUMNS ")
	b.WriteString(strings.Join(i.Columns, ", "))
	if i.Unique {
		b.WriteString(" UNIQUE")
	}
	if i.Search {
		b.WriteString(" " + searchClause)
	}
	b.WriteString(";")
	return b.String(), nil
}
