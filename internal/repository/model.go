package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/where"
)

// Model executes the statements of one entity against a database.
type Model struct {
	Builder
	db     database.Database
	logger *slog.Logger
}

// NewModel creates the façade for entity. A nil compiler gets defaults.
func NewModel(db database.Database, catalog Catalog, entity string, compiler *where.Compiler) *Model {
	return &Model{
		Builder: NewBuilder(catalog, compiler, entity),
		db:      db,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger compiled statements are reported to.
func (m *Model) WithLogger(logger *slog.Logger) *Model {
	m.logger = logger
	return m
}

// run executes st and returns the rows of its last statement.
func (m *Model) run(ctx context.Context, st Statement) ([]interface{}, error) {
	m.logger.Debug("compiled statement",
		slog.String("entity", m.Entity),
		slog.String("statement", st.Text),
	)
	results, err := m.db.Query(ctx, st.Text, st.Vars)
	if err != nil {
		return nil, err
	}
	return resultRows(results), nil
}

// Select runs a SELECT and returns the raw rows.
func (m *Model) Select(ctx context.Context, opts SelectOptions) ([]interface{}, error) {
	st, err := m.BuildSelect(opts)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Count returns the number of records matching filter.
func (m *Model) Count(ctx context.Context, filter interface{}) (int, error) {
	st, err := m.BuildCount(filter)
	if err != nil {
		return 0, err
	}
	rows, err := m.run(ctx, st)
	if err != nil {
		return 0, err
	}
	return extractCount(rows), nil
}

// Create inserts one record. Entity values inside content are stored as
// their record ids.
func (m *Model) Create(ctx context.Context, content interface{}) ([]interface{}, error) {
	st, err := m.BuildCreate(content)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Insert inserts rows, a slice or a single value. No rows is a no-op.
func (m *Model) Insert(ctx context.Context, rows interface{}) ([]interface{}, error) {
	st, err := m.BuildInsert(rows)
	if err != nil || st.IsZero() {
		return nil, err
	}
	return m.run(ctx, st)
}

// Update replaces the content of record id, or of every record when id is
// empty.
func (m *Model) Update(ctx context.Context, id string, content interface{}) ([]interface{}, error) {
	st, err := m.BuildUpdate(id, content)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Merge patches record id, or every record when id is empty.
func (m *Model) Merge(ctx context.Context, id string, patch interface{}) ([]interface{}, error) {
	st, err := m.BuildMerge(id, patch)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Delete removes record id, or every record matching filter.
func (m *Model) Delete(ctx context.Context, id string, filter interface{}) ([]interface{}, error) {
	st, err := m.BuildDelete(id, filter)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Relate creates an edge record from this entity.
func (m *Model) Relate(ctx context.Context, r Relation) ([]interface{}, error) {
	st, err := m.BuildRelate(r)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Live starts a live query and returns its id. Notifications are read with
// Notifications.
func (m *Model) Live(ctx context.Context, filter interface{}, diff bool) (string, error) {
	if _, ok := m.db.(database.LiveDatabase); !ok {
		return "", database.ErrLiveUnsupported
	}
	st, err := m.BuildLive(filter, diff)
	if err != nil {
		return "", err
	}
	rows, err := m.run(ctx, st)
	if err != nil {
		return "", err
	}
	return liveID(rows)
}

// Notifications streams the changes of a live query started with Live.
func (m *Model) Notifications(ctx context.Context, liveID string) (<-chan database.Notification, error) {
	live, ok := m.db.(database.LiveDatabase)
	if !ok {
		return nil, database.ErrLiveUnsupported
	}
	return live.Notifications(ctx, liveID)
}

// Kill stops a live query.
func (m *Model) Kill(ctx context.Context, liveID string) error {
	if live, ok := m.db.(database.LiveDatabase); ok {
		return live.Kill(ctx, liveID)
	}
	_, err := m.run(ctx, m.BuildKill(liveID))
	return err
}

// TableInfo is the result of INFO FOR TABLE.
type TableInfo struct {
	Events  map[string]string `json:"events"`
	Fields  map[string]string `json:"fields"`
	Indexes map[string]string `json:"indexes"`
	Lives   map[string]string `json:"lives"`
	Tables  map[string]string `json:"tables"`
}

// Info describes the entity's table.
func (m *Model) Info(ctx context.Context) (TableInfo, error) {
	rows, err := m.run(ctx, m.BuildInfo())
	if err != nil {
		return TableInfo{}, err
	}
	infos, err := Decode[TableInfo](rows)
	if err != nil {
		return TableInfo{}, err
	}
	if len(infos) == 0 {
		return TableInfo{}, database.ErrNotFound
	}
	return infos[0], nil
}

// Migrate defines the declared indexes missing from the table and returns
// the statements it ran. All of them run in one transaction.
func (m *Model) Migrate(ctx context.Context) ([]string, error) {
	info, err := m.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", m.Entity, err)
	}
	stmts, err := m.BuildMigrate(info.Indexes)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, nil
	}

	batch := database.NewAtomicBatch()
	for _, s := range stmts {
		batch.Add(s, nil)
	}
	if err := batch.Execute(ctx, m.db); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", m.Entity, err)
	}
	m.logger.Info("migrated table",
		slog.String("entity", m.Entity),
		slog.Int("indexes", len(stmts)),
	)
	return stmts, nil
}

// Query runs a compiled template and returns the rows of its last
// statement.
func (m *Model) Query(ctx context.Context, q ql.Query) ([]interface{}, error) {
	st, err := m.BuildQuery(q)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, st)
}

// Decode converts result rows into T. Driver types (record ids, datetimes)
// are flattened first so T can use plain string and time.Time fields.
func Decode[T any](rows []interface{}) ([]T, error) {
	out := make([]T, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	data, err := json.Marshal(normalize(rows))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

// SelectAs runs a SELECT and decodes the rows into T.
func SelectAs[T any](ctx context.Context, m *Model, opts SelectOptions) ([]T, error) {
	rows, err := m.Select(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Decode[T](rows)
}
