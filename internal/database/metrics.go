package database

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors recorded by an instrumented Database.
type Metrics struct {
	// QueriesTotal counts statements by operation and outcome.
	QueriesTotal *prometheus.CounterVec
	// QueryDuration is the latency of statements by operation.
	QueryDuration *prometheus.HistogramVec
}

// NewMetrics registers the database collectors with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_queries_total",
				Help:      "Total number of database statements",
			},
			[]string{"op", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database statement latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// Instrument wraps db so every call is counted and timed. Live support is
// passed through when db provides it.
func Instrument(db Database, reg prometheus.Registerer, namespace string) LiveDatabase {
	return &instrumented{db: db, m: NewMetrics(reg, namespace)}
}

type instrumented struct {
	db Database
	m  *Metrics
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.m.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	i.m.QueriesTotal.WithLabelValues(op, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrConnection):
		return "connection"
	}
	return "error"
}

func (i *instrumented) Connect(ctx context.Context) error { return i.db.Connect(ctx) }
func (i *instrumented) Close() error                      { return i.db.Close() }
func (i *instrumented) Ping(ctx context.Context) error    { return i.db.Ping(ctx) }

func (i *instrumented) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	start := time.Now()
	res, err := i.db.Query(ctx, query, vars)
	i.observe("query", start, err)
	return res, err
}

func (i *instrumented) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	start := time.Now()
	res, err := i.db.QueryOne(ctx, query, vars)
	i.observe("query_one", start, err)
	return res, err
}

func (i *instrumented) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	start := time.Now()
	err := i.db.Execute(ctx, query, vars)
	i.observe("execute", start, err)
	return err
}

// BeginTx commits through the instrumented Query so the script is counted.
func (i *instrumented) BeginTx(ctx context.Context) (Transaction, error) {
	return NewBatchTx(ctx, i), nil
}

func (i *instrumented) Notifications(ctx context.Context, liveID string) (<-chan Notification, error) {
	live, ok := i.db.(LiveDatabase)
	if !ok {
		return nil, ErrLiveUnsupported
	}
	return live.Notifications(ctx, liveID)
}

func (i *instrumented) Kill(ctx context.Context, liveID string) error {
	live, ok := i.db.(LiveDatabase)
	if !ok {
		return ErrLiveUnsupported
	}
	start := time.Now()
	err := live.Kill(ctx, liveID)
	i.observe("kill", start, err)
	return err
}
