package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/surql/internal/database"
)

// ActionAll subscribes to every notification action.
const ActionAll = "ALL"

// killTimeout bounds the KILL issued when a listener stops.
const killTimeout = 10 * time.Second

// LiveSource starts, streams and stops live queries. repository.Model
// implements it.
type LiveSource interface {
	Live(ctx context.Context, filter interface{}, diff bool) (string, error)
	Notifications(ctx context.Context, liveID string) (<-chan database.Notification, error)
	Kill(ctx context.Context, liveID string) error
}

// Handler receives the notifications a listener lets through.
type Handler func(ctx context.Context, n database.Notification) error

// LiveConfig selects what a listener subscribes to.
type LiveConfig struct {
	// Filter is a where.Node or ql.Query narrowing the live query.
	Filter interface{}
	// Diff asks for JSON patches instead of full records.
	Diff bool
	// Action is CREATE, UPDATE, DELETE or ALL. Empty means ALL.
	Action string
	Logger *slog.Logger
}

// ParseAction validates an action filter. ALL and "" yield the empty action,
// which matches everything.
func ParseAction(s string) (database.Action, error) {
	switch a := strings.ToUpper(strings.TrimSpace(s)); a {
	case "", ActionAll:
		return "", nil
	case string(database.ActionCreate), string(database.ActionUpdate), string(database.ActionDelete):
		return database.Action(a), nil
	}
	return "", fmt.Errorf("unknown live action %q", s)
}

// LiveListener runs one live query and hands its notifications to a handler
// until stopped. Stopping kills the live query.
type LiveListener struct {
	source  LiveSource
	handler Handler
	config  LiveConfig
	action  database.Action
	logger  *slog.Logger

	id      string
	liveID  string
	cancel  context.CancelFunc
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewLiveListener creates a listener. It does nothing until Start.
func NewLiveListener(source LiveSource, handler Handler, cfg LiveConfig) (*LiveListener, error) {
	action, err := ParseAction(cfg.Action)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &LiveListener{
		source:  source,
		handler: handler,
		config:  cfg,
		action:  action,
		logger:  logger.With(slog.String("listener", id)),
		id:      id,
	}, nil
}

// ID identifies the listener in logs.
func (l *LiveListener) ID() string {
	return l.id
}

// LiveID returns the id of the running live query, or "" before Start.
func (l *LiveListener) LiveID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.liveID
}

// Start launches the live query and begins delivering notifications. The
// listener keeps running after ctx is cancelled only until Stop; ctx bounds
// the handler calls. A stopped listener may be started again with a new
// live query.
func (l *LiveListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}

	liveID, err := l.source.Live(ctx, l.config.Filter, l.config.Diff)
	if err != nil {
		return fmt.Errorf("start live query: %w", err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	ch, err := l.source.Notifications(runCtx, liveID)
	if err != nil {
		cancel()
		_ = l.source.Kill(context.Background(), liveID)
		return fmt.Errorf("stream live query: %w", err)
	}

	l.liveID = liveID
	l.cancel = cancel
	l.stopCh = make(chan struct{})
	l.running = true

	l.wg.Add(1)
	go l.run(runCtx, l.stopCh, liveID, ch)
	l.logger.Info("live listener started",
		slog.String("live_id", liveID),
		slog.String("action", l.actionLabel()),
		slog.Bool("diff", l.config.Diff),
	)
	return nil
}

// Stop ends delivery, kills the live query and waits for the handler to
// return.
func (l *LiveListener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	liveID := l.liveID
	stopCh, cancel := l.stopCh, l.cancel
	l.mu.Unlock()

	close(stopCh)
	cancel()
	l.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()
	if err := l.source.Kill(ctx, liveID); err != nil {
		l.logger.Error("failed to kill live query", slog.String("live_id", liveID), slog.Any("error", err))
	}
	l.logger.Info("live listener stopped", slog.String("live_id", liveID))
}

// IsRunning returns whether the listener is running
func (l *LiveListener) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// run is the main loop
func (l *LiveListener) run(ctx context.Context, stopCh <-chan struct{}, liveID string, ch <-chan database.Notification) {
	defer l.wg.Done()

	for {
		select {
		case <-stopCh:
			return
		case n, ok := <-ch:
			if !ok {
				l.logger.Warn("live stream closed", slog.String("live_id", liveID))
				return
			}
			if !l.matches(n) {
				continue
			}
			if err := l.handler(ctx, n); err != nil {
				l.logger.Error("live handler failed",
					slog.String("action", string(n.Action)),
					slog.Any("error", err),
				)
			}
		}
	}
}

func (l *LiveListener) matches(n database.Notification) bool {
	return l.action == "" || n.Action == l.action
}

func (l *LiveListener) actionLabel() string {
	if l.action == "" {
		return ActionAll
	}
	return string(l.action)
}
