// Package jobs implements long-running background work.
//
// # LiveListener
//
// A LiveListener starts a LIVE SELECT through the CRUD façade and hands each
// notification to a handler, optionally filtered to one action:
//
//	users := repository.NewModel(db, catalog, model.EntityUser, nil)
//	l, err := jobs.NewLiveListener(users, func(ctx context.Context, n database.Notification) error {
//	    slog.Info("user changed", slog.String("action", string(n.Action)))
//	    return nil
//	}, jobs.LiveConfig{Action: "CREATE", Filter: where.Where("name", "henry")})
//	if err := l.Start(ctx); err != nil { ... }
//	defer l.Stop()
//
// Stop kills the live query on the server.
//
// # Lifecycle
//
// Jobs follow the same Start/Stop shape: Start is idempotent while running,
// Stop closes the stop channel and waits for the worker goroutine.
//
// # Error Handling
//
// Handler errors are logged and do not stop the listener. A closed
// notification stream ends the worker.
package jobs
