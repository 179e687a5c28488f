package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
)

// Notifications streams the notifications of a live query started with
// LIVE SELECT. The returned channel closes when ctx is done or the
// underlying stream ends.
func (s *SurrealDB) Notifications(ctx context.Context, liveID string) (<-chan Notification, error) {
	if !s.config.SupportsLive() {
		return nil, ErrLiveUnsupported
	}
	if s.db == nil {
		return nil, ErrConnection
	}

	src, err := s.db.LiveNotifications(liveID)
	if err != nil {
		return nil, fmt.Errorf("%w: live notifications: %v", ErrQuery, err)
	}

	out := make(chan Notification)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- fromConnection(liveID, n):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Kill stops a live query.
func (s *SurrealDB) Kill(ctx context.Context, liveID string) error {
	if !s.config.SupportsLive() {
		return ErrLiveUnsupported
	}
	if s.db == nil {
		return ErrConnection
	}
	if err := surrealdb.Kill(ctx, s.db, liveID); err != nil {
		return fmt.Errorf("%w: kill %s: %v", ErrQuery, liveID, err)
	}
	return nil
}

func fromConnection(liveID string, n connection.Notification) Notification {
	id := liveID
	if n.ID != nil {
		id = n.ID.String()
	}
	return Notification{
		LiveID: id,
		Action: Action(n.Action),
		Result: n.Result,
	}
}
