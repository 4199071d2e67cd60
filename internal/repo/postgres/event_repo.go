package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepo is the analytics sink for matching events and the source of the
// recently-active user list the reconcile job walks.
type EventRepo struct {
	pool *pgxpool.Pool
}

type EventWriteRecord struct {
	ID         string
	UserID     string
	Name       string
	OccurredAt time.Time
	Props      map[string]any
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) InsertBatch(ctx context.Context, events []EventWriteRecord) error {
	if len(events) == 0 {
		return nil
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		props, err := json.Marshal(event.Props)
		if err != nil {
			return fmt.Errorf("marshal event props: %w", err)
		}
		batch.Queue(`
INSERT INTO match_events (id, user_id, name, occurred_at, props)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING
`, event.ID, event.UserID, event.Name, event.OccurredAt.UTC(), props)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert match event: %w", err)
		}
	}
	return nil
}

// RecentlyActiveUsers returns distinct user ids that produced events within
// the window, newest first.
func (r *EventRepo) RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id
FROM match_events
WHERE occurred_at >= $1 AND user_id <> ''
GROUP BY user_id
ORDER BY MAX(occurred_at) DESC
LIMIT $2
`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list recently active users: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0, limit)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan recently active user: %w", err)
		}
		users = append(users, userID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate recently active users: %w", rows.Err())
	}

	return users, nil
}
