package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bookstore/internal/domain"

	"github.com/lib/pq"
)

// EventRepo implements the event store on DB.
type EventRepo struct {
	db *DB
}

// NewEventRepo wraps a DB as an EventRepository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create appends one immutable order event.
func (r *EventRepo) Create(ctx context.Context, event domain.OrderEvent) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO order_events (id, kind, item_ids, created_at) VALUES ($1, $2, $3, $4)`,
		event.ID, event.Kind, pq.Array(event.ItemIDs), event.CreatedAt.UTC(),
	)
	return err
}

// Get retrieves an event by id, or nil when it does not exist.
func (r *EventRepo) Get(ctx context.Context, id string) (*domain.OrderEvent, error) {
	var event domain.OrderEvent
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, kind, item_ids, created_at FROM order_events WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.Kind, pq.Array(&event.ItemIDs), &event.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes an event. The credential_event_refs foreign key cascades,
// so every subject's reference disappears in the same statement and no
// dangling refs are left behind.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.sql.ExecContext(ctx, `DELETE FROM order_events WHERE id = $1`, id)
	return err
}
