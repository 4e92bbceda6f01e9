package domain

import (
	"context"
	"time"
)

// OrderKind is the direction of a ledger transaction.
type OrderKind string

const (
	// OrderAcquire adds items to the subject's holdings.
	OrderAcquire OrderKind = "acquire"
	// OrderRelease returns previously acquired items.
	OrderRelease OrderKind = "release"
)

// Valid reports whether k is a known transaction kind.
func (k OrderKind) Valid() bool {
	return k == OrderAcquire || k == OrderRelease
}

// OrderEvent is one immutable entry in the ownership ledger. Events are
// never updated; ownership is always recomputed from them.
type OrderEvent struct {
	ID        string    `json:"id"`
	Kind      OrderKind `json:"kind"`
	ItemIDs   []string  `json:"itemIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventRepository is the port for the append-only event store.
//
// Delete exists only for the administrative cleanup path: it must remove the
// event and every subject's reference to it in one atomic operation.
type EventRepository interface {
	Create(ctx context.Context, event OrderEvent) error
	Get(ctx context.Context, id string) (*OrderEvent, error)
	Delete(ctx context.Context, id string) error
}
