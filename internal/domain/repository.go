package domain

import (
	"context"
	"time"
)

// OrderRepository is the storage contract backing the order service.
type OrderRepository interface {
	// Create stores a new order. Fails if the ID is already taken.
	Create(ctx context.Context, order Order) error
	// Get returns the order or ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// Save applies updates with optimistic locking; a stale Version yields
	// ErrOrderVersionConflict.
	Save(ctx context.Context, order Order) error
	// RecordCancellation appends to the operator's rolling cancellation log.
	RecordCancellation(ctx context.Context, operatorID string, at time.Time) error
	// CancellationCountSince counts the operator's cancellations at or after
	// the given instant.
	CancellationCountSince(ctx context.Context, operatorID string, since time.Time) (int, error)
}

// ShopRepository is the storage contract backing the shop service.
type ShopRepository interface {
	Create(ctx context.Context, shop Shop) error
	Get(ctx context.Context, id string) (Shop, error)
	// SaveSchedule persists the schedule slice of the shop with optimistic
	// locking on the shop version.
	SaveSchedule(ctx context.Context, shopID string, schedule ShopSchedule, version int64) (Shop, error)
}

// TimelineRepository keeps per-order audit events emitted by the flow.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}
