package domain

import (
	"context"
	"time"
)

// OrderGateway is the order collaborator as seen by the cancellation flow:
// one read and one commit, nothing else.
type OrderGateway interface {
	// GetOrder returns the order including sub-orders, items and customer
	// contact, or ErrOrderNotFound.
	GetOrder(ctx context.Context, orderID string) (Order, error)
	// CancelSubOrder marks the shop's sub-order cancelled with the given
	// reason. Legal only while the sub-order is pending or preparing;
	// otherwise ErrSubOrderNotCancellable. A second cancel of an already
	// cancelled sub-order returns ErrSubOrderAlreadyCancelled, never a
	// silent second mutation.
	CancelSubOrder(ctx context.Context, orderID, shopID, reason string) (ShopSubOrder, error)
}

// ShopGateway mutates a shop's trading schedule. All three operations are
// idempotent and return the schedule as persisted.
type ShopGateway interface {
	CloseToday(ctx context.Context, shopID string) (ShopSchedule, error)
	CloseForDays(ctx context.Context, shopID string, days int) (ShopSchedule, error)
	TemporaryClose(ctx context.Context, shopID, reopenTime string) (ShopSchedule, error)
}

// QuotaGateway reads the operator's rolling cancellation count. Display
// only; enforcement, if any, is server-side and out of this flow.
type QuotaGateway interface {
	GetCancellationCount(ctx context.Context, operatorID string) (int, error)
}

// ScheduleCache is the shared shop-state cache the rest of the application
// renders open/closed badges from. The flow must push every schedule it
// receives back from an effector into this cache.
type ScheduleCache interface {
	Put(schedule ShopSchedule)
	Get(shopID string) (ShopSchedule, bool)
}

// SchedulePublisher fans schedule changes out to interested components
// (dashboard, search index). Best effort: a publish failure is logged and
// never blocks the flow.
type SchedulePublisher interface {
	PublishScheduleChanged(schedule ShopSchedule) error
	PublishSubOrderCancelled(orderID, shopID, reason string, at time.Time) error
}
