package domain

import "time"

// Timeline event types appended by the cancellation flow.
const (
	TimelineCancellationStarted = "CancellationStarted"
	TimelineShopScheduleChanged = "ShopScheduleChanged"
	TimelineOutOfStockFlagged   = "OutOfStockFlagged"
	TimelineSubOrderCancelled   = "SubOrderCancelled"
)

// TimelineEvent is one entry in an order's audit trail.
type TimelineEvent struct {
	OrderID  string
	ShopID   string
	Type     string
	Detail   string
	Occurred time.Time
}
