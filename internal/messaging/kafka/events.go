package kafka

import "time"

// EventType tags a published event.
type EventType string

const (
	EventTypeScheduleChanged   EventType = "shop.schedule.changed"
	EventTypeSubOrderCancelled EventType = "order.suborder.cancelled"
)

// Topics.
const (
	TopicShopEvents  = "canteen.shop.events"
	TopicOrderEvents = "canteen.order.events"
)

// ScheduleChangedEvent tells dashboard/search consumers a shop's trading
// schedule moved.
type ScheduleChangedEvent struct {
	EventType    EventType `json:"event_type"`
	ShopID       string    `json:"shop_id"`
	IsOpen       bool      `json:"is_open"`
	ReopenTime   string    `json:"reopen_time,omitempty"`
	ClosureUntil string    `json:"closure_until,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// SubOrderCancelledEvent announces a committed cancellation so notification
// and reporting consumers can react.
type SubOrderCancelledEvent struct {
	EventType EventType `json:"event_type"`
	OrderID   string    `json:"order_id"`
	ShopID    string    `json:"shop_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
