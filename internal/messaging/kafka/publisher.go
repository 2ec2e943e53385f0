package kafka

import (
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

// SchedulePublisher adapts the Producer to the domain publishing port.
type SchedulePublisher struct {
	producer *Producer
}

// NewSchedulePublisher wraps a producer.
func NewSchedulePublisher(producer *Producer) *SchedulePublisher {
	return &SchedulePublisher{producer: producer}
}

// PublishScheduleChanged fans a schedule mutation out on the shop topic.
func (p *SchedulePublisher) PublishScheduleChanged(schedule domain.ShopSchedule) error {
	event := ScheduleChangedEvent{
		EventType:  EventTypeScheduleChanged,
		ShopID:     schedule.ShopID,
		IsOpen:     schedule.IsOpen,
		ReopenTime: schedule.ReopenTime,
		Timestamp:  time.Now().UTC(),
	}
	if !schedule.TemporaryClosureUntil.IsZero() {
		event.ClosureUntil = schedule.TemporaryClosureUntil.Format(time.DateOnly)
	}
	return p.producer.PublishEvent(TopicShopEvents, schedule.ShopID, event)
}

// PublishSubOrderCancelled announces a committed cancellation on the order
// topic.
func (p *SchedulePublisher) PublishSubOrderCancelled(orderID, shopID, reason string, at time.Time) error {
	event := SubOrderCancelledEvent{
		EventType: EventTypeSubOrderCancelled,
		OrderID:   orderID,
		ShopID:    shopID,
		Reason:    reason,
		Timestamp: at.UTC(),
	}
	return p.producer.PublishEvent(TopicOrderEvents, orderID, event)
}

var _ domain.SchedulePublisher = (*SchedulePublisher)(nil)
