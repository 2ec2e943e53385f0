package kafka

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

func newTestProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}
	return producer, mockProducer
}

func TestProducer_PublishEvent(t *testing.T) {
	producer, mockProducer := newTestProducer(t)

	mockProducer.ExpectSendMessageAndSucceed()

	event := SubOrderCancelledEvent{
		EventType: EventTypeSubOrderCancelled,
		OrderID:   "order-1",
		ShopID:    "shop-1",
		Reason:    "Out of stock",
		Timestamp: time.Now().UTC(),
	}

	err := producer.PublishEvent(TopicOrderEvents, "order-1", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	producer, mockProducer := newTestProducer(t)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := SubOrderCancelledEvent{
		EventType: EventTypeSubOrderCancelled,
		OrderID:   "order-1",
	}

	err := producer.PublishEvent(TopicOrderEvents, "order-1", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSchedulePublisher_PublishScheduleChanged(t *testing.T) {
	producer, mockProducer := newTestProducer(t)
	publisher := NewSchedulePublisher(producer)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event ScheduleChangedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeScheduleChanged {
			return fmt.Errorf("expected event type %s, got %s", EventTypeScheduleChanged, event.EventType)
		}
		if event.ShopID != "shop-1" {
			return fmt.Errorf("expected shop id shop-1, got %s", event.ShopID)
		}
		if event.IsOpen {
			return fmt.Errorf("expected is_open false")
		}
		if event.ReopenTime != "14:30" {
			return fmt.Errorf("expected reopen time 14:30, got %q", event.ReopenTime)
		}
		if event.ClosureUntil != "" {
			return fmt.Errorf("expected empty closure_until, got %q", event.ClosureUntil)
		}
		if event.Timestamp.IsZero() {
			return fmt.Errorf("timestamp should not be zero")
		}
		return nil
	})

	err := publisher.PublishScheduleChanged(domain.ShopSchedule{
		ShopID:     "shop-1",
		IsOpen:     false,
		ReopenTime: "14:30",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSchedulePublisher_PublishScheduleChanged_ClosureUntil(t *testing.T) {
	producer, mockProducer := newTestProducer(t)
	publisher := NewSchedulePublisher(producer)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event ScheduleChangedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.ClosureUntil != "2025-06-05" {
			return fmt.Errorf("expected closure_until 2025-06-05, got %q", event.ClosureUntil)
		}
		if event.ReopenTime != "" {
			return fmt.Errorf("expected empty reopen_time, got %q", event.ReopenTime)
		}
		return nil
	})

	err := publisher.PublishScheduleChanged(domain.ShopSchedule{
		ShopID:                "shop-1",
		IsOpen:                false,
		TemporaryClosureUntil: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSchedulePublisher_PublishSubOrderCancelled(t *testing.T) {
	producer, mockProducer := newTestProducer(t)
	publisher := NewSchedulePublisher(producer)

	at := time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event SubOrderCancelledEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeSubOrderCancelled {
			return fmt.Errorf("expected event type %s, got %s", EventTypeSubOrderCancelled, event.EventType)
		}
		if event.OrderID != "order-1" {
			return fmt.Errorf("expected order id order-1, got %s", event.OrderID)
		}
		if event.ShopID != "shop-1" {
			return fmt.Errorf("expected shop id shop-1, got %s", event.ShopID)
		}
		if event.Reason != "Restaurant is closed" {
			return fmt.Errorf("unexpected reason %q", event.Reason)
		}
		if !event.Timestamp.Equal(at) {
			return fmt.Errorf("expected timestamp %v, got %v", at, event.Timestamp)
		}
		return nil
	})

	err := publisher.PublishSubOrderCancelled("order-1", "shop-1", "Restaurant is closed", at)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSchedulePublisher_PublishSubOrderCancelled_Error(t *testing.T) {
	producer, mockProducer := newTestProducer(t)
	publisher := NewSchedulePublisher(producer)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.PublishSubOrderCancelled("order-1", "shop-1", "Out of stock", time.Now())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
