package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

func TestShopRepositorySaveSchedule(t *testing.T) {
	repo := NewShopRepository()
	ctx := context.Background()

	shop := domain.Shop{
		ID:       "shop-1",
		Name:     "Noodle House",
		Schedule: domain.ShopSchedule{ShopID: "shop-1", IsOpen: true},
	}
	if err := repo.Create(ctx, shop); err != nil {
		t.Fatalf("Create: %v", err)
	}

	closed := domain.ShopSchedule{IsOpen: false, ReopenTime: "14:30", UpdatedAt: time.Now().UTC()}
	saved, err := repo.SaveSchedule(ctx, "shop-1", closed, 0)
	if err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if saved.Version != 1 || saved.Schedule.IsOpen || saved.Schedule.ShopID != "shop-1" {
		t.Fatalf("saved shop: %+v", saved)
	}

	if _, err := repo.SaveSchedule(ctx, "shop-1", closed, 0); !errors.Is(err, domain.ErrShopVersionConflict) {
		t.Fatalf("stale version: got %v", err)
	}
	if _, err := repo.SaveSchedule(ctx, "shop-404", closed, 0); !errors.Is(err, domain.ErrShopNotFound) {
		t.Fatalf("unknown shop: got %v", err)
	}
}

func TestScheduleCache(t *testing.T) {
	cache := NewScheduleCache()

	if _, ok := cache.Get("shop-1"); ok {
		t.Fatal("empty cache must miss")
	}

	cache.Put(domain.ShopSchedule{ShopID: "shop-1", IsOpen: false, ReopenTime: "15:00"})
	sched, ok := cache.Get("shop-1")
	if !ok || sched.IsOpen || sched.ReopenTime != "15:00" {
		t.Fatalf("cached schedule: %+v ok=%v", sched, ok)
	}

	// Later writes win.
	cache.Put(domain.ShopSchedule{ShopID: "shop-1", IsOpen: true})
	sched, _ = cache.Get("shop-1")
	if !sched.IsOpen {
		t.Fatal("cache must hold the latest schedule")
	}
}

func TestTimelineRepository(t *testing.T) {
	repo := NewTimelineRepository()
	ctx := context.Background()

	events := []domain.TimelineEvent{
		{OrderID: "order-1", ShopID: "shop-1", Type: domain.TimelineCancellationStarted},
		{OrderID: "order-1", ShopID: "shop-1", Type: domain.TimelineSubOrderCancelled, Detail: "Out of stock"},
		{OrderID: "order-2", ShopID: "shop-2", Type: domain.TimelineCancellationStarted},
	}
	for _, ev := range events {
		if err := repo.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := repo.List(ctx, "order-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Type != domain.TimelineCancellationStarted || got[1].Detail != "Out of stock" {
		t.Fatalf("timeline: %+v", got)
	}

	empty, err := repo.List(ctx, "order-404")
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown order timeline: %v %v", empty, err)
	}
}
