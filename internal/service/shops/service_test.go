package shops

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
	"github.com/nattawatt/canteen-cancellation/internal/storage/memory"
)

func seedShop(t *testing.T, repo domain.ShopRepository) {
	t.Helper()

	shop := domain.Shop{
		ID:     "shop-1",
		Name:   "Noodle House",
		Campus: "north",
		Schedule: domain.ShopSchedule{
			ShopID: "shop-1",
			IsOpen: true,
		},
	}
	if err := repo.Create(context.Background(), shop); err != nil {
		t.Fatalf("seed shop: %v", err)
	}
}

func TestCloseToday(t *testing.T) {
	repo := memory.NewShopRepository()
	seedShop(t, repo)
	svc := NewService(repo, nil)

	sched, err := svc.CloseToday(context.Background(), "shop-1")
	if err != nil {
		t.Fatalf("CloseToday: %v", err)
	}
	if sched.IsOpen {
		t.Fatal("shop must be closed")
	}
	today := startOfDay(time.Now().UTC())
	if !sched.TemporaryClosureUntil.Equal(today) {
		t.Fatalf("closure until: got %s, want %s", sched.TemporaryClosureUntil, today)
	}
	if sched.ReopenTime != "" {
		t.Fatalf("reopen time must be cleared, got %q", sched.ReopenTime)
	}
}

func TestCloseForDays(t *testing.T) {
	repo := memory.NewShopRepository()
	seedShop(t, repo)
	svc := NewService(repo, nil)

	if _, err := svc.CloseForDays(context.Background(), "shop-1", 0); !errors.Is(err, domain.ErrClosureDaysInvalid) {
		t.Fatalf("zero days: got %v", err)
	}

	sched, err := svc.CloseForDays(context.Background(), "shop-1", 4)
	if err != nil {
		t.Fatalf("CloseForDays: %v", err)
	}
	want := startOfDay(time.Now().UTC()).AddDate(0, 0, 3)
	if !sched.TemporaryClosureUntil.Equal(want) {
		t.Fatalf("closure until: got %s, want %s", sched.TemporaryClosureUntil, want)
	}

	// One day means today only.
	sched, err = svc.CloseForDays(context.Background(), "shop-1", 1)
	if err != nil {
		t.Fatalf("CloseForDays(1): %v", err)
	}
	if !sched.TemporaryClosureUntil.Equal(startOfDay(time.Now().UTC())) {
		t.Fatalf("closure until for one day: got %s", sched.TemporaryClosureUntil)
	}
}

func TestTemporaryClose(t *testing.T) {
	repo := memory.NewShopRepository()
	seedShop(t, repo)
	svc := NewService(repo, nil)

	if _, err := svc.TemporaryClose(context.Background(), "shop-1", "9:30"); !errors.Is(err, domain.ErrReopenTimeInvalid) {
		t.Fatalf("single-digit hour: got %v", err)
	}

	sched, err := svc.TemporaryClose(context.Background(), "shop-1", "14:30")
	if err != nil {
		t.Fatalf("TemporaryClose: %v", err)
	}
	if sched.IsOpen || sched.ReopenTime != "14:30" {
		t.Fatalf("schedule: %+v", sched)
	}
	if !sched.TemporaryClosureUntil.IsZero() {
		t.Fatalf("temporary close must not set a closure date, got %s", sched.TemporaryClosureUntil)
	}

	stored, err := repo.Get(context.Background(), "shop-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Schedule.ReopenTime != "14:30" {
		t.Fatalf("persisted reopen time: %q", stored.Schedule.ReopenTime)
	}
}

func TestUnknownShop(t *testing.T) {
	repo := memory.NewShopRepository()
	svc := NewService(repo, nil)

	if _, err := svc.CloseToday(context.Background(), "shop-404"); !errors.Is(err, domain.ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}
