package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

func sampleOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		SubOrders: []domain.ShopSubOrder{{
			ShopID:        "shop-1",
			Status:        domain.SubOrderStatusPending,
			SubtotalMinor: 6000,
			Items: []domain.LineItem{
				{ID: "item-1", Name: "Pad thai", PriceMinor: 6000, Qty: 1},
			},
		}},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepositoryCreateGet(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, sampleOrder()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, sampleOrder()); err == nil {
		t.Fatal("duplicate create must fail")
	}

	got, err := repo.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "order-1" || len(got.SubOrders) != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := repo.Get(ctx, "order-404"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("unknown order: got %v", err)
	}
}

func TestOrderRepositorySaveVersioning(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, sampleOrder()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	order, _ := repo.Get(ctx, "order-1")
	order.SubOrders[0].Status = domain.SubOrderStatusCancelled
	if err := repo.Save(ctx, order); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Saving with the stale version must clash.
	if err := repo.Save(ctx, order); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("stale save: got %v", err)
	}

	fresh, _ := repo.Get(ctx, "order-1")
	if fresh.Version != 1 {
		t.Fatalf("version: got %d, want 1", fresh.Version)
	}
}

func TestOrderRepositoryClonesState(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, sampleOrder()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := repo.Get(ctx, "order-1")
	got.SubOrders[0].Status = domain.SubOrderStatusDelivered
	got.SubOrders[0].Items[0].Name = "mutated"

	fresh, _ := repo.Get(ctx, "order-1")
	if fresh.SubOrders[0].Status != domain.SubOrderStatusPending {
		t.Fatal("stored order mutated through a returned copy")
	}
	if fresh.SubOrders[0].Items[0].Name != "Pad thai" {
		t.Fatal("stored items mutated through a returned copy")
	}
}

func TestCancellationLog(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, at := range []time.Time{now.Add(-time.Hour), now.Add(-48 * time.Hour), now} {
		if err := repo.RecordCancellation(ctx, "operator-1", at); err != nil {
			t.Fatalf("RecordCancellation: %v", err)
		}
	}

	count, err := repo.CancellationCountSince(ctx, "operator-1", now.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("CancellationCountSince: %v", err)
	}
	if count != 2 {
		t.Fatalf("count: got %d, want 2", count)
	}
}
