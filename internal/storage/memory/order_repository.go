package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

// orderRepositoryInMemory backs local development and tests.
type orderRepositoryInMemory struct {
	mu            sync.RWMutex
	items         map[string]domain.Order
	cancellations map[string][]time.Time
}

// NewOrderRepository returns an in-memory OrderRepository.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items:         make(map[string]domain.Order),
		cancellations: make(map[string][]time.Time),
	}
}

// Create stores a new order unless the ID is taken.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Get returns a copy of the order or ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// Save overwrites the order under optimistic locking.
func (r *orderRepositoryInMemory) Save(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	order.Version++
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// RecordCancellation appends to the operator's cancellation log.
func (r *orderRepositoryInMemory) RecordCancellation(_ context.Context, operatorID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancellations[operatorID] = append(r.cancellations[operatorID], at)
	return nil
}

// CancellationCountSince counts log entries at or after since.
func (r *orderRepositoryInMemory) CancellationCountSince(_ context.Context, operatorID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, at := range r.cancellations[operatorID] {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

// cloneOrder deep-copies so callers cannot mutate stored state.
func cloneOrder(order domain.Order) domain.Order {
	out := order
	out.SubOrders = make([]domain.ShopSubOrder, len(order.SubOrders))
	for i, sub := range order.SubOrders {
		cp := sub
		cp.Items = make([]domain.LineItem, len(sub.Items))
		for j, item := range sub.Items {
			ic := item
			ic.Options = append([]domain.OptionChoice(nil), item.Options...)
			cp.Items[j] = ic
		}
		out.SubOrders[i] = cp
	}
	return out
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
