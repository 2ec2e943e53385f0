package memory

import (
	"context"
	"sync"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

type shopRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Shop
}

// NewShopRepository returns an in-memory ShopRepository.
func NewShopRepository() domain.ShopRepository {
	return &shopRepositoryInMemory{items: make(map[string]domain.Shop)}
}

func (r *shopRepositoryInMemory) Create(_ context.Context, shop domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[shop.ID]; exists {
		return domain.ErrShopVersionConflict
	}
	r.items[shop.ID] = shop
	return nil
}

func (r *shopRepositoryInMemory) Get(_ context.Context, id string) (domain.Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shop, ok := r.items[id]
	if !ok {
		return domain.Shop{}, domain.ErrShopNotFound
	}
	return shop, nil
}

func (r *shopRepositoryInMemory) SaveSchedule(_ context.Context, shopID string, schedule domain.ShopSchedule, version int64) (domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shop, ok := r.items[shopID]
	if !ok {
		return domain.Shop{}, domain.ErrShopNotFound
	}
	if shop.Version != version {
		return domain.Shop{}, domain.ErrShopVersionConflict
	}
	schedule.ShopID = shopID
	shop.Schedule = schedule
	shop.Version++
	r.items[shopID] = shop
	return shop, nil
}

var _ domain.ShopRepository = (*shopRepositoryInMemory)(nil)
