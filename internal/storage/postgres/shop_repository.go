package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

type shopRepository struct {
	db *sql.DB
}

// NewShopRepository creates the PostgreSQL ShopRepository.
func NewShopRepository(store *Store) domain.ShopRepository {
	return &shopRepository{db: store.DB()}
}

func (r *shopRepository) Create(ctx context.Context, shop domain.Shop) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var closureUntil any
	if !shop.Schedule.TemporaryClosureUntil.IsZero() {
		closureUntil = shop.Schedule.TemporaryClosureUntil
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO shops (id, name, campus, is_open, reopen_time, closure_until, version, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
	`,
		shop.ID, shop.Name, shop.Campus, shop.Schedule.IsOpen,
		shop.Schedule.ReopenTime, closureUntil, shop.Version,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrShopVersionConflict
		}
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

func (r *shopRepository) Get(ctx context.Context, id string) (domain.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		shop         domain.Shop
		closureUntil sql.NullTime
		updatedAt    time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, campus, is_open, reopen_time, closure_until, version, updated_at
		FROM shops
		WHERE id = $1
	`, id).Scan(
		&shop.ID, &shop.Name, &shop.Campus, &shop.Schedule.IsOpen,
		&shop.Schedule.ReopenTime, &closureUntil, &shop.Version, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shop{}, domain.ErrShopNotFound
		}
		return domain.Shop{}, fmt.Errorf("select shop: %w", err)
	}

	shop.Schedule.ShopID = shop.ID
	shop.Schedule.UpdatedAt = updatedAt
	if closureUntil.Valid {
		shop.Schedule.TemporaryClosureUntil = closureUntil.Time
	}
	return shop, nil
}

func (r *shopRepository) SaveSchedule(ctx context.Context, shopID string, schedule domain.ShopSchedule, version int64) (domain.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var closureUntil any
	if !schedule.TemporaryClosureUntil.IsZero() {
		closureUntil = schedule.TemporaryClosureUntil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE shops
		SET is_open = $1, reopen_time = $2, closure_until = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`, schedule.IsOpen, schedule.ReopenTime, closureUntil, schedule.UpdatedAt, shopID, version)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("update shop schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Shop{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if qErr := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM shops WHERE id = $1)`, shopID).Scan(&exists); qErr != nil {
			return domain.Shop{}, fmt.Errorf("check shop exists: %w", qErr)
		}
		if !exists {
			return domain.Shop{}, domain.ErrShopNotFound
		}
		return domain.Shop{}, domain.ErrShopVersionConflict
	}

	return r.Get(ctx, shopID)
}

var _ domain.ShopRepository = (*shopRepository)(nil)
