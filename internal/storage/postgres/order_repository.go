package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

const opTimeout = 5 * time.Second

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates the PostgreSQL OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_id, customer_name, customer_phone, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		order.ID, order.CustomerID, order.CustomerName, order.CustomerPhone,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, sub := range order.SubOrders {
		if err = r.insertSubOrder(ctx, tx, order.ID, sub); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderRepository) insertSubOrder(ctx context.Context, tx *sql.Tx, orderID string, sub domain.ShopSubOrder) error {
	items, err := json.Marshal(sub.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sub_orders (
			order_id, shop_id, shop_name, status, subtotal_minor, items, cancel_reason, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		orderID, sub.ShopID, sub.ShopName, string(sub.Status), sub.SubtotalMinor,
		items, sub.CancelReason, sub.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert sub-order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, customer_name, customer_phone, version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.CustomerName, &order.CustomerPhone,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	subs, err := r.loadSubOrders(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.SubOrders = subs

	return order, nil
}

func (r *orderRepository) loadSubOrders(ctx context.Context, orderID string) ([]domain.ShopSubOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT shop_id, shop_name, status, subtotal_minor, items, cancel_reason, updated_at
		FROM sub_orders
		WHERE order_id = $1
		ORDER BY shop_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select sub-orders: %w", err)
	}
	defer rows.Close()

	subs := make([]domain.ShopSubOrder, 0)
	for rows.Next() {
		var (
			sub    domain.ShopSubOrder
			status string
			items  []byte
		)
		if err := rows.Scan(
			&sub.ShopID, &sub.ShopName, &status, &sub.SubtotalMinor,
			&items, &sub.CancelReason, &sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sub-order row: %w", err)
		}
		sub.Status = domain.SubOrderStatus(status)
		if err := json.Unmarshal(items, &sub.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Save rewrites the order and its sub-orders, bumping the version guarded by
// optimistic locking.
func (r *orderRepository) Save(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET updated_at = $1, version = version + 1
		WHERE id = $2 AND version = $3
	`, order.UpdatedAt, order.ID, order.Version)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or the version is stale.
		var exists bool
		if qErr := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); qErr != nil {
			err = fmt.Errorf("check order exists: %w", qErr)
			return err
		}
		if !exists {
			err = domain.ErrOrderNotFound
			return err
		}
		err = domain.ErrOrderVersionConflict
		return err
	}

	for _, sub := range order.SubOrders {
		items, mErr := json.Marshal(sub.Items)
		if mErr != nil {
			err = fmt.Errorf("marshal items: %w", mErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE sub_orders
			SET status = $1, subtotal_minor = $2, items = $3, cancel_reason = $4, updated_at = $5
			WHERE order_id = $6 AND shop_id = $7
		`,
			string(sub.Status), sub.SubtotalMinor, items, sub.CancelReason,
			sub.UpdatedAt, order.ID, sub.ShopID,
		); err != nil {
			return fmt.Errorf("update sub-order: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save order: %w", err)
	}
	return nil
}

func (r *orderRepository) RecordCancellation(ctx context.Context, operatorID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO operator_cancellations (operator_id, occurred_at) VALUES ($1, $2)
	`, operatorID, at); err != nil {
		return fmt.Errorf("insert cancellation record: %w", err)
	}
	return nil
}

func (r *orderRepository) CancellationCountSince(ctx context.Context, operatorID string, since time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM operator_cancellations
		WHERE operator_id = $1 AND occurred_at >= $2
	`, operatorID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cancellations: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ domain.OrderRepository = (*orderRepository)(nil)
