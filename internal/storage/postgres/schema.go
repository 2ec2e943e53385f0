package postgres

import (
	"context"
	"fmt"
	"time"
)

// Schema DDL is idempotent so EnsureSchema can run on every boot as well as
// from cmd/migrate.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS orders (
    id             TEXT PRIMARY KEY,
    customer_id    TEXT NOT NULL,
    customer_name  TEXT NOT NULL DEFAULT '',
    customer_phone TEXT NOT NULL DEFAULT '',
    version        BIGINT NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sub_orders (
    order_id       TEXT NOT NULL REFERENCES orders (id),
    shop_id        TEXT NOT NULL,
    shop_name      TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL,
    subtotal_minor BIGINT NOT NULL DEFAULT 0,
    items          JSONB NOT NULL DEFAULT '[]',
    cancel_reason  TEXT NOT NULL DEFAULT '',
    updated_at     TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (order_id, shop_id)
);

CREATE TABLE IF NOT EXISTS shops (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    campus        TEXT NOT NULL DEFAULT '',
    is_open       BOOLEAN NOT NULL DEFAULT TRUE,
    reopen_time   TEXT NOT NULL DEFAULT '',
    closure_until TIMESTAMPTZ,
    version       BIGINT NOT NULL DEFAULT 0,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_timeline (
    id       BIGSERIAL PRIMARY KEY,
    order_id TEXT NOT NULL,
    shop_id  TEXT NOT NULL DEFAULT '',
    type     TEXT NOT NULL,
    detail   TEXT NOT NULL DEFAULT '',
    occurred TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_timeline_order ON order_timeline (order_id, occurred);

CREATE TABLE IF NOT EXISTS operator_cancellations (
    operator_id TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operator_cancellations ON operator_cancellations (operator_id, occurred_at);
`

// EnsureSchema applies the schema. Safe to call repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	execCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(execCtx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
