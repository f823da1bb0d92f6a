// Package orders persists confirmed orders in Postgres. The archive is
// bookkeeping outside the conversation: the attendant confirms the
// order first and archives best-effort afterwards.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/graphmind/pastelaria/agent/contract"
)

type Config struct {
	DSN          string `split_words:"true"`
	QueryTimeout int    `split_words:"true" default:"5"`
}

// Enabled reports whether an archive DSN was configured at all.
func (c Config) Enabled() bool {
	return c.DSN != ""
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders"`

	ID              int64           `bun:"id,pk,autoincrement"`
	SessionID       string          `bun:"session_id,notnull"`
	CustomerName    string          `bun:"customer_name,notnull"`
	DeliveryAddress string          `bun:"delivery_address,notnull"`
	PaymentMethod   string          `bun:"payment_method,notnull"`
	Items           json.RawMessage `bun:"items,type:jsonb,notnull"`
	Total           decimal.Decimal `bun:"total,type:numeric,notnull"`
	ConfirmedAt     time.Time       `bun:"confirmed_at,notnull"`
}

// Store is the Postgres-backed order archive.
type Store struct {
	db      *bun.DB
	timeout time.Duration
}

var _ contractx.OrderArchiver = (*Store)(nil)

// New opens the archive and ensures the orders table exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("orders: dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	timeout := time.Duration(cfg.QueryTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	store := &Store{db: db, timeout: timeout}

	initCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := db.NewCreateTable().Model((*orderRow)(nil)).IfNotExists().Exec(initCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("orders: create table: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Archive inserts one confirmed order.
func (s *Store) Archive(ctx context.Context, order contractx.Order) error {
	row, err := buildRow(order)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	return nil
}

func buildRow(order contractx.Order) (orderRow, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return orderRow{}, fmt.Errorf("orders: marshal items: %w", err)
	}

	confirmedAt := order.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now().UTC()
	}

	return orderRow{
		SessionID:       order.SessionID,
		CustomerName:    order.CustomerName,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		Items:           items,
		Total:           order.Total,
		ConfirmedAt:     confirmedAt,
	}, nil
}
