package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go-merchant/internal/models"

	_ "github.com/lib/pq"
)

// PostgresDestinationStore is the alternate destination for customer app
// deployments backed by Postgres. Projections are stored as JSONB payloads
// keyed by their external IDs.
type PostgresDestinationStore struct {
	db *sql.DB
}

func NewPostgresDestinationStore(dsn string) (*PostgresDestinationStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("customer app postgres DSN is empty")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %v", err)
	}

	return &PostgresDestinationStore{db: db}, nil
}

func (s *PostgresDestinationStore) UpsertProduct(ctx context.Context, merchantID, productID string, doc map[string]interface{}) (bool, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal product payload: %v", err)
	}
	return s.upsert(ctx, "customer_app_products", "product_id", productID, merchantID, payload)
}

func (s *PostgresDestinationStore) RemoveProduct(ctx context.Context, merchantID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM customer_app_products WHERE merchant_id = $1 AND product_id = $2",
		merchantID, productID,
	)
	return err
}

func (s *PostgresDestinationStore) UpsertOrder(ctx context.Context, order models.CustomerAppOrder) (bool, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return false, fmt.Errorf("failed to marshal order payload: %v", err)
	}
	return s.upsert(ctx, "customer_app_orders", "order_id", order.OrderID, order.MerchantID, payload)
}

func (s *PostgresDestinationStore) UpsertCashback(ctx context.Context, cashback models.CustomerAppCashback) (bool, error) {
	payload, err := json.Marshal(cashback)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cashback payload: %v", err)
	}
	return s.upsert(ctx, "customer_app_cashbacks", "cashback_id", cashback.CashbackID, cashback.MerchantID, payload)
}

func (s *PostgresDestinationStore) UpsertMerchant(ctx context.Context, merchant models.CustomerAppMerchant) error {
	payload, err := json.Marshal(merchant)
	if err != nil {
		return fmt.Errorf("failed to marshal merchant payload: %v", err)
	}
	_, err = s.upsert(ctx, "customer_app_merchants", "merchant_key", merchant.MerchantID, merchant.MerchantID, payload)
	return err
}

// upsert tries UPDATE first and falls back to INSERT, so the caller learns
// whether the row was created.
func (s *PostgresDestinationStore) upsert(ctx context.Context, table, idColumn, id, merchantID string, payload []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET payload = $1, synced_at = $2 WHERE %s = $3 AND merchant_id = $4", table, idColumn),
		payload, time.Now(), id, merchantID,
	)
	if err != nil {
		return false, err
	}

	affected, _ := res.RowsAffected()
	if affected > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s, merchant_id, payload, synced_at) VALUES ($1, $2, $3, $4)", table, idColumn),
		id, merchantID, payload, time.Now(),
	)
	if err != nil {
		return false, err
	}

	return true, nil
}
