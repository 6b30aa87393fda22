package repository

import (
	"context"
	"fmt"

	"go-merchant/internal/config"
	"go-merchant/internal/database"
	"go-merchant/internal/models"
)

// DestinationStore writes customer-app projections into the customer app's
// own data store. Upserts report whether the record was created so syncers
// can keep created/updated counters apart.
type DestinationStore interface {
	UpsertProduct(ctx context.Context, merchantID, productID string, doc map[string]interface{}) (created bool, err error)
	RemoveProduct(ctx context.Context, merchantID, productID string) error
	UpsertOrder(ctx context.Context, order models.CustomerAppOrder) (created bool, err error)
	UpsertCashback(ctx context.Context, cashback models.CustomerAppCashback) (created bool, err error)
	UpsertMerchant(ctx context.Context, merchant models.CustomerAppMerchant) error
}

// NewDestinationStore selects the destination implementation from config.
func NewDestinationStore(cfg *config.Config, db *database.CustomerAppDB) (DestinationStore, error) {
	switch cfg.CustomerAppDBType {
	case "mongodb":
		return NewMongoDestinationStore(db), nil
	case "postgres":
		return NewPostgresDestinationStore(cfg.CustomerAppPgDSN)
	default:
		return nil, fmt.Errorf("unsupported customer app DB type: %s", cfg.CustomerAppDBType)
	}
}
