package service

import (
	"context"
	"time"

	"go-merchant/internal/models"
	"go-merchant/internal/repository"

	"go.uber.org/zap"
)

// OrderSyncer reconciles orders into the customer app store.
type OrderSyncer struct {
	orders      repository.OrderRepository
	destination repository.DestinationStore
	logger      *zap.Logger
}

func NewOrderSyncer(orders repository.OrderRepository, destination repository.DestinationStore, logger *zap.Logger) *OrderSyncer {
	return &OrderSyncer{
		orders:      orders,
		destination: destination,
		logger:      logger,
	}
}

func (s *OrderSyncer) Type() models.SyncType {
	return models.SyncTypeOrders
}

func (s *OrderSyncer) Sync(ctx context.Context, merchantID string, since *time.Time, batchSize int64) models.EntitySyncResult {
	var res models.EntitySyncResult

	orders, err := s.orders.ListModifiedSince(ctx, merchantID, since, batchSize)
	if err != nil {
		recordError(&res, "orders: failed to fetch source records: %v", err)
		return res
	}

	for _, order := range orders {
		itemCount := 0
		for _, item := range order.Items {
			itemCount += item.Quantity
		}

		projection := models.CustomerAppOrder{
			OrderID:    order.ID.Hex(),
			MerchantID: order.MerchantID,
			CustomerID: order.CustomerID,
			ItemCount:  itemCount,
			Total:      order.Total,
			Currency:   order.Currency,
			Status:     order.Status,
			StatusText: OrderStatusMessage(order.Status),
			PlacedAt:   order.CreatedAt,
			SyncedAt:   time.Now(),
		}

		created, err := s.destination.UpsertOrder(ctx, projection)
		if err != nil {
			recordError(&res, "orders: failed to upsert %s: %v", order.ID.Hex(), err)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if res.Errors > 0 {
		s.logger.Warn("order sync finished with errors",
			zap.String("merchantId", merchantID),
			zap.Int("errors", res.Errors))
	}

	return res
}
