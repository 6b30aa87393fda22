package service

import (
	"context"
	"time"

	"go-merchant/internal/models"
	"go-merchant/internal/repository"

	"go.uber.org/zap"
)

// CashbackSyncer reconciles cashback grants into the customer app store.
type CashbackSyncer struct {
	cashbacks   repository.CashbackRepository
	destination repository.DestinationStore
	logger      *zap.Logger
}

func NewCashbackSyncer(cashbacks repository.CashbackRepository, destination repository.DestinationStore, logger *zap.Logger) *CashbackSyncer {
	return &CashbackSyncer{
		cashbacks:   cashbacks,
		destination: destination,
		logger:      logger,
	}
}

func (s *CashbackSyncer) Type() models.SyncType {
	return models.SyncTypeCashback
}

func (s *CashbackSyncer) Sync(ctx context.Context, merchantID string, since *time.Time, batchSize int64) models.EntitySyncResult {
	var res models.EntitySyncResult

	cashbacks, err := s.cashbacks.ListModifiedSince(ctx, merchantID, since, batchSize)
	if err != nil {
		recordError(&res, "cashback: failed to fetch source records: %v", err)
		return res
	}

	for _, cashback := range cashbacks {
		projection := models.CustomerAppCashback{
			CashbackID:     cashback.ID.Hex(),
			MerchantID:     cashback.MerchantID,
			CustomerID:     cashback.CustomerID,
			OrderID:        cashback.OrderID,
			Amount:         cashback.Amount,
			ApprovedAmount: cashback.ApprovedAmount,
			Status:         cashback.Status,
			SyncedAt:       time.Now(),
		}

		created, err := s.destination.UpsertCashback(ctx, projection)
		if err != nil {
			recordError(&res, "cashback: failed to upsert %s: %v", cashback.ID.Hex(), err)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if res.Errors > 0 {
		s.logger.Warn("cashback sync finished with errors",
			zap.String("merchantId", merchantID),
			zap.Int("errors", res.Errors))
	}

	return res
}
