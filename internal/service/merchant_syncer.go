package service

import (
	"context"
	"time"

	"go-merchant/internal/models"
	"go-merchant/internal/repository"
	"go-merchant/pkg/utils"

	"go.uber.org/zap"
)

// MerchantSyncer pushes the merchant profile to the customer app store. The
// profile is a single record, so the result only reports Updated and Errors.
type MerchantSyncer struct {
	merchants   repository.MerchantRepository
	destination repository.DestinationStore
	logger      *zap.Logger
}

func NewMerchantSyncer(merchants repository.MerchantRepository, destination repository.DestinationStore, logger *zap.Logger) *MerchantSyncer {
	return &MerchantSyncer{
		merchants:   merchants,
		destination: destination,
		logger:      logger,
	}
}

func (s *MerchantSyncer) Type() models.SyncType {
	return models.SyncTypeMerchant
}

func (s *MerchantSyncer) Sync(ctx context.Context, merchantID string, since *time.Time, batchSize int64) models.EntitySyncResult {
	var res models.EntitySyncResult

	profile, err := s.merchants.GetProfile(ctx, merchantID)
	if err != nil {
		recordError(&res, "merchant: failed to fetch profile: %v", err)
		return res
	}

	projection := models.CustomerAppMerchant{
		MerchantID:  profile.MerchantID,
		Name:        profile.Name,
		Slug:        utils.Slugify(profile.Name),
		Description: profile.Description,
		LogoURL:     profile.LogoURL,
		Address:     profile.Address,
		Categories:  profile.Categories,
		IsOpen:      profile.IsOpen,
		Followers:   profile.Followers,
		SyncedAt:    time.Now(),
	}

	if err := s.destination.UpsertMerchant(ctx, projection); err != nil {
		recordError(&res, "merchant: failed to upsert profile: %v", err)
		return res
	}

	res.Updated = 1
	s.logger.Debug("merchant profile synced", zap.String("merchantId", merchantID))
	return res
}
