package service

import (
	"context"
	"time"

	"go-merchant/internal/models"
	"go-merchant/internal/repository"
	"go-merchant/pkg/utils"

	"go.uber.org/zap"
)

// ProductSyncer reconciles the product catalog, including soft-delete
// propagation: products flagged deleted or deactivated at the source are
// removed at the destination rather than skipped.
type ProductSyncer struct {
	products    repository.ProductRepository
	merchants   repository.MerchantRepository
	destination repository.DestinationStore
	transforms  *TransformEngine
	logger      *zap.Logger
}

func NewProductSyncer(
	products repository.ProductRepository,
	merchants repository.MerchantRepository,
	destination repository.DestinationStore,
	transforms *TransformEngine,
	logger *zap.Logger,
) *ProductSyncer {
	return &ProductSyncer{
		products:    products,
		merchants:   merchants,
		destination: destination,
		transforms:  transforms,
		logger:      logger,
	}
}

func (s *ProductSyncer) Type() models.SyncType {
	return models.SyncTypeProducts
}

func (s *ProductSyncer) Sync(ctx context.Context, merchantID string, since *time.Time, batchSize int64) models.EntitySyncResult {
	var res models.EntitySyncResult

	// Merchant profiles may carry a transform script for the customer-facing
	// projection. Missing profile just means no transform.
	script := ""
	if profile, err := s.merchants.GetProfile(ctx, merchantID); err == nil {
		script = profile.ProductTransformScript
	}

	products, err := s.products.ListModifiedSince(ctx, merchantID, since, batchSize)
	if err != nil {
		recordError(&res, "products: failed to fetch source records: %v", err)
		return res
	}

	for _, product := range products {
		doc := productProjection(product)

		if script != "" {
			transformed, err := s.transforms.Apply(script, doc)
			if err != nil {
				recordError(&res, "products: transform failed for %s: %v", product.ID.Hex(), err)
				continue
			}
			doc = transformed
		}

		created, err := s.destination.UpsertProduct(ctx, merchantID, product.ID.Hex(), doc)
		if err != nil {
			recordError(&res, "products: failed to upsert %s: %v", product.ID.Hex(), err)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	deleted, err := s.products.ListDeletedSince(ctx, merchantID, since, batchSize)
	if err != nil {
		recordError(&res, "products: failed to fetch deletions: %v", err)
		return res
	}

	for _, product := range deleted {
		if err := s.destination.RemoveProduct(ctx, merchantID, product.ID.Hex()); err != nil {
			recordError(&res, "products: failed to remove %s: %v", product.ID.Hex(), err)
			continue
		}
		res.Deleted++
	}

	if res.Errors > 0 {
		s.logger.Warn("product sync finished with errors",
			zap.String("merchantId", merchantID),
			zap.Int("errors", res.Errors))
	}

	return res
}

// productProjection flattens a catalog record into the customer-facing shape.
func productProjection(p models.Product) map[string]interface{} {
	imageURL := ""
	if len(p.Images) > 0 {
		imageURL = p.Images[0]
	}

	return map[string]interface{}{
		"product_id":     p.ID.Hex(),
		"merchant_id":    p.MerchantID,
		"name":           p.Name,
		"slug":           utils.Slugify(p.Name),
		"description":    p.Description,
		"price":          p.Price,
		"sale_price":     p.SalePrice,
		"currency":       p.Currency,
		"category":       p.Category,
		"image_url":      imageURL,
		"in_stock":       p.IsActive && p.StockQuantity > 0,
		"stock_quantity": p.StockQuantity,
		"synced_at":      time.Now(),
	}
}
