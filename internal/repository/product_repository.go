package repository

import (
	"context"
	"time"

	"go-merchant/internal/database"
	"go-merchant/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository interface {
	ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Product, error)
	ListDeletedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Product, error)
}

type ProductRepositoryImpl struct {
	collection *mongo.Collection
}

func NewProductRepository(db *database.MongodbDB) ProductRepository {
	return &ProductRepositoryImpl{
		collection: db.DB.Collection("products"),
	}
}

func (r *ProductRepositoryImpl) ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Product, error) {
	filter := bson.M{
		"merchant_id": merchantID,
		"is_deleted":  bson.M{"$ne": true},
	}
	if since != nil {
		filter["updated_at"] = bson.M{"$gt": *since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// ListDeletedSince returns products flagged deleted or deactivated in the
// window, so the destination can drop them instead of merely skipping them.
func (r *ProductRepositoryImpl) ListDeletedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Product, error) {
	filter := bson.M{
		"merchant_id": merchantID,
		"$or": []bson.M{
			{"is_deleted": true},
			{"is_active": false},
		},
	}
	if since != nil {
		filter["updated_at"] = bson.M{"$gt": *since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}
