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

type OrderRepository interface {
	ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Order, error)
}

type OrderRepositoryImpl struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *database.MongodbDB) OrderRepository {
	return &OrderRepositoryImpl{
		collection: db.DB.Collection("orders"),
	}
}

func (r *OrderRepositoryImpl) ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Order, error) {
	filter := bson.M{"merchant_id": merchantID}
	if since != nil {
		filter["updated_at"] = bson.M{"$gt": *since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}
