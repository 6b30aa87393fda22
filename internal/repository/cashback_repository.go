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

type CashbackRepository interface {
	ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Cashback, error)
}

type CashbackRepositoryImpl struct {
	collection *mongo.Collection
}

func NewCashbackRepository(db *database.MongodbDB) CashbackRepository {
	return &CashbackRepositoryImpl{
		collection: db.DB.Collection("cashbacks"),
	}
}

func (r *CashbackRepositoryImpl) ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Cashback, error) {
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

	var cashbacks []models.Cashback
	if err = cursor.All(ctx, &cashbacks); err != nil {
		return nil, err
	}

	return cashbacks, nil
}
