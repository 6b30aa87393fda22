package repository

import (
	"context"
	"time"

	"go-merchant/internal/database"
	"go-merchant/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SyncRunRepository persists completed sync results as an audit trail. The
// in-memory status store stays authoritative for status and statistics.
type SyncRunRepository interface {
	Create(ctx context.Context, result *models.SyncResult) error
	ListByMerchant(ctx context.Context, merchantID string, limit int64) ([]models.SyncRun, error)
}

type SyncRunRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSyncRunRepository(db *database.MongodbDB) SyncRunRepository {
	return &SyncRunRepositoryImpl{
		collection: db.DB.Collection("sync_runs"),
	}
}

func (r *SyncRunRepositoryImpl) Create(ctx context.Context, result *models.SyncResult) error {
	run := models.SyncRun{
		ID:         primitive.NewObjectID(),
		Result:     *result,
		RecordedAt: time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, run)
	return err
}

func (r *SyncRunRepositoryImpl) ListByMerchant(ctx context.Context, merchantID string, limit int64) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"result.merchant_id": merchantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []models.SyncRun
	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}

	return runs, nil
}
