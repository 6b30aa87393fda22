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

type WebhookRepository interface {
	UpsertByMerchant(ctx context.Context, registration *models.WebhookRegistration) error
	GetByMerchant(ctx context.Context, merchantID string) (*models.WebhookRegistration, error)
	ListActive(ctx context.Context) ([]models.WebhookRegistration, error)
}

type WebhookRepositoryImpl struct {
	collection *mongo.Collection
}

func NewWebhookRepository(db *database.MongodbDB) WebhookRepository {
	return &WebhookRepositoryImpl{
		collection: db.DB.Collection("webhook_registrations"),
	}
}

// UpsertByMerchant replaces any prior registration for the merchant; last
// write wins.
func (r *WebhookRepositoryImpl) UpsertByMerchant(ctx context.Context, registration *models.WebhookRegistration) error {
	registration.IsActive = true
	registration.UpdatedAt = time.Now()
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = registration.UpdatedAt
	}

	update := bson.M{
		"$set": bson.M{
			"url":        registration.URL,
			"secret":     registration.Secret,
			"is_active":  registration.IsActive,
			"updated_at": registration.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"merchant_id": registration.MerchantID,
			"created_at":  registration.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"merchant_id": registration.MerchantID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *WebhookRepositoryImpl) GetByMerchant(ctx context.Context, merchantID string) (*models.WebhookRegistration, error) {
	var registration models.WebhookRegistration
	err := r.collection.FindOne(ctx, bson.M{"merchant_id": merchantID}).Decode(&registration)
	if err != nil {
		return nil, err
	}

	return &registration, nil
}

func (r *WebhookRepositoryImpl) ListActive(ctx context.Context) ([]models.WebhookRegistration, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var registrations []models.WebhookRegistration
	if err = cursor.All(ctx, &registrations); err != nil {
		return nil, err
	}

	return registrations, nil
}
