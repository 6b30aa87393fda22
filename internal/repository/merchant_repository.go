package repository

import (
	"context"

	"go-merchant/internal/database"
	"go-merchant/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MerchantRepository interface {
	GetProfile(ctx context.Context, merchantID string) (*models.MerchantProfile, error)
	AdjustFollowers(ctx context.Context, merchantID string, delta int) error
}

type MerchantRepositoryImpl struct {
	collection *mongo.Collection
}

func NewMerchantRepository(db *database.MongodbDB) MerchantRepository {
	return &MerchantRepositoryImpl{
		collection: db.DB.Collection("merchants"),
	}
}

func (r *MerchantRepositoryImpl) GetProfile(ctx context.Context, merchantID string) (*models.MerchantProfile, error) {
	var profile models.MerchantProfile
	err := r.collection.FindOne(ctx, bson.M{"merchant_id": merchantID}).Decode(&profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// AdjustFollowers applies a follower-count delta, used when the customer app
// reports wishlist adds/removes back to the merchant side.
func (r *MerchantRepositoryImpl) AdjustFollowers(ctx context.Context, merchantID string, delta int) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"merchant_id": merchantID},
		bson.M{"$inc": bson.M{"followers": delta}},
	)
	return err
}
