package repository

import (
	"context"

	"go-merchant/internal/database"
	"go-merchant/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDestinationStore writes projections into the customer app's MongoDB.
type MongoDestinationStore struct {
	products  *mongo.Collection
	orders    *mongo.Collection
	cashbacks *mongo.Collection
	merchants *mongo.Collection
}

func NewMongoDestinationStore(db *database.CustomerAppDB) *MongoDestinationStore {
	return &MongoDestinationStore{
		products:  db.DB.Collection("products"),
		orders:    db.DB.Collection("orders"),
		cashbacks: db.DB.Collection("cashbacks"),
		merchants: db.DB.Collection("merchants"),
	}
}

func (s *MongoDestinationStore) UpsertProduct(ctx context.Context, merchantID, productID string, doc map[string]interface{}) (bool, error) {
	filter := bson.M{"merchant_id": merchantID, "product_id": productID}
	res, err := s.products.ReplaceOne(ctx, filter, bson.M(doc), options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoDestinationStore) RemoveProduct(ctx context.Context, merchantID, productID string) error {
	_, err := s.products.DeleteOne(ctx, bson.M{"merchant_id": merchantID, "product_id": productID})
	return err
}

func (s *MongoDestinationStore) UpsertOrder(ctx context.Context, order models.CustomerAppOrder) (bool, error) {
	filter := bson.M{"merchant_id": order.MerchantID, "order_id": order.OrderID}
	res, err := s.orders.ReplaceOne(ctx, filter, order, options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoDestinationStore) UpsertCashback(ctx context.Context, cashback models.CustomerAppCashback) (bool, error) {
	filter := bson.M{"merchant_id": cashback.MerchantID, "cashback_id": cashback.CashbackID}
	res, err := s.cashbacks.ReplaceOne(ctx, filter, cashback, options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoDestinationStore) UpsertMerchant(ctx context.Context, merchant models.CustomerAppMerchant) error {
	filter := bson.M{"merchant_id": merchant.MerchantID}
	_, err := s.merchants.ReplaceOne(ctx, filter, merchant, options.Replace().SetUpsert(true))
	return err
}
