package database

import (
	"context"
	"log"
	"time"

	"go-merchant/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

// MongodbDB wraps the merchant-side MongoDB database handle.
type MongodbDB struct {
	DB *mongo.Database
}

// CustomerAppDB wraps the customer-app MongoDB database handle. It is a
// separate type so Fx can inject the two connections independently.
type CustomerAppDB struct {
	DB *mongo.Database
}

// NewDatabase creates the merchant MongoDB connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	db, client, err := connect(cfg.MongoURI, cfg.DBName)
	if err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &MongodbDB{DB: db}, nil
}

// NewCustomerAppDatabase creates the customer-app MongoDB connection. Skipped
// when the destination store is configured as Postgres.
func NewCustomerAppDatabase(lc fx.Lifecycle, cfg *config.Config) (*CustomerAppDB, error) {
	if cfg.CustomerAppDBType != "mongodb" {
		return &CustomerAppDB{}, nil
	}

	db, client, err := connect(cfg.CustomerAppMongoURI, cfg.CustomerAppDBName)
	if err != nil {
		return nil, err
	}

	log.Println("Connected to customer app MongoDB!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from customer app MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &CustomerAppDB{DB: db}, nil
}

func connect(uri, dbName string) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	return client.Database(dbName), client, nil
}
