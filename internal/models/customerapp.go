package models

import "time"

// Customer-app projections. These are the flattened, customer-facing shapes
// written to the destination store; they are not 1:1 copies of the internal
// schema.

type CustomerAppProduct struct {
	ProductID     string    `json:"product_id" bson:"product_id"`
	MerchantID    string    `json:"merchant_id" bson:"merchant_id"`
	Name          string    `json:"name" bson:"name"`
	Slug          string    `json:"slug" bson:"slug"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	Price         float64   `json:"price" bson:"price"`
	SalePrice     float64   `json:"sale_price,omitempty" bson:"sale_price,omitempty"`
	Currency      string    `json:"currency" bson:"currency"`
	Category      string    `json:"category,omitempty" bson:"category,omitempty"`
	ImageURL      string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	InStock       bool      `json:"in_stock" bson:"in_stock"`
	StockQuantity int       `json:"stock_quantity" bson:"stock_quantity"`
	SyncedAt      time.Time `json:"synced_at" bson:"synced_at"`
}

type CustomerAppOrder struct {
	OrderID    string    `json:"order_id" bson:"order_id"`
	MerchantID string    `json:"merchant_id" bson:"merchant_id"`
	CustomerID string    `json:"customer_id" bson:"customer_id"`
	ItemCount  int       `json:"item_count" bson:"item_count"`
	Total      float64   `json:"total" bson:"total"`
	Currency   string    `json:"currency" bson:"currency"`
	Status     string    `json:"status" bson:"status"`
	StatusText string    `json:"status_text" bson:"status_text"`
	PlacedAt   time.Time `json:"placed_at" bson:"placed_at"`
	SyncedAt   time.Time `json:"synced_at" bson:"synced_at"`
}

type CustomerAppCashback struct {
	CashbackID     string    `json:"cashback_id" bson:"cashback_id"`
	MerchantID     string    `json:"merchant_id" bson:"merchant_id"`
	CustomerID     string    `json:"customer_id" bson:"customer_id"`
	OrderID        string    `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Amount         float64   `json:"amount" bson:"amount"`
	ApprovedAmount float64   `json:"approved_amount,omitempty" bson:"approved_amount,omitempty"`
	Status         string    `json:"status" bson:"status"`
	SyncedAt       time.Time `json:"synced_at" bson:"synced_at"`
}

type CustomerAppMerchant struct {
	MerchantID  string    `json:"merchant_id" bson:"merchant_id"`
	Name        string    `json:"name" bson:"name"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Categories  []string  `json:"categories,omitempty" bson:"categories,omitempty"`
	IsOpen      bool      `json:"is_open" bson:"is_open"`
	Followers   int       `json:"followers" bson:"followers"`
	SyncedAt    time.Time `json:"synced_at" bson:"synced_at"`
}
