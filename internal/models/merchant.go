package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the merchant-side catalog record.
type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MerchantID    string             `json:"merchant_id" bson:"merchant_id"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	Price         float64            `json:"price" bson:"price"`
	SalePrice     float64            `json:"sale_price,omitempty" bson:"sale_price,omitempty"`
	Currency      string             `json:"currency" bson:"currency"`
	Category      string             `json:"category,omitempty" bson:"category,omitempty"`
	Images        []string           `json:"images,omitempty" bson:"images,omitempty"`
	StockQuantity int                `json:"stock_quantity" bson:"stock_quantity"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	IsDeleted     bool               `json:"is_deleted" bson:"is_deleted"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
}

// Order is the merchant-side order record.
type Order struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MerchantID string             `json:"merchant_id" bson:"merchant_id"`
	CustomerID string             `json:"customer_id" bson:"customer_id"`
	Items      []OrderItem        `json:"items" bson:"items"`
	Total      float64            `json:"total" bson:"total"`
	Currency   string             `json:"currency" bson:"currency"`
	Status     string             `json:"status" bson:"status"` // "pending", "confirmed", "preparing", "shipped", "delivered", "cancelled"
	Notes      string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Cashback is the merchant-side cashback grant record.
type Cashback struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MerchantID     string             `json:"merchant_id" bson:"merchant_id"`
	CustomerID     string             `json:"customer_id" bson:"customer_id"`
	OrderID        string             `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Amount         float64            `json:"amount" bson:"amount"`
	ApprovedAmount float64            `json:"approved_amount,omitempty" bson:"approved_amount,omitempty"`
	Status         string             `json:"status" bson:"status"` // "pending", "approved", "rejected", "paid"
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// MerchantProfile is the merchant-side profile record.
type MerchantProfile struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MerchantID  string             `json:"merchant_id" bson:"merchant_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	LogoURL     string             `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	Address     string             `json:"address,omitempty" bson:"address,omitempty"`
	Phone       string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Categories  []string           `json:"categories,omitempty" bson:"categories,omitempty"`
	IsOpen      bool               `json:"is_open" bson:"is_open"`
	Followers   int                `json:"followers" bson:"followers"`

	// Optional Tengo script applied to each customer-app product payload
	// before upsert. Empty means no transform.
	ProductTransformScript string `json:"product_transform_script,omitempty" bson:"product_transform_script,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
