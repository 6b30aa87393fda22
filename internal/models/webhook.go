package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookRegistration maps a merchant to the customer-app URL that receives
// its cross-app events. Last write wins; absence means "deliver nothing,
// still reconcile via sync".
// @Description Customer app webhook registration
type WebhookRegistration struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty" example:"507f1f77bcf86cd799439011"`
	MerchantID string             `json:"merchant_id" bson:"merchant_id" example:"M1"`
	URL        string             `json:"url" bson:"url" example:"https://customer-app.example.com/hooks/merchant"`
	Secret     string             `json:"secret,omitempty" bson:"secret,omitempty"` // For HMAC signature
	IsActive   bool               `json:"is_active" bson:"is_active" example:"true"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}
