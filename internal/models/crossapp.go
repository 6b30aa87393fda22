package models

import "time"

// UpdateType tags the kind of a cross-app update event.
type UpdateType string

const (
	UpdateTypeOrderStatus UpdateType = "order_status"
	UpdateTypeProduct     UpdateType = "product_update"
	UpdateTypeCashback    UpdateType = "cashback_update"
	UpdateTypeMerchant    UpdateType = "merchant_update"
)

// SyncTypeFor maps an update kind to the entity collection it touches. The
// second return is false for unknown kinds.
func (t UpdateType) SyncTypeFor() (SyncType, bool) {
	switch t {
	case UpdateTypeOrderStatus:
		return SyncTypeOrders, true
	case UpdateTypeProduct:
		return SyncTypeProducts, true
	case UpdateTypeCashback:
		return SyncTypeCashback, true
	case UpdateTypeMerchant:
		return SyncTypeMerchant, true
	}
	return "", false
}

// CrossAppUpdate is one business event relayed to the customer app.
type CrossAppUpdate struct {
	Type       UpdateType             `json:"type"`
	MerchantID string                 `json:"merchant_id"`
	CustomerID string                 `json:"customer_id,omitempty"`
	OrderID    string                 `json:"order_id,omitempty"`
	ProductID  string                 `json:"product_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
	Timestamp  time.Time              `json:"timestamp"`
	Source     string                 `json:"source"`
}

// UpdateSource is the fixed origin stamped on every outbound event.
const UpdateSource = "merchant_app"

// WebhookPayload is the body POSTed to a registered customer-app webhook.
type WebhookPayload struct {
	Event      UpdateType             `json:"event"`
	MerchantID string                 `json:"merchant_id"`
	CustomerID string                 `json:"customer_id,omitempty"`
	OrderID    string                 `json:"order_id,omitempty"`
	ProductID  string                 `json:"product_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
	Timestamp  time.Time              `json:"timestamp"`
	Source     string                 `json:"source"`
}

// CrossAppSyncStatus is the per-merchant relay view.
type CrossAppSyncStatus struct {
	MerchantID        string `json:"merchant_id"`
	WebhookRegistered bool   `json:"webhook_registered"`
	WebhookURL        string `json:"webhook_url,omitempty"`
	PendingUpdates    int    `json:"pending_updates"`
	IsProcessing      bool   `json:"is_processing"`
}

// CrossAppStatistics is the aggregate relay view.
type CrossAppStatistics struct {
	TotalPendingUpdates int                `json:"total_pending_updates"`
	PendingByType       map[UpdateType]int `json:"pending_by_type"`
	RegisteredWebhooks  int                `json:"registered_webhooks"`
	IsProcessing        bool               `json:"is_processing"`
}
