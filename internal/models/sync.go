package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncType identifies one entity collection reconciled between the merchant
// store and the customer app store.
type SyncType string

const (
	SyncTypeProducts SyncType = "products"
	SyncTypeOrders   SyncType = "orders"
	SyncTypeCashback SyncType = "cashback"
	SyncTypeMerchant SyncType = "merchant"
)

// AllSyncTypes is the default set used by scheduled syncs.
var AllSyncTypes = []SyncType{SyncTypeProducts, SyncTypeOrders, SyncTypeCashback, SyncTypeMerchant}

// ValidSyncType reports whether t is one of the four known entity types.
func ValidSyncType(t SyncType) bool {
	switch t {
	case SyncTypeProducts, SyncTypeOrders, SyncTypeCashback, SyncTypeMerchant:
		return true
	}
	return false
}

// SyncConfig is the input to a sync run. Constructed per call, never persisted.
type SyncConfig struct {
	MerchantID string     `json:"merchant_id"`
	LastSync   *time.Time `json:"last_sync,omitempty"` // incremental cursor; nil means use stored cursor
	SyncTypes  []SyncType `json:"sync_types"`
	BatchSize  int64      `json:"batch_size"`
}

// EntitySyncResult holds per-entity counters for one run. For the merchant
// profile entity only Updated (0 or 1) and Errors are meaningful.
type EntitySyncResult struct {
	Created  int      `json:"created" bson:"created"`
	Updated  int      `json:"updated" bson:"updated"`
	Deleted  int      `json:"deleted" bson:"deleted"`
	Errors   int      `json:"errors" bson:"errors"`
	Messages []string `json:"messages,omitempty" bson:"messages,omitempty"`
}

// SyncResult is the immutable outcome of one sync run.
type SyncResult struct {
	SyncID     string                        `json:"sync_id" bson:"sync_id"`
	MerchantID string                        `json:"merchant_id" bson:"merchant_id"`
	SyncedAt   time.Time                     `json:"synced_at" bson:"synced_at"`
	DurationMs int64                         `json:"duration_ms" bson:"duration_ms"`
	Errors     []string                      `json:"errors" bson:"errors"`
	Results    map[SyncType]EntitySyncResult `json:"results" bson:"results"`
}

// SyncStatus is the per-merchant view from the status store.
type SyncStatus struct {
	IsActive          bool        `json:"is_active"`
	LastSync          *SyncResult `json:"last_sync,omitempty"`
	NextScheduledSync *time.Time  `json:"next_scheduled_sync"`
}

// SyncStatistics is the aggregate view across all merchants.
type SyncStatistics struct {
	TotalSyncs         int     `json:"total_syncs"`
	SuccessfulSyncs    int     `json:"successful_syncs"`
	FailedSyncs        int     `json:"failed_syncs"`
	AverageDurationMs  float64 `json:"average_duration_ms"`
	ActiveSyncs        int     `json:"active_syncs"`
	ScheduledMerchants int     `json:"scheduled_merchants"`
}

// SyncRun is the persisted audit record of a completed run.
type SyncRun struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Result     SyncResult         `json:"result" bson:"result"`
	RecordedAt time.Time          `json:"recorded_at" bson:"recorded_at"`
}

// BulkSyncResult aggregates the outcome of a multi-merchant sync request.
type BulkSyncResult struct {
	Results map[string]*SyncResult `json:"results"`
	Errors  map[string]string      `json:"errors"`
}
