package service

import (
	"context"
	"fmt"
	"time"

	"go-merchant/internal/models"
)

// EntitySyncer reconciles one record type between the merchant store and the
// customer app store. Implementations fetch up to batchSize source records
// modified since the cursor (nil means the full collection), project them to
// the customer-facing shape and upsert into the destination. Individual
// record failures are counted, never raised: a malformed record must not
// abort the batch.
type EntitySyncer interface {
	Type() models.SyncType
	Sync(ctx context.Context, merchantID string, since *time.Time, batchSize int64) models.EntitySyncResult
}

func recordError(res *models.EntitySyncResult, format string, args ...interface{}) {
	res.Errors++
	res.Messages = append(res.Messages, fmt.Sprintf(format, args...))
}
