package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-merchant/internal/config"
	"go-merchant/internal/models"
	"go-merchant/internal/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSyncInProgress is returned when a second run is requested for a
// merchant whose previous run has not completed. Callers should retry later.
var ErrSyncInProgress = errors.New("sync already in progress for this merchant")

type SyncService interface {
	SyncToCustomerApp(ctx context.Context, config models.SyncConfig) (*models.SyncResult, error)
	ForceFullSync(ctx context.Context, merchantID string) (*models.SyncResult, error)
	SyncBulk(ctx context.Context, merchantIDs []string) *models.BulkSyncResult
	GetSyncStatus(merchantID string) models.SyncStatus
	GetSyncHistory(merchantID string, limit int) []models.SyncResult
	GetSyncStatistics() models.SyncStatistics
	ScheduleAutoSync(merchantID string, intervalMinutes int) error
	ClearAutoSync(merchantID string)
	ExportSyncHistory(merchantID string) (*excelize.File, error)

	StartScheduler(ctx context.Context) error
	StopScheduler() error
}

type SyncServiceImpl struct {
	cfg     *config.Config
	store   *SyncStatusStore
	runRepo repository.SyncRunRepository
	syncers map[models.SyncType]EntitySyncer
	logger  *zap.Logger

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID // Maps merchant ID to cron entry ID
	mu         sync.Mutex
}

func NewSyncService(
	cfg *config.Config,
	store *SyncStatusStore,
	runRepo repository.SyncRunRepository,
	productSyncer *ProductSyncer,
	orderSyncer *OrderSyncer,
	cashbackSyncer *CashbackSyncer,
	merchantSyncer *MerchantSyncer,
	logger *zap.Logger,
) SyncService {
	return &SyncServiceImpl{
		cfg:     cfg,
		store:   store,
		runRepo: runRepo,
		syncers: map[models.SyncType]EntitySyncer{
			models.SyncTypeProducts: productSyncer,
			models.SyncTypeOrders:   orderSyncer,
			models.SyncTypeCashback: cashbackSyncer,
			models.SyncTypeMerchant: merchantSyncer,
		},
		scheduler:  cron.New(),
		jobEntries: make(map[string]cron.EntryID),
		logger:     logger,
	}
}

func (s *SyncServiceImpl) SyncToCustomerApp(ctx context.Context, cfg models.SyncConfig) (*models.SyncResult, error) {
	return s.run(ctx, cfg, false)
}

// ForceFullSync ignores any stored cursor so every entity syncer treats the
// whole source collection as the window. Used for first-time sync or drift
// recovery.
func (s *SyncServiceImpl) ForceFullSync(ctx context.Context, merchantID string) (*models.SyncResult, error) {
	return s.run(ctx, models.SyncConfig{
		MerchantID: merchantID,
		SyncTypes:  models.AllSyncTypes,
	}, true)
}

func (s *SyncServiceImpl) run(ctx context.Context, cfg models.SyncConfig, full bool) (*models.SyncResult, error) {
	// Validation happens before any state mutation.
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("merchant ID is required")
	}
	if len(cfg.SyncTypes) == 0 {
		return nil, fmt.Errorf("at least one sync type is required")
	}
	for _, t := range cfg.SyncTypes {
		if !models.ValidSyncType(t) {
			return nil, fmt.Errorf("unknown sync type: %s", t)
		}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = int64(s.cfg.DefaultSyncBatchSize)
	}

	// At-most-one concurrent run per merchant: two reconciliations must not
	// interleave against the same destination records.
	if !s.store.TryActivate(cfg.MerchantID) {
		return nil, ErrSyncInProgress
	}
	defer s.store.Deactivate(cfg.MerchantID)

	since := cfg.LastSync
	if !full && since == nil {
		if last := s.store.LastSync(cfg.MerchantID); last != nil {
			t := last.SyncedAt
			since = &t
		}
	}
	if full {
		since = nil
	}

	// A hung destination must not hold the merchant's active flag forever.
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.SyncRunTimeoutSecs)*time.Second)
	defer cancel()

	start := time.Now()
	result := &models.SyncResult{
		SyncID:     uuid.NewString(),
		MerchantID: cfg.MerchantID,
		Errors:     []string{},
		Results:    make(map[models.SyncType]models.EntitySyncResult),
	}

	// Entity syncers run sequentially to bound destination write concurrency
	// per merchant. An entity-level failure does not abort the remaining
	// entity syncs; it only shows up in the counters.
	for _, t := range orderedTypes(cfg.SyncTypes) {
		syncer, ok := s.syncers[t]
		if !ok {
			continue
		}
		entityResult := syncer.Sync(runCtx, cfg.MerchantID, since, cfg.BatchSize)
		result.Results[t] = entityResult
		result.Errors = append(result.Errors, entityResult.Messages...)
	}

	result.SyncedAt = time.Now()
	result.DurationMs = time.Since(start).Milliseconds()

	s.store.RecordResult(result)

	// Audit trail; in-memory state stays authoritative.
	if err := s.runRepo.Create(ctx, result); err != nil {
		s.logger.Warn("failed to persist sync run",
			zap.String("merchantId", cfg.MerchantID),
			zap.Error(err))
	}

	s.logger.Info("sync completed",
		zap.String("merchantId", cfg.MerchantID),
		zap.String("syncId", result.SyncID),
		zap.Int64("durationMs", result.DurationMs),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// orderedTypes returns the requested subset in canonical order, dropping
// duplicates.
func orderedTypes(requested []models.SyncType) []models.SyncType {
	want := make(map[models.SyncType]bool, len(requested))
	for _, t := range requested {
		want[t] = true
	}

	var out []models.SyncType
	for _, t := range models.AllSyncTypes {
		if want[t] {
			out = append(out, t)
		}
	}
	return out
}

// SyncBulk runs syncs for several merchants with bounded concurrency.
// Per-merchant serialization still holds: each run goes through the status
// store's active flag.
func (s *SyncServiceImpl) SyncBulk(ctx context.Context, merchantIDs []string) *models.BulkSyncResult {
	bulk := &models.BulkSyncResult{
		Results: make(map[string]*models.SyncResult),
		Errors:  make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, merchantID := range merchantIDs {
		id := merchantID
		g.Go(func() error {
			result, err := s.SyncToCustomerApp(gctx, models.SyncConfig{
				MerchantID: id,
				SyncTypes:  models.AllSyncTypes,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				bulk.Errors[id] = err.Error()
			} else {
				bulk.Results[id] = result
			}
			return nil
		})
	}

	_ = g.Wait()
	return bulk
}

func (s *SyncServiceImpl) GetSyncStatus(merchantID string) models.SyncStatus {
	return s.store.Status(merchantID)
}

func (s *SyncServiceImpl) GetSyncHistory(merchantID string, limit int) []models.SyncResult {
	return s.store.History(merchantID, limit)
}

func (s *SyncServiceImpl) GetSyncStatistics() models.SyncStatistics {
	stats := s.store.Statistics()

	s.mu.Lock()
	stats.ScheduledMerchants = len(s.jobEntries)
	s.mu.Unlock()

	return stats
}

// ScheduleAutoSync installs a recurring full-set sync for the merchant. Any
// prior schedule for the same merchant is cancelled first, so at most one
// timer drives a merchant.
func (s *SyncServiceImpl) ScheduleAutoSync(merchantID string, intervalMinutes int) error {
	if merchantID == "" {
		return fmt.Errorf("merchant ID is required")
	}
	if intervalMinutes <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobEntries[merchantID]; ok {
		s.scheduler.Remove(entryID)
		delete(s.jobEntries, merchantID)
	}

	spec := fmt.Sprintf("@every %dm", intervalMinutes)
	entryID, err := s.scheduler.AddFunc(spec, func() {
		s.runScheduled(merchantID)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule auto sync: %w", err)
	}

	s.jobEntries[merchantID] = entryID

	next := s.scheduler.Entry(entryID).Next
	if !next.IsZero() {
		s.store.SetNextScheduled(merchantID, &next)
	} else {
		// Scheduler not started yet; first tick is one interval away.
		first := time.Now().Add(time.Duration(intervalMinutes) * time.Minute)
		s.store.SetNextScheduled(merchantID, &first)
	}

	s.logger.Info("auto sync scheduled",
		zap.String("merchantId", merchantID),
		zap.Int("intervalMinutes", intervalMinutes))

	return nil
}

// runScheduled is the timer callback body. Nothing may escape it: a panic or
// error here would otherwise kill the recurring schedule.
func (s *SyncServiceImpl) runScheduled(merchantID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled sync panicked",
				zap.String("merchantId", merchantID),
				zap.Any("panic", r))
		}
	}()

	_, err := s.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: merchantID,
		SyncTypes:  models.AllSyncTypes,
	})
	if err != nil && !errors.Is(err, ErrSyncInProgress) {
		s.logger.Error("scheduled sync failed",
			zap.String("merchantId", merchantID),
			zap.Error(err))
	}

	s.mu.Lock()
	entryID, ok := s.jobEntries[merchantID]
	s.mu.Unlock()
	if ok {
		next := s.scheduler.Entry(entryID).Next
		s.store.SetNextScheduled(merchantID, &next)
	}
}

// ClearAutoSync cancels the merchant's schedule. Calling it when no schedule
// exists is a no-op.
func (s *SyncServiceImpl) ClearAutoSync(merchantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobEntries[merchantID]; ok {
		s.scheduler.Remove(entryID)
		delete(s.jobEntries, merchantID)
		s.store.SetNextScheduled(merchantID, nil)
	}
}

// ExportSyncHistory renders the merchant's retained history as a spreadsheet.
func (s *SyncServiceImpl) ExportSyncHistory(merchantID string) (*excelize.File, error) {
	history := s.store.History(merchantID, 0)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"Sync ID", "Synced At", "Duration (ms)", "Created", "Updated", "Deleted", "Errors"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, result := range history {
		var created, updated, deleted int
		for _, entity := range result.Results {
			created += entity.Created
			updated += entity.Updated
			deleted += entity.Deleted
		}

		values := []interface{}{
			result.SyncID,
			result.SyncedAt.Format(time.RFC3339),
			result.DurationMs,
			created,
			updated,
			deleted,
			len(result.Errors),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}

func (s *SyncServiceImpl) StartScheduler(ctx context.Context) error {
	s.scheduler.Start()
	s.logger.Info("auto sync scheduler started")
	return nil
}

func (s *SyncServiceImpl) StopScheduler() error {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	s.logger.Info("auto sync scheduler stopped")
	return nil
}
