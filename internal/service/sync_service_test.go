package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-merchant/internal/config"
	"go-merchant/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type syncerCall struct {
	MerchantID string
	Since      *time.Time
	BatchSize  int64
}

// fakeSyncer records calls and returns a canned result. When block is set,
// Sync waits until the channel is closed so tests can hold a run in flight.
type fakeSyncer struct {
	syncType models.SyncType
	result   models.EntitySyncResult
	block    chan struct{}
	started  chan struct{}

	mu    sync.Mutex
	calls []syncerCall
}

func (f *fakeSyncer) Type() models.SyncType {
	return f.syncType
}

func (f *fakeSyncer) Sync(ctx context.Context, merchantID string, since *time.Time, batchSize int64) models.EntitySyncResult {
	f.mu.Lock()
	f.calls = append(f.calls, syncerCall{MerchantID: merchantID, Since: since, BatchSize: batchSize})
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		<-f.block
	}
	return f.result
}

func (f *fakeSyncer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSyncer) lastCall() syncerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type mockSyncRunRepo struct {
	mu      sync.Mutex
	created []*models.SyncResult
	err     error
}

func (m *mockSyncRunRepo) Create(ctx context.Context, result *models.SyncResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, result)
	return m.err
}

func (m *mockSyncRunRepo) ListByMerchant(ctx context.Context, merchantID string, limit int64) ([]models.SyncRun, error) {
	return nil, nil
}

func newTestSyncService(syncers ...*fakeSyncer) (*SyncServiceImpl, *mockSyncRunRepo) {
	runRepo := &mockSyncRunRepo{}
	svc := &SyncServiceImpl{
		cfg: &config.Config{
			DefaultSyncBatchSize: 100,
			SyncRunTimeoutSecs:   120,
		},
		store:      NewSyncStatusStore(50),
		runRepo:    runRepo,
		syncers:    make(map[models.SyncType]EntitySyncer),
		scheduler:  cron.New(),
		jobEntries: make(map[string]cron.EntryID),
		logger:     zap.NewNop(),
	}
	for _, s := range syncers {
		svc.syncers[s.syncType] = s
	}
	return svc, runRepo
}

func TestSyncValidation(t *testing.T) {
	svc, _ := newTestSyncService(&fakeSyncer{syncType: models.SyncTypeProducts})

	tests := []struct {
		name string
		cfg  models.SyncConfig
	}{
		{"missing merchant", models.SyncConfig{SyncTypes: []models.SyncType{models.SyncTypeProducts}}},
		{"no sync types", models.SyncConfig{MerchantID: "m1"}},
		{"unknown sync type", models.SyncConfig{MerchantID: "m1", SyncTypes: []models.SyncType{"invoices"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SyncToCustomerApp(context.Background(), tt.cfg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}

	// Validation failures must not leave the merchant flagged as active.
	if svc.store.Status("m1").IsActive {
		t.Error("merchant should not be active after a rejected request")
	}
}

func TestConcurrentSyncRejected(t *testing.T) {
	blocker := &fakeSyncer{
		syncType: models.SyncTypeProducts,
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	svc, _ := newTestSyncService(blocker)

	started := blocker.started
	release := blocker.block

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
			MerchantID: "m1",
			SyncTypes:  []models.SyncType{models.SyncTypeProducts},
		})
		if err != nil {
			t.Errorf("first sync should succeed, got %v", err)
		}
	}()

	<-started

	_, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	})
	if !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress, got %v", err)
	}

	close(release)
	<-done

	// Once the first run completes the merchant is free again.
	if _, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	}); err != nil {
		t.Errorf("sync after completion should succeed, got %v", err)
	}
}

func TestEntityFailureDoesNotAbortRun(t *testing.T) {
	failing := &fakeSyncer{
		syncType: models.SyncTypeProducts,
		result: models.EntitySyncResult{
			Errors:   2,
			Messages: []string{"product p1: bad document", "product p2: bad document"},
		},
	}
	healthy := &fakeSyncer{
		syncType: models.SyncTypeOrders,
		result:   models.EntitySyncResult{Created: 3},
	}
	svc, _ := newTestSyncService(failing, healthy)

	result, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts, models.SyncTypeOrders},
	})
	if err != nil {
		t.Fatalf("run with entity errors should still return a result, got %v", err)
	}

	if healthy.callCount() != 1 {
		t.Error("order syncer should run despite product errors")
	}
	if result.Results[models.SyncTypeOrders].Created != 3 {
		t.Errorf("expected 3 orders created, got %d", result.Results[models.SyncTypeOrders].Created)
	}
	if result.Results[models.SyncTypeProducts].Errors != 2 {
		t.Errorf("expected 2 product errors, got %d", result.Results[models.SyncTypeProducts].Errors)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 error messages on the run, got %d", len(result.Errors))
	}
}

func TestIncrementalCursor(t *testing.T) {
	syncer := &fakeSyncer{syncType: models.SyncTypeProducts}
	svc, _ := newTestSyncService(syncer)

	cfg := models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	}

	first, err := svc.SyncToCustomerApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if syncer.lastCall().Since != nil {
		t.Error("first sync should see a nil cursor")
	}

	if _, err := svc.SyncToCustomerApp(context.Background(), cfg); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	since := syncer.lastCall().Since
	if since == nil || !since.Equal(first.SyncedAt) {
		t.Errorf("second sync should use the first run's timestamp as cursor, got %v", since)
	}

	if _, err := svc.ForceFullSync(context.Background(), "m1"); err != nil {
		t.Fatalf("full sync failed: %v", err)
	}
	if syncer.lastCall().Since != nil {
		t.Error("forced full sync must ignore the stored cursor")
	}
}

func TestDefaultBatchSizeApplied(t *testing.T) {
	syncer := &fakeSyncer{syncType: models.SyncTypeProducts}
	svc, _ := newTestSyncService(syncer)

	_, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if got := syncer.lastCall().BatchSize; got != 100 {
		t.Errorf("expected default batch size 100, got %d", got)
	}
}

func TestRunIsPersisted(t *testing.T) {
	syncer := &fakeSyncer{syncType: models.SyncTypeProducts}
	svc, runRepo := newTestSyncService(syncer)

	result, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	runRepo.mu.Lock()
	defer runRepo.mu.Unlock()
	if len(runRepo.created) != 1 || runRepo.created[0].SyncID != result.SyncID {
		t.Errorf("expected the run to be persisted once, got %d", len(runRepo.created))
	}
}

func TestPersistenceFailureDoesNotFailRun(t *testing.T) {
	syncer := &fakeSyncer{syncType: models.SyncTypeProducts}
	svc, runRepo := newTestSyncService(syncer)
	runRepo.err = errors.New("mongo down")

	if _, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	}); err != nil {
		t.Errorf("audit persistence failure must not fail the run, got %v", err)
	}
	if svc.store.LastSync("m1") == nil {
		t.Error("in-memory state should still record the run")
	}
}

func TestScheduleReplacesExisting(t *testing.T) {
	svc, _ := newTestSyncService(&fakeSyncer{syncType: models.SyncTypeProducts})

	if err := svc.ScheduleAutoSync("m1", 30); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	first := svc.jobEntries["m1"]

	if err := svc.ScheduleAutoSync("m1", 60); err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	second := svc.jobEntries["m1"]

	if len(svc.jobEntries) != 1 {
		t.Errorf("expected exactly one schedule per merchant, got %d", len(svc.jobEntries))
	}
	if first == second {
		t.Error("rescheduling should install a new cron entry")
	}
	if len(svc.scheduler.Entries()) != 1 {
		t.Errorf("old cron entry should be removed, scheduler has %d", len(svc.scheduler.Entries()))
	}
}

func TestScheduleValidation(t *testing.T) {
	svc, _ := newTestSyncService(&fakeSyncer{syncType: models.SyncTypeProducts})

	if err := svc.ScheduleAutoSync("", 30); err == nil {
		t.Error("expected error for missing merchant ID")
	}
	if err := svc.ScheduleAutoSync("m1", 0); err == nil {
		t.Error("expected error for non-positive interval")
	}
}

func TestClearAutoSyncIsIdempotent(t *testing.T) {
	svc, _ := newTestSyncService(&fakeSyncer{syncType: models.SyncTypeProducts})

	// Clearing a merchant with no schedule is a no-op.
	svc.ClearAutoSync("m1")

	if err := svc.ScheduleAutoSync("m1", 30); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	svc.ClearAutoSync("m1")
	if len(svc.jobEntries) != 0 {
		t.Errorf("expected schedule removed, got %d entries", len(svc.jobEntries))
	}
	svc.ClearAutoSync("m1")
}

func TestSyncBulk(t *testing.T) {
	syncer := &fakeSyncer{syncType: models.SyncTypeProducts}
	svc, _ := newTestSyncService(syncer)
	svc.syncers[models.SyncTypeOrders] = &fakeSyncer{syncType: models.SyncTypeOrders}
	svc.syncers[models.SyncTypeCashback] = &fakeSyncer{syncType: models.SyncTypeCashback}
	svc.syncers[models.SyncTypeMerchant] = &fakeSyncer{syncType: models.SyncTypeMerchant}

	bulk := svc.SyncBulk(context.Background(), []string{"m1", "m2", "m3"})

	if len(bulk.Results) != 3 {
		t.Errorf("expected 3 results, got %d (errors: %v)", len(bulk.Results), bulk.Errors)
	}
	for _, id := range []string{"m1", "m2", "m3"} {
		if bulk.Results[id] == nil {
			t.Errorf("missing result for %s", id)
		}
	}
}

func TestExportSyncHistory(t *testing.T) {
	syncer := &fakeSyncer{syncType: models.SyncTypeProducts, result: models.EntitySyncResult{Created: 2, Updated: 1}}
	svc, _ := newTestSyncService(syncer)

	if _, err := svc.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: "m1",
		SyncTypes:  []models.SyncType{models.SyncTypeProducts},
	}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	f, err := svc.ExportSyncHistory("m1")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	sheet := f.GetSheetName(0)
	header, err := f.GetCellValue(sheet, "A1")
	if err != nil || header != "Sync ID" {
		t.Errorf("expected header row, got %q (err %v)", header, err)
	}
	created, err := f.GetCellValue(sheet, "D2")
	if err != nil || created != "2" {
		t.Errorf("expected created count 2 in first data row, got %q (err %v)", created, err)
	}
}
