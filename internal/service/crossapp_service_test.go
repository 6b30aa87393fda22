package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go-merchant/internal/config"
	"go-merchant/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type mockWebhookRepo struct {
	mu     sync.Mutex
	saved  []*models.WebhookRegistration
	active []models.WebhookRegistration
}

func (m *mockWebhookRepo) UpsertByMerchant(ctx context.Context, registration *models.WebhookRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, registration)
	return nil
}

func (m *mockWebhookRepo) GetByMerchant(ctx context.Context, merchantID string) (*models.WebhookRegistration, error) {
	return nil, nil
}

func (m *mockWebhookRepo) ListActive(ctx context.Context) ([]models.WebhookRegistration, error) {
	return m.active, nil
}

type mockMerchantRepo struct {
	mu     sync.Mutex
	deltas []int
	script string
}

func (m *mockMerchantRepo) GetProfile(ctx context.Context, merchantID string) (*models.MerchantProfile, error) {
	return &models.MerchantProfile{MerchantID: merchantID, ProductTransformScript: m.script}, nil
}

func (m *mockMerchantRepo) AdjustFollowers(ctx context.Context, merchantID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas = append(m.deltas, delta)
	return nil
}

type backstopCall struct {
	MerchantID string
	SyncTypes  []models.SyncType
}

// mockBackstopSync records SyncToCustomerApp calls; the other SyncService
// methods are unused by the relay.
type mockBackstopSync struct {
	mu    sync.Mutex
	calls []backstopCall
	err   error
}

func (m *mockBackstopSync) SyncToCustomerApp(ctx context.Context, cfg models.SyncConfig) (*models.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, backstopCall{MerchantID: cfg.MerchantID, SyncTypes: cfg.SyncTypes})
	if m.err != nil {
		return nil, m.err
	}
	return &models.SyncResult{MerchantID: cfg.MerchantID}, nil
}

func (m *mockBackstopSync) ForceFullSync(ctx context.Context, merchantID string) (*models.SyncResult, error) {
	return nil, nil
}
func (m *mockBackstopSync) SyncBulk(ctx context.Context, merchantIDs []string) *models.BulkSyncResult {
	return nil
}
func (m *mockBackstopSync) GetSyncStatus(merchantID string) models.SyncStatus {
	return models.SyncStatus{}
}
func (m *mockBackstopSync) GetSyncHistory(merchantID string, limit int) []models.SyncResult {
	return nil
}
func (m *mockBackstopSync) GetSyncStatistics() models.SyncStatistics {
	return models.SyncStatistics{}
}
func (m *mockBackstopSync) ScheduleAutoSync(merchantID string, intervalMinutes int) error { return nil }
func (m *mockBackstopSync) ClearAutoSync(merchantID string)                               {}
func (m *mockBackstopSync) ExportSyncHistory(merchantID string) (*excelize.File, error) {
	return nil, nil
}
func (m *mockBackstopSync) StartScheduler(ctx context.Context) error { return nil }
func (m *mockBackstopSync) StopScheduler() error                     { return nil }

func (m *mockBackstopSync) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type captureNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *captureNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) EmitOrderEvent(merchantID, customerID string, payload map[string]interface{}) {
	n.record("order")
}
func (n *captureNotifier) EmitProductEvent(merchantID, productID string, payload map[string]interface{}) {
	n.record("product")
}
func (n *captureNotifier) EmitCashbackEvent(merchantID, customerID string, payload map[string]interface{}) {
	n.record("cashback")
}
func (n *captureNotifier) SendMerchantUpdate(merchantID string, payload map[string]interface{}) {
	n.record("merchant")
}

func newTestRelay(backstop SyncService) (*CrossAppSyncServiceImpl, *mockWebhookRepo, *mockMerchantRepo, *captureNotifier) {
	webhookRepo := &mockWebhookRepo{}
	merchants := &mockMerchantRepo{}
	notifier := &captureNotifier{}

	relay := &CrossAppSyncServiceImpl{
		cfg: &config.Config{
			DrainIntervalSeconds: 5,
			DrainBatchSize:       10,
			MaxDeliveryRetries:   3,
		},
		queue:       NewUpdateQueue(),
		webhookRepo: webhookRepo,
		merchants:   merchants,
		syncService: backstop,
		notifier:    notifier,
		httpClient:  &http.Client{Timeout: 2 * time.Second},
		logger:      zap.NewNop(),
		registry:    make(map[string]models.WebhookRegistration),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	return relay, webhookRepo, merchants, notifier
}

func TestDeliverySignsPayload(t *testing.T) {
	backstop := &mockBackstopSync{}
	relay, _, _, _ := newTestRelay(backstop)

	var gotSignature string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		if r.Header.Get("X-Merchant-ID") != "m1" {
			t.Errorf("expected merchant header m1, got %s", r.Header.Get("X-Merchant-ID"))
		}
		if r.Header.Get("X-Source") != models.UpdateSource {
			t.Errorf("unexpected source header %s", r.Header.Get("X-Source"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := relay.RegisterCustomerAppWebhook(context.Background(), "m1", server.URL, "topsecret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	relay.SendOrderStatusUpdate("m1", "o1", "c1", BuildOrderStatusUpdate("shipped", ""))
	relay.ProcessPendingUpdates()

	if gotSignature == "" {
		t.Fatal("expected a signature header")
	}
	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSignature != want {
		t.Errorf("signature mismatch: got %s want %s", gotSignature, want)
	}

	if backstop.callCount() != 1 {
		t.Errorf("expected 1 backstop sync, got %d", backstop.callCount())
	}
}

func TestDeliveryRetryCeiling(t *testing.T) {
	backstop := &mockBackstopSync{}
	relay, _, _, _ := newTestRelay(backstop)

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if err := relay.RegisterCustomerAppWebhook(context.Background(), "m1", server.URL, ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	relay.SendProductUpdate("m1", "p1", BuildProductAvailabilityUpdate(0, 10, false))

	// Each drain pass retries the failed delivery once; after the ceiling the
	// update is dropped instead of requeued.
	for i := 0; i < 5; i++ {
		relay.ProcessPendingUpdates()
	}

	if attempts != 3 {
		t.Errorf("expected exactly 3 delivery attempts, got %d", attempts)
	}
	if relay.queue.Len() != 0 {
		t.Errorf("expected queue drained after drop, got %d pending", relay.queue.Len())
	}
	// The backstop sync still ran on every attempt.
	if backstop.callCount() != 3 {
		t.Errorf("expected 3 backstop syncs, got %d", backstop.callCount())
	}
}

func TestDeliveryRecoversWithinCeiling(t *testing.T) {
	backstop := &mockBackstopSync{}
	relay, _, _, _ := newTestRelay(backstop)

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := relay.RegisterCustomerAppWebhook(context.Background(), "m1", server.URL, ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	relay.SendCashbackUpdate("m1", "c1", BuildCashbackStatusUpdate("pending", "approved", 25))

	for i := 0; i < 5; i++ {
		relay.ProcessPendingUpdates()
	}

	if attempts != 3 {
		t.Errorf("expected third attempt to succeed and stop, got %d attempts", attempts)
	}
	if relay.queue.Len() != 0 {
		t.Errorf("expected empty queue after successful delivery, got %d", relay.queue.Len())
	}
}

func TestBackstopSyncWithoutWebhook(t *testing.T) {
	backstop := &mockBackstopSync{}
	relay, _, _, notifier := newTestRelay(backstop)

	relay.SendOrderStatusUpdate("m1", "o1", "c1", BuildOrderStatusUpdate("delivered", ""))
	relay.ProcessPendingUpdates()

	if backstop.callCount() != 1 {
		t.Fatalf("expected backstop sync without a webhook, got %d calls", backstop.callCount())
	}
	backstop.mu.Lock()
	call := backstop.calls[0]
	backstop.mu.Unlock()
	if call.MerchantID != "m1" {
		t.Errorf("unexpected merchant %s", call.MerchantID)
	}
	if len(call.SyncTypes) != 1 || call.SyncTypes[0] != models.SyncTypeOrders {
		t.Errorf("expected orders-only backstop, got %v", call.SyncTypes)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.events) != 1 || notifier.events[0] != "order" {
		t.Errorf("expected one order notification, got %v", notifier.events)
	}
}

func TestBackstopIgnoresSyncInProgress(t *testing.T) {
	backstop := &mockBackstopSync{err: ErrSyncInProgress}
	relay, _, _, _ := newTestRelay(backstop)

	relay.SendProductUpdate("m1", "p1", BuildProductAvailabilityUpdate(3, 10, true))
	relay.ProcessPendingUpdates()

	// A concurrent run is not an error condition for the relay; the update is
	// consumed either way.
	if relay.queue.Len() != 0 {
		t.Errorf("expected update consumed, got %d pending", relay.queue.Len())
	}
}

func TestUnknownUpdateTypeDropped(t *testing.T) {
	backstop := &mockBackstopSync{}
	relay, _, _, _ := newTestRelay(backstop)

	relay.queue.Push(models.CrossAppUpdate{Type: "newsletter_blast", MerchantID: "m1"})
	relay.ProcessPendingUpdates()

	if relay.queue.Len() != 0 {
		t.Errorf("unknown update should be dropped, got %d pending", relay.queue.Len())
	}
	if backstop.callCount() != 0 {
		t.Errorf("unknown update should not trigger a backstop sync, got %d", backstop.callCount())
	}
}

func TestRegisterWebhookValidation(t *testing.T) {
	relay, webhookRepo, _, _ := newTestRelay(&mockBackstopSync{})

	if err := relay.RegisterCustomerAppWebhook(context.Background(), "", "http://x", ""); err == nil {
		t.Error("expected error for missing merchant ID")
	}
	if err := relay.RegisterCustomerAppWebhook(context.Background(), "m1", "", ""); err == nil {
		t.Error("expected error for missing URL")
	}

	if err := relay.RegisterCustomerAppWebhook(context.Background(), "m1", "http://x", "s"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	webhookRepo.mu.Lock()
	defer webhookRepo.mu.Unlock()
	if len(webhookRepo.saved) != 1 || webhookRepo.saved[0].MerchantID != "m1" {
		t.Errorf("expected registration persisted, got %v", webhookRepo.saved)
	}
}

func TestInboundWishlistAdjustsFollowers(t *testing.T) {
	relay, _, merchants, notifier := newTestRelay(&mockBackstopSync{})

	updates := []models.CrossAppUpdate{
		{Type: models.UpdateTypeMerchant, MerchantID: "m1", Data: map[string]interface{}{"action": "wishlist_add"}},
		{Type: models.UpdateTypeMerchant, MerchantID: "m1", Data: map[string]interface{}{"action": "wishlist_remove"}},
		{Type: models.UpdateTypeMerchant, MerchantID: "m1", Data: map[string]interface{}{"action": "profile_view"}},
	}
	for _, u := range updates {
		if err := relay.HandleCustomerAppUpdate(context.Background(), u); err != nil {
			t.Fatalf("inbound update failed: %v", err)
		}
	}

	merchants.mu.Lock()
	deltas := merchants.deltas
	merchants.mu.Unlock()
	if len(deltas) != 2 || deltas[0] != 1 || deltas[1] != -1 {
		t.Errorf("expected follower deltas [1 -1], got %v", deltas)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.events) != 3 {
		t.Errorf("every merchant update should notify, got %d events", len(notifier.events))
	}
}

func TestInboundUnknownTypeIsNotFatal(t *testing.T) {
	relay, _, _, notifier := newTestRelay(&mockBackstopSync{})

	err := relay.HandleCustomerAppUpdate(context.Background(), models.CrossAppUpdate{
		Type:       "mystery",
		MerchantID: "m1",
	})
	if err != nil {
		t.Errorf("unknown inbound type should be ignored, got %v", err)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.events) != 0 {
		t.Errorf("unknown type should not notify, got %v", notifier.events)
	}
}

func TestStatusAndStatistics(t *testing.T) {
	relay, _, _, _ := newTestRelay(&mockBackstopSync{})

	relay.SendOrderStatusUpdate("m1", "o1", "c1", map[string]interface{}{"status": "pending"})
	relay.SendProductUpdate("m2", "p1", map[string]interface{}{"in_stock": true})

	if err := relay.RegisterCustomerAppWebhook(context.Background(), "m1", "http://customer.app/hook", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	status := relay.GetCrossAppSyncStatus("m1")
	if !status.WebhookRegistered || status.WebhookURL != "http://customer.app/hook" {
		t.Errorf("expected registered webhook in status, got %+v", status)
	}
	if status.PendingUpdates != 1 {
		t.Errorf("expected 1 pending update for m1, got %d", status.PendingUpdates)
	}

	stats := relay.GetCrossAppStatistics()
	if stats.TotalPendingUpdates != 2 {
		t.Errorf("expected 2 total pending, got %d", stats.TotalPendingUpdates)
	}
	if stats.RegisteredWebhooks != 1 {
		t.Errorf("expected 1 registered webhook, got %d", stats.RegisteredWebhooks)
	}
	if stats.PendingByType[models.UpdateTypeOrderStatus] != 1 {
		t.Errorf("expected 1 pending order update, got %d", stats.PendingByType[models.UpdateTypeOrderStatus])
	}
}

func TestStartLoadsRegistrations(t *testing.T) {
	backstop := &mockBackstopSync{}
	relay, webhookRepo, _, _ := newTestRelay(backstop)
	relay.cfg.DrainIntervalSeconds = 1
	webhookRepo.active = []models.WebhookRegistration{
		{MerchantID: "m1", URL: "http://customer.app/hook", IsActive: true},
	}

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer relay.Stop()

	status := relay.GetCrossAppSyncStatus("m1")
	if !status.WebhookRegistered {
		t.Error("expected persisted registration loaded on start")
	}
}
