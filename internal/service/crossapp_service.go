package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go-merchant/internal/config"
	"go-merchant/internal/models"
	"go-merchant/internal/repository"

	"go.uber.org/zap"
)

// CrossAppSyncService relays discrete business events to the customer app.
// Events are queued in memory, drained on a fixed period, delivered to the
// merchant's registered webhook with a bounded retry, and always followed by
// a backstop sync of the affected entity type. Delivery is at-least-once up
// to the retry ceiling; loss past the ceiling or across restarts is an
// accepted trade-off.
type CrossAppSyncService interface {
	SendOrderStatusUpdate(merchantID, orderID, customerID string, update map[string]interface{})
	SendProductUpdate(merchantID, productID string, update map[string]interface{})
	SendCashbackUpdate(merchantID, customerID string, update map[string]interface{})
	SendMerchantUpdate(merchantID string, update map[string]interface{})

	RegisterCustomerAppWebhook(ctx context.Context, merchantID, url, secret string) error
	HandleCustomerAppUpdate(ctx context.Context, update models.CrossAppUpdate) error

	GetCrossAppSyncStatus(merchantID string) models.CrossAppSyncStatus
	GetCrossAppStatistics() models.CrossAppStatistics

	// ProcessPendingUpdates runs one drain pass. The periodic loop calls it
	// on every tick; ops can call it to flush immediately.
	ProcessPendingUpdates()

	Start(ctx context.Context) error
	Stop() error
}

type CrossAppSyncServiceImpl struct {
	cfg         *config.Config
	queue       *UpdateQueue
	webhookRepo repository.WebhookRepository
	merchants   repository.MerchantRepository
	syncService SyncService
	notifier    Notifier
	httpClient  *http.Client
	logger      *zap.Logger

	registryMu sync.RWMutex
	registry   map[string]models.WebhookRegistration

	isProcessing atomic.Bool
	stop         chan struct{}
	done         chan struct{}
}

func NewCrossAppSyncService(
	cfg *config.Config,
	queue *UpdateQueue,
	webhookRepo repository.WebhookRepository,
	merchants repository.MerchantRepository,
	syncService SyncService,
	notifier Notifier,
	logger *zap.Logger,
) CrossAppSyncService {
	return &CrossAppSyncServiceImpl{
		cfg:         cfg,
		queue:       queue,
		webhookRepo: webhookRepo,
		merchants:   merchants,
		syncService: syncService,
		notifier:    notifier,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:   logger,
		registry: make(map[string]models.WebhookRegistration),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *CrossAppSyncServiceImpl) SendOrderStatusUpdate(merchantID, orderID, customerID string, update map[string]interface{}) {
	s.enqueue(models.CrossAppUpdate{
		Type:       models.UpdateTypeOrderStatus,
		MerchantID: merchantID,
		CustomerID: customerID,
		OrderID:    orderID,
		Data:       update,
		Timestamp:  time.Now(),
		Source:     models.UpdateSource,
	})
	s.notifier.EmitOrderEvent(merchantID, customerID, update)
}

func (s *CrossAppSyncServiceImpl) SendProductUpdate(merchantID, productID string, update map[string]interface{}) {
	s.enqueue(models.CrossAppUpdate{
		Type:       models.UpdateTypeProduct,
		MerchantID: merchantID,
		ProductID:  productID,
		Data:       update,
		Timestamp:  time.Now(),
		Source:     models.UpdateSource,
	})
	s.notifier.EmitProductEvent(merchantID, productID, update)
}

func (s *CrossAppSyncServiceImpl) SendCashbackUpdate(merchantID, customerID string, update map[string]interface{}) {
	s.enqueue(models.CrossAppUpdate{
		Type:       models.UpdateTypeCashback,
		MerchantID: merchantID,
		CustomerID: customerID,
		Data:       update,
		Timestamp:  time.Now(),
		Source:     models.UpdateSource,
	})
	s.notifier.EmitCashbackEvent(merchantID, customerID, update)
}

func (s *CrossAppSyncServiceImpl) SendMerchantUpdate(merchantID string, update map[string]interface{}) {
	s.enqueue(models.CrossAppUpdate{
		Type:       models.UpdateTypeMerchant,
		MerchantID: merchantID,
		Data:       update,
		Timestamp:  time.Now(),
		Source:     models.UpdateSource,
	})
	s.notifier.SendMerchantUpdate(merchantID, update)
}

func (s *CrossAppSyncServiceImpl) enqueue(update models.CrossAppUpdate) {
	s.queue.Push(update)
	s.logger.Debug("cross-app update queued",
		zap.String("type", string(update.Type)),
		zap.String("merchantId", update.MerchantID))
}

// RegisterCustomerAppWebhook is an idempotent upsert; last write wins.
func (s *CrossAppSyncServiceImpl) RegisterCustomerAppWebhook(ctx context.Context, merchantID, url, secret string) error {
	if merchantID == "" || url == "" {
		return fmt.Errorf("merchant ID and URL are required")
	}

	registration := &models.WebhookRegistration{
		MerchantID: merchantID,
		URL:        url,
		Secret:     secret,
	}
	if err := s.webhookRepo.UpsertByMerchant(ctx, registration); err != nil {
		return fmt.Errorf("failed to persist webhook registration: %w", err)
	}

	s.registryMu.Lock()
	s.registry[merchantID] = *registration
	s.registryMu.Unlock()

	s.logger.Info("customer app webhook registered",
		zap.String("merchantId", merchantID),
		zap.String("url", url))

	return nil
}

// HandleCustomerAppUpdate is the inbound direction: the customer app pushes
// events back. This stays a thin adapter; it re-emits a real-time event and
// applies only the follower-count mutation for wishlist changes.
func (s *CrossAppSyncServiceImpl) HandleCustomerAppUpdate(ctx context.Context, update models.CrossAppUpdate) error {
	switch update.Type {
	case models.UpdateTypeOrderStatus:
		s.notifier.EmitOrderEvent(update.MerchantID, update.CustomerID, update.Data)
	case models.UpdateTypeProduct:
		s.notifier.EmitProductEvent(update.MerchantID, update.ProductID, update.Data)
	case models.UpdateTypeCashback:
		s.notifier.EmitCashbackEvent(update.MerchantID, update.CustomerID, update.Data)
	case models.UpdateTypeMerchant:
		if action, _ := update.Data["action"].(string); action == "wishlist_add" || action == "wishlist_remove" {
			delta := 1
			if action == "wishlist_remove" {
				delta = -1
			}
			if err := s.merchants.AdjustFollowers(ctx, update.MerchantID, delta); err != nil {
				s.logger.Warn("failed to adjust followers",
					zap.String("merchantId", update.MerchantID),
					zap.Error(err))
			}
		}
		s.notifier.SendMerchantUpdate(update.MerchantID, update.Data)
	default:
		// Unknown types are logged and ignored, never fatal.
		s.logger.Warn("unknown customer app update type",
			zap.String("type", string(update.Type)),
			zap.String("merchantId", update.MerchantID))
	}

	return nil
}

func (s *CrossAppSyncServiceImpl) GetCrossAppSyncStatus(merchantID string) models.CrossAppSyncStatus {
	s.registryMu.RLock()
	registration, registered := s.registry[merchantID]
	s.registryMu.RUnlock()

	status := models.CrossAppSyncStatus{
		MerchantID:        merchantID,
		WebhookRegistered: registered,
		PendingUpdates:    s.queue.PendingForMerchant(merchantID),
		IsProcessing:      s.isProcessing.Load(),
	}
	if registered {
		status.WebhookURL = registration.URL
	}
	return status
}

func (s *CrossAppSyncServiceImpl) GetCrossAppStatistics() models.CrossAppStatistics {
	s.registryMu.RLock()
	registered := len(s.registry)
	s.registryMu.RUnlock()

	return models.CrossAppStatistics{
		TotalPendingUpdates: s.queue.Len(),
		PendingByType:       s.queue.PendingByType(),
		RegisteredWebhooks:  registered,
		IsProcessing:        s.isProcessing.Load(),
	}
}

// ProcessPendingUpdates drains one bounded batch. The isProcessing flag
// keeps re-entrant ticks as no-ops; a tick with an empty queue is a no-op
// too.
func (s *CrossAppSyncServiceImpl) ProcessPendingUpdates() {
	if !s.isProcessing.CompareAndSwap(false, true) {
		return
	}
	defer s.isProcessing.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("drain pass panicked", zap.Any("panic", r))
		}
	}()

	batch := s.queue.PopBatch(s.cfg.DrainBatchSize)
	for _, item := range batch {
		s.processUpdate(item)
	}
}

func (s *CrossAppSyncServiceImpl) processUpdate(item queuedUpdate) {
	update := item.update

	syncType, known := update.Type.SyncTypeFor()
	if !known {
		s.logger.Warn("dropping update with unknown type",
			zap.String("type", string(update.Type)),
			zap.String("merchantId", update.MerchantID))
		return
	}

	s.registryMu.RLock()
	registration, registered := s.registry[update.MerchantID]
	s.registryMu.RUnlock()

	if registered {
		if err := s.deliver(registration, update); err != nil {
			item.retries++
			if item.retries < s.cfg.MaxDeliveryRetries {
				s.queue.pushRetry(item)
				s.logger.Warn("webhook delivery failed, requeued",
					zap.String("merchantId", update.MerchantID),
					zap.String("type", string(update.Type)),
					zap.Int("attempt", item.retries),
					zap.Error(err))
			} else {
				s.logger.Error("webhook delivery failed, dropping after retry ceiling",
					zap.String("merchantId", update.MerchantID),
					zap.String("type", string(update.Type)),
					zap.Int("attempts", item.retries),
					zap.Error(err))
			}
		}
	} else {
		// Registration is optional: deliver nothing, still reconcile below.
		s.logger.Debug("no webhook registered, skipping delivery",
			zap.String("merchantId", update.MerchantID))
	}

	// Backstop sync runs regardless of the delivery outcome, so the
	// destination dataset converges even with the webhook down.
	_, err := s.syncService.SyncToCustomerApp(context.Background(), models.SyncConfig{
		MerchantID: update.MerchantID,
		SyncTypes:  []models.SyncType{syncType},
	})
	if err != nil && !errors.Is(err, ErrSyncInProgress) {
		s.logger.Warn("backstop sync failed",
			zap.String("merchantId", update.MerchantID),
			zap.String("syncType", string(syncType)),
			zap.Error(err))
	}
}

func (s *CrossAppSyncServiceImpl) deliver(registration models.WebhookRegistration, update models.CrossAppUpdate) error {
	payload := models.WebhookPayload{
		Event:      update.Type,
		MerchantID: update.MerchantID,
		CustomerID: update.CustomerID,
		OrderID:    update.OrderID,
		ProductID:  update.ProductID,
		Data:       update.Data,
		Timestamp:  update.Timestamp,
		Source:     update.Source,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, registration.URL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Go-Merchant-CrossApp")
	req.Header.Set("X-Source", models.UpdateSource)
	req.Header.Set("X-Merchant-ID", update.MerchantID)

	// Signature
	if registration.Secret != "" {
		mac := hmac.New(sha256.New, []byte(registration.Secret))
		mac.Write(body)
		req.Header.Set("X-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return nil
}

// Start loads persisted webhook registrations and begins the periodic drain.
func (s *CrossAppSyncServiceImpl) Start(ctx context.Context) error {
	registrations, err := s.webhookRepo.ListActive(ctx)
	if err != nil {
		s.logger.Warn("failed to load webhook registrations", zap.Error(err))
	} else {
		s.registryMu.Lock()
		for _, registration := range registrations {
			s.registry[registration.MerchantID] = registration
		}
		s.registryMu.Unlock()
	}

	interval := time.Duration(s.cfg.DrainIntervalSeconds) * time.Second

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.ProcessPendingUpdates()
			case <-s.stop:
				return
			}
		}
	}()

	s.logger.Info("cross-app relay started",
		zap.Duration("drainInterval", interval),
		zap.Int("batchSize", s.cfg.DrainBatchSize))

	return nil
}

func (s *CrossAppSyncServiceImpl) Stop() error {
	close(s.stop)
	<-s.done
	s.logger.Info("cross-app relay stopped")
	return nil
}
