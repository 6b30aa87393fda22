package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-merchant/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockProductRepo struct {
	modified []models.Product
	deleted  []models.Product

	capturedSince *time.Time
	capturedLimit int64
}

func (m *mockProductRepo) ListModifiedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Product, error) {
	m.capturedSince = since
	m.capturedLimit = limit
	return m.modified, nil
}

func (m *mockProductRepo) ListDeletedSince(ctx context.Context, merchantID string, since *time.Time, limit int64) ([]models.Product, error) {
	return m.deleted, nil
}

type mockDestination struct {
	upserted      map[string]map[string]interface{}
	removed       []string
	existing      map[string]bool // product IDs already present
	failProductID string
}

func newMockDestination() *mockDestination {
	return &mockDestination{
		upserted: make(map[string]map[string]interface{}),
		existing: make(map[string]bool),
	}
}

func (m *mockDestination) UpsertProduct(ctx context.Context, merchantID, productID string, doc map[string]interface{}) (bool, error) {
	if productID == m.failProductID {
		return false, errors.New("destination rejected document")
	}
	created := !m.existing[productID]
	m.existing[productID] = true
	m.upserted[productID] = doc
	return created, nil
}

func (m *mockDestination) RemoveProduct(ctx context.Context, merchantID, productID string) error {
	m.removed = append(m.removed, productID)
	return nil
}

func (m *mockDestination) UpsertOrder(ctx context.Context, order models.CustomerAppOrder) (bool, error) {
	return true, nil
}

func (m *mockDestination) UpsertCashback(ctx context.Context, cashback models.CustomerAppCashback) (bool, error) {
	return true, nil
}

func (m *mockDestination) UpsertMerchant(ctx context.Context, merchant models.CustomerAppMerchant) error {
	return nil
}

func testProduct(name string, price float64, qty int) models.Product {
	return models.Product{
		ID:            primitive.NewObjectID(),
		MerchantID:    "m1",
		Name:          name,
		Price:         price,
		Currency:      "INR",
		StockQuantity: qty,
		IsActive:      true,
	}
}

func TestProductSyncCountsCreatedAndUpdated(t *testing.T) {
	p1 := testProduct("Masala Dosa", 120, 10)
	p2 := testProduct("Filter Coffee", 40, 0)

	repo := &mockProductRepo{modified: []models.Product{p1, p2}}
	dest := newMockDestination()
	dest.existing[p2.ID.Hex()] = true

	syncer := NewProductSyncer(repo, &mockMerchantRepo{}, dest, NewTransformEngine(), zap.NewNop())
	res := syncer.Sync(context.Background(), "m1", nil, 100)

	if res.Created != 1 || res.Updated != 1 {
		t.Errorf("expected 1 created 1 updated, got %d/%d", res.Created, res.Updated)
	}
	if res.Errors != 0 {
		t.Errorf("expected no errors, got %d: %v", res.Errors, res.Messages)
	}
	if repo.capturedLimit != 100 {
		t.Errorf("expected batch size 100 passed through, got %d", repo.capturedLimit)
	}

	doc := dest.upserted[p2.ID.Hex()]
	if doc["in_stock"] != false {
		t.Error("zero stock should project as out of stock")
	}
	if dest.upserted[p1.ID.Hex()]["slug"] != "masala-dosa" {
		t.Errorf("expected slug masala-dosa, got %v", dest.upserted[p1.ID.Hex()]["slug"])
	}
}

func TestProductSyncPropagatesDeletions(t *testing.T) {
	gone := testProduct("Discontinued", 10, 0)

	repo := &mockProductRepo{deleted: []models.Product{gone}}
	dest := newMockDestination()

	syncer := NewProductSyncer(repo, &mockMerchantRepo{}, dest, NewTransformEngine(), zap.NewNop())
	res := syncer.Sync(context.Background(), "m1", nil, 100)

	if res.Deleted != 1 {
		t.Errorf("expected 1 deletion, got %d", res.Deleted)
	}
	if len(dest.removed) != 1 || dest.removed[0] != gone.ID.Hex() {
		t.Errorf("expected removal of %s, got %v", gone.ID.Hex(), dest.removed)
	}
}

func TestProductSyncIsolatesRecordFailures(t *testing.T) {
	good := testProduct("Good", 10, 5)
	bad := testProduct("Bad", 20, 5)

	repo := &mockProductRepo{modified: []models.Product{bad, good}}
	dest := newMockDestination()
	dest.failProductID = bad.ID.Hex()

	syncer := NewProductSyncer(repo, &mockMerchantRepo{}, dest, NewTransformEngine(), zap.NewNop())
	res := syncer.Sync(context.Background(), "m1", nil, 100)

	if res.Errors != 1 {
		t.Errorf("expected 1 record error, got %d", res.Errors)
	}
	if res.Created != 1 {
		t.Errorf("failing record must not block the rest, created=%d", res.Created)
	}
	if len(res.Messages) != 1 {
		t.Errorf("expected 1 error message, got %v", res.Messages)
	}
}

func TestProductSyncAppliesTransformScript(t *testing.T) {
	p := testProduct("Combo Meal", 100, 5)

	repo := &mockProductRepo{modified: []models.Product{p}}
	dest := newMockDestination()
	merchants := &mockMerchantRepo{script: `record.name = "[Featured] " + record.name`}

	syncer := NewProductSyncer(repo, merchants, dest, NewTransformEngine(), zap.NewNop())
	res := syncer.Sync(context.Background(), "m1", nil, 100)

	if res.Errors != 0 {
		t.Fatalf("expected clean run, got %v", res.Messages)
	}
	doc := dest.upserted[p.ID.Hex()]
	if doc["name"] != "[Featured] Combo Meal" {
		t.Errorf("expected transformed name, got %v", doc["name"])
	}
}

func TestProductSyncBadScriptCountsAsRecordError(t *testing.T) {
	p := testProduct("Thali", 150, 3)

	repo := &mockProductRepo{modified: []models.Product{p}}
	dest := newMockDestination()
	merchants := &mockMerchantRepo{script: `this is not tengo`}

	syncer := NewProductSyncer(repo, merchants, dest, NewTransformEngine(), zap.NewNop())
	res := syncer.Sync(context.Background(), "m1", nil, 100)

	if res.Errors != 1 {
		t.Errorf("expected 1 transform error, got %d", res.Errors)
	}
	if len(dest.upserted) != 0 {
		t.Error("record with failed transform should not be upserted")
	}
}
