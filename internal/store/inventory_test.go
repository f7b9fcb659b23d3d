package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Profile{},
		&models.Transaction{},
		&models.StockItem{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// sqlite allows one writer; a single connection keeps concurrent test
	// goroutines from tripping over busy errors.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestApplyDelta(t *testing.T) {
	db := setupTestDB(t, t.Name())
	s := NewInventoryStore(db)
	ctx := context.Background()

	item := &models.StockItem{OwnerID: "owner-a", ProductName: "Ciment", Quantity: 10}
	if err := s.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, _, err := s.ApplyDelta(ctx, "owner-a", "Ciment", -4)
	if err != nil || !ok {
		t.Fatalf("delta -4: ok=%v err=%v", ok, err)
	}
	ok, _, err = s.ApplyDelta(ctx, "owner-a", "Ciment", -3)
	if err != nil || !ok {
		t.Fatalf("delta -3: ok=%v err=%v", ok, err)
	}

	got, err := s.GetByName(ctx, "owner-a", "Ciment")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", got.Quantity)
	}
}

func TestApplyDeltaUnknownProduct(t *testing.T) {
	db := setupTestDB(t, t.Name())
	s := NewInventoryStore(db)

	ok, msg, err := s.ApplyDelta(context.Background(), "owner-a", "Fantôme", -1)
	if err != nil {
		t.Fatalf("delta: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for unknown product")
	}
	if msg == "" {
		t.Error("expected a message naming the product")
	}
}

func TestApplyDeltaIsOwnerScoped(t *testing.T) {
	db := setupTestDB(t, t.Name())
	s := NewInventoryStore(db)
	ctx := context.Background()

	if err := s.Create(ctx, &models.StockItem{OwnerID: "owner-a", ProductName: "Ciment", Quantity: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, _, err := s.ApplyDelta(ctx, "owner-b", "Ciment", -5)
	if err != nil {
		t.Fatalf("delta: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false across owners")
	}
	got, err := s.GetByName(ctx, "owner-a", "Ciment")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 10 {
		t.Errorf("quantity = %d, want 10 untouched", got.Quantity)
	}
}

func TestApplyDeltaMayGoNegative(t *testing.T) {
	db := setupTestDB(t, t.Name())
	s := NewInventoryStore(db)
	ctx := context.Background()

	if err := s.Create(ctx, &models.StockItem{OwnerID: "owner-a", ProductName: "Sable", Quantity: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, _, err := s.ApplyDelta(ctx, "owner-a", "Sable", -5)
	if err != nil || !ok {
		t.Fatalf("delta: ok=%v err=%v", ok, err)
	}
	got, err := s.GetByName(ctx, "owner-a", "Sable")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != -3 {
		t.Errorf("quantity = %d, want -3", got.Quantity)
	}
}

func TestApplyDeltaConcurrent(t *testing.T) {
	db := setupTestDB(t, t.Name())
	s := NewInventoryStore(db)
	ctx := context.Background()

	if err := s.Create(ctx, &models.StockItem{OwnerID: "owner-a", ProductName: "Tôle", Quantity: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := s.ApplyDelta(ctx, "owner-a", "Tôle", -3); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent delta: %v", err)
	}

	got, err := s.GetByName(ctx, "owner-a", "Tôle")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 100-workers*3 {
		t.Errorf("quantity = %d, want %d", got.Quantity, 100-workers*3)
	}
}

func TestInventoryCreateAndList(t *testing.T) {
	db := setupTestDB(t, t.Name())
	s := NewInventoryStore(db)
	ctx := context.Background()

	names := []string{"Ciment", "Sable", "Tôle"}
	for _, n := range names {
		item := &models.StockItem{OwnerID: "owner-a", ProductName: n, SalePrice: decimal.NewFromInt(100)}
		if err := s.Create(ctx, item); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}
	if err := s.Create(ctx, &models.StockItem{OwnerID: "owner-b", ProductName: "Autre"}); err != nil {
		t.Fatalf("create other owner: %v", err)
	}

	items, err := s.List(ctx, "owner-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("list len = %d, want 3", len(items))
	}
	if items[0].ProductName != "Ciment" {
		t.Errorf("first item = %q, want Ciment", items[0].ProductName)
	}
}
