package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/auth"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
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
		&models.Account{},
		&models.Transaction{},
		&models.StockItem{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.Employee{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOwner(t *testing.T, db *gorm.DB, vatRate string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:                 uuid.NewString(),
		Email:              uuid.NewString() + "@example.com",
		PasswordHash:       "hash",
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionFree,
		VATRate:            decimal.RequireFromString(vatRate),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return p
}

func newInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	invoices := store.NewInvoiceStore(db)
	ledger := store.NewLedgerStore(db)
	inventory := store.NewInventoryStore(db)
	profiles := store.NewProfileStore(db)
	engine := services.NewInvoiceEngine(db, invoices, ledger, inventory, zerolog.Nop())
	return NewInvoiceHandler(engine, invoices, profiles, 0)
}

// doJSON runs one authenticated request against a handler func.
func doJSON(ownerID, method, target, body string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r = r.WithContext(auth.WithOwnerID(r.Context(), ownerID))
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestInvoicePriceEndpoint(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedOwner(t, db, "18")
	h := newInvoiceHandler(db)

	body := `{"items":[{"description":"Prestation","quantity":2,"unit_price":"1500"},{"description":"Pose","quantity":1,"unit_price":"5000"}]}`
	w := doJSON(owner.ID, http.MethodPost, "/api/invoices/price", body, h.Price)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var totals services.Totals
	if err := json.Unmarshal(w.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !totals.Subtotal.Equal(decimal.NewFromInt(8000)) ||
		!totals.VATAmount.Equal(decimal.NewFromInt(1440)) ||
		!totals.Total.Equal(decimal.NewFromInt(9440)) {
		t.Errorf("totals = %+v, want 8000/1440/9440", totals)
	}
}

func TestInvoicePriceExplicitRateOverridesProfile(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedOwner(t, db, "18")
	h := newInvoiceHandler(db)

	body := `{"items":[{"quantity":1,"unit_price":"100"}],"vat_rate":"0"}`
	w := doJSON(owner.ID, http.MethodPost, "/api/invoices/price", body, h.Price)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var totals services.Totals
	if err := json.Unmarshal(w.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !totals.VATAmount.IsZero() {
		t.Errorf("vat = %s, want 0 with explicit rate", totals.VATAmount)
	}
}

func TestInvoicePriceRejectsBadPayload(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedOwner(t, db, "18")
	h := newInvoiceHandler(db)

	w := doJSON(owner.ID, http.MethodPost, "/api/invoices/price", `{"items":[]}`, h.Price)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty items status = %d, want 422", w.Code)
	}

	w = doJSON(owner.ID, http.MethodPost, "/api/invoices/price", `{"unknown_key":1}`, h.Price)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", w.Code)
	}
}

func TestInvoiceCreateEndpoint(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedOwner(t, db, "18")
	h := newInvoiceHandler(db)

	if err := db.Create(&models.StockItem{OwnerID: owner.ID, ProductName: "Ciment", Quantity: 10}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	body := `{"client":"Aminata","kind":"revenue","items":[{"product_name":"Ciment","quantity":4,"unit_price":"6500"},{"product_name":"Inconnu","quantity":1,"unit_price":"100"}]}`
	w := doJSON(owner.ID, http.MethodPost, "/api/invoices", body, h.Create)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var res services.CommitResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Invoice.Number != "FACT-001" {
		t.Errorf("number = %q, want FACT-001", res.Invoice.Number)
	}
	if len(res.StockWarnings) != 1 || res.StockWarnings[0].ProductName != "Inconnu" {
		t.Errorf("warnings = %+v, want one for Inconnu", res.StockWarnings)
	}

	var item models.StockItem
	if err := db.Where("owner_id = ? AND product_name = ?", owner.ID, "Ciment").First(&item).Error; err != nil {
		t.Fatalf("reload stock: %v", err)
	}
	if item.Quantity != 6 {
		t.Errorf("stock quantity = %d, want 6", item.Quantity)
	}
}

func TestInvoiceDeleteEndpoint(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedOwner(t, db, "0")
	h := newInvoiceHandler(db)

	body := `{"client":"Awa","kind":"revenue","items":[{"quantity":1,"unit_price":"100"}]}`
	w := doJSON(owner.ID, http.MethodPost, "/api/invoices", body, h.Create)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var res services.CommitResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/invoices/{id}", h.Delete)
	r := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/invoices/%d", res.Invoice.ID), nil)
	r = r.WithContext(auth.WithOwnerID(r.Context(), owner.ID))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d body=%s", rec.Code, rec.Body.String())
	}

	var invoices, txs int64
	db.Model(&models.Invoice{}).Count(&invoices)
	db.Model(&models.Transaction{}).Count(&txs)
	if invoices != 0 || txs != 0 {
		t.Errorf("after delete: invoices=%d txs=%d, want 0/0", invoices, txs)
	}
}

func TestInvoiceNextNumberEndpoint(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedOwner(t, db, "0")
	h := newInvoiceHandler(db)

	w := doJSON(owner.ID, http.MethodGet, "/api/invoices/next-number", "", h.NextNumber)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["number"] != "FACT-001" {
		t.Errorf("number = %q, want FACT-001", out["number"])
	}
}
