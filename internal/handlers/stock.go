package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/store"
	"github.com/diewo77/comptable/internal/validation"
)

// StockHandler exposes the inventory catalog: creation, listing, manual
// restocking and deletion. Sales decrements happen through the invoice
// engine only.
type StockHandler struct {
	Inventory *store.InventoryStore
	Timeout   time.Duration
}

func NewStockHandler(inventory *store.InventoryStore, timeout time.Duration) *StockHandler {
	return &StockHandler{Inventory: inventory, Timeout: timeout}
}

type stockItemReq struct {
	ProductName   string          `json:"product_name"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// List: GET /api/stock.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	items, err := h.Inventory.List(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// Create: POST /api/stock.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req stockItemReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("product_name", req.ProductName, v)
	if req.Quantity < 0 {
		v.Add("quantity", "must_not_be_negative")
	}
	validation.NonNegativeDecimal("purchase_price", req.PurchasePrice, v)
	validation.NonNegativeDecimal("sale_price", req.SalePrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	item := &models.StockItem{
		OwnerID:       ownerID(r),
		ProductName:   req.ProductName,
		Description:   req.Description,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.Inventory.Create(ctx, item); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

type restockReq struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// Restock handles POST /api/stock/restock, a manual positive quantity delta.
func (h *StockHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req restockReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("product_name", req.ProductName, v)
	validation.PositiveInt("quantity", req.Quantity, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	ok, msg, err := h.Inventory.ApplyDelta(ctx, ownerID(r), req.ProductName, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", msg)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Delete: DELETE /api/stock/{id}.
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.Inventory.Delete(ctx, ownerID(r), uint(id)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
