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

// LedgerHandler exposes the flat transaction ledger for manual entries.
// Invoice-backed transactions are written only by the invoice engine.
type LedgerHandler struct {
	Ledger  *store.LedgerStore
	Timeout time.Duration
}

func NewLedgerHandler(ledger *store.LedgerStore, timeout time.Duration) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger, Timeout: timeout}
}

type transactionReq struct {
	Date        string                 `json:"date"` // 2006-01-02
	Kind        models.TransactionKind `json:"kind"`
	Amount      decimal.Decimal        `json:"amount"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
}

// List: GET /api/transactions.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	txs, err := h.Ledger.List(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": txs, "total": len(txs)})
}

// Create handles POST /api/transactions, a manual revenue/expense entry.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if req.Kind != models.TransactionRevenue && req.Kind != models.TransactionExpense {
		v.Add("kind", "must_be_revenue_or_expense")
	}
	validation.NonNegativeDecimal("amount", req.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	date := time.Now()
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		date = d
	}

	tx := &models.Transaction{
		OwnerID:     ownerID(r),
		Date:        date,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.Ledger.Insert(ctx, tx); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

// Delete: DELETE /api/transactions/{id}.
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.Ledger.Delete(ctx, ownerID(r), uint(id)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
