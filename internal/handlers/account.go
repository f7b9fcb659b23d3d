package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/store"
	"github.com/diewo77/comptable/internal/validation"
)

// AccountHandler manages the owner's declared money sources.
type AccountHandler struct {
	DB      *gorm.DB
	Ledger  *store.LedgerStore
	Timeout time.Duration
}

func NewAccountHandler(db *gorm.DB, ledger *store.LedgerStore, timeout time.Duration) *AccountHandler {
	return &AccountHandler{DB: db, Ledger: ledger, Timeout: timeout}
}

type accountReq struct {
	Name    string             `json:"name"`
	Balance decimal.Decimal    `json:"balance"`
	Type    models.AccountType `json:"type"`
}

// List: GET /api/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	var accounts []models.Account
	if err := h.DB.WithContext(ctx).Where("owner_id = ?", ownerID(r)).Order("name ASC").Find(&accounts).Error; err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": accounts, "total": len(accounts)})
}

// Create: POST /api/accounts. A positive initial balance is also recorded as
// a revenue transaction so the ledger reflects money already held.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.NonNegativeDecimal("balance", req.Balance, v)
	switch req.Type {
	case models.AccountBank, models.AccountMobileMoney, models.AccountCash:
	default:
		v.Add("type", "unknown_account_type")
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	owner := ownerID(r)
	account := &models.Account{
		OwnerID: owner,
		Name:    req.Name,
		Balance: req.Balance,
		Type:    req.Type,
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.DB.WithContext(ctx).Create(account).Error; err != nil {
		writeError(w, err)
		return
	}
	if req.Balance.IsPositive() {
		tx := &models.Transaction{
			OwnerID:     owner,
			Date:        time.Now(),
			Kind:        models.TransactionRevenue,
			Amount:      req.Balance,
			Category:    "Solde initial",
			Description: "Solde initial du compte " + req.Name,
		}
		if err := h.Ledger.Insert(ctx, tx); err != nil {
			writeError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusCreated, account)
}
