package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
)

// InvoiceHandler exposes pricing, numbering, commit, listing and deletion of
// invoices.
type InvoiceHandler struct {
	Engine   *services.InvoiceEngine
	Invoices *store.InvoiceStore
	Profiles *store.ProfileStore
	Timeout  time.Duration
}

func NewInvoiceHandler(engine *services.InvoiceEngine, invoices *store.InvoiceStore, profiles *store.ProfileStore, timeout time.Duration) *InvoiceHandler {
	return &InvoiceHandler{Engine: engine, Invoices: invoices, Profiles: profiles, Timeout: timeout}
}

type priceReq struct {
	Items   []services.LineItemInput `json:"items"`
	VATRate *decimal.Decimal         `json:"vat_rate,omitempty"`
}

type commitReq struct {
	Client    string                   `json:"client"`
	IssueDate string                   `json:"issue_date,omitempty"` // 2006-01-02
	Kind      models.TransactionKind   `json:"kind"`
	Items     []services.LineItemInput `json:"items"`
	VATRate   *decimal.Decimal         `json:"vat_rate,omitempty"`
}

// vatRate resolves the rate to use: an explicit request value wins, otherwise
// the rate in effect on the owning profile right now.
func (h *InvoiceHandler) vatRate(r *http.Request, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		return *explicit, nil
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	profile, err := h.Profiles.Get(ctx, ownerID(r))
	if err != nil {
		return decimal.Zero, err
	}
	return profile.VATRate, nil
}

// Price handles POST /api/invoices/price, returning live totals for the
// editing UI.
func (h *InvoiceHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req priceReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rate, err := h.vatRate(r, req.VATRate)
	if err != nil {
		writeError(w, err)
		return
	}
	totals, err := h.Engine.Price(req.Items, rate)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

// NextNumber handles GET /api/invoices/next-number, a preview of the next
// FACT-NNN number. Display only: the commit re-derives it fresh.
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	number, err := h.Engine.NextInvoiceNumber(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}

// List: GET /api/invoices.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	invoices, err := h.Invoices.List(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

// Create handles POST /api/invoices, committing a finalized invoice. Stock
// warnings ride along in the response; they do not fail the commit.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req commitReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rate, err := h.vatRate(r, req.VATRate)
	if err != nil {
		writeError(w, err)
		return
	}
	header := services.InvoiceHeader{Client: req.Client, Kind: req.Kind}
	if req.IssueDate != "" {
		d, err := time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_issue_date", nil)
			return
		}
		header.IssueDate = d
	}

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	result, err := h.Engine.Commit(ctx, ownerID(r), header, req.Items, rate)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

// Delete handles DELETE /api/invoices/{id}, removing the invoice and its
// paired ledger transaction. Unknown ids are a no-op.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.Engine.Delete(ctx, ownerID(r), uint(id)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
