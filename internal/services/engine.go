// Package services holds the invoicing engine and the subscription
// reconciler, the two orchestrators on top of the stores.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/store"
	"github.com/diewo77/comptable/internal/validation"
)

// LineItemInput is one row of a draft invoice as entered in the editor.
// ProductName links the row to a stock item; empty means free text.
type LineItemInput struct {
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// InvoiceHeader carries the non-line fields of a draft invoice.
type InvoiceHeader struct {
	Client    string                 `json:"client"`
	IssueDate time.Time              `json:"issue_date"`
	Kind      models.TransactionKind `json:"kind"`
}

// Totals is the priced summary of a line item set.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`
}

// StockWarning reports one line item whose inventory adjustment failed after
// the invoice was already committed.
type StockWarning struct {
	ProductName string `json:"product_name"`
	Message     string `json:"message"`
}

// CommitResult is the outcome of a successful commit: the persisted invoice
// plus any non-fatal stock warnings for the caller to display.
type CommitResult struct {
	Invoice       *models.Invoice `json:"invoice"`
	StockWarnings []StockWarning  `json:"stock_warnings,omitempty"`
}

var (
	hundred    = decimal.NewFromInt(100)
	maxVATRate = decimal.NewFromInt(100)
)

// InvoiceEngine prices draft invoices and commits finalized ones as a single
// logical unit across the invoice store, the ledger and the inventory.
// It holds no mutable state; every call is scoped to its arguments.
type InvoiceEngine struct {
	db        *gorm.DB
	invoices  *store.InvoiceStore
	ledger    *store.LedgerStore
	inventory *store.InventoryStore
	log       zerolog.Logger
}

func NewInvoiceEngine(db *gorm.DB, invoices *store.InvoiceStore, ledger *store.LedgerStore, inventory *store.InventoryStore, log zerolog.Logger) *InvoiceEngine {
	return &InvoiceEngine{db: db, invoices: invoices, ledger: ledger, inventory: inventory, log: log}
}

// Price computes subtotal (HT), VAT amount and total (TTC) for a line item
// set. Pure computation, no I/O; the editing UI calls it on every change.
// All three values are rounded to 2 decimals.
func (e *InvoiceEngine) Price(items []LineItemInput, vatRatePercent decimal.Decimal) (Totals, error) {
	if v := validateLineItems(items, vatRatePercent); !v.Empty() {
		return Totals{}, &store.ValidationError{Violations: v}
	}
	subtotal := decimal.Zero
	for _, it := range items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)
	vat := subtotal.Mul(vatRatePercent).Div(hundred).Round(2)
	return Totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}, nil
}

// NextInvoiceNumber derives the next FACT-NNN number for an owner from the
// numbers already on record: max well-formed suffix plus one, zero-padded to
// three digits. Malformed numbers are skipped. Owners with no invoices get
// FACT-001. The value must be read fresh at commit time, never cached from an
// earlier render.
func (e *InvoiceEngine) NextInvoiceNumber(ctx context.Context, ownerID string) (string, error) {
	numbers, err := e.invoices.Numbers(ctx, ownerID)
	if err != nil {
		return "", err
	}
	maxSeq := 0
	for _, n := range numbers {
		if seq, ok := models.ParseInvoiceNumber(n); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return models.FormatInvoiceNumber(maxSeq + 1), nil
}

// Commit finalizes a draft invoice:
//
//  1. validate the input (no I/O on failure),
//  2. price it,
//  3. persist the invoice and append its ledger transaction in one database
//     transaction, so on failure nothing is recorded,
//  4. for revenue invoices, decrement stock per line item referencing a
//     product, best effort: failures are reported as warnings, never by
//     failing the commit, because silently reversing a posted invoice is
//     worse than a stock discrepancy a human can reconcile.
//
// A duplicate invoice number from a concurrent commit is retried once with a
// freshly derived number before giving up.
func (e *InvoiceEngine) Commit(ctx context.Context, ownerID string, header InvoiceHeader, items []LineItemInput, vatRatePercent decimal.Decimal) (*CommitResult, error) {
	v := validation.Violations{}
	validation.Required("client", header.Client, v)
	if header.Kind != models.TransactionRevenue && header.Kind != models.TransactionExpense {
		v.Add("kind", "must_be_revenue_or_expense")
	}
	for f, code := range validateLineItems(items, vatRatePercent) {
		v.Add(f, code)
	}
	if !v.Empty() {
		return nil, &store.ValidationError{Violations: v}
	}

	totals, err := e.Price(items, vatRatePercent)
	if err != nil {
		return nil, err
	}

	issueDate := header.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	var inv *models.Invoice
	for attempt := 0; attempt < 2; attempt++ {
		number, err := e.NextInvoiceNumber(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		inv = buildInvoice(ownerID, number, header.Client, issueDate, items, totals, vatRatePercent)

		err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := e.invoices.InsertTx(tx, inv); err != nil {
				return err
			}
			return e.ledger.InsertTx(tx, &models.Transaction{
				OwnerID:       ownerID,
				Date:          issueDate,
				Kind:          header.Kind,
				Amount:        totals.Total,
				Category:      models.CategoryInvoicing,
				Description:   fmt.Sprintf("Facture %s pour %s", number, header.Client),
				InvoiceNumber: &inv.Number,
			})
		})
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			e.log.Warn().Str("owner", ownerID).Str("number", number).
				Msg("invoice number taken by concurrent commit, retrying")
			continue
		}
		var transient *store.TransientStoreError
		if errors.As(err, &transient) {
			return nil, transient
		}
		return nil, &store.ConsistencyError{Op: "invoice commit", Err: err}
	}

	result := &CommitResult{Invoice: inv}
	if header.Kind == models.TransactionRevenue {
		result.StockWarnings = e.adjustStock(ctx, ownerID, items)
	}
	e.log.Info().Str("owner", ownerID).Str("number", inv.Number).
		Str("total", totals.Total.String()).Int("warnings", len(result.StockWarnings)).
		Msg("invoice committed")
	return result, nil
}

// adjustStock applies the negative quantity deltas for every line referencing
// a product. The invoice is already the system of record at this point, so
// each failure is collected instead of aborting.
func (e *InvoiceEngine) adjustStock(ctx context.Context, ownerID string, items []LineItemInput) []StockWarning {
	var warnings []StockWarning
	for _, it := range items {
		if it.ProductName == "" {
			continue
		}
		ok, msg, err := e.inventory.ApplyDelta(ctx, ownerID, it.ProductName, -it.Quantity)
		switch {
		case err != nil:
			warnings = append(warnings, StockWarning{ProductName: it.ProductName, Message: err.Error()})
		case !ok:
			warnings = append(warnings, StockWarning{ProductName: it.ProductName, Message: msg})
		}
	}
	return warnings
}

// Delete removes an invoice together with its paired ledger transaction, as
// one unit. Unknown invoice ids are a no-op. Stock previously decremented by
// the invoice is not restored.
func (e *InvoiceEngine) Delete(ctx context.Context, ownerID string, invoiceID uint) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := e.invoices.DeleteTx(tx, ownerID, invoiceID)
		if err != nil || inv == nil {
			return err
		}
		return e.ledger.DeleteByInvoiceNumberTx(tx, ownerID, inv.Number)
	})
	if err == nil {
		return nil
	}
	var transient *store.TransientStoreError
	if errors.As(err, &transient) {
		return transient
	}
	return &store.ConsistencyError{Op: "invoice delete", Err: err}
}

func validateLineItems(items []LineItemInput, vatRatePercent decimal.Decimal) validation.Violations {
	v := validation.Violations{}
	if len(items) == 0 {
		v.Add("items", "required")
	}
	for i, it := range items {
		validation.PositiveInt(fmt.Sprintf("items[%d].quantity", i), it.Quantity, v)
		validation.NonNegativeDecimal(fmt.Sprintf("items[%d].unit_price", i), it.UnitPrice, v)
	}
	validation.RangeDecimal("vat_rate", vatRatePercent, decimal.Zero, maxVATRate, v)
	return v
}

func buildInvoice(ownerID, number, client string, issueDate time.Time, items []LineItemInput, totals Totals, vatRate decimal.Decimal) *models.Invoice {
	lineItems := make([]models.InvoiceLineItem, 0, len(items))
	for _, it := range items {
		line := models.InvoiceLineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
		if it.ProductName != "" {
			name := it.ProductName
			line.ProductName = &name
			if line.Description == "" {
				line.Description = name
			}
		}
		line.LineTotal = line.ComputeLineTotal()
		lineItems = append(lineItems, line)
	}
	return &models.Invoice{
		OwnerID:   ownerID,
		Number:    number,
		Client:    client,
		IssueDate: issueDate,
		Status:    models.InvoiceStatusPosted,
		Items:     lineItems,
		Subtotal:  totals.Subtotal,
		VATRate:   vatRate,
		VATAmount: totals.VATAmount,
		Total:     totals.Total,
	}
}
