package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes money coming in from money going out.
type TransactionKind string

const (
	TransactionRevenue TransactionKind = "revenue"
	TransactionExpense TransactionKind = "expense"
)

// CategoryInvoicing is the fixed category of ledger transactions written by
// the invoice engine.
const CategoryInvoicing = "Facturation"

// Transaction is one dated revenue or expense record in the flat ledger.
// Transactions are immutable once created; the only mutation is deletion,
// which for invoice-backed transactions happens together with the invoice.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OwnerID     string          `gorm:"size:36;not null;index" json:"owner_id"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Kind        TransactionKind `gorm:"size:20;not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category    string          `gorm:"size:100" json:"category"`
	Description string          `gorm:"size:500" json:"description"`

	// InvoiceNumber back-references the invoice this transaction was posted
	// for. Nil for manually entered transactions.
	InvoiceNumber *string `gorm:"size:20;index" json:"invoice_number,omitempty"`
}
