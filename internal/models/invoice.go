package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusPosted InvoiceStatus = "posted"
)

// InvoiceNumberPrefix is the fixed prefix of generated invoice numbers.
const InvoiceNumberPrefix = "FACT-"

// Invoice is a posted billing document. The amounts and the VAT rate are
// snapshots taken at commit time and never recomputed. A posted invoice is
// immutable; deleting it also deletes its paired ledger transaction.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID string `gorm:"size:36;not null;uniqueIndex:idx_owner_number,priority:1" json:"owner_id"`
	Number  string `gorm:"size:20;not null;uniqueIndex:idx_owner_number,priority:2" json:"number"`

	Client    string        `gorm:"size:255;not null" json:"client"`
	IssueDate time.Time     `gorm:"not null" json:"issue_date"`
	Status    InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	Items []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	VATRate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_rate"`
	VATAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"vat_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

// InvoiceLineItem is one priced row on an invoice. ProductName, when set,
// links the row to a stock item by name; free-text rows leave it nil.
type InvoiceLineItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	ProductName *string         `gorm:"size:255" json:"product_name,omitempty"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// ComputeLineTotal returns quantity × unit price rounded to 2 decimals.
func (it *InvoiceLineItem) ComputeLineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
}

// FormatInvoiceNumber renders a sequence as a FACT-NNN number. Sequences past
// 999 widen naturally (FACT-1000).
func FormatInvoiceNumber(seq int) string {
	return fmt.Sprintf("%s%03d", InvoiceNumberPrefix, seq)
}

// ParseInvoiceNumber extracts the numeric suffix of a well-formed FACT-NNN
// number. Malformed numbers report ok=false and are skipped by callers.
func ParseInvoiceNumber(number string) (seq int, ok bool) {
	suffix, found := strings.CutPrefix(number, InvoiceNumberPrefix)
	if !found || suffix == "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
