package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is one catalog entry in an owner's inventory. ProductName is the
// join key used by invoice line items; it is unique per owner by convention
// but not enforced, matching historical data.
//
// Quantity may go negative: invoice posting decrements without a floor so a
// concurrent oversell becomes a visible discrepancy instead of a lost sale.
type StockItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID     string `gorm:"size:36;not null;index:idx_owner_product,priority:1" json:"owner_id"`
	ProductName string `gorm:"size:255;not null;index:idx_owner_product,priority:2" json:"product_name"`
	Description string `gorm:"size:500" json:"description"`

	Quantity      int             `gorm:"not null;default:0" json:"quantity"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price"`
}
