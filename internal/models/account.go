package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account.
type AccountType string

const (
	AccountBank        AccountType = "bank"
	AccountMobileMoney AccountType = "mobile_money"
	AccountCash        AccountType = "cash"
)

// Account is a money source declared by the owner. Balance is informational
// and entered manually; it is not derived from the ledger.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID string          `gorm:"size:36;not null;index" json:"owner_id"`
	Name    string          `gorm:"size:255;not null" json:"name"`
	Balance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Type    AccountType     `gorm:"size:20;not null" json:"type"`
}
