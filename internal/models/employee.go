package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a payroll record, consumed by the salaries page and reports.
type Employee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID  string          `gorm:"size:36;not null;index" json:"owner_id"`
	Name     string          `gorm:"size:255;not null" json:"name"`
	Position string          `gorm:"size:255" json:"position"`
	Salary   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"salary"`
	HireDate time.Time       `json:"hire_date"`
}
