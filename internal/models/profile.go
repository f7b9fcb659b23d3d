package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the authorization role carried by a profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SubscriptionStatus is the subscription tier of a profile.
type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionPremium SubscriptionStatus = "premium"
)

// Profile represents a user profile: identity, role, subscription state and
// the invoicing settings (VAT rate, branding) consumed by the PDF renderer.
//
// Invariant: a premium profile always has a non-nil ExpiryDate and a free
// profile always has a nil one. GrantPremium and the expiry sweep are the only
// writers of the subscription fields.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Role               Role               `gorm:"size:20;not null;default:'user'" json:"role"`
	SubscriptionStatus SubscriptionStatus `gorm:"size:20;not null;default:'free'" json:"subscription_status"`
	ExpiryDate         *time.Time         `json:"expiry_date,omitempty"`

	// VATRate is the percentage (0..100) snapshotted onto invoices at commit time.
	VATRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"vat_rate"`

	// Branding fields, rendered on invoice PDFs.
	CompanyName    string `gorm:"size:255" json:"company_name,omitempty"`
	CompanyAddress string `gorm:"size:500" json:"company_address,omitempty"`
	CompanyContact string `gorm:"size:255" json:"company_contact,omitempty"`
	LogoURL        string `gorm:"size:1000" json:"company_logo_url,omitempty"`
	SignatureURL   string `gorm:"size:1000" json:"company_signature_url,omitempty"`
}

// IsExpired reports whether a premium grant has lapsed as of the given day.
// Expiry is compared on calendar dates: a grant expiring today is still valid.
func (p *Profile) IsExpired(today time.Time) bool {
	if p.SubscriptionStatus != SubscriptionPremium || p.ExpiryDate == nil {
		return false
	}
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return p.ExpiryDate.Before(midnight)
}
