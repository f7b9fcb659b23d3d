package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
)

// InvoiceStore persists invoices with their line items, scoped by owner.
// The (owner_id, number) unique index is the backstop for the numbering race.
type InvoiceStore struct {
	db *gorm.DB
}

func NewInvoiceStore(db *gorm.DB) *InvoiceStore { return &InvoiceStore{db: db} }

// InsertTx persists an invoice and its items within a caller-provided
// transaction. A duplicate (owner, number) pair surfaces as
// gorm.ErrDuplicatedKey for the engine's single numbering retry.
func (s *InvoiceStore) InsertTx(tx *gorm.DB, inv *models.Invoice) error {
	err := tx.Create(inv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return err // untranslated: the engine matches on it
	}
	return classify("invoice insert", err)
}

// Get loads one invoice with its items.
func (s *InvoiceStore) Get(ctx context.Context, ownerID string, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("invoice get", err)
	}
	return &inv, nil
}

// List returns all invoices of an owner with items, newest first.
func (s *InvoiceStore) List(ctx context.Context, ownerID string) ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("id DESC").
		Find(&out).Error
	return out, classify("invoice list", err)
}

// Numbers returns every invoice number recorded for an owner.
func (s *InvoiceStore) Numbers(ctx context.Context, ownerID string) ([]string, error) {
	var numbers []string
	err := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("owner_id = ?", ownerID).
		Pluck("number", &numbers).Error
	return numbers, classify("invoice numbers", err)
}

// DeleteTx removes an invoice and its line items within a caller-provided
// transaction, returning the deleted invoice or nil when the id is unknown.
func (s *InvoiceStore) DeleteTx(tx *gorm.DB, ownerID string, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("invoice delete lookup", err)
	}
	if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLineItem{}).Error; err != nil {
		return nil, classify("invoice items delete", err)
	}
	if err := tx.Delete(&models.Invoice{}, inv.ID).Error; err != nil {
		return nil, classify("invoice delete", err)
	}
	return &inv, nil
}
