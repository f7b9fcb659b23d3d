package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
)

// LedgerStore is the append-only collection of financial transactions,
// scoped by owner.
type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore { return &LedgerStore{db: db} }

// Insert appends one transaction.
func (s *LedgerStore) Insert(ctx context.Context, t *models.Transaction) error {
	return s.InsertTx(s.db.WithContext(ctx), t)
}

// InsertTx appends one transaction within a caller-provided transaction, so
// the invoice engine can pair it atomically with an invoice insert.
func (s *LedgerStore) InsertTx(tx *gorm.DB, t *models.Transaction) error {
	return classify("ledger insert", tx.Create(t).Error)
}

// List returns all transactions of an owner, newest first.
func (s *LedgerStore) List(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC, id DESC").
		Find(&out).Error
	return out, classify("ledger list", err)
}

// Delete removes one transaction by id. Unknown ids are a no-op.
func (s *LedgerStore) Delete(ctx context.Context, ownerID string, id uint) error {
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.Transaction{}).Error
	return classify("ledger delete", err)
}

// DeleteByInvoiceNumberTx removes the transaction paired with an invoice,
// within the same transaction that removes the invoice itself.
func (s *LedgerStore) DeleteByInvoiceNumberTx(tx *gorm.DB, ownerID, number string) error {
	err := tx.
		Where("owner_id = ? AND invoice_number = ?", ownerID, number).
		Delete(&models.Transaction{}).Error
	return classify("ledger delete by invoice", err)
}
