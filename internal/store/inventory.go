package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
)

// InventoryStore is the per-owner stock catalog.
type InventoryStore struct {
	db *gorm.DB
}

func NewInventoryStore(db *gorm.DB) *InventoryStore { return &InventoryStore{db: db} }

// Create adds a new stock item.
func (s *InventoryStore) Create(ctx context.Context, item *models.StockItem) error {
	return classify("stock create", s.db.WithContext(ctx).Create(item).Error)
}

// List returns all stock items of an owner ordered by product name.
func (s *InventoryStore) List(ctx context.Context, ownerID string) ([]models.StockItem, error) {
	var out []models.StockItem
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("product_name ASC").
		Find(&out).Error
	return out, classify("stock list", err)
}

// GetByName looks up a stock item by its product name.
func (s *InventoryStore) GetByName(ctx context.Context, ownerID, productName string) (*models.StockItem, error) {
	var item models.StockItem
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND product_name = ?", ownerID, productName).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "stock item", Key: productName}
	}
	if err != nil {
		return nil, classify("stock get", err)
	}
	return &item, nil
}

// ApplyDelta adjusts a stock quantity with a single conditional UPDATE
// (quantity = quantity + delta) executed at the storage layer, so concurrent
// sells never lose updates. ok=false with a message means the product is
// unknown, which callers treat as non-fatal.
func (s *InventoryStore) ApplyDelta(ctx context.Context, ownerID, productName string, delta int) (ok bool, message string, err error) {
	res := s.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("owner_id = ? AND product_name = ?", ownerID, productName).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return false, "", classify("stock delta", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, fmt.Sprintf("produit %q introuvable dans le stock", productName), nil
	}
	return true, fmt.Sprintf("stock de %q ajusté de %+d", productName, delta), nil
}

// Delete removes a stock item by id. Unknown ids are a no-op.
func (s *InventoryStore) Delete(ctx context.Context, ownerID string, id uint) error {
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.StockItem{}).Error
	return classify("stock delete", err)
}
