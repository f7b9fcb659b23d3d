package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
)

// ProfileStore persists user profiles: identity, subscription state and
// invoicing settings.
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore { return &ProfileStore{db: db} }

// Create inserts a new profile.
func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) error {
	return classify("profile create", s.db.WithContext(ctx).Create(p).Error)
}

// Get loads a profile by id.
func (s *ProfileStore) Get(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "profile", Key: id}
	}
	if err != nil {
		return nil, classify("profile get", err)
	}
	return &p, nil
}

// GetByEmail loads a profile by email.
func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "profile", Key: email}
	}
	if err != nil {
		return nil, classify("profile get by email", err)
	}
	return &p, nil
}

// Update applies a partial column update to one profile.
func (s *ProfileStore) Update(ctx context.Context, id string, fields map[string]any) error {
	err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(fields).Error
	return classify("profile update", err)
}

// List returns every profile (admin view).
func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	err := s.db.WithContext(ctx).Order("email ASC").Find(&out).Error
	return out, classify("profile list", err)
}

// ListPremium returns every profile currently marked premium, for the
// subscription expiry sweep.
func (s *ProfileStore) ListPremium(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	err := s.db.WithContext(ctx).
		Where("subscription_status = ?", models.SubscriptionPremium).
		Find(&out).Error
	return out, classify("profile list premium", err)
}
