package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/store"
)

// SubscriptionReconciler downgrades expired premium grants back to free.
// It is cheap enough to run on every session start; a scheduler is optional.
type SubscriptionReconciler struct {
	profiles *store.ProfileStore
	now      func() time.Time
	log      zerolog.Logger
}

func NewSubscriptionReconciler(profiles *store.ProfileStore, log zerolog.Logger) *SubscriptionReconciler {
	return &SubscriptionReconciler{profiles: profiles, now: time.Now, log: log}
}

// Sweep selects premium profiles whose expiry date is strictly before today
// and resets each to free with a null expiry. It returns how many profiles
// changed. Running it twice with no elapsed time changes nothing the second
// time.
func (r *SubscriptionReconciler) Sweep(ctx context.Context) (int, error) {
	premium, err := r.profiles.ListPremium(ctx)
	if err != nil {
		return 0, err
	}
	today := r.now()
	count := 0
	for _, p := range premium {
		if !p.IsExpired(today) {
			continue
		}
		err := r.profiles.Update(ctx, p.ID, map[string]any{
			"subscription_status": models.SubscriptionFree,
			"expiry_date":         nil,
		})
		if err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		r.log.Info().Int("expired", count).Msg("premium subscriptions reset to free")
	}
	return count, nil
}

// GrantPremium elevates a profile to premium for the given number of days
// (30 when days <= 0), setting the expiry date the sweep enforces.
func (r *SubscriptionReconciler) GrantPremium(ctx context.Context, ownerID string, days int) error {
	if days <= 0 {
		days = 30
	}
	expiry := r.now().AddDate(0, 0, days)
	return r.profiles.Update(ctx, ownerID, map[string]any{
		"subscription_status": models.SubscriptionPremium,
		"expiry_date":         expiry,
	})
}

// RevertToFree downgrades a profile immediately, clearing its expiry date.
func (r *SubscriptionReconciler) RevertToFree(ctx context.Context, ownerID string) error {
	return r.profiles.Update(ctx, ownerID, map[string]any{
		"subscription_status": models.SubscriptionFree,
		"expiry_date":         nil,
	})
}
