// Package policy derives capability flags from a profile. Pure functions,
// no state, no I/O: the presentation layer consults them before exposing
// premium-gated or administrative views.
package policy

import (
	"strings"

	"github.com/diewo77/comptable/internal/models"
)

// IsAdmin reports whether a profile has administrative capability: either
// its role is admin, or its email is on the configured owner allow-list.
// The allow-list is a migration shim for deployments predating the role
// field and is empty by default.
func IsAdmin(p *models.Profile, adminEmails []string) bool {
	if p == nil {
		return false
	}
	if p.Role == models.RoleAdmin {
		return true
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	for _, allowed := range adminEmails {
		if email != "" && email == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// IsPremium reports whether a profile may access premium-gated features.
// Administrators always may.
func IsPremium(p *models.Profile, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return p != nil && p.SubscriptionStatus == models.SubscriptionPremium
}
