package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/comptable/internal/config"
	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/policy"
	"github.com/diewo77/comptable/internal/store"
	"github.com/diewo77/comptable/internal/validation"
)

// ProfileHandler serves the owner's profile and invoicing settings.
type ProfileHandler struct {
	Profiles *store.ProfileStore
	Cfg      *config.Config
	Timeout  time.Duration
}

func NewProfileHandler(profiles *store.ProfileStore, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{
		Profiles: profiles,
		Cfg:      cfg,
		Timeout:  time.Duration(cfg.Server.StoreTimeout) * time.Second,
	}
}

// Get handles GET /api/profile, returning the profile plus its derived
// capability flags.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	profile, err := h.Profiles.Get(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	isAdmin := policy.IsAdmin(profile, h.Cfg.App.AdminEmails)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"profile":    profile,
		"is_admin":   isAdmin,
		"is_premium": policy.IsPremium(profile, isAdmin),
	})
}

type settingsReq struct {
	VATRate        *decimal.Decimal `json:"vat_rate,omitempty"`
	CompanyName    *string          `json:"company_name,omitempty"`
	CompanyAddress *string          `json:"company_address,omitempty"`
	CompanyContact *string          `json:"company_contact,omitempty"`
	LogoURL        *string          `json:"company_logo_url,omitempty"`
	SignatureURL   *string          `json:"company_signature_url,omitempty"`
}

// Update handles PUT /api/profile, a partial update of VAT rate and branding
// fields. Subscription fields are never writable here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	fields := map[string]any{}
	if req.VATRate != nil {
		v := validation.Violations{}
		validation.RangeDecimal("vat_rate", *req.VATRate, decimal.Zero, decimal.NewFromInt(100), v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
			return
		}
		fields["vat_rate"] = *req.VATRate
	}
	if req.CompanyName != nil {
		fields["company_name"] = *req.CompanyName
	}
	if req.CompanyAddress != nil {
		fields["company_address"] = *req.CompanyAddress
	}
	if req.CompanyContact != nil {
		fields["company_contact"] = *req.CompanyContact
	}
	if req.LogoURL != nil {
		fields["logo_url"] = *req.LogoURL
	}
	if req.SignatureURL != nil {
		fields["signature_url"] = *req.SignatureURL
	}
	if len(fields) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_fields", nil)
		return
	}

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.Profiles.Update(ctx, ownerID(r), fields); err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.Profiles.Get(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}
