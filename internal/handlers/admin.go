package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/diewo77/comptable/internal/config"
	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/policy"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
)

// AdminHandler exposes user administration. Every endpoint first checks the
// caller against the access policy; non-admins get a 403 regardless of what
// they asked for.
type AdminHandler struct {
	Profiles   *store.ProfileStore
	Reconciler *services.SubscriptionReconciler
	Cfg        *config.Config
	Log        zerolog.Logger
	Timeout    time.Duration
}

func NewAdminHandler(profiles *store.ProfileStore, reconciler *services.SubscriptionReconciler, cfg *config.Config, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		Profiles:   profiles,
		Reconciler: reconciler,
		Cfg:        cfg,
		Log:        log,
		Timeout:    time.Duration(cfg.Server.StoreTimeout) * time.Second,
	}
}

// requireAdmin loads the caller's profile and checks the policy. It writes
// the response itself on failure and returns false.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	caller, err := h.Profiles.Get(ctx, ownerID(r))
	if err != nil {
		writeError(w, err)
		return false
	}
	if !policy.IsAdmin(caller, h.Cfg.App.AdminEmails) {
		httpx.JSONError(w, http.StatusForbidden, "admin_required", nil)
		return false
	}
	return true
}

// ListUsers: GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	profiles, err := h.Profiles.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": profiles, "total": len(profiles)})
}

type grantReq struct {
	Days int `json:"days,omitempty"`
}

// Grant: POST /api/admin/users/{id}/grant. Days defaults to 30.
func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req grantReq
	if err := httpx.Decode(r, &req); err != nil && r.ContentLength > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	id := r.PathValue("id")

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if _, err := h.Profiles.Get(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Reconciler.GrantPremium(ctx, id, req.Days); err != nil {
		writeError(w, err)
		return
	}
	h.Log.Info().Str("profile", id).Int("days", req.Days).Msg("premium granted")
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

// Revoke: POST /api/admin/users/{id}/revoke.
func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := r.PathValue("id")

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if _, err := h.Profiles.Get(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Reconciler.RevertToFree(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	h.Log.Info().Str("profile", id).Msg("premium revoked")
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

type roleReq struct {
	Role models.Role `json:"role"`
}

// SetRole: PUT /api/admin/users/{id}/role.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req roleReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "unknown_role", nil)
		return
	}
	id := r.PathValue("id")

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if _, err := h.Profiles.Get(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Profiles.Update(ctx, id, map[string]any{"role": req.Role}); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "role_updated"})
}

// Sweep: POST /api/admin/sweep. Runs the expiry sweep on demand.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	expired, err := h.Reconciler.Sweep(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"expired_count": expired})
}
