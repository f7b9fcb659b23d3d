package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/diewo77/comptable/internal/auth"
	"github.com/diewo77/comptable/internal/config"
	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
	"github.com/diewo77/comptable/internal/validation"
)

// AuthHandler implements signup/login/logout. Login doubles as "session
// start" and triggers the subscription expiry sweep.
type AuthHandler struct {
	Profiles   *store.ProfileStore
	Reconciler *services.SubscriptionReconciler
	Cfg        *config.Config
	Log        zerolog.Logger
	Timeout    time.Duration
}

func NewAuthHandler(profiles *store.ProfileStore, reconciler *services.SubscriptionReconciler, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		Profiles:   profiles,
		Reconciler: reconciler,
		Cfg:        cfg,
		Log:        log,
		Timeout:    time.Duration(cfg.Server.StoreTimeout) * time.Second,
	}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /signup, creating the auth identity and its profile
// together.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()

	profile := &models.Profile{
		ID:                 uuid.NewString(),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       string(hash),
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionFree,
		VATRate:            h.Cfg.App.DefaultVATRate,
	}
	if err := h.Profiles.Create(ctx, profile); err != nil {
		httpx.JSONError(w, http.StatusConflict, "signup_failed", "l'utilisateur existe peut-être déjà")
		return
	}
	auth.CreateSession(w, profile.ID)
	httpx.JSON(w, http.StatusCreated, profile)
}

// Login handles POST /login: it verifies credentials, opens a session and
// runs the subscription sweep, which is idempotent and cheap at this
// frequency.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()

	profile, err := h.Profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	expired, err := h.Reconciler.Sweep(ctx)
	if err != nil {
		// Sweep failure must not block login; the next session retries it.
		h.Log.Warn().Err(err).Msg("subscription sweep failed at login")
	}
	if expired > 0 {
		// The sweep may have downgraded this very profile; re-read it.
		if fresh, err := h.Profiles.Get(ctx, profile.ID); err == nil {
			profile = fresh
		}
	}

	auth.CreateSession(w, profile.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"profile":       profile,
		"expired_count": expired,
	})
}

// Logout: POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
