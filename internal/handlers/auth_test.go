package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/config"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{StoreTimeout: 5},
		App: config.AppConfig{
			DefaultVATRate: decimal.RequireFromString("18"),
			PremiumDays:    30,
		},
	}
}

func newAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	profiles := store.NewProfileStore(db)
	reconciler := services.NewSubscriptionReconciler(profiles, zerolog.Nop())
	return NewAuthHandler(profiles, reconciler, cfg, zerolog.Nop())
}

func TestSignupCreatesProfileWithDefaults(t *testing.T) {
	db := setupTestDB(t, t.Name())
	h := newAuthHandler(db, testConfig())

	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"Boss@Example.com","password":"secret"}`))
	w := httptest.NewRecorder()
	h.Signup(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var p models.Profile
	if err := db.Where("email = ?", "boss@example.com").First(&p).Error; err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if p.Role != models.RoleUser || p.SubscriptionStatus != models.SubscriptionFree {
		t.Errorf("role=%q status=%q, want user/free", p.Role, p.SubscriptionStatus)
	}
	if !p.VATRate.Equal(decimal.RequireFromString("18")) {
		t.Errorf("vat rate = %s, want the configured default 18", p.VATRate)
	}
	if p.PasswordHash == "secret" {
		t.Error("password stored in clear")
	}

	// A session cookie is issued.
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := setupTestDB(t, t.Name())
	h := newAuthHandler(db, testConfig())

	body := `{"email":"dup@example.com","password":"secret"}`
	w := httptest.NewRecorder()
	h.Signup(w, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.Signup(w, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)))
	if w.Code != http.StatusConflict {
		t.Errorf("second signup status = %d, want 409", w.Code)
	}
}

func TestLoginChecksCredentials(t *testing.T) {
	db := setupTestDB(t, t.Name())
	h := newAuthHandler(db, testConfig())

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	p := &models.Profile{ID: "login-owner", Email: "login@example.com", PasswordHash: string(hash),
		Role: models.RoleUser, SubscriptionStatus: models.SubscriptionFree}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"login@example.com","password":"secret"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"login@example.com","password":"wrong"}`)))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"nobody@example.com","password":"secret"}`)))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", w.Code)
	}
}

func TestLoginSweepsExpiredSubscriptions(t *testing.T) {
	db := setupTestDB(t, t.Name())
	h := newAuthHandler(db, testConfig())

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	expired := time.Now().AddDate(0, 0, -2)
	p := &models.Profile{ID: "sweep-owner", Email: "sweep@example.com", PasswordHash: string(hash),
		Role: models.RoleUser, SubscriptionStatus: models.SubscriptionPremium, ExpiryDate: &expired}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"sweep@example.com","password":"secret"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}

	var out struct {
		Profile      models.Profile `json:"profile"`
		ExpiredCount int            `json:"expired_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ExpiredCount != 1 {
		t.Errorf("expired_count = %d, want 1", out.ExpiredCount)
	}
	// The response reflects the downgrade, not the stale pre-sweep state.
	if out.Profile.SubscriptionStatus != models.SubscriptionFree {
		t.Errorf("profile status = %q, want free after sweep", out.Profile.SubscriptionStatus)
	}
}
