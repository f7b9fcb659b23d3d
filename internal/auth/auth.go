// Package auth provides the signed-cookie session used to scope API requests
// to an owner. The cookie value is the profile id plus an HMAC-SHA256
// signature; no server-side session store is needed.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	ownerIDCtxKey     = ctxKey("ownerID")
)

// Secret returns SESSION_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(ownerID string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(ownerID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie holding the owner id.
func CreateSession(w http.ResponseWriter, ownerID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    ownerID + "." + sign(ownerID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ParseSession validates the cookie signature and returns the owner id.
func ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	// Owner ids are UUIDs and never contain dots, so the last dot splits
	// value from signature.
	idx := strings.LastIndexByte(c.Value, '.')
	if idx <= 0 {
		return "", false
	}
	ownerID, sig := c.Value[:idx], c.Value[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(sign(ownerID))) {
		return "", false
	}
	return ownerID, true
}

// WithOwnerID stores the owner id in the context.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDCtxKey, ownerID)
}

// OwnerIDFromContext extracts the owner id.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerIDCtxKey).(string)
	return id, ok && id != ""
}

// Middleware attaches the owner id to the request context when a valid
// session cookie is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := ParseSession(r); ok {
			r = r.WithContext(WithOwnerID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without an authenticated owner.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := OwnerIDFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
