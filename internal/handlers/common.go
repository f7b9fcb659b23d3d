package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/comptable/internal/auth"
)

// defaultStoreTimeout bounds store calls when the wiring does not override it.
const defaultStoreTimeout = 10 * time.Second

// ownerID returns the authenticated owner. Handlers behind RequireAuth can
// rely on it being present.
func ownerID(r *http.Request) string {
	id, _ := auth.OwnerIDFromContext(r.Context())
	return id
}

// boundCtx derives a context that bounds the store calls of one request, so
// a stalled database surfaces as a retryable timeout instead of a hung
// handler.
func boundCtx(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}
