package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "owner-123")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	id, ok := ParseSession(r)
	if !ok || id != "owner-123" {
		t.Fatalf("ParseSession = (%q, %v), want (owner-123, true)", id, ok)
	}
}

func TestParseSessionRejectsTamperedCookie(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "owner-123")
	cookie := w.Result().Cookies()[0]

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookie.Name, Value: "owner-456." + cookie.Value[len("owner-123."):]})
	if _, ok := ParseSession(r); ok {
		t.Fatal("tampered cookie accepted")
	}
}

func TestParseSessionMissingCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ParseSession(r); ok {
		t.Fatal("missing cookie accepted")
	}
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous request status = %d, want 401", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	r = r.WithContext(WithOwnerID(r.Context(), "owner-123"))
	w = httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated request status = %d, want 200", w.Code)
	}
}

func TestMiddlewareAttachesOwner(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "owner-abc")

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = OwnerIDFromContext(r.Context())
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	Middleware(next).ServeHTTP(httptest.NewRecorder(), r)
	if got != "owner-abc" {
		t.Errorf("owner in context = %q, want owner-abc", got)
	}
}
