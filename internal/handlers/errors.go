// Package handlers implements the JSON API the presentation layer calls.
package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/store"
)

// writeError maps the store error taxonomy onto HTTP statuses. Validation
// and not-found errors are actionable by the caller; consistency and
// transient errors mean "nothing was saved, retry".
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *store.ValidationError
		notFoundErr   *store.NotFoundError
		consistency   *store.ConsistencyError
		transient     *store.TransientStoreError
	)
	switch {
	case errors.As(err, &validationErr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", validationErr.Violations)
	case errors.As(err, &notFoundErr):
		httpx.JSONError(w, http.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &transient):
		httpx.JSONError(w, http.StatusServiceUnavailable, "store_timeout", "la facture n'a pas été enregistrée, veuillez réessayer")
	case errors.As(err, &consistency):
		httpx.JSONError(w, http.StatusInternalServerError, "commit_failed", "la facture n'a pas été enregistrée, veuillez réessayer")
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
