package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"ustat-be/internal/address"
	"ustat-be/internal/billing"
	"ustat-be/internal/catalog"
	"ustat-be/internal/logger"
	"ustat-be/internal/order"
	"ustat-be/internal/user"
	"ustat-be/internal/validation"
	"ustat-be/internal/verification"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var notFoundErrors = []error{
	order.ErrOrderNotFound,
	order.ErrItemNotFound,
	billing.ErrTransactionNotFound,
	billing.ErrOrderNotFound,
	catalog.ErrDisplayItemNotFound,
	catalog.ErrVariantNotFound,
	address.ErrAddressNotFound,
	user.ErrUserNotFound,
}

var unauthenticatedErrors = []error{
	order.ErrUnauthenticated,
	billing.ErrUnauthenticated,
	address.ErrUnauthenticated,
	user.ErrInvalidCredentials,
}

var forbiddenErrors = []error{
	order.ErrStaffOnly,
	billing.ErrStaffOnly,
	catalog.ErrStaffOnly,
	user.ErrNotVerified,
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError translates domain failures into the three wire shapes:
// field-keyed validation maps, descriptive not-found messages, and an
// opaque message for everything unexpected.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := validation.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fe})
		return
	}

	if errors.Is(err, verification.ErrCodeMismatch) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": map[string]string{"code": err.Error()},
		})
		return
	}

	switch {
	case matchesAny(err, notFoundErrors):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case matchesAny(err, unauthenticatedErrors):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case matchesAny(err, forbiddenErrors):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "something went wrong",
		})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
