package transport

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"ustat-be/internal/order"
	"ustat-be/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	t.Run("FieldErrorsBecome422", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/orders/items", nil)

		writeError(w, r, validation.FieldErrors{
			"due_date": "must be later than 15 days from now",
		})

		assert.Equal(t, 422, w.Code)

		var body struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "must be later than 15 days from now", body.Errors["due_date"])
	})

	t.Run("NotFoundBecomes404", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/orders/99", nil)

		writeError(w, r, order.ErrOrderNotFound)

		assert.Equal(t, 404, w.Code)
		assert.Contains(t, w.Body.String(), "order not found")
	})

	t.Run("UnauthenticatedBecomes401", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/orders", nil)

		writeError(w, r, order.ErrUnauthenticated)

		assert.Equal(t, 401, w.Code)
	})

	t.Run("StaffGateBecomes403", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/orders/7/status", nil)

		writeError(w, r, order.ErrStaffOnly)

		assert.Equal(t, 403, w.Code)
	})

	t.Run("SystemErrorsStayOpaque", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/orders", nil)

		writeError(w, r, errors.New("pq: connection refused to 10.0.0.3"))

		assert.Equal(t, 500, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.3")
		assert.Contains(t, w.Body.String(), "something went wrong")
	})
}
