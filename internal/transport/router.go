package transport

import (
	"net/http"

	"ustat-be/internal/address"
	"ustat-be/internal/billing"
	"ustat-be/internal/catalog"
	"ustat-be/internal/order"
	"ustat-be/internal/user"
)

type Services struct {
	Users     user.Service
	Addresses address.Service
	Catalog   catalog.Service
	Orders    order.Service
	Billing   billing.Service
}

// NewRouter mounts every handler on one mux; middleware is layered on
// top by the caller.
func NewRouter(s Services) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	NewAuthHandler(s.Users).Register(mux)
	NewAddressHandler(s.Addresses).Register(mux)
	NewCatalogHandler(s.Catalog).Register(mux)
	NewOrderHandler(s.Orders).Register(mux)
	NewBillingHandler(s.Billing).Register(mux)

	return mux
}
