package transport

import (
	"net/http"

	"ustat-be/internal/address"

	"github.com/google/uuid"
)

type AddressHandler struct {
	addresses address.Service
}

func NewAddressHandler(svc address.Service) *AddressHandler {
	return &AddressHandler{addresses: svc}
}

func (h *AddressHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /addresses", h.list)
	mux.HandleFunc("POST /addresses", h.create)
	mux.HandleFunc("GET /addresses/{id}", h.get)
	mux.HandleFunc("PUT /addresses/{id}", h.update)
	mux.HandleFunc("DELETE /addresses/{id}", h.delete)
	mux.HandleFunc("POST /addresses/{id}/default", h.setDefault)
}

type addressResponse struct {
	ID        string  `json:"id"`
	Receiver  string  `json:"receiver"`
	Phone     string  `json:"phone"`
	Province  string  `json:"province"`
	City      string  `json:"city"`
	Street    string  `json:"street"`
	Detail    *string `json:"detail,omitempty"`
	Postal    string  `json:"postal_code"`
	IsDefault bool    `json:"is_default"`
}

func toAddressResponse(a *address.Address) addressResponse {
	return addressResponse{
		ID:        a.ID.String(),
		Receiver:  a.Receiver,
		Phone:     a.Phone,
		Province:  a.Province,
		City:      a.City,
		Street:    a.Street,
		Detail:    a.Detail,
		Postal:    a.Postal,
		IsDefault: a.IsDefault,
	}
}

type addressBody struct {
	Receiver   string  `json:"receiver"`
	Phone      string  `json:"phone"`
	Province   string  `json:"province"`
	City       string  `json:"city"`
	Street     string  `json:"street"`
	Detail     *string `json:"detail"`
	PostalCode string  `json:"postal_code"`
	SetDefault bool    `json:"set_default"`
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addresses.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]addressResponse, 0, len(addrs))
	for _, a := range addrs {
		resp = append(resp, toAddressResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request) {
	var body addressBody
	if !decodeBody(w, r, &body) {
		return
	}

	a, err := h.addresses.Create(r.Context(), address.CreateAddressInput{
		Receiver:     body.Receiver,
		Phone:        body.Phone,
		Province:     body.Province,
		City:         body.City,
		Street:       body.Street,
		Detail:       body.Detail,
		PostalCode:   body.PostalCode,
		SetAsDefault: body.SetDefault,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAddressResponse(a))
}

func parseAddressID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid address id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AddressHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAddressID(w, r)
	if !ok {
		return
	}

	a, err := h.addresses.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAddressResponse(a))
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request) {
	var body addressBody
	if !decodeBody(w, r, &body) {
		return
	}

	a, err := h.addresses.Update(r.Context(), address.UpdateAddressInput{
		AddressID:    r.PathValue("id"),
		Receiver:     body.Receiver,
		Phone:        body.Phone,
		Province:     body.Province,
		City:         body.City,
		Street:       body.Street,
		Detail:       body.Detail,
		PostalCode:   body.PostalCode,
		SetAsDefault: body.SetDefault,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAddressResponse(a))
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAddressID(w, r)
	if !ok {
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AddressHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAddressID(w, r)
	if !ok {
		return
	}

	if err := h.addresses.SetDefaultAddress(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"default": true})
}
