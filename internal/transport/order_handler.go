package transport

import (
	"net/http"
	"time"

	"ustat-be/internal/order"
	"ustat-be/internal/utils"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders/items", h.addItem)
	mux.HandleFunc("PUT /orders/items/{id}", h.updateItem)
	mux.HandleFunc("DELETE /orders/items/{id}", h.deleteItem)

	mux.HandleFunc("GET /orders", h.list)
	mux.HandleFunc("GET /orders/{id}", h.get)
	mux.HandleFunc("PATCH /orders/{id}", h.update)
	mux.HandleFunc("DELETE /orders/{id}", h.delete)

	mux.HandleFunc("POST /orders/{id}/submit", h.submit)
	mux.HandleFunc("POST /orders/{id}/cancel", h.cancel)
	mux.HandleFunc("POST /orders/{id}/status", h.transition)
}

type orderItemResponse struct {
	ID          uint    `json:"id"`
	OrderID     uint    `json:"order_id"`
	VariantID   string  `json:"variant_id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	PriceText   string  `json:"price_text"`
	Quantity    int     `json:"quantity"`
	LineTotal   int64   `json:"line_total"`
	Fabric      string  `json:"fabric"`
	Color       string  `json:"color"`
	WoodColor   string  `json:"wood_color"`
	Description *string `json:"description,omitempty"`
}

func toOrderItemResponse(i *order.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:          i.ID,
		OrderID:     i.OrderID,
		VariantID:   i.VariantID,
		Type:        string(i.Type),
		Name:        i.Name,
		Price:       i.Price,
		PriceText:   utils.FormatToman(i.Price),
		Quantity:    i.Quantity,
		LineTotal:   i.LineTotal(),
		Fabric:      i.Fabric,
		Color:       i.Color,
		WoodColor:   i.WoodColor,
		Description: i.Description,
	}
}

type orderResponse struct {
	ID          uint                `json:"id"`
	OrderNumber string              `json:"order_number"`
	Status      string              `json:"status"`
	StatusLabel string              `json:"status_label"`
	TotalPrice  int64               `json:"total_price"`
	TotalText   string              `json:"total_text"`
	DueDate     time.Time           `json:"due_date"`
	CreatedAt   time.Time           `json:"created_at"`
	AddressID   *string             `json:"address_id,omitempty"`
	Items       []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		StatusLabel: o.Status.Label(),
		TotalPrice:  o.TotalPrice,
		TotalText:   utils.FormatToman(o.TotalPrice),
		DueDate:     o.DueDate,
		CreatedAt:   o.CreatedAt,
	}
	if o.AddressID != nil {
		s := o.AddressID.String()
		resp.AddressID = &s
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, toOrderItemResponse(item))
	}
	return resp
}

func (h *OrderHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID     *uint      `json:"order_id"`
		VariantID   string     `json:"variant_id"`
		Quantity    int        `json:"quantity"`
		DueDate     *time.Time `json:"due_date"`
		Description *string    `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	item, err := h.orders.AddOrderItem(r.Context(), order.AddOrderItemInput{
		OrderID:     body.OrderID,
		VariantID:   body.VariantID,
		Quantity:    body.Quantity,
		DueDate:     body.DueDate,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderItemResponse(item))
}

func (h *OrderHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	var body struct {
		VariantID   *string `json:"variant_id"`
		Quantity    *int    `json:"quantity"`
		Description *string `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	item, err := h.orders.UpdateOrderItem(r.Context(), order.UpdateOrderItemInput{
		ItemID:      itemID,
		VariantID:   body.VariantID,
		Quantity:    body.Quantity,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderItemResponse(item))
}

func (h *OrderHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	if err := h.orders.DeleteOrderItem(r.Context(), itemID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := order.ListFilter{
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}
	if s := q.Get("status"); s != "" {
		status := order.OrderStatus(s)
		f.Status = &status
	}
	if s := q.Get("user_id"); s != "" {
		if id, err := utils.ToUint(s); err == nil {
			f.UserID = &id
		}
	}
	if s := q.Get("limit"); s != "" {
		if n, err := utils.ToUint(s); err == nil {
			f.Limit = int(n)
		}
	}
	if s := q.Get("page"); s != "" {
		if n, err := utils.ToUint(s); err == nil {
			f.Page = int(n)
		}
	}

	orders, err := h.orders.ListOrders(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	o, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var body struct {
		DueDate   *time.Time `json:"due_date"`
		Status    *string    `json:"status"`
		AddressID *string    `json:"address_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	input := order.UpdateOrderInput{
		OrderID:   orderID,
		DueDate:   body.DueDate,
		AddressID: body.AddressID,
	}
	if body.Status != nil {
		status := order.OrderStatus(*body.Status)
		input.Status = &status
	}

	o, err := h.orders.UpdateOrder(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), orderID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *OrderHandler) submit(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	o, err := h.orders.SubmitForApproval(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	o, err := h.orders.Cancel(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	o, err := h.orders.Transition(r.Context(), orderID, order.OrderStatus(body.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
