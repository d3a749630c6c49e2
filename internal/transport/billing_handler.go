package transport

import (
	"net/http"
	"time"

	"ustat-be/internal/billing"
	"ustat-be/internal/utils"
)

type BillingHandler struct {
	billing billing.Service
}

func NewBillingHandler(svc billing.Service) *BillingHandler {
	return &BillingHandler{billing: svc}
}

func (h *BillingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders/{id}/transactions", h.create)
	mux.HandleFunc("GET /orders/{id}/transactions", h.list)
	mux.HandleFunc("GET /transactions/{id}", h.get)
	mux.HandleFunc("PATCH /transactions/{id}", h.update)
	mux.HandleFunc("DELETE /transactions/{id}", h.delete)
}

type transactionResponse struct {
	ID          uint      `json:"id"`
	OrderID     uint      `json:"order_id"`
	Title       string    `json:"title"`
	Amount      int64     `json:"amount"`
	AmountText  string    `json:"amount_text"`
	Status      string    `json:"status"`
	IsCheck     bool      `json:"is_check"`
	ProofImage  *string   `json:"proof_image,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionResponse(t *billing.OrderTransaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		OrderID:     t.OrderID,
		Title:       t.Title,
		Amount:      t.Amount,
		AmountText:  utils.FormatToman(t.Amount),
		Status:      string(t.Status),
		IsCheck:     t.IsCheck,
		ProofImage:  t.ProofImageKey,
		Description: t.Description,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func (h *BillingHandler) create(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var body struct {
		Title       string     `json:"title"`
		Amount      int64      `json:"amount"`
		DueDate     *time.Time `json:"due_date"`
		IsCheck     bool       `json:"is_check"`
		Description *string    `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	t, err := h.billing.CreateTransaction(r.Context(), billing.CreateTransactionInput{
		OrderID:     orderID,
		Title:       body.Title,
		Amount:      body.Amount,
		DueDate:     body.DueDate,
		IsCheck:     body.IsCheck,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (h *BillingHandler) list(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	txs, err := h.billing.ListTransactions(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		resp = append(resp, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BillingHandler) get(w http.ResponseWriter, r *http.Request) {
	txID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction id"})
		return
	}

	t, err := h.billing.GetTransaction(r.Context(), txID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (h *BillingHandler) update(w http.ResponseWriter, r *http.Request) {
	txID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction id"})
		return
	}

	var body struct {
		Title       *string    `json:"title"`
		Amount      *int64     `json:"amount"`
		DueDate     *time.Time `json:"due_date"`
		Status      *string    `json:"status"`
		IsCheck     *bool      `json:"is_check"`
		ProofImage  *string    `json:"proof_image"`
		Description *string    `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	input := billing.UpdateTransactionInput{
		TransactionID: txID,
		Title:         body.Title,
		Amount:        body.Amount,
		DueDate:       body.DueDate,
		IsCheck:       body.IsCheck,
		ProofImageKey: body.ProofImage,
		Description:   body.Description,
	}
	if body.Status != nil {
		status := billing.TransactionStatus(*body.Status)
		input.Status = &status
	}

	t, err := h.billing.UpdateTransaction(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (h *BillingHandler) delete(w http.ResponseWriter, r *http.Request) {
	txID, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction id"})
		return
	}

	if err := h.billing.DeleteTransaction(r.Context(), txID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
