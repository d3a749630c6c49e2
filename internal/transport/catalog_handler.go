package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"ustat-be/internal/catalog"
	"ustat-be/internal/utils"
)

type CatalogHandler struct {
	catalog catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog/items", h.listItems)
	mux.HandleFunc("GET /catalog/showcase", h.showcase)
	mux.HandleFunc("GET /catalog/variants/{id}", h.getVariant)

	mux.HandleFunc("POST /catalog/items", h.createItem)
	mux.HandleFunc("PATCH /catalog/items/{id}", h.updateItem)
	mux.HandleFunc("DELETE /catalog/items/{id}", h.deleteItem)

	mux.HandleFunc("POST /catalog/variants", h.createVariant)
	mux.HandleFunc("PUT /catalog/variants/{id}", h.updateVariant)
	mux.HandleFunc("DELETE /catalog/variants/{id}", h.deleteVariant)
}

type displayItemResponse struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type variantResponse struct {
	ID          string          `json:"id"`
	ItemID      uint            `json:"item_id"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Dimensions  json.RawMessage `json:"dimensions"`
	Price       int64           `json:"price"`
	PriceText   string          `json:"price_text"`
	Description *string         `json:"description,omitempty"`
	Fabric      string          `json:"fabric"`
	Color       string          `json:"color"`
	WoodColor   string          `json:"wood_color"`
	Thumbnail   *string         `json:"thumbnail,omitempty"`
	Showcased   bool            `json:"showcased"`
}

func toVariantResponse(v *catalog.ItemVariant) variantResponse {
	return variantResponse{
		ID:          v.ID,
		ItemID:      v.DisplayItemID,
		Type:        string(v.Type),
		Name:        v.Name,
		Dimensions:  v.Dimensions,
		Price:       v.Price,
		PriceText:   utils.FormatToman(v.Price),
		Description: v.Description,
		Fabric:      v.Fabric,
		Color:       v.Color,
		WoodColor:   v.WoodColor,
		Thumbnail:   v.Thumbnail,
		Showcased:   v.ShowInFirstPage,
	}
}

func (h *CatalogHandler) listItems(w http.ResponseWriter, r *http.Request) {
	var itemType *catalog.ItemType
	if s := r.URL.Query().Get("type"); s != "" {
		t := catalog.ItemType(s)
		itemType = &t
	}

	items, err := h.catalog.ListDisplayItems(r.Context(), itemType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]displayItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, displayItemResponse{
			ID:        item.ID,
			Type:      string(item.Type),
			Name:      item.Name,
			CreatedAt: item.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) showcase(w http.ResponseWriter, r *http.Request) {
	variants, err := h.catalog.Showcase(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]variantResponse, 0, len(variants))
	for _, v := range variants {
		resp = append(resp, toVariantResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) getVariant(w http.ResponseWriter, r *http.Request) {
	v, err := h.catalog.GetVariant(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toVariantResponse(v))
}

func (h *CatalogHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	item, err := h.catalog.CreateDisplayItem(r.Context(), catalog.CreateDisplayItemParams{
		Type: catalog.ItemType(body.Type),
		Name: body.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, displayItemResponse{
		ID:        item.ID,
		Type:      string(item.Type),
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	})
}

func (h *CatalogHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	var body struct {
		Type *string `json:"type"`
		Name *string `json:"name"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	var itemType *catalog.ItemType
	if body.Type != nil {
		t := catalog.ItemType(*body.Type)
		itemType = &t
	}

	item, err := h.catalog.UpdateDisplayItem(r.Context(), id, itemType, body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, displayItemResponse{
		ID:        item.ID,
		Type:      string(item.Type),
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	})
}

func (h *CatalogHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	if err := h.catalog.DeleteDisplayItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *CatalogHandler) createVariant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID      uint            `json:"item_id"`
		Name        string          `json:"name"`
		Dimensions  json.RawMessage `json:"dimensions"`
		Price       int64           `json:"price"`
		Description *string         `json:"description"`
		Fabric      string          `json:"fabric"`
		Color       string          `json:"color"`
		WoodColor   string          `json:"wood_color"`
		Thumbnail   *string         `json:"thumbnail"`
		Showcased   bool            `json:"showcased"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	v, err := h.catalog.CreateVariant(r.Context(), catalog.CreateItemVariantParams{
		DisplayItemID:   body.ItemID,
		Name:            body.Name,
		Dimensions:      body.Dimensions,
		Price:           body.Price,
		Description:     body.Description,
		Fabric:          body.Fabric,
		Color:           body.Color,
		WoodColor:       body.WoodColor,
		Thumbnail:       body.Thumbnail,
		ShowInFirstPage: body.Showcased,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVariantResponse(v))
}

func (h *CatalogHandler) updateVariant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string         `json:"name"`
		Dimensions  json.RawMessage `json:"dimensions"`
		Price       *int64          `json:"price"`
		Description *string         `json:"description"`
		Fabric      *string         `json:"fabric"`
		Color       *string         `json:"color"`
		WoodColor   *string         `json:"wood_color"`
		Showcased   *bool           `json:"showcased"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	v, err := h.catalog.UpdateVariant(r.Context(), catalog.UpdateItemVariantParams{
		ID:              r.PathValue("id"),
		Name:            body.Name,
		Dimensions:      body.Dimensions,
		Price:           body.Price,
		Description:     body.Description,
		Fabric:          body.Fabric,
		Color:           body.Color,
		WoodColor:       body.WoodColor,
		ShowInFirstPage: body.Showcased,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toVariantResponse(v))
}

func (h *CatalogHandler) deleteVariant(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteVariant(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
