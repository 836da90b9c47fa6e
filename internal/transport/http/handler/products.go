package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-bazaar-nosql/internal/application/catalog"
	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/pkg/validate"
	"github.com/go-bazaar-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// ProductHandler handles catalog endpoints. Reads are open to any
// authenticated user; writes require the owning shop or an admin.
type ProductHandler struct {
	svc catalog.Service
}

func NewProductHandler(svc catalog.Service) *ProductHandler { return &ProductHandler{svc: svc} }

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), chi.URLParam(r, "shopID"), req, claims.UserID, claims.Role == domain.RoleAdmin)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) ListByShop(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListByShop(r.Context(), chi.URLParam(r, "shopID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req, claims.UserID, claims.Role == domain.RoleAdmin)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role == domain.RoleAdmin); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "product deleted"})
}

type uploadImageRequest struct {
	Filename string `json:"filename" validate:"required"`
	Data     string `json:"data" validate:"required"`
}

// UploadImage accepts a base64-encoded image body and attaches it to the
// product.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req uploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.UploadImage(r.Context(), chi.URLParam(r, "id"), req.Filename, req.Data, claims.UserID, claims.Role == domain.RoleAdmin)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ImageURL returns a short-lived presigned URL for the product's image.
func (h *ProductHandler) ImageURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ImageURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		URL string `json:"url"`
	}{URL: url})
}
