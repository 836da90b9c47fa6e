package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-bazaar-nosql/internal/application/cart"
	"github.com/go-bazaar-nosql/internal/pkg/validate"
	"github.com/go-bazaar-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// CartHandler handles the signed-in user's cart endpoints.
type CartHandler struct {
	svc cart.Service
}

func NewCartHandler(svc cart.Service) *CartHandler { return &CartHandler{svc: svc} }

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := h.svc.Add(r.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// RemoveLine drops the whole product line from the cart.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := h.svc.RemoveLine(r.Context(), claims.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Decrement lowers the line's quantity by one, dropping the line at zero.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := h.svc.Decrement(r.Context(), claims.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	view, err := h.svc.View(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Clear(r.Context(), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "cart cleared"})
}
