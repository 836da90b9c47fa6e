package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-bazaar-nosql/internal/application/admin"
	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// AdminHandler handles the admin panel endpoints. Routes mounting it must
// sit behind the admin role middleware.
type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler { return &AdminHandler{svc: svc} }

// DeleteEntity removes a shop or user by type, cascading through dependent
// records.
func (h *AdminHandler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "type")
	entityID := chi.URLParam(r, "id")
	if err := h.svc.DeleteEntity(r.Context(), entityType, entityID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: entityType + " deleted"})
}

func (h *AdminHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	owner, shop, err := h.svc.CreateShop(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	shop.Owner = nil
	writeJSON(w, http.StatusCreated, struct {
		Owner *SafeUser    `json:"owner"`
		Shop  *domain.Shop `json:"shop"`
	}{Owner: toSafeUser(owner), Shop: shop})
}

func (h *AdminHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name" validate:"required"`
		Email string  `json:"email" validate:"required,email"`
		Phone *string `json:"phone,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := h.svc.RegisterUser(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSafeUser(u))
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *AdminHandler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	shop, err := h.svc.UpdateShop(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

// ListShops returns every shop with its owner attached.
func (h *AdminHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.svc.ListShops(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shops)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	safe := make([]*SafeUser, len(users))
	for i := range users {
		safe[i] = toSafeUser(&users[i])
	}
	writeJSON(w, http.StatusOK, safe)
}
