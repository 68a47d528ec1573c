package web

import (
	"net/http"

	"inventory-orders/internal/app"
	"inventory-orders/internal/core"
)

type createUserBody struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager employee"`
}

// createUser handles POST /api/users. Admin only.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body createUserBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), app.CreateUserRequest{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Role:     core.Role(body.Role),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, user)
}
