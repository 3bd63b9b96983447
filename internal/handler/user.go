package handler

import (
	"net/http"

	"github.com/progresar/progresar-core/internal/service"
	"github.com/progresar/progresar-core/pkg/response"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /users (admin)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, users)
}

// GetUser handles GET /users/{userId}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		response.BadRequest(w, "invalid user id", err)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, user)
}
