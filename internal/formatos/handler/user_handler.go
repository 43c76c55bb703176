package handler

import (
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/gin-gonic/gin"
)

// UserHandler lists plant staff for assignment pickers. Read-only; user
// administration lives in the identity system.
type UserHandler struct {
	users *repository.UserRepository
}

func NewUserHandler(users *repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		InternalError(c, "list users: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// Get handles GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "load user: "+err.Error())
		return
	}
	if user == nil {
		NotFound(c, "user not found")
		return
	}
	Success(c, user)
}
