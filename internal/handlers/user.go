package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{userService: services.NewUserService(db)}
}

// List returns paginated users
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.userService.List(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id", authz.KindUser)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, user)
}

// Update changes the caller's own profile
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", authz.KindUser)
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetIdentity(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, user)
}

// Delete removes the caller's own account
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", authz.KindUser)
	if !ok {
		return
	}

	if _, err := h.userService.Delete(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}
