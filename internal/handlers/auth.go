package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT),
		userService: services.NewUserService(db),
	}
}

// Register creates an account and signs it in.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	resp, err := h.authService.IssueToken(user)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, resp)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// GetCurrentUser returns the caller's profile
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	id := middleware.GetIdentity(c)
	user, err := h.userService.Get(c.Request.Context(), id, id.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, user)
}

// Identity exposes the identity loader to the auth middleware.
func (h *AuthHandler) Identity() middleware.IdentityLoader {
	return h.authService
}
