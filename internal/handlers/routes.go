package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes need.
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Audit       middleware.AuditRecorder
	AuthLimiter *middleware.RateLimiter
}

// RegisterRoutes mounts /health and the /api tree on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := NewHealthHandler(d.DB)
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	if d.Audit != nil {
		api.Use(middleware.AuditLog(d.Audit))
	}

	authHandler := NewAuthHandler(d.DB, d.Config)
	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.Middleware())
	}
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(authHandler.Identity()))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		userHandler := NewUserHandler(d.DB)
		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.GetByID)
		protected.PUT("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id", userHandler.Delete)

		projectHandler := NewProjectHandler(d.DB)
		protected.GET("/projects", projectHandler.List)
		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/:id", projectHandler.GetByID)
		protected.PUT("/projects/:id", projectHandler.Update)
		protected.DELETE("/projects/:id", projectHandler.Delete)

		contributorHandler := NewContributorHandler(d.DB)
		protected.GET("/projects/:id/users", contributorHandler.List)
		protected.POST("/projects/:id/users", contributorHandler.Create)
		protected.GET("/projects/:id/users/:contributor_id", contributorHandler.GetByID)
		protected.DELETE("/projects/:id/users/:contributor_id", contributorHandler.Delete)

		issueHandler := NewIssueHandler(d.DB)
		protected.GET("/projects/:id/issues", issueHandler.List)
		protected.POST("/projects/:id/issues", issueHandler.Create)
		protected.GET("/projects/:id/issues/:issue_id", issueHandler.GetByID)
		protected.PUT("/projects/:id/issues/:issue_id", issueHandler.Update)
		protected.PUT("/projects/:id/issues/:issue_id/assignee", issueHandler.Assign)
		protected.DELETE("/projects/:id/issues/:issue_id", issueHandler.Delete)

		commentHandler := NewCommentHandler(d.DB)
		protected.GET("/projects/:id/issues/:issue_id/comments", commentHandler.List)
		protected.POST("/projects/:id/issues/:issue_id/comments", commentHandler.Create)
		protected.GET("/projects/:id/issues/:issue_id/comments/:comment_id", commentHandler.GetByID)
		protected.PUT("/projects/:id/issues/:issue_id/comments/:comment_id", commentHandler.Update)
		protected.DELETE("/projects/:id/issues/:issue_id/comments/:comment_id", commentHandler.Delete)
	}
}
