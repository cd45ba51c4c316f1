package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.projectService.List(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a project by ID
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a new project authored by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, project)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), middleware.GetIdentity(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, project)
}

// Delete deletes a project with its issues, comments and members
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	if _, err := h.projectService.Delete(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}
