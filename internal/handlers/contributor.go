package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/pkg/response"
	"gorm.io/gorm"
)

type ContributorHandler struct {
	registry *services.ContributorRegistry
}

func NewContributorHandler(db *gorm.DB) *ContributorHandler {
	return &ContributorHandler{registry: services.NewContributorRegistry(db)}
}

// GET /api/projects/:id/users
func (h *ContributorHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	var req services.ContributorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.registry.List(c.Request.Context(), middleware.GetIdentity(c), projectID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// GET /api/projects/:id/users/:contributor_id
func (h *ContributorHandler) GetByID(c *gin.Context) {
	projectID, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}
	contributorID, ok := pathID(c, "contributor_id", authz.KindContributor)
	if !ok {
		return
	}

	row, err := h.registry.Get(c.Request.Context(), middleware.GetIdentity(c), projectID, contributorID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, row)
}

// Create adds a user to the project
// POST /api/projects/:id/users
func (h *ContributorHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	var req services.AddContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	row, err := h.registry.AddContributor(c.Request.Context(), middleware.GetIdentity(c), projectID, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, row)
}

// Delete removes a member from the project
// DELETE /api/projects/:id/users/:contributor_id
func (h *ContributorHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}
	contributorID, ok := pathID(c, "contributor_id", authz.KindContributor)
	if !ok {
		return
	}

	if err := h.registry.RemoveContributor(c.Request.Context(), middleware.GetIdentity(c), projectID, contributorID); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}
