package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/pkg/response"
	"gorm.io/gorm"
)

type IssueHandler struct {
	issueService *services.IssueService
}

func NewIssueHandler(db *gorm.DB) *IssueHandler {
	return &IssueHandler{issueService: services.NewIssueService(db)}
}

// issuePath parses the project and issue ids of a nested issue route.
func issuePath(c *gin.Context) (projectID, issueID uint, ok bool) {
	if projectID, ok = pathID(c, "id", authz.KindProject); !ok {
		return 0, 0, false
	}
	if issueID, ok = pathID(c, "issue_id", authz.KindIssue); !ok {
		return 0, 0, false
	}
	return projectID, issueID, true
}

// GET /api/projects/:id/issues
func (h *IssueHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	var req services.IssueListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.issueService.List(c.Request.Context(), middleware.GetIdentity(c), projectID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// GET /api/projects/:id/issues/:issue_id
func (h *IssueHandler) GetByID(c *gin.Context) {
	projectID, issueID, ok := issuePath(c)
	if !ok {
		return
	}

	issue, err := h.issueService.Get(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, issue)
}

// POST /api/projects/:id/issues
func (h *IssueHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id", authz.KindProject)
	if !ok {
		return
	}

	var req services.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), middleware.GetIdentity(c), projectID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, issue)
}

// PUT /api/projects/:id/issues/:issue_id
func (h *IssueHandler) Update(c *gin.Context) {
	projectID, issueID, ok := issuePath(c)
	if !ok {
		return
	}

	var req services.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	issue, err := h.issueService.Update(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, issue)
}

// Assign sets or clears the assignee
// PUT /api/projects/:id/issues/:issue_id/assignee
func (h *IssueHandler) Assign(c *gin.Context) {
	projectID, issueID, ok := issuePath(c)
	if !ok {
		return
	}

	var req services.AssignIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	issue, err := h.issueService.Assign(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, issue)
}

// DELETE /api/projects/:id/issues/:issue_id
func (h *IssueHandler) Delete(c *gin.Context) {
	projectID, issueID, ok := issuePath(c)
	if !ok {
		return
	}

	if err := h.issueService.Delete(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}
