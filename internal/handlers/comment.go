package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{commentService: services.NewCommentService(db)}
}

// commentPath parses the ids of a nested comment route. Comment ids are UUIDs.
func commentPath(c *gin.Context) (projectID, issueID uint, commentID string, ok bool) {
	if projectID, issueID, ok = issuePath(c); !ok {
		return 0, 0, "", false
	}
	id, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		fail(c, authz.NotFoundKind(authz.KindComment))
		return 0, 0, "", false
	}
	return projectID, issueID, id.String(), true
}

// GET /api/projects/:id/issues/:issue_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	projectID, issueID, ok := issuePath(c)
	if !ok {
		return
	}

	var req services.CommentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.commentService.List(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// GET /api/projects/:id/issues/:issue_id/comments/:comment_id
func (h *CommentHandler) GetByID(c *gin.Context) {
	projectID, issueID, commentID, ok := commentPath(c)
	if !ok {
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, commentID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, comment)
}

// POST /api/projects/:id/issues/:issue_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	projectID, issueID, ok := issuePath(c)
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, comment)
}

// PUT /api/projects/:id/issues/:issue_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	projectID, issueID, commentID, ok := commentPath(c)
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, commentID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, comment)
}

// DELETE /api/projects/:id/issues/:issue_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	projectID, issueID, commentID, ok := commentPath(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), middleware.GetIdentity(c), projectID, issueID, commentID); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}
