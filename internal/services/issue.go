package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"gorm.io/gorm"
)

type IssueService struct {
	db       *gorm.DB
	registry *ContributorRegistry
	scope    *ScopeFilter
}

func NewIssueService(db *gorm.DB) *IssueService {
	registry := NewContributorRegistry(db)
	return &IssueService{
		db:       db,
		registry: registry,
		scope:    NewScopeFilter(registry),
	}
}

type IssueListRequest struct {
	PageRequest
	Status   string `form:"status" binding:"omitempty,oneof=TO_DO IN_PROGRESS FINISHED"`
	Tag      string `form:"tag" binding:"omitempty,oneof=BUG FEATURE TASK"`
	Priority string `form:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Assignee uint   `form:"assignee"`
}

type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required,max=128"`
	Description string `json:"description"`
	Tag         string `json:"tag" binding:"required,oneof=BUG FEATURE TASK"`
	Priority    string `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH"`
	Status      string `json:"status" binding:"omitempty,oneof=TO_DO IN_PROGRESS FINISHED"`
	Assignee    *uint  `json:"assignee"`
}

type UpdateIssueRequest struct {
	Title       string  `json:"title" binding:"omitempty,max=128"`
	Description *string `json:"description"`
	Tag         string  `json:"tag" binding:"omitempty,oneof=BUG FEATURE TASK"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      string  `json:"status" binding:"omitempty,oneof=TO_DO IN_PROGRESS FINISHED"`
	Assignee    *uint   `json:"assignee"`
}

// AssignIssueRequest sets or, with a null assignee, clears the assignee.
type AssignIssueRequest struct {
	Assignee *uint `json:"assignee"`
}

// List returns the issues of a visible project, newest first.
func (s *IssueService) List(ctx context.Context, actor authz.Identity, projectID uint, req *IssueListRequest) (*ListResponse[models.Issue], error) {
	if !actor.IsAuthenticated() {
		return nil, authz.Unauthenticated("authentication required")
	}
	visible, err := s.scope.VisibleProjectIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(visible, projectID) {
		return nil, authz.NotFoundKind(authz.KindProject)
	}

	query := s.db.WithContext(ctx).Model(&models.Issue{}).
		Preload("Author").
		Preload("Assignee").
		Scopes(IssuesIn(visible)).
		Where("project_id = ?", projectID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Tag != "" {
		query = query.Where("tag = ?", req.Tag)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.Assignee != 0 {
		query = query.Where("assignee_id = ?", req.Assignee)
	}
	return paginate[models.Issue](query, req.PageRequest, "created_at DESC, id DESC")
}

// Get returns an issue of a visible project.
func (s *IssueService) Get(ctx context.Context, actor authz.Identity, projectID, issueID uint) (*models.Issue, error) {
	db := s.db.WithContext(ctx)
	project, err := loadProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.requireVisible(ctx, actor, project); err != nil {
		return nil, err
	}
	return loadIssue(db.Preload("Author").Preload("Assignee"), projectID, issueID)
}

// Create stores an issue authored by actor in a project actor contributes to.
func (s *IssueService) Create(ctx context.Context, actor authz.Identity, projectID uint, req *CreateIssueRequest) (*models.Issue, error) {
	issue := &models.Issue{
		Title:       req.Title,
		Description: req.Description,
		Tag:         models.IssueTag(req.Tag),
		Priority:    models.IssuePriority(req.Priority),
		Status:      models.IssueStatusToDo,
		ProjectID:   projectID,
		AuthorID:    actor.UserID,
		AssigneeID:  req.Assignee,
	}
	if req.Status != "" {
		issue.Status = models.IssueStatus(req.Status)
	}

	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		reg := s.registry.withTx(tx)

		project, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		if err := reg.requireVisible(ctx, actor, project); err != nil {
			return err
		}
		if err := reg.resolver().Require(ctx, actor, authz.ActionCreate, authz.KindIssue, project); err != nil {
			return err
		}
		if err := reg.validateAssignee(ctx, projectID, req.Assignee); err != nil {
			return err
		}
		return tx.Create(issue).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("project_id", projectID).Uint("issue_id", issue.ID).Str("actor", actor.String()).Msg("issue created")
	return issue, nil
}

// Update applies the supplied fields. Only the issue author may update it.
func (s *IssueService) Update(ctx context.Context, actor authz.Identity, projectID, issueID uint, req *UpdateIssueRequest) (*models.Issue, error) {
	return s.modify(ctx, actor, projectID, issueID, authz.ActionUpdate, func(tx *gorm.DB, reg *ContributorRegistry, issue *models.Issue) (map[string]interface{}, error) {
		updates := make(map[string]interface{})
		if req.Title != "" {
			updates["title"] = req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Tag != "" {
			updates["tag"] = req.Tag
		}
		if req.Priority != "" {
			updates["priority"] = req.Priority
		}
		if req.Status != "" {
			updates["status"] = req.Status
		}
		if req.Assignee != nil {
			if err := reg.validateAssignee(ctx, projectID, req.Assignee); err != nil {
				return nil, err
			}
			updates["assignee_id"] = *req.Assignee
		}
		return updates, nil
	})
}

// Assign sets or clears the assignee of an issue.
func (s *IssueService) Assign(ctx context.Context, actor authz.Identity, projectID, issueID uint, req *AssignIssueRequest) (*models.Issue, error) {
	return s.modify(ctx, actor, projectID, issueID, authz.ActionAssign, func(tx *gorm.DB, reg *ContributorRegistry, issue *models.Issue) (map[string]interface{}, error) {
		if err := reg.validateAssignee(ctx, projectID, req.Assignee); err != nil {
			return nil, err
		}
		var assignee interface{}
		if req.Assignee != nil {
			assignee = *req.Assignee
		}
		return map[string]interface{}{"assignee_id": assignee}, nil
	})
}

// Delete removes an issue and its comments.
func (s *IssueService) Delete(ctx context.Context, actor authz.Identity, projectID, issueID uint) error {
	var comments int64
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		issue, err := s.authorizeIssue(ctx, tx, actor, projectID, issueID, authz.ActionDelete)
		if err != nil {
			return err
		}
		if comments, err = deleteCommentsOf(tx, []uint{issue.ID}); err != nil {
			return err
		}
		return tx.Delete(issue).Error
	})
	if err != nil {
		return err
	}

	logger.Info().
		Uint("project_id", projectID).
		Uint("issue_id", issueID).
		Int64("comments", comments).
		Str("actor", actor.String()).
		Msg("issue deleted")
	return nil
}

type issueChange func(tx *gorm.DB, reg *ContributorRegistry, issue *models.Issue) (map[string]interface{}, error)

// modify runs change inside a transaction after authorizing action on the
// issue, then reloads it.
func (s *IssueService) modify(ctx context.Context, actor authz.Identity, projectID, issueID uint, action authz.Action, change issueChange) (*models.Issue, error) {
	var issue *models.Issue
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if issue, err = s.authorizeIssue(ctx, tx, actor, projectID, issueID, action); err != nil {
			return err
		}
		updates, err := change(tx, s.registry.withTx(tx), issue)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(issue).Updates(updates).Error; err != nil {
				return err
			}
		}
		issue, err = loadIssue(tx.Preload("Author").Preload("Assignee"), projectID, issueID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// authorizeIssue loads an issue through its project and checks action on it.
func (s *IssueService) authorizeIssue(ctx context.Context, tx *gorm.DB, actor authz.Identity, projectID, issueID uint, action authz.Action) (*models.Issue, error) {
	reg := s.registry.withTx(tx)

	project, err := loadProject(tx, projectID)
	if err != nil {
		return nil, err
	}
	if err := reg.requireVisible(ctx, actor, project); err != nil {
		return nil, err
	}
	issue, err := loadIssue(tx, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if err := reg.resolver().Require(ctx, actor, action, authz.KindIssue, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// validateAssignee requires a non-nil assignee to be a contributor of
// projectID at write time.
func (r *ContributorRegistry) validateAssignee(ctx context.Context, projectID uint, assignee *uint) error {
	if assignee == nil {
		return nil
	}
	member, err := r.IsContributor(ctx, *assignee, projectID)
	if err != nil {
		return err
	}
	if !member {
		return authz.Validation("assignee", fmt.Sprintf("user %d is not a contributor of this project", *assignee))
	}
	return nil
}

// loadIssue fetches an issue that belongs to projectID.
func loadIssue(db *gorm.DB, projectID, issueID uint) (*models.Issue, error) {
	var issue models.Issue
	if err := db.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error; err != nil {
		return nil, translate(err, authz.KindIssue)
	}
	return &issue, nil
}
