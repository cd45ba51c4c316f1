package services

import (
	"context"

	"github.com/samber/lo"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"gorm.io/gorm"
)

type CommentService struct {
	db       *gorm.DB
	registry *ContributorRegistry
	scope    *ScopeFilter
}

func NewCommentService(db *gorm.DB) *CommentService {
	registry := NewContributorRegistry(db)
	return &CommentService{
		db:       db,
		registry: registry,
		scope:    NewScopeFilter(registry),
	}
}

type CommentListRequest struct {
	PageRequest
}

type CommentRequest struct {
	Description string `json:"description" binding:"required"`
}

// List returns the comments of an issue, oldest first.
func (s *CommentService) List(ctx context.Context, actor authz.Identity, projectID, issueID uint, req *CommentListRequest) (*ListResponse[models.Comment], error) {
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

	db := s.db.WithContext(ctx)
	if _, err := loadIssue(db, projectID, issueID); err != nil {
		return nil, err
	}

	query := db.Model(&models.Comment{}).
		Preload("Author").
		Scopes(CommentsIn(visible)).
		Where("issue_id = ?", issueID)
	return paginate[models.Comment](query, req.PageRequest, "created_at ASC, id ASC")
}

// Get returns a comment of an issue in a visible project.
func (s *CommentService) Get(ctx context.Context, actor authz.Identity, projectID, issueID uint, commentID string) (*models.Comment, error) {
	db := s.db.WithContext(ctx)
	issue, err := s.visibleIssue(ctx, db, s.registry, actor, projectID, issueID)
	if err != nil {
		return nil, err
	}
	comment, err := loadComment(db.Preload("Author"), issue, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.resolver().Require(ctx, actor, authz.ActionRead, authz.KindComment, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Create stores a comment by actor on an issue of a project actor contributes to.
func (s *CommentService) Create(ctx context.Context, actor authz.Identity, projectID, issueID uint, req *CommentRequest) (*models.Comment, error) {
	comment := &models.Comment{
		Description: req.Description,
		IssueID:     issueID,
		AuthorID:    actor.UserID,
	}
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		reg := s.registry.withTx(tx)

		issue, err := s.visibleIssue(ctx, tx, reg, actor, projectID, issueID)
		if err != nil {
			return err
		}
		if err := reg.resolver().Require(ctx, actor, authz.ActionCreate, authz.KindComment, issue); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("issue_id", issueID).Str("comment_id", comment.ID).Str("actor", actor.String()).Msg("comment created")
	return comment, nil
}

// Update replaces the description. Only the comment author may update it.
func (s *CommentService) Update(ctx context.Context, actor authz.Identity, projectID, issueID uint, commentID string, req *CommentRequest) (*models.Comment, error) {
	var comment *models.Comment
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if comment, err = s.authorizeComment(ctx, tx, actor, projectID, issueID, commentID, authz.ActionUpdate); err != nil {
			return err
		}
		if err := tx.Model(comment).Update("description", req.Description).Error; err != nil {
			return err
		}
		return tx.Preload("Author").First(comment, "id = ?", comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment. Only the comment author may delete it.
func (s *CommentService) Delete(ctx context.Context, actor authz.Identity, projectID, issueID uint, commentID string) error {
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		comment, err := s.authorizeComment(ctx, tx, actor, projectID, issueID, commentID, authz.ActionDelete)
		if err != nil {
			return err
		}
		return tx.Delete(comment).Error
	})
	if err != nil {
		return err
	}

	logger.Info().Uint("issue_id", issueID).Str("comment_id", commentID).Str("actor", actor.String()).Msg("comment deleted")
	return nil
}

func (s *CommentService) authorizeComment(ctx context.Context, tx *gorm.DB, actor authz.Identity, projectID, issueID uint, commentID string, action authz.Action) (*models.Comment, error) {
	reg := s.registry.withTx(tx)

	issue, err := s.visibleIssue(ctx, tx, reg, actor, projectID, issueID)
	if err != nil {
		return nil, err
	}
	comment, err := loadComment(tx, issue, commentID)
	if err != nil {
		return nil, err
	}
	if err := reg.resolver().Require(ctx, actor, action, authz.KindComment, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// visibleIssue loads an issue after checking its project is visible to actor.
func (s *CommentService) visibleIssue(ctx context.Context, db *gorm.DB, reg *ContributorRegistry, actor authz.Identity, projectID, issueID uint) (*models.Issue, error) {
	project, err := loadProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if err := reg.requireVisible(ctx, actor, project); err != nil {
		return nil, err
	}
	return loadIssue(db, projectID, issueID)
}

// loadComment fetches a comment of issue and attaches the issue so the
// comment can resolve its project.
func loadComment(db *gorm.DB, issue *models.Issue, commentID string) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Where("id = ? AND issue_id = ?", commentID, issue.ID).First(&comment).Error; err != nil {
		return nil, translate(err, authz.KindComment)
	}
	comment.Issue = issue
	return &comment, nil
}
