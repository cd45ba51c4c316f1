package services

import (
	"context"

	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"gorm.io/gorm"
)

type ProjectService struct {
	db       *gorm.DB
	registry *ContributorRegistry
	scope    *ScopeFilter
}

func NewProjectService(db *gorm.DB) *ProjectService {
	registry := NewContributorRegistry(db)
	return &ProjectService{
		db:       db,
		registry: registry,
		scope:    NewScopeFilter(registry),
	}
}

type ProjectListRequest struct {
	PageRequest
	Name string `form:"name"`
	Type string `form:"type" binding:"omitempty,oneof=BACK_END FRONT_END IOS ANDROID"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=BACK_END FRONT_END IOS ANDROID"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"omitempty,max=128"`
	Description *string `json:"description"`
	Type        string  `json:"type" binding:"omitempty,oneof=BACK_END FRONT_END IOS ANDROID"`
}

// ProjectDeleteResult counts the rows removed by a project delete.
type ProjectDeleteResult struct {
	Issues       int64 `json:"issues"`
	Comments     int64 `json:"comments"`
	Contributors int64 `json:"contributors"`
}

// List returns the projects visible to actor, newest first.
func (s *ProjectService) List(ctx context.Context, actor authz.Identity, req *ProjectListRequest) (*ListResponse[models.Project], error) {
	if !actor.IsAuthenticated() {
		return nil, authz.Unauthenticated("authentication required")
	}
	ids, err := s.scope.VisibleProjectIDs(ctx, actor)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.Project{}).Scopes(ProjectsIn(ids))
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	return paginate[models.Project](query, req.PageRequest, "created_at DESC, id DESC")
}

// Get returns a project visible to actor.
func (s *ProjectService) Get(ctx context.Context, actor authz.Identity, id uint) (*models.Project, error) {
	project, err := loadProject(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.registry.requireVisible(ctx, actor, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Create stores a project authored by actor together with its author
// contributor row.
func (s *ProjectService) Create(ctx context.Context, actor authz.Identity, req *CreateProjectRequest) (*models.Project, error) {
	if err := s.registry.resolver().Require(ctx, actor, authz.ActionCreate, authz.KindProject, nil); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Type:        models.ProjectType(req.Type),
		AuthorID:    actor.UserID,
	}
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		author := &models.Contributor{ProjectID: project.ID, UserID: actor.UserID, Role: authz.RoleAuthor}
		return tx.Create(author).Error
	})
	if err != nil {
		return nil, translate(err, authz.KindProject)
	}

	logger.Info().Uint("project_id", project.ID).Str("actor", actor.String()).Msg("project created")
	return project, nil
}

// Update applies the supplied fields. Only the author may update a project.
func (s *ProjectService) Update(ctx context.Context, actor authz.Identity, id uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project *models.Project
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		reg := s.registry.withTx(tx)

		var err error
		if project, err = loadProject(tx, id); err != nil {
			return err
		}
		if err := reg.requireVisible(ctx, actor, project); err != nil {
			return err
		}
		if err := reg.resolver().Require(ctx, actor, authz.ActionUpdate, authz.KindProject, project); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Type != "" {
			updates["type"] = req.Type
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(project).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(project, id).Error
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and everything under it in one transaction.
func (s *ProjectService) Delete(ctx context.Context, actor authz.Identity, id uint) (*ProjectDeleteResult, error) {
	var result *ProjectDeleteResult
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		reg := s.registry.withTx(tx)

		project, err := loadProject(tx, id)
		if err != nil {
			return err
		}
		if err := reg.requireVisible(ctx, actor, project); err != nil {
			return err
		}
		if err := reg.resolver().Require(ctx, actor, authz.ActionDelete, authz.KindProject, project); err != nil {
			return err
		}

		result, err = deleteProjectTree(tx, project)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Uint("project_id", id).
		Int64("issues", result.Issues).
		Int64("comments", result.Comments).
		Int64("contributors", result.Contributors).
		Str("actor", actor.String()).
		Msg("project deleted")
	return result, nil
}

// deleteProjectTree removes the comments of the project's issues, its issues,
// its contributor rows and the project itself, in that order.
func deleteProjectTree(tx *gorm.DB, project *models.Project) (*ProjectDeleteResult, error) {
	result := &ProjectDeleteResult{}

	var issueIDs []uint
	if err := tx.Model(&models.Issue{}).Where("project_id = ?", project.ID).Pluck("id", &issueIDs).Error; err != nil {
		return nil, err
	}

	var err error
	if result.Comments, err = deleteCommentsOf(tx, issueIDs); err != nil {
		return nil, err
	}

	res := tx.Where("project_id = ?", project.ID).Delete(&models.Issue{})
	if res.Error != nil {
		return nil, res.Error
	}
	result.Issues = res.RowsAffected

	res = tx.Where("project_id = ?", project.ID).Delete(&models.Contributor{})
	if res.Error != nil {
		return nil, res.Error
	}
	result.Contributors = res.RowsAffected

	if err := tx.Delete(project).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// deleteCommentsOf removes every comment on the given issues.
func deleteCommentsOf(tx *gorm.DB, issueIDs []uint) (int64, error) {
	if len(issueIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("issue_id IN ?", issueIDs).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}
