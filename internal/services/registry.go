package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"gorm.io/gorm"
)

// ContributorRegistry is the single source of project membership.
// It implements authz.Membership.
type ContributorRegistry struct {
	db *gorm.DB
}

func NewContributorRegistry(db *gorm.DB) *ContributorRegistry {
	return &ContributorRegistry{db: db}
}

// withTx returns a registry whose reads go through tx, so membership checks
// see the same snapshot as the write that follows them.
func (r *ContributorRegistry) withTx(tx *gorm.DB) *ContributorRegistry {
	return &ContributorRegistry{db: tx}
}

// resolver returns a resolver backed by this registry.
func (r *ContributorRegistry) resolver() *authz.Resolver {
	return authz.NewResolver(r)
}

type AddContributorRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type ContributorListRequest struct {
	PageRequest
}

// RoleOf returns the role userID holds in projectID. member is false when the
// user has no row for the project.
func (r *ContributorRegistry) RoleOf(ctx context.Context, userID, projectID uint) (authz.Role, bool, error) {
	var row models.Contributor
	err := r.db.WithContext(ctx).
		Select("role").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Role, true, nil
}

func (r *ContributorRegistry) IsContributor(ctx context.Context, userID, projectID uint) (bool, error) {
	_, member, err := r.RoleOf(ctx, userID, projectID)
	return member, err
}

// ProjectsVisibleTo returns the ids of projects userID authored or holds a
// contributor row in, in ascending order.
func (r *ContributorRegistry) ProjectsVisibleTo(ctx context.Context, userID uint) ([]uint, error) {
	db := r.db.WithContext(ctx)

	var authored []uint
	if err := db.Model(&models.Project{}).Where("author_id = ?", userID).Pluck("id", &authored).Error; err != nil {
		return nil, err
	}

	var member []uint
	if err := db.Model(&models.Contributor{}).Where("user_id = ?", userID).Pluck("project_id", &member).Error; err != nil {
		return nil, err
	}

	ids := lo.Uniq(append(authored, member...))
	slices.Sort(ids)
	return ids, nil
}

// AddContributor adds targetUserID to projectID with the Contributor role.
// Only the project author may add members; a user is added at most once.
func (r *ContributorRegistry) AddContributor(ctx context.Context, actor authz.Identity, projectID, targetUserID uint) (*models.Contributor, error) {
	var row *models.Contributor
	err := models.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		reg := r.withTx(tx)

		project, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		if err := reg.requireVisible(ctx, actor, project); err != nil {
			return err
		}
		if err := reg.resolver().Require(ctx, actor, authz.ActionCreate, authz.KindContributor, project); err != nil {
			return err
		}

		var target models.User
		if err := tx.Select("id").First(&target, targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.Validation("user_id", fmt.Sprintf("user %d does not exist", targetUserID))
			}
			return err
		}

		member, err := reg.IsContributor(ctx, targetUserID, projectID)
		if err != nil {
			return err
		}
		if member {
			return duplicateContributor(targetUserID)
		}

		row = &models.Contributor{ProjectID: projectID, UserID: targetUserID, Role: authz.RoleContributor}
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateContributor(targetUserID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Uint("project_id", projectID).
		Uint("user_id", targetUserID).
		Str("actor", actor.String()).
		Msg("contributor added")
	return row, nil
}

// RemoveContributor deletes the contributor row contributorID of projectID.
// The author row is never removed and a project keeps at least one row.
func (r *ContributorRegistry) RemoveContributor(ctx context.Context, actor authz.Identity, projectID, contributorID uint) error {
	var removed models.Contributor
	err := models.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		reg := r.withTx(tx)

		row, err := reg.find(ctx, actor, projectID, contributorID)
		if err != nil {
			return err
		}
		if err := reg.resolver().Require(ctx, actor, authz.ActionDelete, authz.KindContributor, row); err != nil {
			return err
		}
		if row.Role == authz.RoleAuthor {
			return authz.Invariant("the project author cannot be removed from the project")
		}

		var count int64
		if err := tx.Model(&models.Contributor{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return authz.Invariant("a project must keep at least one contributor")
		}

		if err := tx.Delete(row).Error; err != nil {
			return err
		}
		removed = *row
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().
		Uint("project_id", projectID).
		Uint("user_id", removed.UserID).
		Str("actor", actor.String()).
		Msg("contributor removed")
	return nil
}

// List returns the members of projectID, oldest first.
func (r *ContributorRegistry) List(ctx context.Context, actor authz.Identity, projectID uint, req *ContributorListRequest) (*ListResponse[models.Contributor], error) {
	project, err := loadProject(r.db.WithContext(ctx), projectID)
	if err != nil {
		return nil, err
	}
	if err := r.requireVisible(ctx, actor, project); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Contributor{}).
		Preload("User").
		Where("project_id = ?", projectID)
	return paginate[models.Contributor](query, req.PageRequest, "created_at ASC, id ASC")
}

// Get returns a single contributor row of projectID.
func (r *ContributorRegistry) Get(ctx context.Context, actor authz.Identity, projectID, contributorID uint) (*models.Contributor, error) {
	return r.find(ctx, actor, projectID, contributorID)
}

// find loads a contributor row after checking the project is visible to actor.
func (r *ContributorRegistry) find(ctx context.Context, actor authz.Identity, projectID, contributorID uint) (*models.Contributor, error) {
	db := r.db.WithContext(ctx)

	project, err := loadProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if err := r.requireVisible(ctx, actor, project); err != nil {
		return nil, err
	}

	var row models.Contributor
	if err := db.Preload("User").
		Where("id = ? AND project_id = ?", contributorID, projectID).
		First(&row).Error; err != nil {
		return nil, translate(err, authz.KindContributor)
	}
	return &row, nil
}

func duplicateContributor(userID uint) error {
	return authz.Conflict(fmt.Sprintf("user %d is already a contributor of this project", userID))
}

// loadProject fetches a project by id, translating a miss into NotFound.
func loadProject(db *gorm.DB, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, translate(err, authz.KindProject)
	}
	return &project, nil
}

// requireVisible fails with NotFound unless actor can read project.
// A hidden project is reported exactly like a missing one.
func (r *ContributorRegistry) requireVisible(ctx context.Context, actor authz.Identity, project *models.Project) error {
	return r.resolver().Require(ctx, actor, authz.ActionRead, authz.KindProject, project)
}
