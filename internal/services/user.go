package services

import (
	"context"
	"errors"

	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/internal/utils"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	resolver *authz.Resolver
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:       db,
		resolver: NewContributorRegistry(db).resolver(),
	}
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	Password        string `json:"password" binding:"required,min=8"`
	Email           string `json:"email" binding:"omitempty,email"`
	FirstName       string `json:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" binding:"max=150"`
	Age             *int   `json:"age"`
	CanBeContacted  *bool  `json:"can_be_contacted"`
	CanDataBeShared *bool  `json:"can_data_be_shared"`
}

type UpdateUserRequest struct {
	Email           *string `json:"email" binding:"omitempty,email"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=150"`
	LastName        *string `json:"last_name" binding:"omitempty,max=150"`
	Password        *string `json:"password" binding:"omitempty,min=8"`
	Age             *int    `json:"age"`
	CanBeContacted  *bool   `json:"can_be_contacted"`
	CanDataBeShared *bool   `json:"can_data_be_shared"`
}

type UserListRequest struct {
	PageRequest
	Username string `form:"username"`
}

// UserDeleteResult counts the rows removed or changed by a user delete.
type UserDeleteResult struct {
	Projects    int64 `json:"projects"`
	Issues      int64 `json:"issues"`
	Comments    int64 `json:"comments"`
	Memberships int64 `json:"memberships"`
	Unassigned  int64 `json:"unassigned"`
}

func (r *RegisterRequest) consent() authz.ConsentInput {
	return authz.ConsentInput{Age: r.Age, CanBeContacted: r.CanBeContacted, CanDataBeShared: r.CanDataBeShared}
}

func (r *UpdateUserRequest) consent() authz.ConsentInput {
	return authz.ConsentInput{Age: r.Age, CanBeContacted: r.CanBeContacted, CanDataBeShared: r.CanDataBeShared}
}

// Register creates an account. It needs no identity.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := authz.ValidateConsent(nil, req.consent()); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	state := authz.ConsentState{}.Merge(req.consent())
	user := &models.User{
		Username:        req.Username,
		Password:        hash,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Age:             state.Age,
		CanBeContacted:  state.CanBeContacted,
		CanDataBeShared: state.CanDataBeShared,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, authz.Conflict("username is already taken")
		}
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

// List returns every user. Any authenticated caller may read profiles.
func (s *UserService) List(ctx context.Context, actor authz.Identity, req *UserListRequest) (*ListResponse[models.User], error) {
	if !actor.IsAuthenticated() {
		return nil, authz.Unauthenticated("authentication required")
	}
	query := s.db.WithContext(ctx).Model(&models.User{})
	if req.Username != "" {
		query = query.Where("username LIKE ?", "%"+req.Username+"%")
	}
	return paginate[models.User](query, req.PageRequest, "id ASC")
}

func (s *UserService) Get(ctx context.Context, actor authz.Identity, id uint) (*models.User, error) {
	user, err := loadUser(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.Require(ctx, actor, authz.ActionRead, authz.KindUser, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes the caller's own profile. Consent flags are checked against
// the stored age when the request carries none.
func (s *UserService) Update(ctx context.Context, actor authz.Identity, id uint, req *UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if user, err = loadUser(tx, id); err != nil {
			return err
		}
		if err := s.resolver.Require(ctx, actor, authz.ActionUpdate, authz.KindUser, user); err != nil {
			return err
		}

		stored := user.ConsentState()
		if err := authz.ValidateConsent(&stored, req.consent()); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.FirstName != nil {
			updates["first_name"] = *req.FirstName
		}
		if req.LastName != nil {
			updates["last_name"] = *req.LastName
		}
		if req.Age != nil {
			updates["age"] = *req.Age
		}
		if req.CanBeContacted != nil {
			updates["can_be_contacted"] = *req.CanBeContacted
		}
		if req.CanDataBeShared != nil {
			updates["can_data_be_shared"] = *req.CanDataBeShared
		}
		if req.Password != nil {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			updates["password"] = hash
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the caller's own account with everything they authored:
// their projects with all content, their issues and comments elsewhere and
// their memberships. Issues assigned to them become unassigned.
func (s *UserService) Delete(ctx context.Context, actor authz.Identity, id uint) (*UserDeleteResult, error) {
	result := &UserDeleteResult{}
	err := models.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		user, err := loadUser(tx, id)
		if err != nil {
			return err
		}
		if err := s.resolver.Require(ctx, actor, authz.ActionDelete, authz.KindUser, user); err != nil {
			return err
		}

		var projects []models.Project
		if err := tx.Where("author_id = ?", id).Find(&projects).Error; err != nil {
			return err
		}
		for i := range projects {
			tree, err := deleteProjectTree(tx, &projects[i])
			if err != nil {
				return err
			}
			result.Projects++
			result.Issues += tree.Issues
			result.Comments += tree.Comments
		}

		var issueIDs []uint
		if err := tx.Model(&models.Issue{}).Where("author_id = ?", id).Pluck("id", &issueIDs).Error; err != nil {
			return err
		}
		n, err := deleteCommentsOf(tx, issueIDs)
		if err != nil {
			return err
		}
		result.Comments += n

		res := tx.Where("author_id = ?", id).Delete(&models.Issue{})
		if res.Error != nil {
			return res.Error
		}
		result.Issues += res.RowsAffected

		res = tx.Where("author_id = ?", id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		result.Comments += res.RowsAffected

		res = tx.Model(&models.Issue{}).Where("assignee_id = ?", id).Update("assignee_id", nil)
		if res.Error != nil {
			return res.Error
		}
		result.Unassigned = res.RowsAffected

		res = tx.Where("user_id = ?", id).Delete(&models.Contributor{})
		if res.Error != nil {
			return res.Error
		}
		result.Memberships = res.RowsAffected

		return tx.Delete(user).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Uint("user_id", id).
		Int64("projects", result.Projects).
		Int64("issues", result.Issues).
		Int64("comments", result.Comments).
		Int64("memberships", result.Memberships).
		Int64("unassigned", result.Unassigned).
		Msg("user deleted")
	return result, nil
}

func loadUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, translate(err, authz.KindUser)
	}
	return &user, nil
}
