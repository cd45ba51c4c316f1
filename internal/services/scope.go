package services

import (
	"context"

	"github.com/xavierjeanne/softdesk/internal/authz"
	"gorm.io/gorm"
)

// ScopeFilter narrows listings to the projects an identity can see.
type ScopeFilter struct {
	registry *ContributorRegistry
}

func NewScopeFilter(registry *ContributorRegistry) *ScopeFilter {
	return &ScopeFilter{registry: registry}
}

// VisibleProjectIDs returns the projects id may see. The anonymous identity
// sees nothing.
func (f *ScopeFilter) VisibleProjectIDs(ctx context.Context, id authz.Identity) ([]uint, error) {
	if !id.IsAuthenticated() {
		return []uint{}, nil
	}
	return f.registry.ProjectsVisibleTo(ctx, id.UserID)
}

// ProjectsIn restricts a projects query to ids.
func ProjectsIn(ids []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(ids) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("projects.id IN ?", ids)
	}
}

// IssuesIn restricts an issues query to issues of the given projects.
func IssuesIn(projectIDs []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(projectIDs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("issues.project_id IN ?", projectIDs)
	}
}

// CommentsIn restricts a comments query to comments on issues of the given
// projects.
func CommentsIn(projectIDs []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(projectIDs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("comments.issue_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Table("issues").Select("id").Where("project_id IN ?", projectIDs))
	}
}
