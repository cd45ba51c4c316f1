package models

import (
	"time"

	"github.com/xavierjeanne/softdesk/internal/authz"
)

// Contributor is a user's membership and role within a project.
// A user appears at most once per project.
type Contributor struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID uint       `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint       `gorm:"uniqueIndex:idx_project_user;index;not null" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      authz.Role `gorm:"size:20;default:CONTRIBUTOR;not null" json:"role"`
	CreatedAt time.Time  `json:"created_time"`
}

func (Contributor) TableName() string { return "contributors" }

func (c *Contributor) BelongsToProject() (uint, bool) { return c.ProjectID, c.ProjectID != 0 }

func (c *Contributor) OwnerID() uint { return c.UserID }
