package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a remark on an issue. Its id is a UUID unrelated to ordering;
// comments are listed oldest first.
type Comment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IssueID     uint      `gorm:"index;not null" json:"issue_id"`
	Issue       *Issue    `gorm:"foreignKey:IssueID" json:"-"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_time"`
	UpdatedAt   time.Time `json:"updated_time"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// BelongsToProject resolves through the preloaded issue. A comment loaded
// without its issue, or whose issue is gone, has no project.
func (c *Comment) BelongsToProject() (uint, bool) {
	if c.Issue == nil {
		return 0, false
	}
	return c.Issue.BelongsToProject()
}

func (c *Comment) OwnerID() uint { return c.AuthorID }
