package models

import (
	"time"
)

type IssueTag string

const (
	IssueTagBug     IssueTag = "BUG"
	IssueTagFeature IssueTag = "FEATURE"
	IssueTagTask    IssueTag = "TASK"
)

type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "LOW"
	IssuePriorityMedium IssuePriority = "MEDIUM"
	IssuePriorityHigh   IssuePriority = "HIGH"
)

// IssueStatus has no enforced transition order.
type IssueStatus string

const (
	IssueStatusToDo       IssueStatus = "TO_DO"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusFinished   IssueStatus = "FINISHED"
)

// Issue is a tracked piece of work inside a project. The assignee was a
// contributor of the project when it was assigned; later membership changes
// do not invalidate it.
type Issue struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:128;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Tag         IssueTag      `gorm:"size:10;not null" json:"tag"`
	Priority    IssuePriority `gorm:"size:10;not null" json:"priority"`
	Status      IssueStatus   `gorm:"size:15;default:TO_DO;not null" json:"status"`
	ProjectID   uint          `gorm:"index;not null" json:"project_id"`
	Project     *Project      `gorm:"foreignKey:ProjectID" json:"-"`
	AuthorID    uint          `gorm:"index;not null" json:"author_id"`
	Author      *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AssigneeID  *uint         `gorm:"index" json:"assignee_id"`
	Assignee    *User         `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"created_time"`
	UpdatedAt   time.Time     `json:"updated_time"`
}

func (Issue) TableName() string { return "issues" }

func (i *Issue) BelongsToProject() (uint, bool) { return i.ProjectID, i.ProjectID != 0 }

func (i *Issue) OwnerID() uint { return i.AuthorID }
