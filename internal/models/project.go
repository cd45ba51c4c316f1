package models

import (
	"time"
)

// ProjectType is the platform a project targets.
type ProjectType string

const (
	ProjectTypeBackend  ProjectType = "BACK_END"
	ProjectTypeFrontend ProjectType = "FRONT_END"
	ProjectTypeIOS      ProjectType = "IOS"
	ProjectTypeAndroid  ProjectType = "ANDROID"
)

// Project is a unit of work owned by its author.
type Project struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:128;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Type        ProjectType `gorm:"size:10;not null" json:"type"`
	AuthorID    uint        `gorm:"index;not null" json:"author_id"`
	Author      *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_time"`
	UpdatedAt   time.Time   `json:"updated_time"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BelongsToProject() (uint, bool) { return p.ID, p.ID != 0 }

func (p *Project) OwnerID() uint { return p.AuthorID }
