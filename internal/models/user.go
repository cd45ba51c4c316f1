package models

import (
	"time"

	"github.com/xavierjeanne/softdesk/internal/authz"
)

// User is a registered account together with its GDPR consent state.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password        string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Email           string    `gorm:"size:255" json:"email"`
	FirstName       string    `gorm:"size:150" json:"first_name"`
	LastName        string    `gorm:"size:150" json:"last_name"`
	Age             *int      `json:"age"`
	CanBeContacted  bool      `gorm:"default:false" json:"can_be_contacted"`
	CanDataBeShared bool      `gorm:"default:false" json:"can_data_be_shared"`
	CreatedAt       time.Time `json:"created_time"`
	UpdatedAt       time.Time `json:"updated_time"`
}

func (User) TableName() string { return "users" }

// BelongsToProject is always false: profiles are not project-scoped.
func (u *User) BelongsToProject() (uint, bool) { return 0, false }

// OwnerID is the profile owner.
func (u *User) OwnerID() uint { return u.ID }

// ConsentState returns the stored consent fields.
func (u *User) ConsentState() authz.ConsentState {
	return authz.ConsentState{
		Age:             u.Age,
		CanBeContacted:  u.CanBeContacted,
		CanDataBeShared: u.CanDataBeShared,
	}
}

// Identity returns the authorization identity of u.
func (u *User) Identity() authz.Identity {
	return authz.Identity{
		UserID:          u.ID,
		Username:        u.Username,
		Age:             u.Age,
		CanBeContacted:  u.CanBeContacted,
		CanDataBeShared: u.CanDataBeShared,
	}
}
