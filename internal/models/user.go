package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a staff account that signs in to the back office.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Email       string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name        string         `gorm:"size:255" json:"name,omitempty"`
	Password    string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	// ProfileID nil means the user can sign in but holds no permissions.
	ProfileID *uint    `gorm:"index" json:"profile_id,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}
