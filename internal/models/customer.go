package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is an agency client. It is never hard-deleted; Active toggles visibility.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Version   uint           `gorm:"not null" json:"version"`

	Name          string `gorm:"size:255;not null" json:"name"`
	Email         string `gorm:"size:255;index" json:"email"`
	CompanyName   string `gorm:"size:255" json:"company_name,omitempty"`
	ContactNumber string `gorm:"size:50" json:"contact_number,omitempty"`
	// Maintenance marks customers on a monthly maintenance plan.
	Maintenance bool `gorm:"not null;default:false" json:"maintenance"`
	Active      bool `gorm:"not null" json:"active"`

	// TotalSpent is derived from accepted quotes on read and never persisted.
	TotalSpent float64 `gorm:"-" json:"total_spent"`

	Projects []Project `gorm:"foreignKey:ClientID" json:"projects,omitempty"`
}

// DisplayName prefers the company name.
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return c.Name
}
