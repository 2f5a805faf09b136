package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
)

// AgreementStatus tracks the letter of agreement. The empty value means no agreement.
type AgreementStatus string

const (
	AgreementNone     AgreementStatus = ""
	AgreementPending  AgreementStatus = "pending"
	AgreementApproved AgreementStatus = "approved"
	AgreementDeclined AgreementStatus = "declined"
	AgreementSigned   AgreementStatus = "signed"
)

type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Version   uint           `gorm:"not null" json:"version"`

	ProjectType string `gorm:"size:100;not null" json:"project_type"`
	ClientID    uint   `gorm:"index;not null" json:"client_id"`
	// ClientName is a display copy taken at creation time.
	ClientName string        `gorm:"size:255" json:"client_name"`
	Status     ProjectStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	Completion int           `gorm:"not null;default:0" json:"completion"`

	QuoteID *uint `gorm:"index" json:"quote_id,omitempty"`

	AgreementKey         string          `gorm:"size:255" json:"agreement_key,omitempty"`
	AgreementURL         string          `gorm:"size:500" json:"agreement_url,omitempty"`
	AgreementStatus      AgreementStatus `gorm:"size:20" json:"agreement_status,omitempty"`
	AgreementGeneratedAt *time.Time      `json:"agreement_generated_at,omitempty"`
	AgreementUpdatedAt   *time.Time      `json:"agreement_updated_at,omitempty"`
}

// DeriveProjectStatus applies the completion rule: 100% is always completed,
// and a project below 100% cannot stay completed.
func DeriveProjectStatus(completion int, requested ProjectStatus) ProjectStatus {
	if completion >= 100 {
		return ProjectStatusCompleted
	}
	if requested == ProjectStatusOnHold {
		return ProjectStatusOnHold
	}
	return ProjectStatusActive
}

func (p *Project) HasAgreement() bool { return p.AgreementStatus != AgreementNone }
