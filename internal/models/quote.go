package models

import (
	"time"

	"gorm.io/gorm"
)

// QuoteStatus represents the acceptance state of a quote.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusPending: {QuoteStatusAccepted, QuoteStatusRejected},
}

// CanTransitionTo reports whether s may move to next.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s QuoteStatus) Terminal() bool { return len(quoteTransitions[s]) == 0 }

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// Quote is a priced proposal. TotalAmount is fixed at creation.
type Quote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Version   uint           `gorm:"not null" json:"version"`

	ProjectID   *uint  `gorm:"index" json:"project_id,omitempty"`
	ClientID    uint   `gorm:"index;not null" json:"client_id"`
	ProjectType string `gorm:"size:100" json:"project_type"`

	Complexity      string   `gorm:"size:20;not null" json:"complexity"`
	Urgency         string   `gorm:"size:20;not null" json:"urgency"`
	EstimatedHours  float64  `gorm:"not null" json:"estimated_hours"`
	HourlyRate      float64  `gorm:"not null" json:"hourly_rate"`
	HostingCost     float64  `gorm:"not null;default:0" json:"hosting_cost"`
	MaintenanceCost float64  `gorm:"not null;default:0" json:"maintenance_cost"`
	Features        []string `gorm:"serializer:json;type:text" json:"features,omitempty"`

	TotalAmount float64     `gorm:"not null;check:total_amount >= 0" json:"total_amount"`
	Status      QuoteStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	// DecidedAt is set when the quote leaves pending.
	DecidedAt *time.Time `json:"decided_at,omitempty"`

	PDFKey string `gorm:"size:255" json:"pdf_key,omitempty"`
	PDFURL string `gorm:"size:500" json:"pdf_url,omitempty"`
}
