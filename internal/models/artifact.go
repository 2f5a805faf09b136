package models

import "time"

// Artifact records a stored binary document such as a quote PDF or a signed agreement.
type Artifact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Key        string `gorm:"column:storage_key;size:255;uniqueIndex;not null" json:"key"`
	OwnerType  string `gorm:"size:50;index:idx_artifact_owner" json:"owner_type"` // quote, project
	OwnerID    uint   `gorm:"index:idx_artifact_owner" json:"owner_id"`
	Name       string `gorm:"size:255" json:"name"`
	MimeType   string `gorm:"size:100" json:"mime_type"`
	Size       int64  `json:"size"`
	Backend    string `gorm:"size:10;not null" json:"backend"`
	UploadedBy *uint  `json:"uploaded_by,omitempty"`
	// Data holds the blob for the database backend only.
	Data []byte `json:"-"`
}
