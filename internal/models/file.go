package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is a per-user working instance of a template. Its document carries the
// canonical shape {template: {id, code, version}, data: {...}} where template
// is a point-in-time snapshot of the originating template's identity.
type File struct {
	ID           string     `json:"id" gorm:"type:uuid;primarykey"`
	Code         string     `json:"code" gorm:"uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"not null"`
	OwnerID      string     `json:"owner_id" gorm:"type:uuid;not null;index"`
	TemplateID   string     `json:"template_id" gorm:"type:uuid;not null"`
	IsPublic     bool       `json:"is_public" gorm:"not null;default:false"`
	ShareToken   string     `json:"share_token" gorm:"uniqueIndex;not null"`
	ShareEnabled bool       `json:"share_enabled" gorm:"not null;default:true"`
	Document     JSONDoc    `json:"document" gorm:"column:file_json;not null"`
	SizeBytes    int64      `json:"size_bytes" gorm:"not null;default:0"`
	LastOpenedAt *time.Time `json:"last_opened_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the File model
func (File) TableName() string {
	return "files"
}

// BeforeCreate assigns a UUID primary key when none is set
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether the user owns the file or is an administrator.
func (f *File) OwnedBy(u *User) bool {
	return u.IsAdmin || f.OwnerID == u.ID
}
