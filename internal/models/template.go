package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template visibility values
const (
	VisibilityPrivate = "private"
	VisibilityShared  = "shared"
	VisibilityPublic  = "public"
)

// Template is an immutable-versioned document definition that files are
// instantiated from. Templates are deactivated, never deleted, so file
// provenance stays resolvable.
type Template struct {
	ID             string    `json:"id" gorm:"type:uuid;primarykey"`
	Code           string    `json:"code" gorm:"uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"not null"`
	Description    string    `json:"description,omitempty"`
	Document       JSONDoc   `json:"document" gorm:"column:template_json;not null"`
	Version        int       `json:"version" gorm:"not null;default:1"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	IsUserTemplate bool      `json:"is_user_template" gorm:"not null;default:false"`
	OwnerID        *string   `json:"owner_id,omitempty" gorm:"type:uuid"`
	Visibility     string    `json:"visibility" gorm:"not null;default:'private'"`
	CreatedBy      *string   `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Template model
func (Template) TableName() string {
	return "templates"
}

// BeforeCreate assigns a UUID primary key when none is set
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// VisibleTo reports whether a template may be instantiated by the given user.
func (t *Template) VisibleTo(u *User) bool {
	if u.IsAdmin {
		return true
	}
	if t.Visibility == VisibilityPublic || t.Visibility == VisibilityShared {
		return true
	}
	return t.OwnerID != nil && *t.OwnerID == u.ID
}
