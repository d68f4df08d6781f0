package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account, local or Google-backed
type User struct {
	ID           string     `json:"id" gorm:"type:uuid;primarykey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	FullName     string     `json:"full_name,omitempty" gorm:"size:255"`
	AvatarURL    string     `json:"avatar_url,omitempty" gorm:"size:512"`
	GoogleSub    *string    `json:"google_sub,omitempty" gorm:"uniqueIndex"`
	Provider     string     `json:"provider" gorm:"size:50;not null;default:'local'"`
	IsAdmin      bool       `json:"is_admin" gorm:"not null;default:false"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
