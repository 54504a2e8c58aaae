package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a sales account allowed to manage proposals.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"-"` // Never include in JSON responses
	// TOTPSecret enables the authenticator second factor when set.
	TOTPSecret string `json:"-" gorm:"column:totp_secret"`

	Active      bool       `gorm:"default:true" json:"active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) TOTPEnabled() bool {
	return u.TOTPSecret != ""
}
