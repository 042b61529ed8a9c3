package models

import (
	"time"

	"gorm.io/gorm"
)

// User account table
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // primary key
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // email
	PasswordHash string         `gorm:"not null" json:"-"`                 // password hash (never returned)
	DisplayName  string         `gorm:"default:''" json:"display_name"`    // display name
	Status       string         `gorm:"default:'active'" json:"status"`    // account status
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`           // created time
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`           // updated time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                    // soft delete time
}

// TableName table name
func (User) TableName() string {
	return "users"
}
