package models

import (
	"time"
)

const (
	RoleAdministrator = "administrator"
	RoleUser          = "user"
)

// User model
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string `gorm:"size:255;not null;unique"`
	HashedPassword []byte `gorm:"not null"`
	Role           string `gorm:"size:32;not null;default:user"`
}
