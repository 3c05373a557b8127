package model

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID             int64       `gorm:"primaryKey" json:"id"`
	Name           string      `gorm:"size:100;not null" json:"name"`
	Email          string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash   string      `gorm:"size:255" json:"-"`
	Class          string      `gorm:"size:10;default:10" json:"class"`
	Role           string      `gorm:"size:20;default:student;index" json:"role"` // student, admin
	Points         int         `gorm:"default:0;index" json:"points"`
	Streak         int         `gorm:"default:0" json:"streak"`
	Badges         StringArray `gorm:"type:json" json:"badges,omitempty"`
	LastActiveDate *time.Time  `json:"last_active_date,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
