package model

import (
	"time"
)

type Subject struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"size:20" json:"icon,omitempty"`
	Color       string    `gorm:"size:20" json:"color,omitempty"`
	Class       string    `gorm:"size:10;default:10" json:"class"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Subject) TableName() string {
	return "subjects"
}
