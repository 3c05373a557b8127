package model

import (
	"time"
)

// MinContentLength 内容长度必须超过该值才视为已生成
const MinContentLength = 200

type Chapter struct {
	ID            int64       `gorm:"primaryKey" json:"id"`
	SubjectID     int64       `gorm:"not null;index" json:"subject_id"`
	ChapterNumber int         `gorm:"not null" json:"chapter_number"`
	Title         string      `gorm:"size:200;not null" json:"title"`
	Content       string      `gorm:"type:text" json:"content"`
	Summary       string      `gorm:"type:text" json:"summary,omitempty"`
	Keywords      StringArray `gorm:"type:json" json:"keywords,omitempty"`
	Difficulty    string      `gorm:"size:10;default:medium" json:"difficulty"` // easy, medium, hard
	EstimatedTime int         `gorm:"default:30" json:"estimated_time"`         // 分钟
	QuizID        *int64      `gorm:"index" json:"quiz_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Quiz    *Quiz    `gorm:"foreignKey:QuizID" json:"-"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// HasContent 内容是否已生成
func (c *Chapter) HasContent() bool {
	return len(c.Content) > MinContentLength
}

// SubjectName 所属科目名称，未加载时返回占位
func (c *Chapter) SubjectName() string {
	if c.Subject != nil && c.Subject.Name != "" {
		return c.Subject.Name
	}
	return "Unknown Subject"
}
