package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultQuestionPoints = 10
	DefaultQuizTimeLimit  = 600 // 秒
)

// Question 单选题，CorrectAnswer 为从 0 开始的选项下标
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
}

// PointValue 题目分值，未设置时为默认值
func (q Question) PointValue() int {
	if q.Points <= 0 {
		return DefaultQuestionPoints
	}
	return q.Points
}

type Quiz struct {
	ID               int64                         `gorm:"primaryKey" json:"id"`
	Title            string                        `gorm:"size:200;not null" json:"title"`
	ChapterID        *int64                        `gorm:"uniqueIndex" json:"chapter_id,omitempty"`
	SubjectID        *int64                        `gorm:"index" json:"subject_id,omitempty"`
	Questions        datatypes.JSONSlice[Question] `json:"questions"`
	TimeLimit        int                           `gorm:"default:0" json:"time_limit"` // 秒，0 表示不限时
	TotalPoints      int                           `gorm:"default:0" json:"total_points"`
	Difficulty       string                        `gorm:"size:10;default:medium" json:"difficulty"`
	IsDailyChallenge bool                          `gorm:"default:false;index" json:"is_daily_challenge"`
	ChallengeDate    *time.Time                    `gorm:"index" json:"challenge_date,omitempty"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// BeforeSave 持久化前补齐题目 ID 并重新计算总分
func (q *Quiz) BeforeSave(tx *gorm.DB) error {
	q.Normalize()
	return nil
}

// Normalize 补齐题目 ID 与分值，并由题目重新计算 TotalPoints
func (q *Quiz) Normalize() {
	total := 0
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = uuid.NewString()
		}
		if q.Questions[i].Points <= 0 {
			q.Questions[i].Points = DefaultQuestionPoints
		}
		total += q.Questions[i].Points
	}
	q.TotalPoints = total
}
