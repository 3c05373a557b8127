package model

import (
	"time"
)

const (
	ProgressNotStarted = "Not Started"
	ProgressInProgress = "In Progress"
	ProgressCompleted  = "Completed"
)

// Progress 每个 (user, chapter) 唯一一行，由存储层唯一索引保证
type Progress struct {
	ID           int64         `gorm:"primaryKey" json:"id"`
	UserID       int64         `gorm:"not null;uniqueIndex:idx_progress_user_chapter" json:"user_id"`
	ChapterID    int64         `gorm:"not null;uniqueIndex:idx_progress_user_chapter" json:"chapter_id"`
	SubjectID    int64         `gorm:"not null;index" json:"subject_id"`
	Completed    bool          `gorm:"default:false" json:"completed"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	BestScore    int           `gorm:"default:0" json:"best_score"`
	LastAccessed time.Time     `gorm:"index" json:"last_accessed"`
	Attempts     []QuizAttempt `gorm:"foreignKey:ProgressID" json:"quiz_attempts"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// 关联
	Chapter *Chapter `gorm:"foreignKey:ChapterID" json:"chapter,omitempty"`
}

func (Progress) TableName() string {
	return "progress"
}

// State 由 completed 与答题记录推导的进度状态
func (p *Progress) State() string {
	if p == nil {
		return ProgressNotStarted
	}
	if p.Completed {
		return ProgressCompleted
	}
	if len(p.Attempts) > 0 {
		return ProgressInProgress
	}
	return ProgressNotStarted
}

// QuizAttempt 只追加的答题记录
type QuizAttempt struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ProgressID     int64     `gorm:"not null;index" json:"-"`
	QuizID         int64     `gorm:"not null;index" json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	TimeTaken      int       `json:"time_taken"` // 秒
	AttemptedAt    time.Time `gorm:"index" json:"attempted_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
