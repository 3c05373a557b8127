package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
)

type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) GetByID(id int64) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.Where("id = ?", id).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) GetByChapterID(chapterID int64) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.Where("chapter_id = ?", chapterID).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// CreateForChapter 创建测验并回写章节的 quiz_id，两侧在同一事务内完成
func (r *QuizRepository) CreateForChapter(quiz *model.Quiz, chapterID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		quiz.ChapterID = &chapterID
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		return tx.Model(&model.Chapter{}).Where("id = ?", chapterID).Update("quiz_id", quiz.ID).Error
	})
}

// ReplaceQuestions 替换题目，TotalPoints 由 BeforeSave 重新计算
func (r *QuizRepository) ReplaceQuestions(quiz *model.Quiz, questions []model.Question) error {
	quiz.Questions = questions
	return r.db.Save(quiz).Error
}

// GetDailyChallenge 获取 [dayStart, dayStart+24h) 内的每日挑战
func (r *QuizRepository) GetDailyChallenge(dayStart time.Time) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.Where("is_daily_challenge = ? AND challenge_date >= ? AND challenge_date < ?",
		true, dayStart, dayStart.Add(24*time.Hour)).
		Order("challenge_date ASC").
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}
