package repository

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetByUserAndChapter 获取进度（带答题记录）
func (r *ProgressRepository) GetByUserAndChapter(userID, chapterID int64) (*model.Progress, error) {
	var progress model.Progress
	err := r.db.Preload("Attempts", func(db *gorm.DB) *gorm.DB {
		return db.Order("attempted_at ASC").Order("id ASC")
	}).Where("user_id = ? AND chapter_id = ?", userID, chapterID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// createOrUpdate 先插入；命中 (user, chapter) 唯一索引时改为执行 update
func (r *ProgressRepository) createOrUpdate(row *model.Progress, update map[string]interface{}) error {
	err := r.db.Create(row).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if len(update) == 0 {
		return nil
	}
	return r.db.Model(&model.Progress{}).
		Where("user_id = ? AND chapter_id = ?", row.UserID, row.ChapterID).
		Updates(update).Error
}

// Touch 创建或更新最近访问时间
func (r *ProgressRepository) Touch(userID, chapterID, subjectID int64, now time.Time) (*model.Progress, error) {
	row := &model.Progress{
		UserID:       userID,
		ChapterID:    chapterID,
		SubjectID:    subjectID,
		LastAccessed: now,
	}
	if err := r.createOrUpdate(row, map[string]interface{}{"last_accessed": now}); err != nil {
		return nil, err
	}
	return r.GetByUserAndChapter(userID, chapterID)
}

// MarkCompleted 创建或标记为已完成
func (r *ProgressRepository) MarkCompleted(userID, chapterID, subjectID int64, now time.Time) (*model.Progress, error) {
	row := &model.Progress{
		UserID:       userID,
		ChapterID:    chapterID,
		SubjectID:    subjectID,
		Completed:    true,
		CompletedAt:  &now,
		LastAccessed: now,
	}
	update := map[string]interface{}{
		"completed":    true,
		"completed_at": now,
	}
	if err := r.createOrUpdate(row, update); err != nil {
		return nil, err
	}
	return r.GetByUserAndChapter(userID, chapterID)
}

// RecordAttempt 追加一次答题记录，并以条件更新的方式提升 best_score，返回最新 best_score
func (r *ProgressRepository) RecordAttempt(userID, chapterID, subjectID int64, attempt *model.QuizAttempt) (int, error) {
	row := &model.Progress{
		UserID:       userID,
		ChapterID:    chapterID,
		SubjectID:    subjectID,
		LastAccessed: attempt.AttemptedAt,
	}
	if err := r.createOrUpdate(row, nil); err != nil {
		return 0, err
	}

	var bestScore int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var progressID int64
		err := tx.Model(&model.Progress{}).
			Where("user_id = ? AND chapter_id = ?", userID, chapterID).
			Select("id").Scan(&progressID).Error
		if err != nil {
			return err
		}

		attempt.ProgressID = progressID
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		// compare-and-set：只有更高的分数才会写入
		err = tx.Model(&model.Progress{}).
			Where("id = ? AND best_score < ?", progressID, attempt.Score).
			Update("best_score", attempt.Score).Error
		if err != nil {
			return err
		}

		return tx.Model(&model.Progress{}).Where("id = ?", progressID).
			Select("best_score").Scan(&bestScore).Error
	})
	return bestScore, err
}

// ListByUser 用户全部进度，按最近访问倒序
func (r *ProgressRepository) ListByUser(userID int64) ([]*model.Progress, error) {
	var list []*model.Progress
	err := r.db.Preload("Attempts").Preload("Chapter").
		Where("user_id = ?", userID).
		Order("last_accessed DESC").
		Find(&list).Error
	return list, err
}

// ListBySubject 用户在某科目下的进度，按章节序号排序
func (r *ProgressRepository) ListBySubject(userID, subjectID int64) ([]*model.Progress, error) {
	var list []*model.Progress
	err := r.db.Preload("Attempts").Preload("Chapter").
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i, j int) bool {
		return chapterNumber(list[i]) < chapterNumber(list[j])
	})
	return list, nil
}

// ListByChapters 用户在给定章节上的进度，按章节 ID 索引
func (r *ProgressRepository) ListByChapters(userID int64, chapterIDs []int64) (map[int64]*model.Progress, error) {
	result := make(map[int64]*model.Progress)
	if len(chapterIDs) == 0 {
		return result, nil
	}

	var list []*model.Progress
	err := r.db.Preload("Attempts").
		Where("user_id = ? AND chapter_id IN ?", userID, chapterIDs).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	for _, p := range list {
		result[p.ChapterID] = p
	}
	return result, nil
}

func chapterNumber(p *model.Progress) int {
	if p.Chapter == nil {
		return 0
	}
	return p.Chapter.ChapterNumber
}
