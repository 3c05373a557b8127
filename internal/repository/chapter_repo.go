package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
)

type ChapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

func (r *ChapterRepository) Create(chapter *model.Chapter) error {
	return r.db.Create(chapter).Error
}

// GetByID 获取章节（带科目）
func (r *ChapterRepository) GetByID(id int64) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.db.Preload("Subject").Where("id = ?", id).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListBySubject 按章节序号列出科目下所有章节
func (r *ChapterRepository) ListBySubject(subjectID int64) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	err := r.db.Where("subject_id = ?", subjectID).
		Order("chapter_number ASC").
		Find(&chapters).Error
	return chapters, err
}

// ListNeedingContent 列出正文缺失或过短的章节
func (r *ChapterRepository) ListNeedingContent(subjectID int64, limit int) ([]*model.Chapter, error) {
	query := r.db.Preload("Subject").
		Where("content IS NULL OR LENGTH(content) <= ?", model.MinContentLength)
	if subjectID > 0 {
		query = query.Where("subject_id = ?", subjectID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var chapters []*model.Chapter
	err := query.Order("subject_id ASC").Order("chapter_number ASC").Find(&chapters).Error
	return chapters, err
}

// UpdateContent 覆盖写入正文
func (r *ChapterRepository) UpdateContent(id int64, content string) error {
	return r.db.Model(&model.Chapter{}).Where("id = ?", id).Update("content", content).Error
}

// UpdateSummary 写入摘要
func (r *ChapterRepository) UpdateSummary(id int64, summary string) error {
	return r.db.Model(&model.Chapter{}).Where("id = ?", id).Update("summary", summary).Error
}
