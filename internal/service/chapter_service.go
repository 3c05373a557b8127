package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/repository"
)

const previewLength = 100

type ChapterService struct {
	chapterRepo  *repository.ChapterRepository
	progressRepo *repository.ProgressRepository
	content      *ContentService
	quizzes      *QuizService
	progress     *ProgressService
}

func NewChapterService(
	chapterRepo *repository.ChapterRepository,
	progressRepo *repository.ProgressRepository,
	content *ContentService,
	quizzes *QuizService,
	progress *ProgressService,
) *ChapterService {
	return &ChapterService{
		chapterRepo:  chapterRepo,
		progressRepo: progressRepo,
		content:      content,
		quizzes:      quizzes,
		progress:     progress,
	}
}

// ListBySubject 科目章节列表，附预览文字与进度状态
func (s *ChapterService) ListBySubject(userID, subjectID int64) ([]dto.ChapterListItem, error) {
	chapters, err := s.chapterRepo.ListBySubject(subjectID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(chapters))
	for _, c := range chapters {
		ids = append(ids, c.ID)
	}
	progress, err := s.progressRepo.ListByChapters(userID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ChapterListItem, 0, len(chapters))
	for _, c := range chapters {
		items = append(items, dto.ChapterListItem{
			ID:            c.ID,
			Title:         c.Title,
			ChapterNumber: c.ChapterNumber,
			Difficulty:    c.Difficulty,
			EstimatedTime: c.EstimatedTime,
			PreviewText:   PreviewText(c.Content),
			ProgressState: progress[c.ID].State(),
		})
	}
	return items, nil
}

// PreviewText 去标记后的前 100 个字符
func PreviewText(content string) string {
	return generator.Truncate(generator.StripMarkup(content), previewLength) + "..."
}

// GetChapter 阅读章节：按需生成正文，尽力生成测验，记录访问
func (s *ChapterService) GetChapter(ctx context.Context, userID, chapterID int64) (*dto.ChapterDetail, error) {
	chapter, err := s.chapterRepo.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	chapter = s.content.EnsureContent(ctx, chapter)
	detail := &dto.ChapterDetail{
		Chapter:        chapter,
		ContentPending: !chapter.HasContent(),
	}

	if chapter.HasContent() {
		quiz, err := s.quizzes.EnsureQuiz(ctx, chapter)
		if err != nil {
			log.Printf("Quiz unavailable for chapter %d: %v", chapter.ID, err)
		} else {
			detail.Quiz = NewQuizView(quiz)
		}
	}

	progress, err := s.progress.Touch(userID, chapter)
	if err != nil {
		return nil, err
	}
	detail.Progress = progress

	return detail, nil
}

// GenerateQuiz 强制重新生成测验
func (s *ChapterService) GenerateQuiz(ctx context.Context, chapterID int64) (*dto.QuizView, error) {
	quiz, err := s.quizzes.RegenerateQuiz(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	return NewQuizView(quiz), nil
}

// GenerateSummary 生成章节摘要
func (s *ChapterService) GenerateSummary(ctx context.Context, chapterID int64) (*dto.SummaryResponse, error) {
	return s.content.GenerateSummary(ctx, chapterID)
}
