package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
	"github.com/qs3c/edu_go_server/internal/repository"
)

type ProgressService struct {
	progressRepo *repository.ProgressRepository
	chapterRepo  *repository.ChapterRepository
	publisher    EventPublisher
	now          func() time.Time
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	chapterRepo *repository.ChapterRepository,
	publisher EventPublisher,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		chapterRepo:  chapterRepo,
		publisher:    publisher,
		now:          time.Now,
	}
}

// Touch 记录章节访问
func (s *ProgressService) Touch(userID int64, chapter *model.Chapter) (*model.Progress, error) {
	return s.progressRepo.Touch(userID, chapter.ID, chapter.SubjectID, s.now())
}

// MarkCompleted 标记章节完成，无需先答题
func (s *ProgressService) MarkCompleted(ctx context.Context, userID, chapterID int64) (*model.Progress, error) {
	chapter, err := s.chapterRepo.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	now := s.now()
	progress, err := s.progressRepo.MarkCompleted(userID, chapter.ID, chapter.SubjectID, now)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:       pubsub.EventChapterCompleted,
		UserID:     userID,
		ChapterID:  chapter.ID,
		OccurredAt: now,
	})

	return progress, nil
}

// Overview 全部进度与统计
func (s *ProgressService) Overview(userID int64) (*dto.ProgressOverview, error) {
	list, err := s.progressRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*model.Progress{}
	}

	return &dto.ProgressOverview{
		Progress: list,
		Stats:    Stats(list),
	}, nil
}

// ListBySubject 科目下的进度
func (s *ProgressService) ListBySubject(userID, subjectID int64) ([]*model.Progress, error) {
	list, err := s.progressRepo.ListBySubject(userID, subjectID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*model.Progress{}
	}
	return list, nil
}

// Stats 汇总：访问过的章节数、已完成数、答题总次数、best_score 均值（四舍五入）
func Stats(list []*model.Progress) dto.ProgressStats {
	stats := dto.ProgressStats{TotalChapters: len(list)}
	if len(list) == 0 {
		return stats
	}

	sum := 0
	for _, p := range list {
		if p.Completed {
			stats.CompletedChapters++
		}
		stats.TotalQuizzes += len(p.Attempts)
		sum += p.BestScore
	}
	stats.AverageScore = roundPercent(sum, len(list)*100)

	return stats
}
