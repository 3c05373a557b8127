package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/pkg/lock"
	"github.com/qs3c/edu_go_server/internal/repository"
)

var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizGenerationFailed = errors.New("failed to generate quiz")
	ErrNoDailyChallenge     = errors.New("no daily challenge available")
)

const defaultQuizQuestions = 10

type QuizService struct {
	quizRepo    *repository.QuizRepository
	chapterRepo *repository.ChapterRepository
	gen         generator.Generator
	locker      *lock.Locker
	cfg         *config.Config
	now         func() time.Time
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	chapterRepo *repository.ChapterRepository,
	gen generator.Generator,
	locker *lock.Locker,
	cfg *config.Config,
) *QuizService {
	return &QuizService{
		quizRepo:    quizRepo,
		chapterRepo: chapterRepo,
		gen:         gen,
		locker:      locker,
		cfg:         cfg,
		now:         time.Now,
	}
}

// EnsureQuiz 章节已关联测验时直接返回，否则根据正文生成
func (s *QuizService) EnsureQuiz(ctx context.Context, chapter *model.Chapter) (*model.Quiz, error) {
	if quiz, err := s.findForChapter(chapter); err != nil || quiz != nil {
		return quiz, err
	}

	if s.locker == nil {
		return s.create(ctx, chapter)
	}

	key := lock.ChapterKey(chapter.ID, "quiz")
	l, err := s.locker.TryAcquire(ctx, key)
	switch {
	case err == nil:
		defer l.Release(context.Background())

		if quiz, err := s.findForChapter(chapter); err != nil || quiz != nil {
			return quiz, err
		}
		return s.create(ctx, chapter)

	case errors.Is(err, lock.ErrNotAcquired):
		if err := s.locker.Wait(ctx, key, durationMs(s.cfg.Materialize.LockWaitSeconds*1000, 150*time.Second)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuizGenerationFailed, err)
		}
		quiz, err := s.findForChapter(chapter)
		if err != nil {
			return nil, err
		}
		if quiz == nil {
			return nil, ErrQuizGenerationFailed
		}
		return quiz, nil

	default:
		log.Printf("Quiz lock unavailable for chapter %d, generating unlocked: %v", chapter.ID, err)
		return s.create(ctx, chapter)
	}
}

// RegenerateQuiz 重新生成题目；已有测验时原地替换，不产生重复测验
func (s *QuizService) RegenerateQuiz(ctx context.Context, chapterID int64) (*model.Quiz, error) {
	chapter, err := s.chapterRepo.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	existing, err := s.findForChapter(chapter)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.EnsureQuiz(ctx, chapter)
	}

	questions, err := s.generateQuestions(ctx, chapter)
	if err != nil {
		return nil, err
	}

	if err := s.quizRepo.ReplaceQuestions(existing, questions); err != nil {
		return nil, err
	}

	log.Printf("Quiz %d regenerated for chapter %d (%d questions)", existing.ID, chapter.ID, len(questions))
	return existing, nil
}

// GetByChapter 获取章节测验，不触发生成
func (s *QuizService) GetByChapter(chapterID int64) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByChapterID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// GetDailyChallenge 当天（本地时区 00:00 至 24:00）的每日挑战
func (s *QuizService) GetDailyChallenge() (*model.Quiz, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	quiz, err := s.quizRepo.GetDailyChallenge(dayStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDailyChallenge
		}
		return nil, err
	}
	return quiz, nil
}

// findForChapter 按章节关联或 chapter_id 查找测验，不存在时返回 nil, nil
func (s *QuizService) findForChapter(chapter *model.Chapter) (*model.Quiz, error) {
	if chapter.QuizID != nil {
		quiz, err := s.quizRepo.GetByID(*chapter.QuizID)
		if err == nil {
			return quiz, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	quiz, err := s.quizRepo.GetByChapterID(chapter.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) create(ctx context.Context, chapter *model.Chapter) (*model.Quiz, error) {
	questions, err := s.generateQuestions(ctx, chapter)
	if err != nil {
		return nil, err
	}

	subjectID := chapter.SubjectID
	quiz := &model.Quiz{
		Title:      "Quiz: " + chapter.Title,
		SubjectID:  &subjectID,
		Questions:  questions,
		TimeLimit:  model.DefaultQuizTimeLimit,
		Difficulty: chapter.Difficulty,
	}

	if err := s.quizRepo.CreateForChapter(quiz, chapter.ID); err != nil {
		// 无锁模式下并发创建，以先写入者为准
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.GetByChapter(chapter.ID)
		}
		return nil, err
	}

	chapter.QuizID = &quiz.ID
	log.Printf("Quiz %d generated for chapter %d (%d questions)", quiz.ID, chapter.ID, len(questions))
	return quiz, nil
}

func (s *QuizService) generateQuestions(ctx context.Context, chapter *model.Chapter) ([]model.Question, error) {
	text := generator.StripMarkup(chapter.Content)
	if text == "" {
		return nil, ErrContentUnavailable
	}

	n := s.cfg.Generator.QuizQuestions
	if n <= 0 {
		n = defaultQuizQuestions
	}

	raw, err := s.gen.Generate(ctx, generator.QuizPrompt(text, n))
	if err != nil {
		log.Printf("Quiz generation failed for chapter %d: %v", chapter.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrQuizGenerationFailed, err)
	}

	questions, err := ParseQuestions(raw)
	if err != nil {
		log.Printf("Quiz parse failed for chapter %d (%d chars): %v", chapter.ID, len(raw), err)
		return nil, fmt.Errorf("%w: %v", ErrQuizGenerationFailed, err)
	}

	return questions, nil
}

// NewQuizView 去掉答案与解析
func NewQuizView(quiz *model.Quiz) *dto.QuizView {
	view := &dto.QuizView{
		ID:               quiz.ID,
		Title:            quiz.Title,
		ChapterID:        quiz.ChapterID,
		SubjectID:        quiz.SubjectID,
		Questions:        make([]dto.QuestionView, 0, len(quiz.Questions)),
		TimeLimit:        quiz.TimeLimit,
		TotalPoints:      quiz.TotalPoints,
		Difficulty:       quiz.Difficulty,
		IsDailyChallenge: quiz.IsDailyChallenge,
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, dto.QuestionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
			Points:   q.PointValue(),
		})
	}
	return view
}
