package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
	"github.com/qs3c/edu_go_server/internal/repository"
)

var ErrEmptyQuiz = errors.New("quiz has no questions")

type GradingService struct {
	quizRepo     *repository.QuizRepository
	chapterRepo  *repository.ChapterRepository
	progressRepo *repository.ProgressRepository
	userRepo     *repository.UserRepository
	publisher    EventPublisher
	now          func() time.Time
}

func NewGradingService(
	quizRepo *repository.QuizRepository,
	chapterRepo *repository.ChapterRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	publisher EventPublisher,
) *GradingService {
	return &GradingService{
		quizRepo:     quizRepo,
		chapterRepo:  chapterRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		publisher:    publisher,
		now:          time.Now,
	}
}

// Grade 批改答案，无副作用
// 每题先按题目 ID 取答案，取不到再按从 0 开始的题号取
func Grade(quiz *model.Quiz, answers map[string]int, timeTaken int) *dto.ScoreReport {
	report := &dto.ScoreReport{
		TotalQuestions: len(quiz.Questions),
		TimeTaken:      timeTaken,
		Results:        make([]dto.QuestionResult, 0, len(quiz.Questions)),
	}

	for i, q := range quiz.Questions {
		answer, ok := answers[q.ID]
		if !ok || q.ID == "" {
			answer, ok = answers[strconv.Itoa(i)]
		}

		result := dto.QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if ok {
			a := answer
			result.UserAnswer = &a
			result.IsCorrect = a == q.CorrectAnswer
		}

		if result.IsCorrect {
			report.CorrectAnswers++
			report.TotalPoints += q.PointValue()
		}
		report.Results = append(report.Results, result)
	}

	report.Score = roundPercent(report.CorrectAnswers, report.TotalQuestions)
	return report
}

// roundPercent round(n/d*100)，0.5 向上取整
func roundPercent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return (n*200 + d) / (2 * d)
}

// Submit 批改并记录答题、累加积分
func (s *GradingService) Submit(ctx context.Context, userID, quizID int64, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}

	report := Grade(quiz, req.Answers, req.TimeTaken)
	now := s.now()
	bestScore := report.Score

	var chapterID int64
	if quiz.ChapterID != nil {
		chapterID = *quiz.ChapterID
		subjectID := s.subjectFor(quiz)

		bestScore, err = s.progressRepo.RecordAttempt(userID, chapterID, subjectID, &model.QuizAttempt{
			QuizID:         quiz.ID,
			Score:          report.Score,
			TotalQuestions: report.TotalQuestions,
			CorrectAnswers: report.CorrectAnswers,
			TimeTaken:      req.TimeTaken,
			AttemptedAt:    now,
		})
		if err != nil {
			return nil, err
		}
	}

	total, err := s.userRepo.AddPoints(userID, report.TotalPoints)
	if err != nil {
		return nil, err
	}

	log.Printf("User %d scored %d on quiz %d (+%d points, total %d)", userID, report.Score, quiz.ID, report.TotalPoints, total)

	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:         pubsub.EventQuizGraded,
		UserID:       userID,
		ChapterID:    chapterID,
		QuizID:       quiz.ID,
		Score:        report.Score,
		BestScore:    bestScore,
		PointsEarned: report.TotalPoints,
		TotalPoints:  total,
		OccurredAt:   now,
	})

	return &dto.SubmitQuizResponse{
		ScoreReport: *report,
		BestScore:   bestScore,
	}, nil
}

func (s *GradingService) subjectFor(quiz *model.Quiz) int64 {
	if quiz.SubjectID != nil {
		return *quiz.SubjectID
	}
	chapter, err := s.chapterRepo.GetByID(*quiz.ChapterID)
	if err != nil {
		return 0
	}
	return chapter.SubjectID
}
