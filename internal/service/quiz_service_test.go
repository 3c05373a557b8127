package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/pkg/lock"
	"github.com/qs3c/edu_go_server/internal/repository"
	"github.com/qs3c/edu_go_server/internal/testutil"
)

func setupQuizService(t *testing.T, gen *fakeGenerator, locker *lock.Locker) (*QuizService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewChapterRepository(db),
		gen,
		locker,
		testConfig(),
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return svc, db, cleanup
}

func TestQuizService_EnsureQuiz_Existing(t *testing.T) {
	gen := staticGenerator(quizJSON(3))
	svc, db, cleanup := setupQuizService(t, gen, nil)
	defer cleanup()

	subject := testutil.TestSubject(t, db, "Science")
	chapter := testutil.TestChapter(t, db, subject.ID, testutil.WithContent(testutil.LongContent))
	existing := testutil.TestQuiz(t, db, chapter, testutil.TestQuestions(2))

	quiz, err := svc.EnsureQuiz(context.Background(), chapter)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, quiz.ID)
	assert.Equal(t, 0, gen.Calls())
}

func TestQuizService_EnsureQuiz_Generates(t *testing.T) {
	gen := staticGenerator(quizJSON(3))
	svc, db, cleanup := setupQuizService(t, gen, nil)
	defer cleanup()

	subject := testutil.TestSubject(t, db, "Science")
	chapter := testutil.TestChapter(t, db, subject.ID,
		testutil.WithTitle("Acids"),
		testutil.WithContent(testutil.LongContent))

	quiz, err := svc.EnsureQuiz(context.Background(), chapter)
	require.NoError(t, err)

	assert.Equal(t, "Quiz: Acids", quiz.Title)
	assert.Equal(t, model.DefaultQuizTimeLimit, quiz.TimeLimit)
	assert.Equal(t, 30, quiz.TotalPoints)
	require.Len(t, quiz.Questions, 3)
	assert.Equal(t, 0, quiz.Questions[0].CorrectAnswer)
	assert.Equal(t, 1, quiz.Questions[1].CorrectAnswer)
	assert.Equal(t, 2, quiz.Questions[2].CorrectAnswer)
	for _, q := range quiz.Questions {
		assert.NotEmpty(t, q.ID)
	}

	// 生成的提示词不含 HTML 标签
	assert.NotContains(t, gen.prompts[0], "<p>")
	assert.Contains(t, gen.prompts[0], "Generate 3 multiple-choice questions")

	// 两侧关联均已持久化
	var stored model.Chapter
	require.NoError(t, db.First(&stored, chapter.ID).Error)
	require.NotNil(t, stored.QuizID)
	assert.Equal(t, quiz.ID, *stored.QuizID)
	require.NotNil(t, quiz.ChapterID)
	assert.Equal(t, chapter.ID, *quiz.ChapterID)

	again, err := svc.EnsureQuiz(context.Background(), &stored)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, again.ID)
	assert.Equal(t, 1, gen.Calls())
}

func TestQuizService_EnsureQuiz_Errors(t *testing.T) {
	t.Run("content unavailable", func(t *testing.T) {
		gen := staticGenerator(quizJSON(3))
		svc, db, cleanup := setupQuizService(t, gen, nil)
		defer cleanup()

		subject := testutil.TestSubject(t, db, "Science")
		chapter := testutil.TestChapter(t, db, subject.ID)

		_, err := svc.EnsureQuiz(context.Background(), chapter)
		assert.ErrorIs(t, err, ErrContentUnavailable)
		assert.Equal(t, 0, gen.Calls())
	})

	t.Run("generator failure", func(t *testing.T) {
		svc, db, cleanup := setupQuizService(t, failingGenerator(), nil)
		defer cleanup()

		subject := testutil.TestSubject(t, db, "Science")
		chapter := testutil.TestChapter(t, db, subject.ID, testutil.WithContent(testutil.LongContent))

		_, err := svc.EnsureQuiz(context.Background(), chapter)
		assert.ErrorIs(t, err, ErrQuizGenerationFailed)
	})

	t.Run("unparseable output is not persisted", func(t *testing.T) {
		svc, db, cleanup := setupQuizService(t, staticGenerator("Sorry, I cannot help with that."), nil)
		defer cleanup()

		subject := testutil.TestSubject(t, db, "Science")
		chapter := testutil.TestChapter(t, db, subject.ID, testutil.WithContent(testutil.LongContent))

		_, err := svc.EnsureQuiz(context.Background(), chapter)
		assert.ErrorIs(t, err, ErrQuizGenerationFailed)

		var count int64
		db.Model(&model.Quiz{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestQuizService_EnsureQuiz_Concurrent(t *testing.T) {
	gen := staticGenerator(quizJSON(3))
	gen.delay = 200 * time.Millisecond
	svc, db, cleanup := setupQuizService(t, gen, setupLocker(t))
	defer cleanup()

	subject := testutil.TestSubject(t, db, "Science")
	chapter := testutil.TestChapter(t, db, subject.ID, testutil.WithContent(testutil.LongContent))

	ids := make([]int64, 3)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := *chapter
			quiz, err := svc.EnsureQuiz(context.Background(), &c)
			if err == nil {
				ids[i] = quiz.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, gen.Calls())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
		assert.NotZero(t, id)
	}

	var count int64
	db.Model(&model.Quiz{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestQuizService_RegenerateQuiz(t *testing.T) {
	gen := staticGenerator(quizJSON(4))
	svc, db, cleanup := setupQuizService(t, gen, nil)
	defer cleanup()

	subject := testutil.TestSubject(t, db, "Science")
	chapter := testutil.TestChapter(t, db, subject.ID, testutil.WithContent(testutil.LongContent))
	existing := testutil.TestQuiz(t, db, chapter, testutil.TestQuestions(2))

	t.Run("replaces questions in place", func(t *testing.T) {
		quiz, err := svc.RegenerateQuiz(context.Background(), chapter.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, quiz.ID)
		assert.Len(t, quiz.Questions, 4)
		assert.Equal(t, 40, quiz.TotalPoints)

		var count int64
		db.Model(&model.Quiz{}).Count(&count)
		assert.Equal(t, int64(1), count)

		stored, err := svc.GetByChapter(chapter.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, stored.TotalPoints)
		assert.Equal(t, "Generated question 1?", stored.Questions[0].Question)
	})

	t.Run("creates when missing", func(t *testing.T) {
		other := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(2), testutil.WithContent(testutil.LongContent))

		quiz, err := svc.RegenerateQuiz(context.Background(), other.ID)
		require.NoError(t, err)
		require.NotNil(t, quiz.ChapterID)
		assert.Equal(t, other.ID, *quiz.ChapterID)
	})

	t.Run("chapter not found", func(t *testing.T) {
		_, err := svc.RegenerateQuiz(context.Background(), 9999)
		assert.ErrorIs(t, err, ErrChapterNotFound)
	})
}

func TestQuizService_GetDailyChallenge(t *testing.T) {
	svc, db, cleanup := setupQuizService(t, staticGenerator(""), nil)
	defer cleanup()

	now := time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.GetDailyChallenge()
	assert.ErrorIs(t, err, ErrNoDailyChallenge)

	subject := testutil.TestSubject(t, db, "Science")
	yesterday := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(1))
	today := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(2))
	testutil.TestQuiz(t, db, yesterday, testutil.TestQuestions(2), testutil.WithDailyChallenge(now.AddDate(0, 0, -1)))
	want := testutil.TestQuiz(t, db, today, testutil.TestQuestions(2), testutil.WithDailyChallenge(now.Add(-6*time.Hour)))

	quiz, err := svc.GetDailyChallenge()
	require.NoError(t, err)
	assert.Equal(t, want.ID, quiz.ID)
}

func TestNewQuizView_StripsAnswers(t *testing.T) {
	quiz := &model.Quiz{
		ID:        1,
		Title:     "Quiz",
		Questions: testutil.TestQuestions(2),
	}

	view := NewQuizView(quiz)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, "q1", view.Questions[0].ID)
	assert.Equal(t, []string{"A", "B", "C", "D"}, view.Questions[0].Options)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "correct")
	assert.NotContains(t, string(data), "explanation")
	assert.NotContains(t, string(data), "Because")
}
