package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
	"github.com/qs3c/edu_go_server/internal/repository"
	"github.com/qs3c/edu_go_server/internal/testutil"
)

func TestStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stats := Stats(nil)
		assert.Equal(t, 0, stats.TotalChapters)
		assert.Equal(t, 0, stats.AverageScore)
	})

	t.Run("aggregates rows", func(t *testing.T) {
		list := []*model.Progress{
			{Completed: true, BestScore: 80, Attempts: make([]model.QuizAttempt, 2)},
			{Completed: false, BestScore: 67, Attempts: make([]model.QuizAttempt, 1)},
			{Completed: true, BestScore: 0},
		}

		stats := Stats(list)
		assert.Equal(t, 3, stats.TotalChapters)
		assert.Equal(t, 2, stats.CompletedChapters)
		assert.Equal(t, 3, stats.TotalQuizzes)
		assert.Equal(t, 49, stats.AverageScore) // 147/3 = 49
	})

	t.Run("average rounds half up", func(t *testing.T) {
		list := []*model.Progress{{BestScore: 50}, {BestScore: 51}}
		assert.Equal(t, 51, Stats(list).AverageScore) // 50.5
	})
}

func TestProgressService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	publisher := &recordingPublisher{}
	svc := NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewChapterRepository(db),
		publisher,
	)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user := testutil.TestUser(t, db)
	science := testutil.TestSubject(t, db, "Science")
	maths := testutil.TestSubject(t, db, "Mathematics")
	ch1 := testutil.TestChapter(t, db, science.ID, testutil.WithNumber(2))
	ch2 := testutil.TestChapter(t, db, science.ID, testutil.WithNumber(1))
	ch3 := testutil.TestChapter(t, db, maths.ID, testutil.WithNumber(1))

	t.Run("touch creates then updates", func(t *testing.T) {
		p, err := svc.Touch(user.ID, ch1)
		require.NoError(t, err)
		assert.Equal(t, model.ProgressNotStarted, p.State())

		now = now.Add(time.Hour)
		p2, err := svc.Touch(user.ID, ch1)
		require.NoError(t, err)
		assert.Equal(t, p.ID, p2.ID)
		assert.True(t, p2.LastAccessed.Equal(now))
	})

	t.Run("mark completed without prior row", func(t *testing.T) {
		p, err := svc.MarkCompleted(context.Background(), user.ID, ch2.ID)
		require.NoError(t, err)
		assert.True(t, p.Completed)
		require.NotNil(t, p.CompletedAt)
		assert.Equal(t, model.ProgressCompleted, p.State())

		events := publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, pubsub.EventChapterCompleted, events[0].Type)
		assert.Equal(t, ch2.ID, events[0].ChapterID)
	})

	t.Run("mark completed unknown chapter", func(t *testing.T) {
		_, err := svc.MarkCompleted(context.Background(), user.ID, 9999)
		assert.ErrorIs(t, err, ErrChapterNotFound)
	})

	t.Run("overview", func(t *testing.T) {
		_, err := svc.Touch(user.ID, ch3)
		require.NoError(t, err)

		overview, err := svc.Overview(user.ID)
		require.NoError(t, err)
		assert.Len(t, overview.Progress, 3)
		assert.Equal(t, 3, overview.Stats.TotalChapters)
		assert.Equal(t, 1, overview.Stats.CompletedChapters)
	})

	t.Run("list by subject ordered by chapter number", func(t *testing.T) {
		list, err := svc.ListBySubject(user.ID, science.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ch2.ID, list[0].ChapterID)
		assert.Equal(t, ch1.ID, list[1].ChapterID)
	})

	t.Run("empty overview for new user", func(t *testing.T) {
		other := testutil.TestUser(t, db)
		overview, err := svc.Overview(other.ID)
		require.NoError(t, err)
		assert.NotNil(t, overview.Progress)
		assert.Empty(t, overview.Progress)
	})
}
