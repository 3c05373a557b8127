package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/repository"
	"github.com/qs3c/edu_go_server/internal/testutil"
)

func setupChatService(t *testing.T, chatter *fakeChatter) (*ChatService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewChatService(repository.NewChapterRepository(db), chatter)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return svc, db, cleanup
}

func TestChatService_Ask(t *testing.T) {
	t.Run("answers without chapter context", func(t *testing.T) {
		chatter := &fakeChatter{reply: "Light bends when it changes medium."}
		svc, _, cleanup := setupChatService(t, chatter)
		defer cleanup()

		resp, err := svc.Ask(context.Background(), &dto.ChatRequest{Message: "  What is refraction?  "})
		require.NoError(t, err)

		assert.Equal(t, "Light bends when it changes medium.", resp.Response)
		assert.Equal(t, "What is refraction?", chatter.message)
		assert.Equal(t, generator.TutorInstruction("", ""), chatter.system)
		assert.Empty(t, chatter.history)
	})

	t.Run("chapter context is stripped and truncated", func(t *testing.T) {
		chatter := &fakeChatter{reply: "ok"}
		svc, db, cleanup := setupChatService(t, chatter)
		defer cleanup()

		subject := testutil.TestSubject(t, db, "Science")
		body := "<h1>Light</h1><p>" + strings.Repeat("x", generator.ChatContextLimit) + "END</p>"
		chapter := testutil.TestChapter(t, db, subject.ID,
			testutil.WithTitle("Light - Reflection and Refraction"),
			testutil.WithContent(body))

		_, err := svc.Ask(context.Background(), &dto.ChatRequest{Message: "Explain", ChapterID: chapter.ID})
		require.NoError(t, err)

		assert.Contains(t, chatter.system, "Chapter: Light - Reflection and Refraction")
		assert.NotContains(t, chatter.system, "<h1>")
		assert.NotContains(t, chatter.system, "END")
	})

	t.Run("unknown chapter is ignored", func(t *testing.T) {
		chatter := &fakeChatter{reply: "ok"}
		svc, _, cleanup := setupChatService(t, chatter)
		defer cleanup()

		_, err := svc.Ask(context.Background(), &dto.ChatRequest{Message: "Explain", ChapterID: 9999})
		require.NoError(t, err)
		assert.NotContains(t, chatter.system, "Chapter:")
	})

	t.Run("history roles are normalized and bounded", func(t *testing.T) {
		chatter := &fakeChatter{reply: "ok"}
		svc, _, cleanup := setupChatService(t, chatter)
		defer cleanup()

		turns := []dto.ChatTurn{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "answer"},
			{Role: "user", Content: "   "},
		}
		for i := 0; i < maxChatHistory; i++ {
			turns = append(turns, dto.ChatTurn{Role: "user", Content: fmt.Sprintf("q%d", i)})
		}

		_, err := svc.Ask(context.Background(), &dto.ChatRequest{Message: "next", History: turns[:3]})
		require.NoError(t, err)
		assert.Equal(t, []generator.ChatMessage{
			{Role: generator.RoleUser, Content: "first"},
			{Role: generator.RoleModel, Content: "answer"},
		}, chatter.history)

		_, err = svc.Ask(context.Background(), &dto.ChatRequest{Message: "next", History: turns})
		require.NoError(t, err)
		require.Len(t, chatter.history, maxChatHistory)
		assert.Equal(t, "q0", chatter.history[0].Content)
	})

	t.Run("empty message", func(t *testing.T) {
		chatter := &fakeChatter{reply: "ok"}
		svc, _, cleanup := setupChatService(t, chatter)
		defer cleanup()

		_, err := svc.Ask(context.Background(), &dto.ChatRequest{Message: " \n "})
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Equal(t, 0, chatter.calls)
	})

	t.Run("generator failure", func(t *testing.T) {
		chatter := &fakeChatter{err: errGeneratorDown}
		svc, _, cleanup := setupChatService(t, chatter)
		defer cleanup()

		_, err := svc.Ask(context.Background(), &dto.ChatRequest{Message: "Explain"})
		assert.ErrorIs(t, err, ErrChatFailed)
	})
}
