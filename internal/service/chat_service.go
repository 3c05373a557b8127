package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/repository"
)

// 只保留最近的若干轮历史
const maxChatHistory = 20

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrChatFailed   = errors.New("failed to get AI response")
)

type ChatService struct {
	chapterRepo *repository.ChapterRepository
	chatter     generator.Chatter
}

func NewChatService(chapterRepo *repository.ChapterRepository, chatter generator.Chatter) *ChatService {
	return &ChatService{
		chapterRepo: chapterRepo,
		chatter:     chatter,
	}
}

// Ask 答疑；指定章节时附带章节开头作为上下文，章节不存在则忽略
func (s *ChatService) Ask(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	system, err := s.instruction(req.ChapterID)
	if err != nil {
		return nil, err
	}

	reply, err := s.chatter.Chat(ctx, system, chatHistory(req.History), message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatFailed, err)
	}

	return &dto.ChatResponse{Response: reply}, nil
}

func (s *ChatService) instruction(chapterID int64) (string, error) {
	if chapterID <= 0 {
		return generator.TutorInstruction("", ""), nil
	}

	chapter, err := s.chapterRepo.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Chat context chapter %d not found, answering without it", chapterID)
			return generator.TutorInstruction("", ""), nil
		}
		return "", err
	}

	return generator.TutorInstruction(chapter.Title, generator.StripMarkup(chapter.Content)), nil
}

func chatHistory(turns []dto.ChatTurn) []generator.ChatMessage {
	if len(turns) > maxChatHistory {
		turns = turns[len(turns)-maxChatHistory:]
	}

	history := make([]generator.ChatMessage, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := generator.RoleModel
		if t.Role == generator.RoleUser {
			role = generator.RoleUser
		}
		history = append(history, generator.ChatMessage{Role: role, Content: content})
	}
	return history
}
