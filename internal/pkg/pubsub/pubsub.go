package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelLearningEvents = "learning_events"
)

// 事件类型
const (
	EventQuizGraded            = "quiz_graded"
	EventChapterCompleted      = "chapter_completed"
	EventSubscriptionActivated = "subscription_activated"
)

// Event 学习事件
type Event struct {
	Type         string     `json:"type"`
	UserID       int64      `json:"user_id"`
	ChapterID    int64      `json:"chapter_id,omitempty"`
	QuizID       int64      `json:"quiz_id,omitempty"`
	Score        int        `json:"score,omitempty"`
	BestScore    int        `json:"best_score,omitempty"`
	PointsEarned int        `json:"points_earned,omitempty"`
	TotalPoints  int        `json:"total_points,omitempty"`
	PlanType     string     `json:"plan_type,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Message      string     `json:"message,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// 事件类型对应的默认消息
var EventMessages = map[string]string{
	EventQuizGraded:            "Quiz graded",
	EventChapterCompleted:      "Chapter completed",
	EventSubscriptionActivated: "Subscription activated",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布学习事件
func (p *Publisher) Publish(ctx context.Context, ev *Event) error {
	fillDefaults(ev)

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Publish(ctx, ChannelLearningEvents, data).Err()
}

func fillDefaults(ev *Event) {
	if ev.Message == "" {
		if message, ok := EventMessages[ev.Type]; ok {
			ev.Message = message
		}
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅学习事件，阻塞直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Event)) error {
	sub := s.client.Subscribe(ctx, ChannelLearningEvents)
	defer sub.Close()

	// 确认订阅建立后再消费
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelLearningEvents, err)
	}

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue // 忽略解析错误
			}

			handler(&ev)
		}
	}
}
