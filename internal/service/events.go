package service

import (
	"context"
	"log"

	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
)

// EventPublisher 学习事件发布
type EventPublisher interface {
	Publish(ctx context.Context, ev *pubsub.Event) error
}

// publishEvent 事件推送失败不影响主流程
func publishEvent(ctx context.Context, p EventPublisher, ev *pubsub.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("Failed to publish %s event for user %d: %v", ev.Type, ev.UserID, err)
	}
}
