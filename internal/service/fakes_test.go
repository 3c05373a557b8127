package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/pkg/lock"
	"github.com/qs3c/edu_go_server/internal/pkg/payment"
	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
)

var errGeneratorDown = errors.New("generator unavailable")

// fakeGenerator 记录调用次数，respond 决定返回内容
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	delay   time.Duration
	respond func(call int, prompt string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.respond(n, prompt)
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func staticGenerator(text string) *fakeGenerator {
	return &fakeGenerator{respond: func(int, string) (string, error) { return text, nil }}
}

func failingGenerator() *fakeGenerator {
	return &fakeGenerator{respond: func(int, string) (string, error) { return "", errGeneratorDown }}
}

// fakeChatter 记录最近一次对话请求
type fakeChatter struct {
	mu      sync.Mutex
	calls   int
	system  string
	history []generator.ChatMessage
	message string
	reply   string
	err     error
}

func (f *fakeChatter) Chat(ctx context.Context, system string, history []generator.ChatMessage, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.system = system
	f.history = history
	f.message = message
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// generatedHTML 超过阈值的章节正文
func generatedHTML(title string) string {
	return "<h1>" + title + "</h1><p>" + strings.Repeat("Generated explanation of the chapter. ", 10) + "</p>"
}

// quizJSON 模拟生成器返回的测验文本，答案依次为 A,B,C...
func quizJSON(n int) string {
	items := make([]map[string]interface{}, n)
	for i := range items {
		items[i] = map[string]interface{}{
			"question":      fmt.Sprintf("Generated question %d?", i+1),
			"options":       []string{"w", "x", "y", "z"},
			"correctAnswer": string(rune('A' + i%4)),
			"explanation":   fmt.Sprintf("Explanation %d", i+1),
		}
	}
	data, _ := json.Marshal(items)
	return "Here is your quiz:\n```json\n" + string(data) + "\n```"
}

type fakeGateway struct {
	mu     sync.Mutex
	err    error
	orders []*payment.OrderRequest
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req *payment.OrderRequest) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	g.orders = append(g.orders, req)
	return &payment.Order{
		ID:       fmt.Sprintf("order_%d", len(g.orders)),
		Amount:   req.Amount,
		Currency: req.Currency,
	}, nil
}

func (g *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []*pubsub.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*pubsub.Event(nil), p.events...)
}

func testConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "test_secret",
			Currency:  "INR",
			Plans:     config.DefaultPlans,
		},
		Generator: config.GeneratorConfig{
			QuizQuestions: 3,
		},
		Materialize: config.MaterializeConfig{
			LockTTLSeconds:  30,
			LockWaitSeconds: 5,
		},
		Pregen: config.PregenConfig{
			MaxAttempts:      3,
			InitialBackoffMs: 1,
			MaxBackoffMs:     5,
		},
	}
}

func setupLocker(t *testing.T) *lock.Locker {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return lock.NewLocker(client, 30*time.Second)
}
