package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/api/middleware"
	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/pkg/payment"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type testContext struct {
	DB *gorm.DB
}

func mockAuth(userID int64) gin.HandlerFunc {
	return mockAuthWithRole(userID, model.RoleStudent)
}

func mockAuthWithRole(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object: %#v", resp.Data)
	return data
}

func testConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "handler_test_secret",
			Currency:  "INR",
			Plans:     config.DefaultPlans,
		},
		Generator: config.GeneratorConfig{
			QuizQuestions: 2,
		},
	}
}

// stubGenerator 按提示词返回正文或测验 JSON
type stubGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(prompt, "multiple-choice") {
		return `[{"question":"Q1?","options":["a","b","c","d"],"correctAnswer":"B","explanation":"e1"},` +
			`{"question":"Q2?","options":["a","b","c","d"],"correctAnswer":2,"explanation":"e2"}]`, nil
	}
	if strings.Contains(prompt, "bullet") {
		return "<ul><li>One</li><li>Two</li></ul>", nil
	}
	return "<h1>Generated</h1><p>" + strings.Repeat("Generated chapter text. ", 15) + "</p>", nil
}

// Chat 回显最后一条提问，system 含章节时附带章节标记
func (g *stubGenerator) Chat(ctx context.Context, system string, history []generator.ChatMessage, message string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.err != nil {
		return "", g.err
	}
	reply := fmt.Sprintf("turns=%d answer to: %s", len(history), message)
	if strings.Contains(system, "Chapter:") {
		reply += " (with chapter)"
	}
	return reply, nil
}

type stubGateway struct {
	mu    sync.Mutex
	count int
	err   error
}

func (g *stubGateway) CreateOrder(ctx context.Context, req *payment.OrderRequest) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	g.count++
	return &payment.Order{ID: fmt.Sprintf("order_h%d", g.count), Amount: req.Amount, Currency: req.Currency}, nil
}

func (g *stubGateway) KeyID() string {
	return "rzp_test_key"
}
