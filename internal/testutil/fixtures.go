package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
)

// LongContent 超过生成阈值的章节正文
var LongContent = "<h1>Chapter</h1><p>" + strings.Repeat("Light travels in straight lines. ", 12) + "</p>"

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := time.Now().UnixNano()
	user := &model.User{
		Name:         fmt.Sprintf("student_%d", n%10000),
		Email:        fmt.Sprintf("test_%d@example.com", n),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Class:        "10",
		Role:         model.RoleStudent,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithName 设置用户名
func WithName(name string) func(*model.User) {
	return func(u *model.User) {
		u.Name = name
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithPoints 设置积分
func WithPoints(points int) func(*model.User) {
	return func(u *model.User) {
		u.Points = points
	}
}

// TestSubject 创建测试科目
func TestSubject(t *testing.T, db *gorm.DB, name string) *model.Subject {
	t.Helper()

	subject := &model.Subject{Name: name, Class: "10"}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("Failed to create test subject: %v", err)
	}

	return subject
}

// TestChapter 创建测试章节（默认无正文）
func TestChapter(t *testing.T, db *gorm.DB, subjectID int64, opts ...func(*model.Chapter)) *model.Chapter {
	t.Helper()

	chapter := &model.Chapter{
		SubjectID:     subjectID,
		ChapterNumber: 1,
		Title:         fmt.Sprintf("Chapter %d", time.Now().UnixNano()%10000),
		Difficulty:    "medium",
		EstimatedTime: 30,
	}

	for _, opt := range opts {
		opt(chapter)
	}

	if err := db.Create(chapter).Error; err != nil {
		t.Fatalf("Failed to create test chapter: %v", err)
	}

	return chapter
}

// WithContent 设置章节正文
func WithContent(content string) func(*model.Chapter) {
	return func(c *model.Chapter) {
		c.Content = content
	}
}

// WithTitle 设置章节标题
func WithTitle(title string) func(*model.Chapter) {
	return func(c *model.Chapter) {
		c.Title = title
	}
}

// WithNumber 设置章节序号
func WithNumber(n int) func(*model.Chapter) {
	return func(c *model.Chapter) {
		c.ChapterNumber = n
	}
}

// TestQuestions 生成 n 道题，正确答案依次为 0,1,2,3,0...
func TestQuestions(n int) []model.Question {
	questions := make([]model.Question, n)
	for i := range questions {
		questions[i] = model.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: i % 4,
			Explanation:   fmt.Sprintf("Because %d", i+1),
			Points:        model.DefaultQuestionPoints,
		}
	}
	return questions
}

// TestQuiz 创建测试测验并关联到章节
func TestQuiz(t *testing.T, db *gorm.DB, chapter *model.Chapter, questions []model.Question, opts ...func(*model.Quiz)) *model.Quiz {
	t.Helper()

	quiz := &model.Quiz{
		Title:     "Quiz: " + chapter.Title,
		ChapterID: &chapter.ID,
		SubjectID: &chapter.SubjectID,
		Questions: questions,
		TimeLimit: model.DefaultQuizTimeLimit,
	}

	for _, opt := range opts {
		opt(quiz)
	}

	if err := db.Create(quiz).Error; err != nil {
		t.Fatalf("Failed to create test quiz: %v", err)
	}

	if err := db.Model(&model.Chapter{}).Where("id = ?", chapter.ID).Update("quiz_id", quiz.ID).Error; err != nil {
		t.Fatalf("Failed to link test quiz: %v", err)
	}
	chapter.QuizID = &quiz.ID

	return quiz
}

// WithDailyChallenge 设置为某天的每日挑战
func WithDailyChallenge(day time.Time) func(*model.Quiz) {
	return func(q *model.Quiz) {
		q.IsDailyChallenge = true
		q.ChallengeDate = &day
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, status string, expiry time.Time) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		UserID:        userID,
		PlanType:      model.PlanMonthly,
		PaymentStatus: status,
		ExpiryDate:    expiry,
		Amount:        1000,
		Currency:      "INR",
		OrderID:       fmt.Sprintf("order_test_%d", userID),
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}
