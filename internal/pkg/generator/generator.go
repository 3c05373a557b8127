package generator

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ErrEmptyResponse = errors.New("generator returned empty response")

// 送入生成器的正文上限（字符）
const (
	QuizSourceLimit    = 3000
	SummarySourceLimit = 2000
	ChatContextLimit   = 1000
)

// 对话角色
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Generator 文本生成器：prompt 入，文本出
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatMessage 对话历史中的一条
type ChatMessage struct {
	Role    string
	Content string
}

// Chatter 带历史的多轮对话
type Chatter interface {
	Chat(ctx context.Context, system string, history []ChatMessage, message string) (string, error)
}

var (
	fencePattern      = regexp.MustCompile("(?i)```[a-z]*\\n?")
	whitespacePattern = regexp.MustCompile(`\s+`)
	strictPolicy      = newStrictPolicy()
)

func newStrictPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	// 块级标签之间补空格，避免相邻段落粘连
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// ChapterPrompt 章节正文生成提示词，要求纯 HTML 输出
func ChapterPrompt(subjectName, chapterTitle string) string {
	return fmt.Sprintf(`You are an expert Class 10 educator. Write a comprehensive, engaging chapter explanation.

Subject: %s
Chapter: %s

Requirements:
- 800-1500 words of educational content
- Use only HTML tags, no markdown and no code blocks
- Start with <h1>%s</h1>, then <h2> sections: Introduction, Key Concepts, Detailed Explanations, Solved Examples, Real-life Applications, Summary
- Use <p>, <ul>/<li>, <strong>, <em>, <blockquote> and <table> where appropriate

Return only the HTML content.`, subjectName, chapterTitle, chapterTitle)
}

// QuizPrompt 测验生成提示词，正文需先去除标记
func QuizPrompt(text string, count int) string {
	return fmt.Sprintf(`Based on this chapter:

%s

Generate %d multiple-choice questions.

Format in JSON:
[
  {
    "question": "...",
    "options": ["A", "B", "C", "D"],
    "correctAnswer": "A",
    "explanation": "..."
  }
]

Important:
- correctAnswer must be the letter (A, B, C or D) of the correct option
- Each question must have exactly 4 options
- Include an explanation for each answer
- Return only a valid JSON array, no other text`, Truncate(text, QuizSourceLimit), count)
}

// SummaryPrompt 五条要点摘要提示词
func SummaryPrompt(content string) string {
	return fmt.Sprintf("Generate a short summary (5 bullet points) for this chapter content. Format as HTML with <ul> and <li> tags:\n\n%s",
		Truncate(content, SummarySourceLimit))
}

// TutorInstruction 答疑助手的系统指令，chapterContext 为空时不附带章节
func TutorInstruction(chapterTitle, chapterText string) string {
	instruction := "You are a helpful AI tutor for Class 10 CBSE students. Answer their questions clearly and concisely."
	if chapterTitle == "" {
		return instruction
	}
	return fmt.Sprintf("%s\n\nContext:\nChapter: %s\nContent: %s",
		instruction, chapterTitle, Truncate(chapterText, ChatContextLimit))
}

// CleanHTML 去除代码块围栏和首个标签前的说明文字
func CleanHTML(raw, title string) string {
	out := fencePattern.ReplaceAllString(raw, "")
	out = strings.ReplaceAll(out, "```", "")
	out = strings.TrimSpace(out)

	if idx := strings.Index(out, "<"); idx > 0 {
		out = out[idx:]
	} else if idx < 0 && out != "" {
		out = fmt.Sprintf("<h1>%s</h1>\n%s", html.EscapeString(title), out)
	}

	return strings.TrimSpace(out)
}

// StripMarkup HTML 转纯文本
func StripMarkup(content string) string {
	text := strictPolicy.Sanitize(content)
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate 按字符截断
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
