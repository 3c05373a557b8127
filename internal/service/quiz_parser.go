package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/qs3c/edu_go_server/internal/model"
)

var (
	ErrNoJSONArray  = errors.New("no JSON array found in generator output")
	ErrNoQuestions  = errors.New("generator output contains no questions")
	placeholderOpts = []string{"Option A", "Option B", "Option C", "Option D"}
)

const (
	optionCount        = 4
	defaultExplanation = "No explanation provided"
)

type rawQuestion struct {
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Points        json.RawMessage `json:"points"`
}

// ParseQuestions 从生成器的自由文本中解析题目
// 容忍前后说明文字与代码块围栏，只取第一个顶层 [...] 片段
func ParseQuestions(raw string) ([]model.Question, error) {
	span, ok := extractJSONArray(raw)
	if !ok {
		return nil, ErrNoJSONArray
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]model.Question, 0, len(items))
	for i, item := range items {
		q := model.Question{
			Question:      strings.TrimSpace(item.Question),
			Options:       parseOptions(item.Options),
			CorrectAnswer: parseAnswerIndex(item.CorrectAnswer),
			Explanation:   strings.TrimSpace(item.Explanation),
			Points:        parsePoints(item.Points),
		}
		if q.Question == "" {
			q.Question = fmt.Sprintf("Question %d", i+1)
		}
		if q.Explanation == "" {
			q.Explanation = defaultExplanation
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// extractJSONArray 找到第一个 '[' 及与之配对的 ']'，跳过字符串内的括号
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// parseAnswerIndex 字母 A-D 映射为 0-3；数字需在 [0,3]；其余情况为 0
func parseAnswerIndex(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var letter string
	if err := json.Unmarshal(raw, &letter); err == nil {
		switch strings.ToUpper(strings.TrimSpace(letter)) {
		case "A":
			return 0
		case "B":
			return 1
		case "C":
			return 2
		case "D":
			return 3
		}
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == math.Trunc(n) && n >= 0 && n < optionCount {
			return int(n)
		}
	}
	return 0
}

// parseOptions 必须恰好 4 个非空字符串，否则使用占位选项
func parseOptions(raw json.RawMessage) []string {
	var opts []string
	if err := json.Unmarshal(raw, &opts); err != nil || len(opts) != optionCount {
		return append([]string(nil), placeholderOpts...)
	}
	for _, o := range opts {
		if strings.TrimSpace(o) == "" {
			return append([]string(nil), placeholderOpts...)
		}
	}
	return opts
}

func parsePoints(raw json.RawMessage) int {
	var n float64
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n < 1 {
		return model.DefaultQuestionPoints
	}
	return int(n)
}
