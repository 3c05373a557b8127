package dto

// ChatTurn 前端保存的对话历史，role 为 user 或 model
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 答疑请求，chapterId 可选
type ChatRequest struct {
	Message   string     `json:"message"`
	ChapterID int64      `json:"chapterId"`
	History   []ChatTurn `json:"history"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
