package dto

import "github.com/qs3c/edu_go_server/internal/model"

// ChapterListItem 科目下的章节列表项
type ChapterListItem struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ChapterNumber int    `json:"chapterNumber"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime int    `json:"estimatedTime"`
	PreviewText   string `json:"previewText"`
	ProgressState string `json:"progressState"`
}

// ChapterDetail 章节详情
type ChapterDetail struct {
	Chapter        *model.Chapter  `json:"chapter"`
	ContentPending bool            `json:"contentPending"`
	Quiz           *QuizView       `json:"quiz,omitempty"`
	Progress       *model.Progress `json:"progress"`
}

// SummaryResponse 章节摘要
type SummaryResponse struct {
	Summary string `json:"summary"`
}
