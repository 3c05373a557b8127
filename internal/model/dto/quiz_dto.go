package dto

// QuestionView 去掉答案与解析后的题目
type QuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// QuizView 下发给客户端的测验（不含答案）
type QuizView struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	ChapterID        *int64         `json:"chapterId,omitempty"`
	SubjectID        *int64         `json:"subjectId,omitempty"`
	Questions        []QuestionView `json:"questions"`
	TimeLimit        int            `json:"timeLimit"`
	TotalPoints      int            `json:"totalPoints"`
	Difficulty       string         `json:"difficulty"`
	IsDailyChallenge bool           `json:"isDailyChallenge"`
}

// SubmitQuizRequest 提交答案，answers 的 key 可以是题目 ID 或从 0 开始的题号
type SubmitQuizRequest struct {
	Answers   map[string]int `json:"answers" binding:"required"`
	TimeTaken int            `json:"timeTaken" binding:"gte=0"`
}

// QuestionResult 单题批改结果
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    *int   `json:"userAnswer"`
	CorrectAnswer int    `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// ScoreReport 批改结果
type ScoreReport struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalPoints    int              `json:"totalPoints"`
	TimeTaken      int              `json:"timeTaken"`
	Results        []QuestionResult `json:"results"`
}

// SubmitQuizResponse 提交答案响应
type SubmitQuizResponse struct {
	ScoreReport
	BestScore int `json:"bestScore"`
}
