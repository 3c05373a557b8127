package dto

import "github.com/qs3c/edu_go_server/internal/model"

// ProgressStats 用户学习统计
type ProgressStats struct {
	TotalChapters     int `json:"totalChapters"`
	CompletedChapters int `json:"completedChapters"`
	TotalQuizzes      int `json:"totalQuizzes"`
	AverageScore      int `json:"averageScore"`
}

// ProgressOverview 进度列表 + 统计
type ProgressOverview struct {
	Progress []*model.Progress `json:"progress"`
	Stats    ProgressStats     `json:"stats"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank          int      `json:"rank"`
	Name          string   `json:"name"`
	Points        int      `json:"points"`
	Streak        int      `json:"streak"`
	Badges        []string `json:"badges"`
	IsCurrentUser bool     `json:"isCurrentUser"`
}
