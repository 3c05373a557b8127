package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/api/middleware"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
	"github.com/qs3c/edu_go_server/internal/service"
)

type ProgressHandler struct {
	progressService    *service.ProgressService
	leaderboardService *service.LeaderboardService
}

func NewProgressHandler(progressService *service.ProgressService, leaderboardService *service.LeaderboardService) *ProgressHandler {
	return &ProgressHandler{
		progressService:    progressService,
		leaderboardService: leaderboardService,
	}
}

// Overview 学习进度与统计
// GET /api/v1/progress
func (h *ProgressHandler) Overview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	overview, err := h.progressService.Overview(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, overview)
}

// BySubject 科目进度
// GET /api/v1/progress/subject/:subjectId
func (h *ProgressHandler) BySubject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	subjectID, err := strconv.ParseInt(c.Param("subjectId"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid subject id")
		return
	}

	list, err := h.progressService.ListBySubject(userID, subjectID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, list)
}

// Leaderboard 排行榜
// GET /api/v1/leaderboard?type=points|streak&limit=50
func (h *ProgressHandler) Leaderboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultLeaderboardLimit)))

	entries, err := h.leaderboardService.List(userID, c.DefaultQuery("type", "points"), limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, entries)
}
