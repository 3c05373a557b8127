package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/api/middleware"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
	"github.com/qs3c/edu_go_server/internal/service"
)

type QuizHandler struct {
	quizService    *service.QuizService
	gradingService *service.GradingService
}

func NewQuizHandler(quizService *service.QuizService, gradingService *service.GradingService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		gradingService: gradingService,
	}
}

// GetByChapter 章节测验（不含答案）
// GET /api/v1/quizzes/chapter/:chapterId
func (h *QuizHandler) GetByChapter(c *gin.Context) {
	chapterID, err := strconv.ParseInt(c.Param("chapterId"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid chapter id")
		return
	}

	quiz, err := h.quizService.GetByChapter(chapterID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, service.NewQuizView(quiz))
}

// Submit 提交答案并批改
// POST /api/v1/quizzes/:id/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	quizID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid quiz id")
		return
	}

	var req dto.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "answers are required")
		return
	}

	result, err := h.gradingService.Submit(c.Request.Context(), userID, quizID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrEmptyQuiz):
			response.ParamError(c, err.Error())
		default:
			log.Printf("Submit quiz %d failed for user %d: %v", quizID, userID, err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// DailyChallenge 今日挑战
// GET /api/v1/quizzes/daily-challenge
func (h *QuizHandler) DailyChallenge(c *gin.Context) {
	quiz, err := h.quizService.GetDailyChallenge()
	if err != nil {
		if errors.Is(err, service.ErrNoDailyChallenge) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, service.NewQuizView(quiz))
}
