package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/api/middleware"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
	"github.com/qs3c/edu_go_server/internal/service"
)

type ChapterHandler struct {
	chapterService  *service.ChapterService
	progressService *service.ProgressService
}

func NewChapterHandler(chapterService *service.ChapterService, progressService *service.ProgressService) *ChapterHandler {
	return &ChapterHandler{
		chapterService:  chapterService,
		progressService: progressService,
	}
}

// ListBySubject 科目章节列表
// GET /api/v1/chapters/subject/:subjectId
func (h *ChapterHandler) ListBySubject(c *gin.Context) {
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

	items, err := h.chapterService.ListBySubject(userID, subjectID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

// Get 阅读章节，正文缺失时按需生成
// GET /api/v1/chapters/:id
func (h *ChapterHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	chapterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid chapter id")
		return
	}

	detail, err := h.chapterService.GetChapter(c.Request.Context(), userID, chapterID)
	if err != nil {
		if errors.Is(err, service.ErrChapterNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		log.Printf("Get chapter %d failed: %v", chapterID, err)
		response.ServerError(c, "")
		return
	}

	response.Success(c, detail)
}

// Complete 标记章节完成
// POST /api/v1/chapters/:id/complete
func (h *ChapterHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	chapterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid chapter id")
		return
	}

	progress, err := h.progressService.MarkCompleted(c.Request.Context(), userID, chapterID)
	if err != nil {
		if errors.Is(err, service.ErrChapterNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "chapter marked as completed", progress)
}

// GenerateQuiz 重新生成章节测验
// POST /api/v1/chapters/:id/generate-quiz
func (h *ChapterHandler) GenerateQuiz(c *gin.Context) {
	chapterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid chapter id")
		return
	}

	quiz, err := h.chapterService.GenerateQuiz(c.Request.Context(), chapterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChapterNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrContentUnavailable):
			response.Error(c, response.CodeContentUnavailable, "")
		case errors.Is(err, service.ErrQuizGenerationFailed):
			response.Error(c, response.CodeGenerationFailed, "")
		default:
			log.Printf("Generate quiz for chapter %d failed: %v", chapterID, err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, quiz)
}

// GenerateSummary 生成章节摘要
// POST /api/v1/chapters/:id/generate-summary
func (h *ChapterHandler) GenerateSummary(c *gin.Context) {
	chapterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid chapter id")
		return
	}

	summary, err := h.chapterService.GenerateSummary(c.Request.Context(), chapterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChapterNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrContentUnavailable):
			response.Error(c, response.CodeContentUnavailable, "")
		case errors.Is(err, service.ErrSummaryGenerationFailed):
			response.Error(c, response.CodeGenerationFailed, "failed to generate summary")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, summary)
}
