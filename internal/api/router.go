package api

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/api/handler"
	"github.com/qs3c/edu_go_server/internal/api/middleware"
	"github.com/qs3c/edu_go_server/internal/service"
)

type Router struct {
	subscriptionHandler *handler.SubscriptionHandler
	chapterHandler      *handler.ChapterHandler
	quizHandler         *handler.QuizHandler
	progressHandler     *handler.ProgressHandler
	chatHandler         *handler.ChatHandler
	websocketHandler    *handler.WebSocketHandler
	accessService       *service.AccessService
	cfg                 *config.Config
}

func NewRouter(
	subscriptionHandler *handler.SubscriptionHandler,
	chapterHandler *handler.ChapterHandler,
	quizHandler *handler.QuizHandler,
	progressHandler *handler.ProgressHandler,
	chatHandler *handler.ChatHandler,
	websocketHandler *handler.WebSocketHandler,
	accessService *service.AccessService,
	cfg *config.Config,
) *Router {
	return &Router{
		subscriptionHandler: subscriptionHandler,
		chapterHandler:      chapterHandler,
		quizHandler:         quizHandler,
		progressHandler:     progressHandler,
		chatHandler:         chatHandler,
		websocketHandler:    websocketHandler,
		accessService:       accessService,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handler.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket，token 通过 query 传递
		api.GET("/ws", r.websocketHandler.Handle)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))

		requireSubscription := middleware.RequireSubscription(r.accessService)

		// 订阅与支付
		subscription := authenticated.Group("/subscription")
		{
			subscription.GET("/current", r.subscriptionHandler.Current)
			subscription.GET("/status", r.subscriptionHandler.Status)
			subscription.POST("/create-order", r.subscriptionHandler.CreateOrder)
			subscription.POST("/verify-payment", r.subscriptionHandler.VerifyPayment)
			subscription.POST("/payment-failed", r.subscriptionHandler.PaymentFailed)
		}

		// 章节
		chapters := authenticated.Group("/chapters")
		{
			chapters.GET("/subject/:subjectId", r.chapterHandler.ListBySubject)
			chapters.GET("/:id", requireSubscription, r.chapterHandler.Get)
			chapters.POST("/:id/complete", r.chapterHandler.Complete)
			chapters.POST("/:id/generate-quiz", r.chapterHandler.GenerateQuiz)
			chapters.POST("/:id/generate-summary", r.chapterHandler.GenerateSummary)
		}

		// 测验
		quizzes := authenticated.Group("/quizzes")
		{
			quizzes.GET("/chapter/:chapterId", requireSubscription, r.quizHandler.GetByChapter)
			quizzes.GET("/daily-challenge", r.quizHandler.DailyChallenge)
			quizzes.POST("/:id/submit", r.quizHandler.Submit)
		}

		// 进度与排行
		progress := authenticated.Group("/progress")
		{
			progress.GET("", r.progressHandler.Overview)
			progress.GET("/subject/:subjectId", r.progressHandler.BySubject)
		}
		authenticated.GET("/leaderboard", r.progressHandler.Leaderboard)

		// AI 答疑
		authenticated.POST("/ai/chat", r.chatHandler.Chat)
	}

	return engine
}
