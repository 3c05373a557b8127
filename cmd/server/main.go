package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/api"
	"github.com/qs3c/edu_go_server/internal/api/handler"
	"github.com/qs3c/edu_go_server/internal/database"
	"github.com/qs3c/edu_go_server/internal/pkg/cron"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/pkg/lock"
	"github.com/qs3c/edu_go_server/internal/pkg/payment"
	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
	"github.com/qs3c/edu_go_server/internal/pkg/ws"
	"github.com/qs3c/edu_go_server/internal/repository"
	"github.com/qs3c/edu_go_server/internal/service"
)

func main() {
	ctx := context.Background()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Printf("Database connected (%s)", cfg.Database.Driver)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// Redis 可选：不可用时不加锁，事件在本进程内投递
	var (
		locker    *lock.Locker
		publisher service.EventPublisher = wsHub
	)
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, running without materialization locks: %v", err)
	} else {
		log.Println("Redis connected")
		locker = lock.NewLocker(rdb, time.Duration(cfg.Materialize.LockTTLSeconds)*time.Second)
		publisher = pubsub.NewPublisher(rdb)

		subscriber := pubsub.NewSubscriber(rdb)
		go func() {
			if err := subscriber.Subscribe(ctx, wsHub.Deliver); err != nil {
				log.Printf("Learning event subscription stopped: %v", err)
			}
		}()
	}

	// 外部依赖
	gen, err := generator.NewGeminiClient(ctx, cfg.Generator.APIKey, cfg.Generator.Model,
		time.Duration(cfg.Generator.TimeoutSeconds)*time.Second)
	if err != nil {
		log.Fatalf("Failed to create generator client: %v", err)
	}
	gateway := payment.NewRazorpayGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// 初始化 Service
	accessService := service.NewAccessService(subRepo)
	subscriptionService := service.NewSubscriptionService(subRepo)
	paymentService := service.NewPaymentService(subRepo, gateway, publisher, cfg)
	contentService := service.NewContentService(chapterRepo, gen, locker, cfg)
	quizService := service.NewQuizService(quizRepo, chapterRepo, gen, locker, cfg)
	progressService := service.NewProgressService(progressRepo, chapterRepo, publisher)
	chapterService := service.NewChapterService(chapterRepo, progressRepo, contentService, quizService, progressService)
	gradingService := service.NewGradingService(quizRepo, chapterRepo, progressRepo, userRepo, publisher)
	leaderboardService := service.NewLeaderboardService(userRepo)
	chatService := service.NewChatService(chapterRepo, gen)

	// 定时补齐缺失正文
	cronService := cron.NewService(contentService,
		time.Duration(cfg.Pregen.ScheduleMinutes)*time.Minute, cfg.Pregen.BatchLimit)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, paymentService)
	chapterHandler := handler.NewChapterHandler(chapterService, progressService)
	quizHandler := handler.NewQuizHandler(quizService, gradingService)
	progressHandler := handler.NewProgressHandler(progressService, leaderboardService)
	chatHandler := handler.NewChatHandler(chatService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins)

	// 初始化 Router
	router := api.NewRouter(
		subscriptionHandler,
		chapterHandler,
		quizHandler,
		progressHandler,
		chatHandler,
		websocketHandler,
		accessService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
