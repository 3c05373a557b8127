package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/database"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/pkg/lock"
	"github.com/qs3c/edu_go_server/internal/repository"
	"github.com/qs3c/edu_go_server/internal/service"
)

var (
	subjectID = flag.Int64("subject", 0, "Only generate chapters of this subject (0 = all subjects)")
	limit     = flag.Int("limit", 0, "Maximum number of chapters to generate (0 = no limit)")
)

func main() {
	flag.Parse()

	log.Println("📚 Starting chapter content pregeneration...")
	log.Printf("Scope: subject=%d limit=%d", *subjectID, *limit)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 与在线服务共用锁，避免同一章节被重复生成
	var locker *lock.Locker
	if rdb, err := database.NewRedis(&cfg.Redis); err != nil {
		log.Printf("Redis unavailable, generating without locks: %v", err)
	} else {
		defer rdb.Close()
		locker = lock.NewLocker(rdb, time.Duration(cfg.Materialize.LockTTLSeconds)*time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := generator.NewGeminiClient(ctx, cfg.Generator.APIKey, cfg.Generator.Model,
		time.Duration(cfg.Generator.TimeoutSeconds)*time.Second)
	if err != nil {
		log.Fatalf("Failed to create generator client: %v", err)
	}

	contentService := service.NewContentService(repository.NewChapterRepository(db), gen, locker, cfg)

	report, err := contentService.Pregenerate(ctx, service.PregenOptions{
		SubjectID: *subjectID,
		Limit:     *limit,
	})
	if report == nil {
		log.Fatalf("Pregeneration failed: %v", err)
	}

	// 输出统计
	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Pregeneration Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Total chapters: %d", report.Total)
	log.Printf("Succeeded: %d", report.Succeeded)
	log.Printf("Failed: %d", report.Failed)
	log.Printf("Skipped (locked): %d", report.Skipped)
	for _, f := range report.Failures {
		log.Printf("  - chapter %d %q: %s", f.ChapterID, f.Title, f.Error)
	}
	if err != nil {
		log.Printf("\n⚠️  Interrupted: %v", err)
	} else if report.Failed == 0 {
		log.Println("\n✅ Pregeneration completed!")
	}
	log.Println(strings.Repeat("=", 60))

	if err != nil || report.Failed > 0 {
		os.Exit(1)
	}
}
