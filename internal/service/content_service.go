package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/generator"
	"github.com/qs3c/edu_go_server/internal/pkg/lock"
	"github.com/qs3c/edu_go_server/internal/repository"
)

var (
	ErrChapterNotFound         = errors.New("chapter not found")
	ErrContentTooShort         = errors.New("generated content too short")
	ErrContentUnavailable      = errors.New("chapter content is empty")
	ErrSummaryGenerationFailed = errors.New("failed to generate summary")
)

// PregenOptions 批量预生成参数
type PregenOptions struct {
	SubjectID int64 // 0 表示全部科目
	Limit     int   // 0 表示不限
}

// ChapterFailure 单个章节的失败原因
type ChapterFailure struct {
	ChapterID int64  `json:"chapter_id"`
	Title     string `json:"title"`
	Error     string `json:"error"`
}

// BatchReport 批量预生成汇总
type BatchReport struct {
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Failures  []ChapterFailure `json:"failures,omitempty"`
}

type ContentService struct {
	chapterRepo *repository.ChapterRepository
	gen         generator.Generator
	locker      *lock.Locker // 为 nil 时不加锁
	cfg         *config.Config
}

func NewContentService(
	chapterRepo *repository.ChapterRepository,
	gen generator.Generator,
	locker *lock.Locker,
	cfg *config.Config,
) *ContentService {
	return &ContentService{
		chapterRepo: chapterRepo,
		gen:         gen,
		locker:      locker,
		cfg:         cfg,
	}
}

// EnsureContent 首次阅读时生成正文，之后直接复用
// 生成失败不返回错误，调用方按 HasContent 判断是否仍在生成中
func (s *ContentService) EnsureContent(ctx context.Context, chapter *model.Chapter) *model.Chapter {
	if chapter.HasContent() {
		return chapter
	}

	if s.locker == nil {
		s.materialize(ctx, chapter)
		return chapter
	}

	key := lock.ChapterKey(chapter.ID, "content")
	l, err := s.locker.TryAcquire(ctx, key)
	switch {
	case err == nil:
		defer l.Release(context.Background())

		// 拿到锁后重读，其他请求可能刚写完
		if fresh, err := s.chapterRepo.GetByID(chapter.ID); err == nil && fresh.HasContent() {
			return fresh
		}
		s.materialize(ctx, chapter)

	case errors.Is(err, lock.ErrNotAcquired):
		if err := s.locker.Wait(ctx, key, s.lockWait()); err != nil {
			log.Printf("Waiting for content of chapter %d: %v", chapter.ID, err)
			return chapter
		}
		if fresh, err := s.chapterRepo.GetByID(chapter.ID); err == nil {
			return fresh
		}

	default:
		log.Printf("Content lock unavailable for chapter %d, generating unlocked: %v", chapter.ID, err)
		s.materialize(ctx, chapter)
	}

	return chapter
}

func (s *ContentService) materialize(ctx context.Context, chapter *model.Chapter) {
	log.Printf("Generating content for chapter %d: %s (%s)", chapter.ID, chapter.Title, chapter.SubjectName())

	if err := s.generate(ctx, chapter); err != nil {
		log.Printf("Content generation failed for chapter %d: %v", chapter.ID, err)
		return
	}

	log.Printf("Content generated for chapter %d (%d chars)", chapter.ID, len(chapter.Content))
}

// generate 调用生成器并覆盖写入正文
func (s *ContentService) generate(ctx context.Context, chapter *model.Chapter) error {
	raw, err := s.gen.Generate(ctx, generator.ChapterPrompt(chapter.SubjectName(), chapter.Title))
	if err != nil {
		return err
	}

	content := generator.CleanHTML(raw, chapter.Title)
	if len(content) <= model.MinContentLength {
		return fmt.Errorf("%w: %d chars", ErrContentTooShort, len(content))
	}

	if err := s.chapterRepo.UpdateContent(chapter.ID, content); err != nil {
		return fmt.Errorf("save content: %w", err)
	}

	chapter.Content = content
	return nil
}

// GenerateSummary 生成五条要点摘要并保存
func (s *ContentService) GenerateSummary(ctx context.Context, chapterID int64) (*dto.SummaryResponse, error) {
	chapter, err := s.chapterRepo.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(chapter.Content) == "" {
		return nil, ErrContentUnavailable
	}

	summary, err := s.gen.Generate(ctx, generator.SummaryPrompt(chapter.Content))
	if err != nil {
		log.Printf("Summary generation failed for chapter %d: %v", chapterID, err)
		return nil, fmt.Errorf("%w: %v", ErrSummaryGenerationFailed, err)
	}
	summary = generator.CleanHTML(summary, chapter.Title)

	if err := s.chapterRepo.UpdateSummary(chapterID, summary); err != nil {
		return nil, err
	}

	return &dto.SummaryResponse{Summary: summary}, nil
}

// Pregenerate 离线批量生成缺失正文，单章失败不影响整体
func (s *ContentService) Pregenerate(ctx context.Context, opts PregenOptions) (*BatchReport, error) {
	chapters, err := s.chapterRepo.ListNeedingContent(opts.SubjectID, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}

	report := &BatchReport{Total: len(chapters)}
	if len(chapters) == 0 {
		return report, nil
	}

	limiter := rate.NewLimiter(s.chapterInterval(), 1)

	for i, chapter := range chapters {
		if err := limiter.Wait(ctx); err != nil {
			return report, err
		}

		log.Printf("[%d/%d] Generating chapter %d: %s (%s)", i+1, len(chapters), chapter.ID, chapter.Title, chapter.SubjectName())

		skipped, err := s.pregenerateOne(ctx, chapter)
		switch {
		case skipped:
			report.Skipped++
			log.Printf("Chapter %d is being generated elsewhere, skipped", chapter.ID)
		case err != nil:
			report.Failed++
			report.Failures = append(report.Failures, ChapterFailure{
				ChapterID: chapter.ID,
				Title:     chapter.Title,
				Error:     err.Error(),
			})
			log.Printf("Chapter %d failed: %v", chapter.ID, err)
		default:
			report.Succeeded++
			log.Printf("Chapter %d generated (%d chars)", chapter.ID, len(chapter.Content))
		}

		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	log.Printf("Pregeneration finished: total=%d succeeded=%d failed=%d skipped=%d",
		report.Total, report.Succeeded, report.Failed, report.Skipped)

	return report, nil
}

func (s *ContentService) pregenerateOne(ctx context.Context, chapter *model.Chapter) (bool, error) {
	if s.locker != nil {
		l, err := s.locker.TryAcquire(ctx, lock.ChapterKey(chapter.ID, "content"))
		if errors.Is(err, lock.ErrNotAcquired) {
			return true, nil
		}
		if err == nil {
			defer l.Release(context.Background())
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.generate(ctx, chapter)
		if err != nil && attempt < s.maxAttempts() {
			log.Printf("Chapter %d attempt %d failed: %v", chapter.ID, attempt, err)
		}
		return err
	}

	return false, backoff.Retry(op, s.retryPolicy(ctx))
}

func (s *ContentService) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = durationMs(s.cfg.Pregen.InitialBackoffMs, 2*time.Second)
	b.MaxInterval = durationMs(s.cfg.Pregen.MaxBackoffMs, 10*time.Second)
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxAttempts()-1)), ctx)
}

func (s *ContentService) maxAttempts() int {
	if s.cfg.Pregen.MaxAttempts <= 0 {
		return 3
	}
	return s.cfg.Pregen.MaxAttempts
}

func (s *ContentService) chapterInterval() rate.Limit {
	if s.cfg.Pregen.ChapterIntervalMs <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Duration(s.cfg.Pregen.ChapterIntervalMs) * time.Millisecond)
}

func (s *ContentService) lockWait() time.Duration {
	return durationMs(s.cfg.Materialize.LockWaitSeconds*1000, 150*time.Second)
}

func durationMs(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
