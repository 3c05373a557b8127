package cron

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/qs3c/edu_go_server/internal/service"
)

// Pregenerator 批量补齐缺失的章节正文
type Pregenerator interface {
	Pregenerate(ctx context.Context, opts service.PregenOptions) (*service.BatchReport, error)
}

type Service struct {
	pregen   Pregenerator
	interval time.Duration
	limit    int
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(pregen Pregenerator, interval time.Duration, limit int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		pregen:   pregen,
		interval: interval,
		limit:    limit,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start 启动定时任务，interval <= 0 时不启动
func (s *Service) Start() {
	if s.interval <= 0 {
		log.Println("Cron service disabled (pregen.schedule_interval_minutes = 0)")
		return
	}

	s.wg.Add(1)
	go s.runPregeneration()
	log.Printf("Cron service started (content pregeneration every %s, batch %d)", s.interval, s.limit)
}

// Stop 停止定时任务，等待正在执行的批次退出
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		log.Println("Cron service stopped")
	})
}

func (s *Service) runPregeneration() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunNow(s.ctx); err != nil && s.ctx.Err() == nil {
				log.Printf("Scheduled pregeneration failed: %v", err)
			}
		}
	}
}

// RunNow 立即执行一批预生成（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (*service.BatchReport, error) {
	report, err := s.pregen.Pregenerate(ctx, service.PregenOptions{Limit: s.limit})
	if err != nil {
		return report, err
	}
	if report.Total > 0 {
		log.Printf("Scheduled pregeneration: total=%d succeeded=%d failed=%d skipped=%d",
			report.Total, report.Succeeded, report.Failed, report.Skipped)
	}
	return report, nil
}
