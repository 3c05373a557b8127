package service

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/repository"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionService struct {
	subRepo *repository.SubscriptionRepository
	now     func() time.Time
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{
		subRepo: subRepo,
		now:     time.Now,
	}
}

// GetByUser 获取用户订阅
func (s *SubscriptionService) GetByUser(userID int64) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// Current 当前订阅快照，无订阅时 hasSubscription=false
func (s *SubscriptionService) Current(userID int64) (*dto.SubscriptionSnapshot, error) {
	sub, err := s.GetByUser(userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return &dto.SubscriptionSnapshot{}, nil
		}
		return nil, err
	}
	return Snapshot(sub, s.now()), nil
}

// Status 轻量状态查询
func (s *SubscriptionService) Status(userID int64) (*dto.SubscriptionStatus, error) {
	sub, err := s.GetByUser(userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return &dto.SubscriptionStatus{}, nil
		}
		return nil, err
	}

	expiry := sub.ExpiryDate
	return &dto.SubscriptionStatus{
		HasSubscription: true,
		IsActive:        sub.IsActive(s.now()),
		PlanType:        sub.PlanType,
		PaymentStatus:   sub.PaymentStatus,
		ExpiryDate:      &expiry,
	}, nil
}

// Snapshot 由订阅记录构造快照
func Snapshot(sub *model.Subscription, now time.Time) *dto.SubscriptionSnapshot {
	expiry := sub.ExpiryDate
	snap := &dto.SubscriptionSnapshot{
		HasSubscription: true,
		IsActive:        sub.IsActive(now),
		PlanType:        sub.PlanType,
		PaymentStatus:   sub.PaymentStatus,
		ActivationDate:  sub.ActivationDate,
		ExpiryDate:      &expiry,
	}
	if snap.IsActive {
		snap.DaysRemaining = DaysRemaining(sub.ExpiryDate, now)
	}
	return snap
}

// DaysRemaining 剩余天数，不足一天按一天计
func DaysRemaining(expiry, now time.Time) int {
	if !expiry.After(now) {
		return 0
	}
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}
