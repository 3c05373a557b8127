package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/repository"
)

var (
	ErrSubscriptionRequired = errors.New("subscription required")
	ErrSubscriptionExpired  = errors.New("subscription expired")
)

// 拒绝原因
const (
	ReasonSubscriptionRequired = "subscription_required"
	ReasonSubscriptionExpired  = "subscription_expired"
)

// AccessDecision 访问判定结果
type AccessDecision struct {
	Allowed      bool
	Reason       string
	Subscription *model.Subscription // 放行时携带，供下游使用
	Denied       *dto.AccessDenied
}

// Err 拒绝原因对应的错误，放行时为 nil
func (d *AccessDecision) Err() error {
	switch d.Reason {
	case ReasonSubscriptionRequired:
		return ErrSubscriptionRequired
	case ReasonSubscriptionExpired:
		return ErrSubscriptionExpired
	}
	return nil
}

// AccessService 订阅访问控制，只读无副作用
type AccessService struct {
	subRepo *repository.SubscriptionRepository
	now     func() time.Time
}

func NewAccessService(subRepo *repository.SubscriptionRepository) *AccessService {
	return &AccessService{
		subRepo: subRepo,
		now:     time.Now,
	}
}

// Check 判断调用者能否访问付费内容
func (s *AccessService) Check(userID int64, role string) (*AccessDecision, error) {
	if role == model.RoleAdmin {
		return &AccessDecision{Allowed: true}, nil
	}

	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AccessDecision{
				Reason: ReasonSubscriptionRequired,
				Denied: &dto.AccessDenied{SubscriptionRequired: true},
			}, nil
		}
		return nil, err
	}

	if !sub.IsActive(s.now()) {
		expiry := sub.ExpiryDate
		return &AccessDecision{
			Reason: ReasonSubscriptionExpired,
			Denied: &dto.AccessDenied{
				SubscriptionRequired: true,
				HasSubscription:      true,
				Expired:              true,
				ExpiryDate:           &expiry,
			},
		}, nil
	}

	return &AccessDecision{Allowed: true, Subscription: sub}, nil
}
