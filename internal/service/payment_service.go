package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/config"
	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/payment"
	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
	"github.com/qs3c/edu_go_server/internal/repository"
)

var (
	ErrInvalidPlan       = errors.New("invalid plan type")
	ErrSignatureMismatch = errors.New("payment signature verification failed")
	ErrOrderNotFound     = errors.New("subscription order not found")
	ErrOrderClosed       = errors.New("order has already been marked as failed")
	ErrGatewayFailure    = errors.New("payment gateway error")
)

type PaymentService struct {
	subRepo   *repository.SubscriptionRepository
	gateway   payment.Gateway
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewPaymentService(
	subRepo *repository.SubscriptionRepository,
	gateway payment.Gateway,
	publisher EventPublisher,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		subRepo:   subRepo,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// PlanAmount 套餐价格（paise）
func (s *PaymentService) PlanAmount(planType string) (int64, error) {
	if !model.ValidPlan(planType) {
		return 0, ErrInvalidPlan
	}
	plan, ok := s.cfg.Payment.Plans[planType]
	if !ok {
		plan, ok = config.DefaultPlans[planType]
	}
	if !ok || plan.Amount <= 0 {
		return 0, ErrInvalidPlan
	}
	return plan.Amount, nil
}

// CreateOrder 创建支付订单，并以 user_id 为键写入待支付订阅
func (s *PaymentService) CreateOrder(ctx context.Context, userID int64, planType string) (*dto.CreateOrderResponse, error) {
	amount, err := s.PlanAmount(planType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	currency := s.cfg.Payment.Currency
	if currency == "" {
		currency = "INR"
	}

	order, err := s.gateway.CreateOrder(ctx, &payment.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  payment.Receipt(userID, now),
		Notes: map[string]string{
			"user_id":   strconv.FormatInt(userID, 10),
			"plan_type": planType,
		},
	})
	if err != nil {
		log.Printf("Create order failed for user %d (%s): %v", userID, planType, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	sub := &model.Subscription{
		UserID:     userID,
		PlanType:   planType,
		ExpiryDate: model.PlanExpiry(planType, now),
		Amount:     order.Amount,
		Currency:   order.Currency,
		OrderID:    order.ID,
	}
	if err := s.subRepo.UpsertPending(sub); err != nil {
		return nil, err
	}

	log.Printf("Order %s created for user %d: %s %d %s", order.ID, userID, planType, order.Amount, order.Currency)

	return &dto.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// VerifyPayment 校验支付签名并激活订阅
// 签名不通过时订阅保持原状；同一笔支付重复校验直接返回当前快照
func (s *PaymentService) VerifyPayment(ctx context.Context, userID int64, req *dto.VerifyPaymentRequest) (*dto.SubscriptionSnapshot, error) {
	if !payment.VerifySignature(s.cfg.Payment.KeySecret, req.OrderID, req.PaymentID, req.Signature) {
		log.Printf("Signature mismatch for user %d order %s", userID, req.OrderID)
		return nil, ErrSignatureMismatch
	}

	sub, err := s.subRepo.GetByUserAndOrder(userID, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	now := s.now()

	switch sub.PaymentStatus {
	case model.PaymentSuccess:
		if sub.PaymentID == req.PaymentID {
			return Snapshot(sub, now), nil
		}
	case model.PaymentFailed:
		return nil, ErrOrderClosed
	}

	expiry := model.PlanExpiry(sub.PlanType, now)
	if err := s.subRepo.MarkSuccess(sub.ID, req.PaymentID, req.Signature, now, expiry); err != nil {
		return nil, err
	}

	sub.PaymentStatus = model.PaymentSuccess
	sub.PaymentID = req.PaymentID
	sub.Signature = req.Signature
	sub.ActivationDate = &now
	sub.ExpiryDate = expiry

	log.Printf("Subscription activated for user %d: %s until %s", userID, sub.PlanType, expiry.Format(time.RFC3339))

	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:       pubsub.EventSubscriptionActivated,
		UserID:     userID,
		PlanType:   sub.PlanType,
		ExpiryDate: &expiry,
		OccurredAt: now,
	})

	return Snapshot(sub, now), nil
}

// MarkFailed 网关带外通知支付失败，仅作用于待支付订单
func (s *PaymentService) MarkFailed(userID int64, orderID string) error {
	changed, err := s.subRepo.MarkFailed(userID, orderID)
	if err != nil {
		return err
	}
	if changed {
		log.Printf("Order %s marked failed for user %d", orderID, userID)
		return nil
	}

	if _, err := s.subRepo.GetByUserAndOrder(userID, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}
