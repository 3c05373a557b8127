package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/edu_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUserID(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByUserAndOrder(userID int64, orderID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND order_id = ?", userID, orderID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpsertPending 以 user_id 为键写入一条待支付订阅，覆盖该用户之前的记录
func (r *SubscriptionRepository) UpsertPending(sub *model.Subscription) error {
	sub.PaymentStatus = model.PaymentPending
	sub.PaymentID = ""
	sub.Signature = ""
	sub.ActivationDate = nil

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_type",
			"payment_status",
			"activation_date",
			"expiry_date",
			"amount",
			"currency",
			"order_id",
			"payment_id",
			"signature",
			"updated_at",
		}),
	}).Create(sub).Error
}

// MarkSuccess 签名校验通过后激活订阅
func (r *SubscriptionRepository) MarkSuccess(id int64, paymentID, signature string, activatedAt, expiry time.Time) error {
	return r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(map[string]interface{}{
		"payment_status":  model.PaymentSuccess,
		"payment_id":      paymentID,
		"signature":       signature,
		"activation_date": activatedAt,
		"expiry_date":     expiry,
	}).Error
}

// MarkFailed 仅将待支付的订单置为失败，已成功的订阅不受影响
func (r *SubscriptionRepository) MarkFailed(userID int64, orderID string) (bool, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND order_id = ? AND payment_status = ?", userID, orderID, model.PaymentPending).
		Update("payment_status", model.PaymentFailed)
	return result.RowsAffected > 0, result.Error
}
