package model

import (
	"time"
)

const (
	PlanMonthly = "MONTHLY"
	PlanYearly  = "YEARLY"
)

const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

// Subscription 每个用户一行，续费时复用（upsert），不做物理删除
type Subscription struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	UserID         int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanType       string     `gorm:"size:20;not null" json:"plan_type"`                   // MONTHLY, YEARLY
	PaymentStatus  string     `gorm:"size:20;default:PENDING;index" json:"payment_status"` // PENDING, SUCCESS, FAILED
	ActivationDate *time.Time `json:"activation_date,omitempty"`
	ExpiryDate     time.Time  `gorm:"not null;index" json:"expiry_date"`
	Amount         int64      `gorm:"not null" json:"amount"` // paise
	Currency       string     `gorm:"size:10;default:INR" json:"currency"`
	OrderID        string     `gorm:"size:100;index" json:"order_id,omitempty"`
	PaymentID      string     `gorm:"size:100" json:"payment_id,omitempty"`
	Signature      string     `gorm:"size:255" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive 支付成功且未过期；到期时刻本身视为已过期
func (s *Subscription) IsActive(now time.Time) bool {
	return s.PaymentStatus == PaymentSuccess && s.ExpiryDate.After(now)
}

// ValidPlan 是否为已知套餐
func ValidPlan(planType string) bool {
	return planType == PlanMonthly || planType == PlanYearly
}

// PlanExpiry 从 from 开始计算套餐到期时间
func PlanExpiry(planType string, from time.Time) time.Time {
	if planType == PlanYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
