package dto

import "time"

// CreateOrderRequest 创建支付订单请求
type CreateOrderRequest struct {
	PlanType string `json:"planType" binding:"required,plantype"`
}

// CreateOrderResponse 创建订单响应（用于前端拉起收银台）
type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// VerifyPaymentRequest 支付回调校验请求
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// SubscriptionSnapshot 当前订阅快照
type SubscriptionSnapshot struct {
	HasSubscription bool       `json:"hasSubscription"`
	IsActive        bool       `json:"isActive"`
	PlanType        string     `json:"planType,omitempty"`
	PaymentStatus   string     `json:"paymentStatus,omitempty"`
	ActivationDate  *time.Time `json:"activationDate,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	DaysRemaining   int        `json:"daysRemaining"`
}

// AccessDenied 订阅拦截时返回给前端的数据，用于跳转收银台
type AccessDenied struct {
	SubscriptionRequired bool       `json:"subscriptionRequired"`
	HasSubscription      bool       `json:"hasSubscription"`
	Expired              bool       `json:"expired,omitempty"`
	ExpiryDate           *time.Time `json:"expiryDate,omitempty"`
}

// SubscriptionStatus 轻量订阅状态
type SubscriptionStatus struct {
	HasSubscription bool       `json:"hasSubscription"`
	IsActive        bool       `json:"isActive"`
	PlanType        string     `json:"planType,omitempty"`
	PaymentStatus   string     `json:"paymentStatus,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
}

// PaymentFailedRequest 收银台关闭或网关回报失败
type PaymentFailedRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}
