package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/api/middleware"
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
	"github.com/qs3c/edu_go_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	paymentService      *service.PaymentService
}

func NewSubscriptionHandler(
	subscriptionService *service.SubscriptionService,
	paymentService *service.PaymentService,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		paymentService:      paymentService,
	}
}

// Current 当前订阅
// GET /api/v1/subscription/current
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	snapshot, err := h.subscriptionService.Current(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, snapshot)
}

// Status 订阅状态
// GET /api/v1/subscription/status
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	status, err := h.subscriptionService.Status(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}

// CreateOrder 创建支付订单
// POST /api/v1/subscription/create-order
func (h *SubscriptionHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid plan type")
		return
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), userID, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrGatewayFailure):
			response.Error(c, response.CodeGatewayError, "")
		default:
			log.Printf("Create order failed for user %d: %v", userID, err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, order)
}

// VerifyPayment 校验支付签名并激活订阅
// POST /api/v1/subscription/verify-payment
func (h *SubscriptionHandler) VerifyPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "orderId, paymentId and signature are required")
		return
	}

	snapshot, err := h.paymentService.VerifyPayment(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureMismatch):
			response.Error(c, response.CodeSignatureMismatch, "")
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrOrderClosed):
			response.ParamError(c, err.Error())
		default:
			log.Printf("Verify payment failed for user %d: %v", userID, err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "subscription activated", snapshot)
}

// PaymentFailed 记录支付失败
// POST /api/v1/subscription/payment-failed
func (h *SubscriptionHandler) PaymentFailed(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.PaymentFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "orderId is required")
		return
	}

	if err := h.paymentService.MarkFailed(userID, req.OrderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	status, err := h.subscriptionService.Status(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}
