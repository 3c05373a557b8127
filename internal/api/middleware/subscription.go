package middleware

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
	"github.com/qs3c/edu_go_server/internal/service"
)

const SubscriptionKey = "subscription"

// RequireSubscription 付费内容拦截，放行时把订阅写入上下文
func RequireSubscription(accessService *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		decision, err := accessService.Check(userID, GetRole(c))
		if err != nil {
			log.Printf("Subscription check failed for user %d: %v", userID, err)
			response.ServerError(c, "")
			c.Abort()
			return
		}

		if !decision.Allowed {
			expired := decision.Reason == service.ReasonSubscriptionExpired
			response.SubscriptionError(c, expired, decision.Denied)
			c.Abort()
			return
		}

		if decision.Subscription != nil {
			c.Set(SubscriptionKey, decision.Subscription)
		}
		c.Next()
	}
}

// GetSubscription 获取拦截器放行时写入的订阅，管理员为 nil
func GetSubscription(c *gin.Context) *model.Subscription {
	v, ok := c.Get(SubscriptionKey)
	if !ok {
		return nil
	}
	sub, _ := v.(*model.Subscription)
	return sub
}
