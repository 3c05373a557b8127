package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/pkg/jwt"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "invalid or expired token")
			c.Abort()
			return
		}

		role := claims.Role
		if role == "" {
			role = jwt.RoleStudent
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetRole 从上下文获取角色，缺省为学生
func GetRole(c *gin.Context) string {
	if role := c.GetString(RoleKey); role != "" {
		return role
	}
	return jwt.RoleStudent
}
