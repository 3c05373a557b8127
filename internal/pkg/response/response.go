package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess              = 0
	CodeParamError           = 1000
	CodeAuthFailed           = 1001
	CodePermissionDenied     = 1002
	CodeResourceNotFound     = 1003
	CodeSubscriptionRequired = 1006
	CodeSubscriptionExpired  = 1007
	CodeSignatureMismatch    = 1008
	CodeContentUnavailable   = 1009
	CodeServerError          = 5000
	CodeGenerationFailed     = 5001
	CodeGatewayError         = 5002
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:              "success",
	CodeParamError:           "invalid request",
	CodeAuthFailed:           "authentication required",
	CodePermissionDenied:     "permission denied",
	CodeResourceNotFound:     "resource not found",
	CodeSubscriptionRequired: "subscription required",
	CodeSubscriptionExpired:  "subscription expired",
	CodeSignatureMismatch:    "invalid payment signature",
	CodeContentUnavailable:   "chapter content is empty",
	CodeServerError:          "server error",
	CodeGenerationFailed:     "failed to generate content, please retry",
	CodeGatewayError:         "payment gateway error",
}

// 错误码对应的 HTTP 状态码
var codeStatus = map[int]int{
	CodeParamError:           http.StatusBadRequest,
	CodeAuthFailed:           http.StatusUnauthorized,
	CodePermissionDenied:     http.StatusForbidden,
	CodeResourceNotFound:     http.StatusNotFound,
	CodeSubscriptionRequired: http.StatusForbidden,
	CodeSubscriptionExpired:  http.StatusForbidden,
	CodeSignatureMismatch:    http.StatusBadRequest,
	CodeContentUnavailable:   http.StatusBadRequest,
	CodeServerError:          http.StatusInternalServerError,
	CodeGenerationFailed:     http.StatusBadGateway,
	CodeGatewayError:         http.StatusBadGateway,
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应，HTTP 状态码由错误码决定
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带附加数据的错误响应
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	if message == "" {
		message = codeMessages[code]
	}
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Error(c, CodeAuthFailed, message)
}

// PermissionError 权限不足
func PermissionError(c *gin.Context, message string) {
	Error(c, CodePermissionDenied, message)
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, CodeResourceNotFound, message)
}

// SubscriptionError 订阅缺失或过期，data 用于前端跳转收银台
func SubscriptionError(c *gin.Context, expired bool, data interface{}) {
	code := CodeSubscriptionRequired
	if expired {
		code = CodeSubscriptionExpired
	}
	ErrorWithData(c, code, "", data)
}

// ServerError 服务器错误，不向客户端暴露内部细节
func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
