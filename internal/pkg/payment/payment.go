package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

var ErrGateway = errors.New("payment gateway error")

// 网关对 receipt 长度的限制
const MaxReceiptLength = 40

// OrderRequest 创建订单参数，Amount 为最小货币单位
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order 网关返回的订单
type Order struct {
	ID       string
	Amount   int64
	Currency string
}

// Gateway 支付网关
type Gateway interface {
	CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error)
	KeyID() string
}

// Sign 计算 HMAC-SHA256("{orderID}|{paymentID}")，十六进制编码
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature 校验网关回调签名；未配置密钥时一律失败
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Receipt 生成简短且确定的收据号：sub_<userID>_<unix 秒 base36>
func Receipt(userID int64, at time.Time) string {
	return "sub_" + strconv.FormatInt(userID, 10) + "_" + strconv.FormatInt(at.Unix(), 36)
}
