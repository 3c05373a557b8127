package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestGenerateTokenWithRole(t *testing.T) {
	tests := []struct {
		name   string
		userID int64
		role   string
	}{
		{"student", 123, RoleStudent},
		{"admin", 7, RoleAdmin},
		{"max user id", 9223372036854775807, RoleStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateTokenWithRole(tt.userID, tt.role, testSecret, 24)
			require.NoError(t, err)

			claims, err := ParseToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestGenerateToken_DefaultsToStudent(t *testing.T) {
	token, err := GenerateToken(8, testSecret, 1)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(8), claims.UserID)
	assert.Equal(t, RoleStudent, claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateTokenWithRole(123, RoleAdmin, testSecret, 24)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	expired := signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		UserID: 123,
		Role:   RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			NotBefore: jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	// 未签名令牌不能伪造管理员身份
	unsigned := signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{
		UserID: 1,
		Role:   RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"wrong secret", valid, "wrong-secret", ErrInvalidToken},
		{"garbage", "invalid.token.string", testSecret, ErrInvalidToken},
		{"empty", "", testSecret, ErrInvalidToken},
		{"not a jwt", "not-a-jwt-at-all", testSecret, ErrInvalidToken},
		{"expired", expired, testSecret, ErrExpiredToken},
		{"alg none", unsigned, testSecret, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}
