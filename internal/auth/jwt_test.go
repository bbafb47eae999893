package auth

import (
	"testing"
	"time"

	"github.com/Xingwd/xadmin/internal/config"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/stretchr/testify/assert"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		SecretKey: "test-secret-key",
		ExpiresIn: 60,
		Issuer:    "xadmin-test",
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := testJWTConfig()
	user := &models.User{Username: "admin"}
	user.ID = 1
	scopes := []string{"rules:read", "users:me:read"}

	token, err := GenerateToken(user, scopes, cfg)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token, cfg)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, scopes, claims.Scopes)
	assert.Equal(t, "xadmin-test", claims.Issuer)
}

func TestParseTokenInvalid(t *testing.T) {
	cfg := testJWTConfig()

	_, err := ParseToken("not-a-token", cfg)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	user := &models.User{Username: "admin"}
	user.ID = 1

	token, err := GenerateToken(user, nil, cfg)
	assert.NoError(t, err)

	other := testJWTConfig()
	other.SecretKey = "another-secret"
	_, err = ParseToken(token, other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpiresIn = -1
	user := &models.User{Username: "admin"}
	user.ID = 1

	token, err := GenerateToken(user, nil, cfg)
	assert.NoError(t, err)

	// 令牌签发即过期
	time.Sleep(10 * time.Millisecond)
	_, err = ParseToken(token, testJWTConfig())
	assert.ErrorIs(t, err, ErrExpiredToken)
}
