package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"MarketDiary/pkg/config"
)

// CookieName 会话Cookie名称
const CookieName = "market-diary-session"

const (
	appTag     = "market-diary"
	sessionTTL = 30 * 24 * time.Hour // 30天
)

var errInvalidToken = errors.New("会话令牌无效")

// Manager 会话管理器
// 单租户共享口令，不是按用户的身份体系
type Manager struct {
	username     string
	password     string
	secureCookie bool
}

// NewManager 创建会话管理器
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		username:     cfg.Auth.Username,
		password:     cfg.Auth.Password,
		secureCookie: cfg.App.Env == "prod",
	}
}

// signingKey 由当前配置的凭证派生签名密钥
// 凭证变更后密钥随之变化，已签发的Cookie在下一次请求即失效
func (m *Manager) signingKey() []byte {
	sum := sha256.Sum256([]byte(m.username + ":" + m.password + ":" + appTag))
	return sum[:]
}

// CheckCredentials 校验提交的用户名密码是否与配置完全一致
func (m *Manager) CheckCredentials(username, password string) bool {
	return username == m.username && password == m.password
}

// IssueToken 签发带签发时间和30天有效期的会话令牌
func (m *Manager) IssueToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   m.username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	})

	signed, err := token.SignedString(m.signingKey())
	if err != nil {
		return "", fmt.Errorf("签发会话令牌失败: %w", err)
	}
	return signed, nil
}

// ValidateToken 用当前凭证派生的密钥校验令牌
func (m *Manager) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return m.signingKey(), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errInvalidToken
	}
	return nil
}

// SetCookie 下发会话Cookie
func (m *Manager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(sessionTTL.Seconds()), "/", "", m.secureCookie, true)
}

// ClearCookie 清除会话Cookie
func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secureCookie, true)
}
