package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// exemptPrefixes 免认证路径前缀：登录页、登录登出端点、静态资源和健康检查
var exemptPrefixes = []string{
	"/login",
	"/auth/login",
	"/auth/logout",
	"/static/",
	"/favicon",
	"/health",
	"/ready",
}

func isExempt(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware 会话校验中间件，除免认证路径外的所有请求都要通过
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, err := c.Cookie(CookieName)
		if err != nil {
			// 未认证，跳转登录页并保留原始访问路径
			c.Redirect(http.StatusFound, "/login?from="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}

		if err := m.ValidateToken(token); err != nil {
			// 会话无效时清除Cookie再跳转
			m.ClearCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}
