package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"MarketDiary/pkg/auth"
	"MarketDiary/pkg/database"
	"MarketDiary/pkg/messaging"
	"MarketDiary/pkg/model"
)

// Handlers API处理程序
type Handlers struct {
	db        *database.Database
	sessions  *auth.Manager
	publisher *messaging.Publisher // 可为nil，未配置NATS时不发布事件
}

// NewHandlers 创建新的API处理程序
func NewHandlers(db *database.Database, sessions *auth.Manager, publisher *messaging.Publisher) *Handlers {
	return &Handlers{
		db:        db,
		sessions:  sessions,
		publisher: publisher,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序，连通数据库才算就绪
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 登录处理程序
// 凭证不匹配时只返回笼统错误，不提示具体是哪个字段错了
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数",
		})
		return
	}

	if !h.sessions.CheckCredentials(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户名或密码不正确",
		})
		return
	}

	token, err := h.sessions.IssueToken()
	if err != nil {
		log.Printf("签发会话令牌失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "登录处理失败",
		})
		return
	}

	h.sessions.SetCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
	})
}

// Logout 登出处理程序，无论当前是否已登录都清除Cookie
func (h *Handlers) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful",
	})
}

const loginPageHTML = `<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>Market Diary - 登录</title>
</head>
<body>
<form id="login-form">
<h1>Market Diary</h1>
<label>用户名 <input name="username" autocomplete="username"></label>
<label>密码 <input name="password" type="password" autocomplete="current-password"></label>
<button type="submit">登录</button>
<p id="error"></p>
</form>
<script>
document.getElementById("login-form").addEventListener("submit", async function (e) {
	e.preventDefault();
	const form = new FormData(e.target);
	const res = await fetch("/auth/login", {
		method: "POST",
		headers: { "Content-Type": "application/json" },
		body: JSON.stringify({ username: form.get("username"), password: form.get("password") }),
	});
	if (res.ok) {
		const from = new URLSearchParams(location.search).get("from") || "/diary";
		location.href = from;
	} else {
		document.getElementById("error").textContent = "用户名或密码不正确";
	}
});
</script>
</body>
</html>
`

// LoginPage 登录页，未认证请求的跳转目标
func (h *Handlers) LoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPageHTML))
}

// publishEvent 发布条目变更事件，尽力而为，失败不影响请求结果
func (h *Handlers) publishEvent(entity, action string, entryID int64) {
	if h.publisher == nil {
		return
	}

	event := model.NewEntryEvent(entity, action, entryID)
	if err := h.publisher.Publish(event.Subject(), event); err != nil {
		log.Printf("发布变更事件失败: %v", err)
	}
}
