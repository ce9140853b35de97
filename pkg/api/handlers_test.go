package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"MarketDiary/pkg/auth"
	"MarketDiary/pkg/config"
	"MarketDiary/pkg/database"
	"MarketDiary/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer 组装与生产相同的服务器，存储换成内存sqlite
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	sessions := auth.NewManager(cfg)
	handlers := NewHandlers(db, sessions, nil)

	server := NewServer(cfg, sessions)
	server.SetupRoutes(handlers)
	return server
}

func doRequest(server *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

// login 登录并取回会话Cookie
func login(t *testing.T, server *Server) *http.Cookie {
	t.Helper()

	w := doRequest(server, http.MethodPost, "/auth/login",
		`{"username":"admin","password":"market2024"}`)
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			require.NotEmpty(t, cookie.Value)
			return cookie
		}
	}
	t.Fatal("登录响应没有下发会话Cookie")
	return nil
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestLoginThenGatedRequestSucceeds(t *testing.T) {
	server := newTestServer(t)

	// 未认证直接访问会被重定向到登录页并带上原路径
	w := doRequest(server, http.MethodGet, "/diary", "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login?from=%2Fdiary", w.Header().Get("Location"))

	cookie := login(t, server)
	w = doRequest(server, http.MethodGet, "/diary", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t)

	// 密码任意单字符变更都必须401，且不下发Cookie
	for _, password := range []string{"market2025", "Market2024", "market202", "market20244", ""} {
		body := fmt.Sprintf(`{"username":"admin","password":%q}`, password)
		w := doRequest(server, http.MethodPost, "/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, w.Code, "password %q", password)

		for _, cookie := range w.Result().Cookies() {
			require.NotEqual(t, auth.CookieName, cookie.Name)
		}
	}

	// 用户名错误也是同样的笼统401
	w := doRequest(server, http.MethodPost, "/auth/login", `{"username":"root","password":"market2024"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	server := newTestServer(t)

	// 没有会话也能登出成功并清Cookie
	w := doRequest(server, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Set-Cookie"), auth.CookieName+"=")
	require.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	cookie := login(t, server)
	w = doRequest(server, http.MethodPost, "/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestForgedCookieClearedAndRedirected(t *testing.T) {
	server := newTestServer(t)

	forged := &http.Cookie{Name: auth.CookieName, Value: "forged"}
	w := doRequest(server, http.MethodGet, "/diary", "", forged)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestDiaryCreateAndGetBack(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/diary", `{
		"date": "2024-03-15",
		"type": "buy",
		"ticker": "NVDA",
		"quantity": 10,
		"price": 890.5,
		"currency": "USD",
		"content": "财报前试探性买入",
		"tags": "AI, 半导体"
	}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.DiaryEntry
	decodeJSON(t, w, &created)
	require.NotZero(t, created.ID)
	require.Equal(t, created.CreatedAt, created.UpdatedAt)
	require.Equal(t, "NVDA", *created.Ticker)

	w = doRequest(server, http.MethodGet, "/diary", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.DiaryEntry
	decodeJSON(t, w, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, created.ID, entries[0].ID)
	require.Equal(t, "财报前试探性买入", entries[0].Content)
}

func TestDiaryCreateValidation(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	cases := []struct {
		name string
		body string
	}{
		{"缺少content", `{"date":"2024-03-15","type":"buy"}`},
		{"缺少date", `{"type":"buy","content":"x"}`},
		{"非法type", `{"date":"2024-03-15","type":"hold","content":"x"}`},
		{"非法date格式", `{"date":"2024/03/15","type":"buy","content":"x"}`},
		{"负数price", `{"date":"2024-03-15","type":"buy","content":"x","price":-1}`},
	}

	for _, tc := range cases {
		w := doRequest(server, http.MethodPost, "/diary", tc.body, cookie)
		require.Equal(t, http.StatusBadRequest, w.Code, tc.name)
	}
}

func TestDiaryListDateRangeExample(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/diary",
		`{"date":"2024-01-01","type":"buy","content":"买入"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(server, http.MethodPost, "/diary",
		`{"date":"2024-01-03","type":"sell","content":"卖出"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(server, http.MethodGet, "/diary?startDate=2024-01-02&endDate=2024-01-05", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.DiaryEntry
	decodeJSON(t, w, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, "2024-01-03", entries[0].Date)
	require.Equal(t, model.DiaryTypeSell, entries[0].Type)
}

func TestDiaryUpdateRequiresID(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPut, "/diary", `{"content":"x"}`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(server, http.MethodPut, "/diary?id=abc", `{"content":"x"}`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(server, http.MethodPut, "/diary?id=999", `{"content":"x"}`, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiaryPartialUpdate(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/diary",
		`{"date":"2024-03-15","type":"buy","ticker":"NVDA","content":"首次记录"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.DiaryEntry
	decodeJSON(t, w, &created)

	// 只改content，其余字段不动；显式null清掉ticker
	w = doRequest(server, http.MethodPut, fmt.Sprintf("/diary?id=%d", created.ID),
		`{"content":"更新后的记录","ticker":null}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.DiaryEntry
	decodeJSON(t, w, &updated)
	require.Equal(t, "更新后的记录", updated.Content)
	require.Nil(t, updated.Ticker)
	require.Equal(t, "2024-03-15", updated.Date)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.GreaterOrEqual(t, updated.UpdatedAt, updated.CreatedAt)
}

func TestDiaryDelete(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/diary",
		`{"date":"2024-03-15","type":"note","content":"随手记录"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.DiaryEntry
	decodeJSON(t, w, &created)

	w = doRequest(server, http.MethodDelete, fmt.Sprintf("/diary?id=%d", created.ID), "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// 已删除的ID再删一次是404
	w = doRequest(server, http.MethodDelete, fmt.Sprintf("/diary?id=%d", created.ID), "", cookie)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(server, http.MethodDelete, "/diary", "", cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiaryBatchBestEffort(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	// 中间一条缺content，另外两条要照常入库
	w := doRequest(server, http.MethodPost, "/diary/batch", `[
		{"date":"2024-01-01","type":"buy","content":"第一条"},
		{"date":"2024-01-02","type":"sell"},
		{"date":"2024-01-03","type":"note","content":"第三条"}
	]`, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.BatchResult
	decodeJSON(t, w, &result)
	require.Equal(t, 2, result.Created)
	require.Len(t, result.Failures, 1)
	require.Equal(t, 1, result.Failures[0].Index)

	w = doRequest(server, http.MethodGet, "/diary", "", cookie)
	var entries []model.DiaryEntry
	decodeJSON(t, w, &entries)
	require.Len(t, entries, 2)
}

func TestWatchlistCrud(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/watchlist", `{
		"ticker": "CRDO",
		"name": "Credo Technology",
		"category": "AI基础设施",
		"tags": "AEC, SerDes, US",
		"thesis": "数据中心互连受益于AI集群扩张",
		"conviction": 4,
		"status": "观察",
		"addedDate": "2024-02-20"
	}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.WatchlistEntry
	decodeJSON(t, w, &created)
	require.NotZero(t, created.ID)
	require.Equal(t, 4, *created.Conviction)

	// 必填字段缺失
	w = doRequest(server, http.MethodPost, "/watchlist",
		`{"ticker":"NVDA","name":"NVIDIA"}`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// 过滤查询
	w = doRequest(server, http.MethodGet, "/watchlist?category=AI基础设施&search=RDO", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []model.WatchlistEntry
	decodeJSON(t, w, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, "CRDO", entries[0].Ticker)

	// 部分更新：改status，null清掉conviction
	w = doRequest(server, http.MethodPut, fmt.Sprintf("/watchlist?id=%d", created.ID),
		`{"status":"持有","conviction":null}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.WatchlistEntry
	decodeJSON(t, w, &updated)
	require.Equal(t, "持有", *updated.Status)
	require.Nil(t, updated.Conviction)
	require.Equal(t, "CRDO", updated.Ticker)

	// 必填列不接受null
	w = doRequest(server, http.MethodPut, fmt.Sprintf("/watchlist?id=%d", created.ID),
		`{"ticker":null}`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// 删除
	w = doRequest(server, http.MethodDelete, fmt.Sprintf("/watchlist?id=%d", created.ID), "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(server, http.MethodDelete, fmt.Sprintf("/watchlist?id=%d", created.ID), "", cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWatchlistBatchBestEffort(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/watchlist/batch", `[
		{"ticker":"NVDA","name":"NVIDIA","category":"AI基础设施","tags":"AI","thesis":"算力需求","addedDate":"2024-01-10"},
		{"ticker":"AMD","name":"AMD"},
		{"ticker":"CRDO","name":"Credo","category":"AI基础设施","tags":"AEC","thesis":"互连","addedDate":"2024-02-20"}
	]`, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.BatchResult
	decodeJSON(t, w, &result)
	require.Equal(t, 2, result.Created)
	require.Len(t, result.Failures, 1)
	require.Equal(t, 1, result.Failures[0].Index)
}

func TestStatsSummaryEndpoint(t *testing.T) {
	server := newTestServer(t)
	cookie := login(t, server)

	w := doRequest(server, http.MethodPost, "/diary",
		`{"date":"2024-01-01","type":"buy","ticker":"NVDA","quantity":10,"price":100,"content":"买入"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(server, http.MethodPost, "/diary",
		`{"date":"2024-01-02","type":"sell","ticker":"NVDA","quantity":5,"price":120,"content":"卖出"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(server, http.MethodGet,
		"/stats/summary?startDate=2024-01-01&endDate=2024-01-31", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Summary   struct {
			Total        int     `json:"total"`
			Buys         int     `json:"buys"`
			Sells        int     `json:"sells"`
			BuyTurnover  float64 `json:"buyTurnover"`
			SellTurnover float64 `json:"sellTurnover"`
		} `json:"summary"`
	}
	decodeJSON(t, w, &resp)
	require.Equal(t, "2024-01-01", resp.StartDate)
	require.Equal(t, 2, resp.Summary.Total)
	require.Equal(t, 1, resp.Summary.Buys)
	require.Equal(t, 1, resp.Summary.Sells)
	require.Equal(t, float64(1000), resp.Summary.BuyTurnover)
	require.Equal(t, float64(600), resp.Summary.SellTurnover)
}

func TestHealthAndReady(t *testing.T) {
	server := newTestServer(t)

	// 健康检查不需要会话
	w := doRequest(server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(server, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginPageServed(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
}
