package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"MarketDiary/pkg/model"
)

// WatchlistCreateRequest 新建观察列表条目请求
type WatchlistCreateRequest struct {
	Ticker       string  `json:"ticker" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Exchange     *string `json:"exchange"`
	Category     string  `json:"category" binding:"required"`
	Tags         string  `json:"tags" binding:"required"`
	Thesis       string  `json:"thesis" binding:"required"`
	Risk         *string `json:"risk"`
	Notes        *string `json:"notes"`
	Conviction   *int    `json:"conviction"`
	PositionSize *string `json:"positionSize"`
	AddedDate    string  `json:"addedDate" binding:"required,datetime=2006-01-02"`
	Status       *string `json:"status"`
}

func (r *WatchlistCreateRequest) toEntry() *model.WatchlistEntry {
	return &model.WatchlistEntry{
		Ticker:       r.Ticker,
		Name:         r.Name,
		Exchange:     r.Exchange,
		Category:     r.Category,
		Tags:         r.Tags,
		Thesis:       r.Thesis,
		Risk:         r.Risk,
		Notes:        r.Notes,
		Conviction:   r.Conviction,
		PositionSize: r.PositionSize,
		AddedDate:    r.AddedDate,
		Status:       r.Status,
	}
}

// ListWatchlist 观察列表处理程序
func (h *Handlers) ListWatchlist(c *gin.Context) {
	filter := model.WatchlistFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}

	entries, err := h.db.Watchlist().List(filter)
	if err != nil {
		log.Printf("查询观察列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询观察列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// CreateWatchlist 新建观察列表条目处理程序
func (h *Handlers) CreateWatchlist(c *gin.Context) {
	var req WatchlistCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	entry := req.toEntry()
	if err := h.db.Watchlist().Create(entry); err != nil {
		log.Printf("创建观察列表条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "创建观察列表条目失败",
		})
		return
	}

	h.publishEvent(model.EntityWatchlist, model.ActionCreated, entry.ID)
	c.JSON(http.StatusCreated, entry)
}

// watchlistColumns 允许部分更新的JSON键到列名的映射
var watchlistColumns = map[string]string{
	"ticker":       "ticker",
	"name":         "name",
	"exchange":     "exchange",
	"category":     "category",
	"tags":         "tags",
	"thesis":       "thesis",
	"risk":         "risk",
	"notes":        "notes",
	"conviction":   "conviction",
	"positionSize": "position_size",
	"addedDate":    "added_date",
	"status":       "status",
}

// watchlistRequired 不接受null的必填列
var watchlistRequired = map[string]bool{
	"ticker":    true,
	"name":      true,
	"category":  true,
	"tags":      true,
	"thesis":    true,
	"addedDate": true,
}

// watchlistUpdateFields 校验部分更新的字段值并转成列名映射
func watchlistUpdateFields(body map[string]interface{}) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	for key, value := range body {
		column, ok := watchlistColumns[key]
		if !ok {
			continue
		}

		if value == nil {
			if watchlistRequired[key] {
				return nil, fmt.Errorf("%s不能为null", key)
			}
			fields[column] = nil
			continue
		}

		switch key {
		case "addedDate":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("addedDate必须是字符串")
			}
			if _, err := time.Parse("2006-01-02", s); err != nil {
				return nil, fmt.Errorf("addedDate必须是YYYY-MM-DD格式")
			}
		case "conviction":
			if _, ok := value.(float64); !ok {
				return nil, fmt.Errorf("conviction必须是整数")
			}
		default:
			if _, ok := value.(string); !ok {
				return nil, fmt.Errorf("%s必须是字符串", key)
			}
		}

		fields[column] = value
	}

	return fields, nil
}

// UpdateWatchlist 更新观察列表条目处理程序
func (h *Handlers) UpdateWatchlist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	fields, err := watchlistUpdateFields(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	entry, err := h.db.Watchlist().Update(id, fields)
	if err != nil {
		log.Printf("更新观察列表条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "更新观察列表条目失败",
		})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "观察列表条目不存在",
		})
		return
	}

	h.publishEvent(model.EntityWatchlist, model.ActionUpdated, entry.ID)
	c.JSON(http.StatusOK, entry)
}

// DeleteWatchlist 删除观察列表条目处理程序
func (h *Handlers) DeleteWatchlist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	existed, err := h.db.Watchlist().Delete(id)
	if err != nil {
		log.Printf("删除观察列表条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "删除观察列表条目失败",
		})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "观察列表条目不存在",
		})
		return
	}

	h.publishEvent(model.EntityWatchlist, model.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// CreateWatchlistBatch 批量导入观察列表条目处理程序
func (h *Handlers) CreateWatchlistBatch(c *gin.Context) {
	var raws []json.RawMessage
	if err := c.ShouldBindJSON(&raws); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	result := &model.BatchResult{}
	valid := make([]*model.WatchlistEntry, 0, len(raws))
	indices := make([]int, 0, len(raws))

	for i, raw := range raws {
		var req WatchlistCreateRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{Index: i, Reason: err.Error()})
			continue
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{Index: i, Reason: err.Error()})
			continue
		}
		valid = append(valid, req.toEntry())
		indices = append(indices, i)
	}

	stored := h.db.Watchlist().CreateBatch(valid)
	result.Created = stored.Created
	for _, failure := range stored.Failures {
		failure.Index = indices[failure.Index]
		result.Failures = append(result.Failures, failure)
	}
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Index < result.Failures[j].Index
	})

	c.JSON(http.StatusOK, result)
}
