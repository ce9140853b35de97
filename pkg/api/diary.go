package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"MarketDiary/pkg/model"
)

// parseID 解析必填的id查询参数，缺失或非整数时直接写出400
func parseID(c *gin.Context) (int64, bool) {
	raw := c.Query("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ID参数不能为空",
		})
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ID参数必须是整数",
		})
		return 0, false
	}
	return id, true
}

// DiaryCreateRequest 新建日记条目请求
// 在请求边界完成校验，进存储层之前就是完整合法的命令对象
type DiaryCreateRequest struct {
	Date     string           `json:"date" binding:"required,datetime=2006-01-02"`
	Type     model.DiaryType  `json:"type" binding:"required,oneof=buy sell note"`
	Ticker   *string          `json:"ticker"`
	Broker   *string          `json:"broker"`
	Quantity *decimal.Decimal `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Currency *string          `json:"currency"`
	Content  string           `json:"content" binding:"required"`
	Tags     *string          `json:"tags"`
}

// validate 补充binding标签覆盖不到的数值检查
func (r *DiaryCreateRequest) validate() error {
	if r.Quantity != nil && r.Quantity.IsNegative() {
		return fmt.Errorf("quantity不能为负数")
	}
	if r.Price != nil && r.Price.IsNegative() {
		return fmt.Errorf("price不能为负数")
	}
	return nil
}

func (r *DiaryCreateRequest) toEntry() *model.DiaryEntry {
	return &model.DiaryEntry{
		Date:     r.Date,
		Type:     r.Type,
		Ticker:   r.Ticker,
		Broker:   r.Broker,
		Quantity: r.Quantity,
		Price:    r.Price,
		Currency: r.Currency,
		Content:  r.Content,
		Tags:     r.Tags,
	}
}

// ListDiary 日记列表处理程序
func (h *Handlers) ListDiary(c *gin.Context) {
	filter := model.DiaryFilter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Type:      c.Query("type"),
		Ticker:    c.Query("ticker"),
	}

	entries, err := h.db.Diary().List(filter)
	if err != nil {
		log.Printf("查询日记列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询日记列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// CreateDiary 新建日记条目处理程序
func (h *Handlers) CreateDiary(c *gin.Context) {
	var req DiaryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	entry := req.toEntry()
	if err := h.db.Diary().Create(entry); err != nil {
		log.Printf("创建日记条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "创建日记条目失败",
		})
		return
	}

	h.publishEvent(model.EntityDiary, model.ActionCreated, entry.ID)
	c.JSON(http.StatusCreated, entry)
}

// diaryColumns 允许部分更新的JSON键到列名的映射
var diaryColumns = map[string]string{
	"date":     "date",
	"type":     "type",
	"ticker":   "ticker",
	"broker":   "broker",
	"quantity": "quantity",
	"price":    "price",
	"currency": "currency",
	"content":  "content",
	"tags":     "tags",
}

// diaryUpdateFields 校验部分更新的字段值并转成列名映射
// 显式null会清空可选列，清单之外的键照原实现忽略
func diaryUpdateFields(body map[string]interface{}) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	for key, value := range body {
		column, ok := diaryColumns[key]
		if !ok {
			continue
		}

		switch key {
		case "date":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("date必须是字符串")
			}
			if _, err := time.Parse("2006-01-02", s); err != nil {
				return nil, fmt.Errorf("date必须是YYYY-MM-DD格式")
			}
		case "type":
			s, ok := value.(string)
			if !ok || (s != string(model.DiaryTypeBuy) && s != string(model.DiaryTypeSell) && s != string(model.DiaryTypeNote)) {
				return nil, fmt.Errorf("type必须是buy、sell或note")
			}
		case "content":
			if _, ok := value.(string); !ok {
				return nil, fmt.Errorf("content必须是字符串")
			}
		case "quantity", "price":
			if value != nil {
				n, ok := value.(float64)
				if !ok {
					return nil, fmt.Errorf("%s必须是数值", key)
				}
				if n < 0 {
					return nil, fmt.Errorf("%s不能为负数", key)
				}
			}
		default:
			if value != nil {
				if _, ok := value.(string); !ok {
					return nil, fmt.Errorf("%s必须是字符串", key)
				}
			}
		}

		fields[column] = value
	}

	return fields, nil
}

// UpdateDiary 更新日记条目处理程序
func (h *Handlers) UpdateDiary(c *gin.Context) {
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

	fields, err := diaryUpdateFields(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	entry, err := h.db.Diary().Update(id, fields)
	if err != nil {
		log.Printf("更新日记条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "更新日记条目失败",
		})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "日记条目不存在",
		})
		return
	}

	h.publishEvent(model.EntityDiary, model.ActionUpdated, entry.ID)
	c.JSON(http.StatusOK, entry)
}

// DeleteDiary 删除日记条目处理程序
func (h *Handlers) DeleteDiary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	existed, err := h.db.Diary().Delete(id)
	if err != nil {
		log.Printf("删除日记条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "删除日记条目失败",
		})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "日记条目不存在",
		})
		return
	}

	h.publishEvent(model.EntityDiary, model.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// CreateDiaryBatch 批量导入日记条目处理程序
// 逐条校验和写入，单条失败不中断整批，返回成功数和逐条失败原因
func (h *Handlers) CreateDiaryBatch(c *gin.Context) {
	var raws []json.RawMessage
	if err := c.ShouldBindJSON(&raws); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	result := &model.BatchResult{}
	valid := make([]*model.DiaryEntry, 0, len(raws))
	indices := make([]int, 0, len(raws))

	for i, raw := range raws {
		var req DiaryCreateRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{Index: i, Reason: err.Error()})
			continue
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{Index: i, Reason: err.Error()})
			continue
		}
		if err := req.validate(); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{Index: i, Reason: err.Error()})
			continue
		}
		valid = append(valid, req.toEntry())
		indices = append(indices, i)
	}

	stored := h.db.Diary().CreateBatch(valid)
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
