package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// 数量和价格在JSON中按数值输出，与前端表单的number字段保持一致
	decimal.MarshalJSONWithoutQuotes = true
}

// DiaryType 日记条目类型
type DiaryType string

const (
	DiaryTypeBuy  DiaryType = "buy"  // 买入
	DiaryTypeSell DiaryType = "sell" // 卖出
	DiaryTypeNote DiaryType = "note" // 所感
)

// DiaryEntry 投资日记条目
// 日期和时间戳按ISO-8601文本存储，没有原生日期列
type DiaryEntry struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      string           `gorm:"type:varchar(10);not null;index" json:"date"`
	Type      DiaryType        `gorm:"type:varchar(10);not null;index" json:"type"`
	Ticker    *string          `gorm:"type:varchar(20);index" json:"ticker"`
	Broker    *string          `gorm:"type:varchar(50)" json:"broker"`
	Quantity  *decimal.Decimal `gorm:"type:numeric(20,6)" json:"quantity"`
	Price     *decimal.Decimal `gorm:"type:numeric(20,6)" json:"price"`
	Currency  *string          `gorm:"type:varchar(10)" json:"currency"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	Tags      *string          `gorm:"type:text" json:"tags"`
	CreatedAt string           `gorm:"type:varchar(35);not null" json:"createdAt"`
	UpdatedAt string           `gorm:"type:varchar(35);not null" json:"updatedAt"`
}

func (DiaryEntry) TableName() string {
	return "diary_entries"
}

// DiaryFilter 日记列表过滤条件，全部可选，同时给出时按AND组合
type DiaryFilter struct {
	StartDate string // date >=
	EndDate   string // date <=
	Type      string // 精确匹配
	Ticker    string // 精确匹配
}
