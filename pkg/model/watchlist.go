package model

// WatchlistEntry 观察列表条目
// ticker与日记条目只是自由文本关联，没有外键关系
type WatchlistEntry struct {
	ID           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Ticker       string  `gorm:"type:varchar(20);not null;index" json:"ticker"`
	Name         string  `gorm:"type:varchar(100);not null" json:"name"`
	Exchange     *string `gorm:"type:varchar(30)" json:"exchange"`
	Category     string  `gorm:"type:varchar(50);not null;index" json:"category"`
	Tags         string  `gorm:"type:text;not null" json:"tags"`
	Thesis       string  `gorm:"type:text;not null" json:"thesis"`
	Risk         *string `gorm:"type:text" json:"risk"`
	Notes        *string `gorm:"type:text" json:"notes"`
	Conviction   *int    `json:"conviction"`
	PositionSize *string `gorm:"type:varchar(30)" json:"positionSize"`
	AddedDate    string  `gorm:"type:varchar(10);not null;index" json:"addedDate"`
	Status       *string `gorm:"type:varchar(20);index" json:"status"`
	CreatedAt    string  `gorm:"type:varchar(35);not null" json:"createdAt"`
	UpdatedAt    string  `gorm:"type:varchar(35);not null" json:"updatedAt"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// WatchlistFilter 观察列表过滤条件
type WatchlistFilter struct {
	Category string // 精确匹配
	Status   string // 精确匹配
	Search   string // ticker或name的子串匹配
}
