package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"MarketDiary/pkg/model"
)

type WatchlistDB struct {
	db *gorm.DB
}

// Create 插入新条目，两个时间戳写入同一个"当前时间"
func (w *WatchlistDB) Create(entry *model.WatchlistEntry) error {
	ts := now()
	entry.ID = 0
	entry.CreatedAt = ts
	entry.UpdatedAt = ts

	if err := w.db.Create(entry).Error; err != nil {
		return fmt.Errorf("创建观察列表条目失败: %w", err)
	}
	return nil
}

// GetByID 按ID查询，不存在时返回(nil, nil)而不是错误
func (w *WatchlistDB) GetByID(id int64) (*model.WatchlistEntry, error) {
	var entry model.WatchlistEntry
	err := w.db.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询观察列表条目失败: %w", err)
	}
	return &entry, nil
}

// GetByTicker 按ticker查询最早加入的一条
func (w *WatchlistDB) GetByTicker(ticker string) (*model.WatchlistEntry, error) {
	var entry model.WatchlistEntry
	err := w.db.Where("ticker = ?", ticker).Order("id ASC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询观察列表条目失败: %w", err)
	}
	return &entry, nil
}

// List 按过滤条件查询，加入日期倒序、同日按ID倒序，不分页
func (w *WatchlistDB) List(filter model.WatchlistFilter) ([]*model.WatchlistEntry, error) {
	query := w.db.Model(&model.WatchlistEntry{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("ticker LIKE ? OR name LIKE ?", pattern, pattern)
	}

	entries := make([]*model.WatchlistEntry, 0)
	if err := query.Order("added_date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询观察列表失败: %w", err)
	}
	return entries, nil
}

// Update 部分更新，只重写传入的列和updatedAt
func (w *WatchlistDB) Update(id int64, fields map[string]interface{}) (*model.WatchlistEntry, error) {
	existing, err := w.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	delete(fields, "id")
	delete(fields, "created_at")
	fields["updated_at"] = now()

	err = w.db.Model(&model.WatchlistEntry{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, fmt.Errorf("更新观察列表条目失败: %w", err)
	}

	return w.GetByID(id)
}

// Delete 按ID删除，返回是否确实存在该行
func (w *WatchlistDB) Delete(id int64) (bool, error) {
	result := w.db.Delete(&model.WatchlistEntry{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("删除观察列表条目失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreateBatch 逐条尽力写入，单条失败记录下来并继续，整批不包事务
func (w *WatchlistDB) CreateBatch(entries []*model.WatchlistEntry) *model.BatchResult {
	result := &model.BatchResult{}

	for i, entry := range entries {
		if err := w.Create(entry); err != nil {
			log.Printf("批量导入: 第%d条观察列表条目写入失败: %v", i, err)
			result.Failures = append(result.Failures, model.BatchFailure{
				Index:  i,
				Reason: err.Error(),
			})
			continue
		}
		result.Created++
	}

	return result
}
