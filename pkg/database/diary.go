package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"MarketDiary/pkg/model"
)

type DiaryDB struct {
	db *gorm.DB
}

// Create 插入新条目，两个时间戳写入同一个"当前时间"
func (d *DiaryDB) Create(entry *model.DiaryEntry) error {
	ts := now()
	entry.ID = 0
	entry.CreatedAt = ts
	entry.UpdatedAt = ts

	if err := d.db.Create(entry).Error; err != nil {
		return fmt.Errorf("创建日记条目失败: %w", err)
	}
	return nil
}

// GetByID 按ID查询，不存在时返回(nil, nil)而不是错误
func (d *DiaryDB) GetByID(id int64) (*model.DiaryEntry, error) {
	var entry model.DiaryEntry
	err := d.db.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询日记条目失败: %w", err)
	}
	return &entry, nil
}

// List 按过滤条件查询，日期倒序、同日按ID倒序，不分页
func (d *DiaryDB) List(filter model.DiaryFilter) ([]*model.DiaryEntry, error) {
	query := d.db.Model(&model.DiaryEntry{})

	if filter.StartDate != "" {
		query = query.Where("date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Where("date <= ?", filter.EndDate)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Ticker != "" {
		query = query.Where("ticker = ?", filter.Ticker)
	}

	entries := make([]*model.DiaryEntry, 0)
	if err := query.Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询日记列表失败: %w", err)
	}
	return entries, nil
}

// Update 部分更新，只重写传入的列和updatedAt
// 显式传null的可选列会被清空，未传的列保持不变，createdAt和ID永不改写
func (d *DiaryDB) Update(id int64, fields map[string]interface{}) (*model.DiaryEntry, error) {
	existing, err := d.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	delete(fields, "id")
	delete(fields, "created_at")
	fields["updated_at"] = now()

	err = d.db.Model(&model.DiaryEntry{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, fmt.Errorf("更新日记条目失败: %w", err)
	}

	return d.GetByID(id)
}

// Delete 按ID删除，返回是否确实存在该行
func (d *DiaryDB) Delete(id int64) (bool, error) {
	result := d.db.Delete(&model.DiaryEntry{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("删除日记条目失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreateBatch 逐条尽力写入，单条失败记录下来并继续，整批不包事务
func (d *DiaryDB) CreateBatch(entries []*model.DiaryEntry) *model.BatchResult {
	result := &model.BatchResult{}

	for i, entry := range entries {
		if err := d.Create(entry); err != nil {
			log.Printf("批量导入: 第%d条日记写入失败: %v", i, err)
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
