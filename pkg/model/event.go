package model

import (
	"time"

	"github.com/google/uuid"
)

// 事件动作
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// 事件实体
const (
	EntityDiary     = "diary"
	EntityWatchlist = "watchlist"
)

// EntryEvent 条目变更事件，发布到事件流供外部订阅
type EntryEvent struct {
	ID      string `json:"id"`
	Entity  string `json:"entity"`
	Action  string `json:"action"`
	EntryID int64  `json:"entryId"`
	At      string `json:"at"`
}

// NewEntryEvent 创建条目变更事件
func NewEntryEvent(entity, action string, entryID int64) *EntryEvent {
	return &EntryEvent{
		ID:      uuid.New().String(),
		Entity:  entity,
		Action:  action,
		EntryID: entryID,
		At:      time.Now().UTC().Format(time.RFC3339),
	}
}

// Subject 事件发布主题，如 diary.created
func (e *EntryEvent) Subject() string {
	return e.Entity + "." + e.Action
}
