package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"MarketDiary/pkg/model"
	"MarketDiary/pkg/stats"
)

// StatsSummary 日记统计处理程序
// 显式传startDate/endDate时优先于period
func (h *Handlers) StatsSummary(c *gin.Context) {
	period := c.DefaultQuery("period", "month")
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")

	if startDate == "" && endDate == "" {
		if start, end, bounded := stats.DateRange(period, time.Now()); bounded {
			startDate, endDate = start, end
		}
	}

	entries, err := h.db.Diary().List(model.DiaryFilter{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		log.Printf("查询统计数据失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询统计数据失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":    period,
		"startDate": startDate,
		"endDate":   endDate,
		"summary":   stats.Summarize(entries),
	})
}
