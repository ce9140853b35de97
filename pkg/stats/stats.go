package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"MarketDiary/pkg/model"
)

// DailyCount 单日各类型条目数
type DailyCount struct {
	Date  string `json:"date"`
	Buys  int    `json:"buys"`
	Sells int    `json:"sells"`
	Notes int    `json:"notes"`
}

// TickerCount 单个ticker的条目数
type TickerCount struct {
	Ticker string `json:"ticker"`
	Count  int    `json:"count"`
}

// Summary 日记统计汇总
type Summary struct {
	Total        int             `json:"total"`
	Buys         int             `json:"buys"`
	Sells        int             `json:"sells"`
	Notes        int             `json:"notes"`
	BuyTurnover  decimal.Decimal `json:"buyTurnover"`  // Σ 数量×价格（买入）
	SellTurnover decimal.Decimal `json:"sellTurnover"` // Σ 数量×价格（卖出）
	Daily        []DailyCount    `json:"daily"`
	Tickers      []TickerCount   `json:"tickers"`
}

// Summarize 对一组日记条目做统计汇总
// 成交额只统计数量和价格都填写的条目
func Summarize(entries []*model.DiaryEntry) *Summary {
	summary := &Summary{
		Total:        len(entries),
		BuyTurnover:  decimal.Zero,
		SellTurnover: decimal.Zero,
	}

	daily := make(map[string]*DailyCount)
	tickers := make(map[string]int)

	for _, entry := range entries {
		day, ok := daily[entry.Date]
		if !ok {
			day = &DailyCount{Date: entry.Date}
			daily[entry.Date] = day
		}

		switch entry.Type {
		case model.DiaryTypeBuy:
			summary.Buys++
			day.Buys++
		case model.DiaryTypeSell:
			summary.Sells++
			day.Sells++
		default:
			summary.Notes++
			day.Notes++
		}

		if entry.Quantity != nil && entry.Price != nil {
			turnover := entry.Quantity.Mul(*entry.Price)
			switch entry.Type {
			case model.DiaryTypeBuy:
				summary.BuyTurnover = summary.BuyTurnover.Add(turnover)
			case model.DiaryTypeSell:
				summary.SellTurnover = summary.SellTurnover.Add(turnover)
			}
		}

		if entry.Ticker != nil && *entry.Ticker != "" {
			tickers[*entry.Ticker]++
		}
	}

	summary.Daily = make([]DailyCount, 0, len(daily))
	for _, day := range daily {
		summary.Daily = append(summary.Daily, *day)
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date < summary.Daily[j].Date
	})

	summary.Tickers = make([]TickerCount, 0, len(tickers))
	for ticker, count := range tickers {
		summary.Tickers = append(summary.Tickers, TickerCount{Ticker: ticker, Count: count})
	}
	sort.Slice(summary.Tickers, func(i, j int) bool {
		if summary.Tickers[i].Count != summary.Tickers[j].Count {
			return summary.Tickers[i].Count > summary.Tickers[j].Count
		}
		return summary.Tickers[i].Ticker < summary.Tickers[j].Ticker
	})

	return summary
}

// DateRange 把周期名解析为日期区间
// week=近7天，month=近30天，year=近12个月，all=不限
func DateRange(period string, today time.Time) (startDate, endDate string, bounded bool) {
	end := today.Format("2006-01-02")

	switch period {
	case "week":
		return today.AddDate(0, 0, -7).Format("2006-01-02"), end, true
	case "month":
		return today.AddDate(0, 0, -30).Format("2006-01-02"), end, true
	case "year":
		return today.AddDate(0, -12, 0).Format("2006-01-02"), end, true
	default:
		return "", "", false
	}
}
