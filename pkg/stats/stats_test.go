package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"MarketDiary/pkg/model"
)

func strPtr(s string) *string {
	return &s
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func TestSummarizeCountsAndTurnover(t *testing.T) {
	entries := []*model.DiaryEntry{
		{Date: "2024-01-01", Type: model.DiaryTypeBuy, Ticker: strPtr("NVDA"),
			Quantity: decPtr(t, "10"), Price: decPtr(t, "100.5")},
		{Date: "2024-01-01", Type: model.DiaryTypeSell, Ticker: strPtr("NVDA"),
			Quantity: decPtr(t, "5"), Price: decPtr(t, "120")},
		{Date: "2024-01-02", Type: model.DiaryTypeNote, Ticker: strPtr("AMD")},
		// 数量或价格缺失的条目不计入成交额
		{Date: "2024-01-02", Type: model.DiaryTypeBuy, Quantity: decPtr(t, "3")},
	}

	summary := Summarize(entries)

	require.Equal(t, 4, summary.Total)
	require.Equal(t, 2, summary.Buys)
	require.Equal(t, 1, summary.Sells)
	require.Equal(t, 1, summary.Notes)

	require.True(t, summary.BuyTurnover.Equal(decimal.RequireFromString("1005")))
	require.True(t, summary.SellTurnover.Equal(decimal.RequireFromString("600")))
}

func TestSummarizeDailySeriesAscending(t *testing.T) {
	entries := []*model.DiaryEntry{
		{Date: "2024-01-03", Type: model.DiaryTypeNote},
		{Date: "2024-01-01", Type: model.DiaryTypeBuy},
		{Date: "2024-01-03", Type: model.DiaryTypeBuy},
	}

	summary := Summarize(entries)

	require.Len(t, summary.Daily, 2)
	require.Equal(t, "2024-01-01", summary.Daily[0].Date)
	require.Equal(t, 1, summary.Daily[0].Buys)
	require.Equal(t, "2024-01-03", summary.Daily[1].Date)
	require.Equal(t, 1, summary.Daily[1].Buys)
	require.Equal(t, 1, summary.Daily[1].Notes)
}

func TestSummarizeTickerCountsOrdered(t *testing.T) {
	entries := []*model.DiaryEntry{
		{Date: "2024-01-01", Type: model.DiaryTypeBuy, Ticker: strPtr("NVDA")},
		{Date: "2024-01-02", Type: model.DiaryTypeSell, Ticker: strPtr("NVDA")},
		{Date: "2024-01-02", Type: model.DiaryTypeBuy, Ticker: strPtr("AMD")},
		{Date: "2024-01-03", Type: model.DiaryTypeBuy, Ticker: strPtr("CRDO")},
		{Date: "2024-01-03", Type: model.DiaryTypeNote}, // 无ticker不计入
	}

	summary := Summarize(entries)

	require.Len(t, summary.Tickers, 3)
	require.Equal(t, TickerCount{Ticker: "NVDA", Count: 2}, summary.Tickers[0])
	// 次数相同时按ticker字典序
	require.Equal(t, TickerCount{Ticker: "AMD", Count: 1}, summary.Tickers[1])
	require.Equal(t, TickerCount{Ticker: "CRDO", Count: 1}, summary.Tickers[2])
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	require.Equal(t, 0, summary.Total)
	require.True(t, summary.BuyTurnover.IsZero())
	require.Empty(t, summary.Daily)
	require.Empty(t, summary.Tickers)
}

func TestDateRange(t *testing.T) {
	today := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	start, end, bounded := DateRange("week", today)
	require.True(t, bounded)
	require.Equal(t, "2024-03-08", start)
	require.Equal(t, "2024-03-15", end)

	start, end, bounded = DateRange("month", today)
	require.True(t, bounded)
	require.Equal(t, "2024-02-14", start)
	require.Equal(t, "2024-03-15", end)

	start, _, bounded = DateRange("year", today)
	require.True(t, bounded)
	require.Equal(t, "2023-03-15", start)

	_, _, bounded = DateRange("all", today)
	require.False(t, bounded)
}
