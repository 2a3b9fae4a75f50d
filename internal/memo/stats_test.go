package memo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEmpty(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	stats := Aggregate(now, time.UTC, nil)
	assert.Zero(t, stats.TotalCount)
	assert.Zero(t, stats.TotalWords)
	assert.Zero(t, stats.AvgWordsPerMemo)
	assert.Zero(t, stats.RecentCount)
	require.Len(t, stats.MonthlyStats, MonthlyBucket)
	for _, m := range stats.MonthlyStats {
		assert.Zero(t, m.Count)
	}
	assert.Len(t, stats.PriorityCounts, 4)
}

func TestAggregateCalendarMonths(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []StatRow{
		{Content: "a b", CreatedAt: time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)},
		{Content: "a", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Content: "a\tb\nc", CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), IsPinned: true, Priority: PriorityUrgent},
		{Content: "", CreatedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
		{Content: "old", CreatedAt: time.Date(2025, 9, 30, 23, 59, 0, 0, time.UTC)},
	}
	stats := Aggregate(now, time.UTC, rows)

	want := []MonthCount{
		{Month: "2025-10", Count: 1},
		{Month: "2025-11", Count: 0},
		{Month: "2025-12", Count: 0},
		{Month: "2026-01", Count: 1},
		{Month: "2026-02", Count: 1},
		{Month: "2026-03", Count: 1},
	}
	assert.Equal(t, want, stats.MonthlyStats)
	assert.Equal(t, 5, stats.TotalCount)
	assert.Equal(t, 7, stats.TotalWords)
	assert.Equal(t, 1, stats.AvgWordsPerMemo)
	assert.Equal(t, 1, stats.PinnedCount)
	assert.Equal(t, 1, stats.PriorityCounts[PriorityUrgent])
	assert.Equal(t, map[string]int{"2026-03-01": 1}, stats.ActiveDays)
}

func TestAggregateRecentWindow(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	rows := []StatRow{
		{CreatedAt: now.Add(-RecentWindow)},
		{CreatedAt: now.Add(-RecentWindow - time.Second)},
		{CreatedAt: now.Add(-time.Hour)},
	}
	stats := Aggregate(now, time.UTC, rows)
	assert.Equal(t, 2, stats.RecentCount)
}

func TestAggregateUsesLocationForMonths(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	now := time.Date(2026, 3, 1, 1, 0, 0, 0, seoul)
	rows := []StatRow{{CreatedAt: time.Date(2026, 2, 28, 16, 30, 0, 0, time.UTC)}}
	stats := Aggregate(now, seoul, rows)
	assert.Equal(t, "2026-03", stats.MonthlyStats[MonthlyBucket-1].Month)
	assert.Equal(t, 1, stats.MonthlyStats[MonthlyBucket-1].Count)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount(" one two\nthree "))
}
