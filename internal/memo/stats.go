package memo

import (
	"strings"
	"time"
)

const (
	RecentWindow  = 7 * 24 * time.Hour
	MonthlyBucket = 6
)

// StatRow is the part of a memo the statistics need.
type StatRow struct {
	Content   string
	Priority  Priority
	IsPinned  bool
	CreatedAt time.Time
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalCount      int              `json:"total_count"`
	TotalWords      int              `json:"total_words"`
	RecentCount     int              `json:"recent_count"`
	AvgWordsPerMemo int              `json:"avg_words_per_memo"`
	MonthlyStats    []MonthCount     `json:"monthly_stats"`
	PinnedCount     int              `json:"pinned_count"`
	PriorityCounts  map[Priority]int `json:"priority_counts"`
	ActiveDays      map[string]int   `json:"-"`
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Aggregate computes statistics for rows as of now. Calendar months and days
// are taken in loc.
func Aggregate(now time.Time, loc *time.Location, rows []StatRow) Stats {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	stats := Stats{
		PriorityCounts: make(map[Priority]int, 4),
		ActiveDays:     make(map[string]int),
	}
	for _, p := range Priorities() {
		stats.PriorityCounts[p] = 0
	}

	months := make([]MonthCount, MonthlyBucket)
	monthIndex := make(map[string]int, MonthlyBucket)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	for i := 0; i < MonthlyBucket; i++ {
		key := first.AddDate(0, i-(MonthlyBucket-1), 0).Format("2006-01")
		months[i] = MonthCount{Month: key}
		monthIndex[key] = i
	}
	currentMonth := now.Format("2006-01")
	recentFrom := now.Add(-RecentWindow)

	for _, row := range rows {
		stats.TotalCount++
		stats.TotalWords += WordCount(row.Content)
		if row.IsPinned {
			stats.PinnedCount++
		}
		if row.Priority.Valid() {
			stats.PriorityCounts[row.Priority]++
		}
		created := row.CreatedAt.In(loc)
		if !created.Before(recentFrom) && !created.After(now) {
			stats.RecentCount++
		}
		key := created.Format("2006-01")
		if i, ok := monthIndex[key]; ok {
			months[i].Count++
		}
		if key == currentMonth {
			stats.ActiveDays[created.Format("2006-01-02")]++
		}
	}
	if stats.TotalCount > 0 {
		stats.AvgWordsPerMemo = stats.TotalWords / stats.TotalCount
	}
	stats.MonthlyStats = months
	return stats
}
