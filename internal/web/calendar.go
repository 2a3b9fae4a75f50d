package web

import (
	"time"
)

type CalendarMonth struct {
	Label string
	Weeks []CalendarWeek
}

type CalendarWeek struct {
	Days []CalendarDay
}

type CalendarDay struct {
	Date      string
	Day       int
	InMonth   bool
	HasMemos  bool
	MemoCount int
	Today     bool
}

// buildCalendarMonth lays out the month containing now as Sunday-first
// weeks, marking the days memos were written. counts is keyed YYYY-MM-DD.
func buildCalendarMonth(now time.Time, counts map[string]int) CalendarMonth {
	loc := now.Location()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, -1)
	today := now.Format("2006-01-02")

	offset := int(monthStart.Weekday())
	gridStart := monthStart.AddDate(0, 0, -offset)

	var weeks []CalendarWeek
	var days []CalendarDay
	for day := gridStart; ; day = day.AddDate(0, 0, 1) {
		dateKey := day.Format("2006-01-02")
		inMonth := day.Month() == monthStart.Month()
		count := 0
		if inMonth {
			count = counts[dateKey]
		}
		days = append(days, CalendarDay{
			Date:      dateKey,
			Day:       day.Day(),
			InMonth:   inMonth,
			HasMemos:  count > 0,
			MemoCount: count,
			Today:     dateKey == today,
		})

		if len(days) == 7 {
			weeks = append(weeks, CalendarWeek{Days: days})
			days = nil
			if !day.Before(monthEnd) && day.Weekday() == time.Saturday {
				break
			}
		}
	}

	return CalendarMonth{
		Label: monthStart.Format("January 2006"),
		Weeks: weeks,
	}
}
