package memo

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	QuickSearchLimit   = 10
	QuickContentLength = 100
	TruncationMarker   = "..."
)

// NormalizeSearch trims q; an empty result means "no filter".
func NormalizeSearch(q string) string {
	return strings.TrimSpace(q)
}

// Fold is the case mapping used by every search implementation.
func Fold(s string) string {
	return strings.ToLower(s)
}

// Matches reports whether q occurs, ignoring case, in the title or the content.
// An empty q matches everything.
func Matches(m Memo, q string) bool {
	q = NormalizeSearch(q)
	if q == "" {
		return true
	}
	needle := Fold(q)
	return strings.Contains(Fold(m.Title), needle) || strings.Contains(Fold(m.Content), needle)
}

// SortDefault orders memos pinned first, then newest created first. Equal
// timestamps fall back to the later inserted (higher) id first.
func SortDefault(memos []Memo) {
	sort.SliceStable(memos, func(i, j int) bool {
		a, b := memos[i], memos[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// SortRecentlyUpdated orders memos by updated_at descending, later id first on ties.
func SortRecentlyUpdated(memos []Memo) {
	sort.SliceStable(memos, func(i, j int) bool {
		a, b := memos[i], memos[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
}

// Truncate shortens s to at most n characters, appending TruncationMarker when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + TruncationMarker
		}
		count++
	}
	return s
}

// QuickSearchResult is the capped, truncated search answer.
type QuickSearchResult struct {
	Query   string
	Results []Memo
}

func (r QuickSearchResult) Count() int {
	return len(r.Results)
}

func quickView(memos []Memo) []Memo {
	if len(memos) > QuickSearchLimit {
		memos = memos[:QuickSearchLimit]
	}
	out := make([]Memo, len(memos))
	for i, m := range memos {
		m.Content = Truncate(m.Content, QuickContentLength)
		out[i] = m
	}
	return out
}
