package web

import (
	"html/template"

	"gmemo/internal/auth"
	"gmemo/internal/memo"
)

type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	User            User
	Flashes         []Flash

	// forms
	Form       map[string]string
	FormPinned bool
	Errors     map[string]string
	FormError  string
	Next       string
	Priorities []PriorityDisplay

	// memos
	Memo         MemoCard
	Page         memo.Page
	Cards        []MemoCard
	SearchQuery  string
	Stats        memo.Stats
	Calendar     CalendarMonth
	MonthlyMax   int
	Profile      auth.User
	MemoCount    int
	Registration bool
}

type MemoCard struct {
	ID           int64
	Title        string
	Content      string
	RenderedHTML template.HTML
	Priority     PriorityDisplay
	IsPinned     bool
	CreatedLabel string
	UpdatedLabel string
	Edited       bool
	URL          string
}
