package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gmemo/internal/memo"
)

const timeLayout = "2006-01-02 15:04"

func memoURL(id int64) string {
	return "/memos/" + strconv.FormatInt(id, 10)
}

func memoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) card(m memo.Memo) MemoCard {
	loc := s.memos.Location()
	return MemoCard{
		ID:           m.ID,
		Title:        m.Title,
		Content:      m.Content,
		Priority:     displayFor(m.Priority),
		IsPinned:     m.IsPinned,
		CreatedLabel: m.CreatedAt.In(loc).Format(timeLayout),
		UpdatedLabel: m.UpdatedAt.In(loc).Format(timeLayout),
		Edited:       m.UpdatedAt.After(m.CreatedAt),
		URL:          memoURL(m.ID),
	}
}

func readMemoInput(r *http.Request) (memo.Input, error) {
	if err := r.ParseForm(); err != nil {
		return memo.Input{}, err
	}
	pinned := strings.ToLower(strings.TrimSpace(r.PostForm.Get("is_pinned")))
	return memo.Input{
		Title:    r.PostForm.Get("title"),
		Content:  r.PostForm.Get("content"),
		Priority: r.PostForm.Get("priority"),
		IsPinned: pinned == "on" || pinned == "true" || pinned == "1",
	}, nil
}

func (s *Server) memoForm(title, tmpl string, in memo.Input, card MemoCard, errs map[string]string) ViewData {
	priority := in.Priority
	if priority == "" {
		priority = string(memo.PriorityNormal)
	}
	return ViewData{
		Title:           title,
		ContentTemplate: tmpl,
		Form: map[string]string{
			"title":    in.Title,
			"content":  in.Content,
			"priority": priority,
		},
		FormPinned: in.IsPinned,
		Errors:     errs,
		Priorities: priorityOptions(),
		Memo:       card,
	}
}

func (s *Server) handleMemoList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := strings.TrimSpace(query.Get("q"))
	page, err := s.memos.List(r.Context(), identityFrom(r.Context()), memo.Query{
		Search: search,
		Page:   memo.ParsePage(query.Get("page")),
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	cards := make([]MemoCard, 0, len(page.Items))
	for _, m := range page.Items {
		c := s.card(m)
		c.Content = memo.Truncate(m.Content, memo.QuickContentLength)
		cards = append(cards, c)
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "My memos",
		ContentTemplate: "memo_list",
		Page:            page,
		Cards:           cards,
		SearchQuery:     search,
	})
}

func (s *Server) handleMemoCreateForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.memoForm("New memo", "memo_form", memo.Input{}, MemoCard{}, nil))
}

func (s *Server) handleMemoCreate(w http.ResponseWriter, r *http.Request) {
	in, err := readMemoInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, err := s.memos.Create(r.Context(), identityFrom(r.Context()), in)
	if verr, ok := memo.IsValidation(err); ok {
		s.render(w, r, http.StatusOK, s.memoForm("New memo", "memo_form", in, MemoCard{}, verr.Fields))
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.addFlash(w, r, flashSuccess, "Memo created.")
	http.Redirect(w, r, memoURL(m.ID), http.StatusFound)
}

func (s *Server) handleMemoDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := memoID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	m, err := s.memos.Get(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	card := s.card(m)
	card.RenderedHTML, err = s.markdown.HTML(m.Content)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           m.Title,
		ContentTemplate: "memo_detail",
		Memo:            card,
	})
}

func (s *Server) handleMemoEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := memoID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	m, err := s.memos.Get(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, s.memoForm("Edit memo", "memo_form", memo.InputFrom(m), s.card(m), nil))
}

func (s *Server) handleMemoEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := memoID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	in, err := readMemoInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, err := s.memos.Update(r.Context(), identityFrom(r.Context()), id, in)
	if verr, ok := memo.IsValidation(err); ok {
		card := MemoCard{ID: id, URL: memoURL(id)}
		s.render(w, r, http.StatusOK, s.memoForm("Edit memo", "memo_form", in, card, verr.Fields))
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.addFlash(w, r, flashSuccess, "Memo updated.")
	http.Redirect(w, r, memoURL(m.ID), http.StatusFound)
}

func (s *Server) handleMemoDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := memoID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	m, err := s.memos.Get(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Delete memo",
		ContentTemplate: "memo_delete",
		Memo:            s.card(m),
	})
}

func (s *Server) handleMemoDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := memoID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	if err := s.memos.Delete(r.Context(), identityFrom(r.Context()), id); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.addFlash(w, r, flashSuccess, "Memo deleted.")
	http.Redirect(w, r, "/memos/", http.StatusFound)
}

func (s *Server) handleMemoPin(w http.ResponseWriter, r *http.Request) {
	id, ok := memoID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	m, err := s.memos.TogglePin(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if m.IsPinned {
		s.addFlash(w, r, flashInfo, "Memo pinned.")
	} else {
		s.addFlash(w, r, flashInfo, "Memo unpinned.")
	}
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusFound)
}

func (s *Server) handleStatsPage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.memos.Stats(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	maxCount := 0
	for _, m := range stats.MonthlyStats {
		if m.Count > maxCount {
			maxCount = m.Count
		}
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Statistics",
		ContentTemplate: "memo_stats",
		Stats:           stats,
		MonthlyMax:      maxCount,
		Priorities:      priorityOptions(),
		Calendar:        buildCalendarMonth(s.memos.Now(), stats.ActiveDays),
	})
}
