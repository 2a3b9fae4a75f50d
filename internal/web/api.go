package web

import (
	"net/http"

	"gmemo/internal/memo"
)

type quickSearchItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Priority  string `json:"priority"`
	IsPinned  bool   `json:"is_pinned"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	URL       string `json:"url"`
}

type quickSearchResponse struct {
	Results []quickSearchItem `json:"results"`
	Count   int               `json:"count"`
	Query   string            `json:"query"`
}

func (s *Server) handleQuickSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	result, err := s.memos.QuickSearch(r.Context(), identityFrom(r.Context()), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	loc := s.memos.Location()
	resp := quickSearchResponse{
		Results: make([]quickSearchItem, 0, len(result.Results)),
		Count:   result.Count(),
		Query:   result.Query,
	}
	for _, m := range result.Results {
		resp.Results = append(resp.Results, quickSearchItem{
			ID:        m.ID,
			Title:     m.Title,
			Content:   m.Content,
			Priority:  string(m.Priority),
			IsPinned:  m.IsPinned,
			CreatedAt: m.CreatedAt.In(loc).Format(timeLayout),
			UpdatedAt: m.UpdatedAt.In(loc).Format(timeLayout),
			URL:       memoURL(m.ID),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatsData(w http.ResponseWriter, r *http.Request) {
	stats, err := s.memos.Stats(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stats.MonthlyStats == nil {
		stats.MonthlyStats = []memo.MonthCount{}
	}
	writeJSON(w, http.StatusOK, stats)
}
