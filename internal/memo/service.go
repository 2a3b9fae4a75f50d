package memo

import (
	"context"
	"log/slog"
	"time"
)

// Store persists memos. Every method is bounded by the Scope it receives and
// reports ErrNotFound for ids outside that scope.
type Store interface {
	InsertMemo(ctx context.Context, scope Scope, m Memo) (Memo, error)
	GetMemo(ctx context.Context, scope Scope, id int64) (Memo, error)
	UpdateMemo(ctx context.Context, scope Scope, m Memo) error
	DeleteMemo(ctx context.Context, scope Scope, id int64) error
	CountMemos(ctx context.Context, scope Scope, search string) (int, error)
	ListMemos(ctx context.Context, scope Scope, search string, limit, offset int) ([]Memo, error)
	RecentlyUpdated(ctx context.Context, scope Scope, search string, limit int) ([]Memo, error)
	StatRows(ctx context.Context, scope Scope) ([]StatRow, error)
}

// Observer is told about completed mutations.
type Observer interface {
	MemoChanged(op string)
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// Service runs each memo operation for one identity. It keeps no per-request state.
type Service struct {
	store    Store
	clock    func() time.Time
	loc      *time.Location
	pageSize int
	observer Observer
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		clock:    time.Now,
		loc:      time.Local,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PageSize() int {
	return s.pageSize
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the service clock in the configured location.
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

// now is millisecond precision to match what the stores keep.
func (s *Service) now() time.Time {
	return time.UnixMilli(s.clock().UnixMilli()).UTC()
}

func (s *Service) Create(ctx context.Context, id Identity, in Input) (Memo, error) {
	scope, err := Authorize(id)
	if err != nil {
		return Memo{}, err
	}
	in, err = in.Validate()
	if err != nil {
		return Memo{}, err
	}
	now := s.now()
	m := Memo{
		Title:     in.Title,
		Content:   in.Content,
		Priority:  Priority(in.Priority),
		IsPinned:  in.IsPinned,
		OwnerID:   scope.Owner(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m, err = s.store.InsertMemo(ctx, scope, m)
	if err != nil {
		return Memo{}, err
	}
	slog.Debug("memo created", "owner", id.Username, "id", m.ID)
	s.notify("create")
	return m, nil
}

func (s *Service) Get(ctx context.Context, id Identity, memoID int64) (Memo, error) {
	scope, err := Authorize(id)
	if err != nil {
		return Memo{}, err
	}
	if memoID <= 0 {
		return Memo{}, ErrNotFound
	}
	return s.store.GetMemo(ctx, scope, memoID)
}

func (s *Service) Update(ctx context.Context, id Identity, memoID int64, in Input) (Memo, error) {
	scope, err := Authorize(id)
	if err != nil {
		return Memo{}, err
	}
	if memoID <= 0 {
		return Memo{}, ErrNotFound
	}
	current, err := s.store.GetMemo(ctx, scope, memoID)
	if err != nil {
		return Memo{}, err
	}
	in, err = in.Validate()
	if err != nil {
		return Memo{}, err
	}
	next := current
	next.Title = in.Title
	next.Content = in.Content
	next.Priority = Priority(in.Priority)
	next.IsPinned = in.IsPinned
	next.UpdatedAt = s.now()
	if next.UpdatedAt.Before(next.CreatedAt) {
		next.UpdatedAt = next.CreatedAt
	}
	if err := s.store.UpdateMemo(ctx, scope, next); err != nil {
		return Memo{}, err
	}
	slog.Debug("memo updated", "owner", id.Username, "id", next.ID)
	s.notify("update")
	return next, nil
}

// TogglePin flips the pinned flag through the regular update path.
func (s *Service) TogglePin(ctx context.Context, id Identity, memoID int64) (Memo, error) {
	current, err := s.Get(ctx, id, memoID)
	if err != nil {
		return Memo{}, err
	}
	in := InputFrom(current)
	in.IsPinned = !in.IsPinned
	return s.Update(ctx, id, memoID, in)
}

func (s *Service) Delete(ctx context.Context, id Identity, memoID int64) error {
	scope, err := Authorize(id)
	if err != nil {
		return err
	}
	if memoID <= 0 {
		return ErrNotFound
	}
	if err := s.store.DeleteMemo(ctx, scope, memoID); err != nil {
		return err
	}
	slog.Debug("memo deleted", "owner", id.Username, "id", memoID)
	s.notify("delete")
	return nil
}

// List returns one page of the owner's memos, pinned first then newest.
func (s *Service) List(ctx context.Context, id Identity, q Query) (Page, error) {
	scope, err := Authorize(id)
	if err != nil {
		return Page{}, err
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = s.pageSize
	}
	search := NormalizeSearch(q.Search)
	total, err := s.store.CountMemos(ctx, scope, search)
	if err != nil {
		return Page{}, err
	}
	number, totalPages, offset := Window(total, q.Page, perPage)
	var items []Memo
	if total > 0 {
		items, err = s.store.ListMemos(ctx, scope, search, perPage, offset)
		if err != nil {
			return Page{}, err
		}
	}
	return newPage(items, number, perPage, total, totalPages), nil
}

// QuickSearch never fails on an empty query; it answers with no results.
func (s *Service) QuickSearch(ctx context.Context, id Identity, q string) (QuickSearchResult, error) {
	scope, err := Authorize(id)
	if err != nil {
		return QuickSearchResult{}, err
	}
	result := QuickSearchResult{Query: q, Results: []Memo{}}
	search := NormalizeSearch(q)
	if search == "" {
		return result, nil
	}
	memos, err := s.store.RecentlyUpdated(ctx, scope, search, QuickSearchLimit)
	if err != nil {
		return QuickSearchResult{}, err
	}
	result.Results = quickView(memos)
	return result, nil
}

func (s *Service) Stats(ctx context.Context, id Identity) (Stats, error) {
	scope, err := Authorize(id)
	if err != nil {
		return Stats{}, err
	}
	rows, err := s.store.StatRows(ctx, scope)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(s.clock(), s.loc, rows), nil
}

func (s *Service) notify(op string) {
	if s.observer != nil {
		s.observer.MemoChanged(op)
	}
}
