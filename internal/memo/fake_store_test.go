package memo

import (
	"context"
	"sync"
)

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	memos  map[int64]Memo
	writes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{memos: make(map[int64]Memo)}
}

func (f *fakeStore) InsertMemo(_ context.Context, scope Scope, m Memo) (Memo, error) {
	if err := scope.Check(); err != nil {
		return Memo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	m.OwnerID = scope.Owner()
	f.memos[m.ID] = m
	f.writes++
	return m, nil
}

func (f *fakeStore) GetMemo(_ context.Context, scope Scope, id int64) (Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memos[id]
	if !ok || !scope.Owns(m) {
		return Memo{}, ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) UpdateMemo(_ context.Context, scope Scope, m Memo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.memos[m.ID]
	if !ok || !scope.Owns(current) {
		return ErrNotFound
	}
	m.OwnerID = current.OwnerID
	m.CreatedAt = current.CreatedAt
	f.memos[m.ID] = m
	f.writes++
	return nil
}

func (f *fakeStore) DeleteMemo(_ context.Context, scope Scope, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memos[id]
	if !ok || !scope.Owns(m) {
		return ErrNotFound
	}
	delete(f.memos, id)
	f.writes++
	return nil
}

func (f *fakeStore) owned(scope Scope, search string) []Memo {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Memo
	for _, m := range f.memos {
		if scope.Owns(m) && Matches(m, search) {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeStore) CountMemos(_ context.Context, scope Scope, search string) (int, error) {
	return len(f.owned(scope, search)), nil
}

func (f *fakeStore) ListMemos(_ context.Context, scope Scope, search string, limit, offset int) ([]Memo, error) {
	memos := f.owned(scope, search)
	SortDefault(memos)
	if offset >= len(memos) {
		return nil, nil
	}
	end := offset + limit
	if end > len(memos) {
		end = len(memos)
	}
	return memos[offset:end], nil
}

func (f *fakeStore) RecentlyUpdated(_ context.Context, scope Scope, search string, limit int) ([]Memo, error) {
	memos := f.owned(scope, search)
	SortRecentlyUpdated(memos)
	if len(memos) > limit {
		memos = memos[:limit]
	}
	return memos, nil
}

func (f *fakeStore) StatRows(_ context.Context, scope Scope) ([]StatRow, error) {
	var rows []StatRow
	for _, m := range f.owned(scope, "") {
		rows = append(rows, StatRow{Content: m.Content, Priority: m.Priority, IsPinned: m.IsPinned, CreatedAt: m.CreatedAt})
	}
	return rows, nil
}

type countingObserver struct {
	ops []string
}

func (c *countingObserver) MemoChanged(op string) {
	c.ops = append(c.ops, op)
}
