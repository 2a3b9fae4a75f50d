package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gmemo/internal/memo"
)

const memoColumns = "id, owner_id, title, content, priority, is_pinned, created_at, updated_at"

// searchClause matches the folded needle anywhere in title or content.
// instr keeps % and _ literal.
const searchClause = " AND (? = '' OR instr(casefold(title), ?) > 0 OR instr(casefold(content), ?) > 0)"

func searchArgs(search string) []any {
	needle := memo.Fold(search)
	return []any{needle, needle, needle}
}

func scanMemo(row rowScanner) (memo.Memo, error) {
	var (
		m                memo.Memo
		priority         string
		pinned           int
		created, updated int64
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Title, &m.Content, &priority, &pinned, &created, &updated); err != nil {
		return memo.Memo{}, err
	}
	m.Priority = memo.Priority(priority)
	m.IsPinned = pinned != 0
	m.CreatedAt = fromMillis(created)
	m.UpdatedAt = fromMillis(updated)
	return m, nil
}

func (s *Store) InsertMemo(ctx context.Context, scope memo.Scope, m memo.Memo) (memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return memo.Memo{}, err
	}
	m.OwnerID = scope.Owner()
	res, err := s.execContext(ctx,
		"INSERT INTO memos(owner_id, title, content, priority, is_pinned, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		m.OwnerID, m.Title, m.Content, string(m.Priority), boolInt(m.IsPinned), m.CreatedAt.UnixMilli(), m.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return memo.Memo{}, fmt.Errorf("insert memo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return memo.Memo{}, fmt.Errorf("insert memo: %w", err)
	}
	m.ID = id
	return m, nil
}

func (s *Store) GetMemo(ctx context.Context, scope memo.Scope, id int64) (memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return memo.Memo{}, err
	}
	m, err := scanMemo(s.queryRowContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = ? AND owner_id = ?", id, scope.Owner()))
	if errors.Is(err, sql.ErrNoRows) {
		return memo.Memo{}, memo.ErrNotFound
	}
	if err != nil {
		return memo.Memo{}, fmt.Errorf("get memo %d: %w", id, err)
	}
	return m, nil
}

func (s *Store) UpdateMemo(ctx context.Context, scope memo.Scope, m memo.Memo) error {
	if err := scope.Check(); err != nil {
		return err
	}
	res, err := s.execContext(ctx,
		"UPDATE memos SET title = ?, content = ?, priority = ?, is_pinned = ?, updated_at = ? WHERE id = ? AND owner_id = ?",
		m.Title, m.Content, string(m.Priority), boolInt(m.IsPinned), m.UpdatedAt.UnixMilli(), m.ID, scope.Owner(),
	)
	if err != nil {
		return fmt.Errorf("update memo %d: %w", m.ID, err)
	}
	return expectOne(res)
}

func (s *Store) DeleteMemo(ctx context.Context, scope memo.Scope, id int64) error {
	if err := scope.Check(); err != nil {
		return err
	}
	res, err := s.execContext(ctx, "DELETE FROM memos WHERE id = ? AND owner_id = ?", id, scope.Owner())
	if err != nil {
		return fmt.Errorf("delete memo %d: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return memo.ErrNotFound
	}
	return nil
}

func (s *Store) CountMemos(ctx context.Context, scope memo.Scope, search string) (int, error) {
	if err := scope.Check(); err != nil {
		return 0, err
	}
	args := append([]any{scope.Owner()}, searchArgs(search)...)
	var n int
	if err := s.queryRowContext(ctx, "SELECT COUNT(*) FROM memos WHERE owner_id = ?"+searchClause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count memos: %w", err)
	}
	return n, nil
}

func (s *Store) ListMemos(ctx context.Context, scope memo.Scope, search string, limit, offset int) ([]memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	args := append([]any{scope.Owner()}, searchArgs(search)...)
	args = append(args, limit, offset)
	return s.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE owner_id = ?"+searchClause+
			" ORDER BY is_pinned DESC, created_at DESC, id DESC LIMIT ? OFFSET ?", args...)
}

func (s *Store) RecentlyUpdated(ctx context.Context, scope memo.Scope, search string, limit int) ([]memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	args := append([]any{scope.Owner()}, searchArgs(search)...)
	args = append(args, limit)
	return s.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE owner_id = ?"+searchClause+
			" ORDER BY updated_at DESC, id DESC LIMIT ?", args...)
}

func (s *Store) queryMemos(ctx context.Context, query string, args ...any) ([]memo.Memo, error) {
	rows, err := s.queryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	defer rows.Close()
	var out []memo.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) StatRows(ctx context.Context, scope memo.Scope) ([]memo.StatRow, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	rows, err := s.queryContext(ctx,
		"SELECT content, priority, is_pinned, created_at FROM memos WHERE owner_id = ?", scope.Owner())
	if err != nil {
		return nil, fmt.Errorf("stat rows: %w", err)
	}
	defer rows.Close()
	var out []memo.StatRow
	for rows.Next() {
		var (
			r        memo.StatRow
			priority string
			pinned   int
			created  int64
		)
		if err := rows.Scan(&r.Content, &priority, &pinned, &created); err != nil {
			return nil, err
		}
		r.Priority = memo.Priority(priority)
		r.IsPinned = pinned != 0
		r.CreatedAt = fromMillis(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
