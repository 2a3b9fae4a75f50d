package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gmemo/internal/memo"
)

const memoColumns = "id, owner_id, title, content, priority, is_pinned, created_at, updated_at"

// $2 is the folded needle; strpos keeps % and _ literal.
const searchClause = " AND ($2 = '' OR strpos(lower(title), $2) > 0 OR strpos(lower(content), $2) > 0)"

func scanMemo(row pgx.Row) (memo.Memo, error) {
	var (
		m        memo.Memo
		priority string
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Title, &m.Content, &priority, &m.IsPinned, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return memo.Memo{}, err
	}
	m.Priority = memo.Priority(priority)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func (s *Store) InsertMemo(ctx context.Context, scope memo.Scope, m memo.Memo) (memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return memo.Memo{}, err
	}
	m.OwnerID = scope.Owner()
	const q = `
INSERT INTO memos (owner_id, title, content, priority, is_pinned, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	err := s.pool.QueryRow(ctx, q,
		m.OwnerID, m.Title, m.Content, string(m.Priority), m.IsPinned, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return memo.Memo{}, fmt.Errorf("insert memo: %w", err)
	}
	return m, nil
}

func (s *Store) GetMemo(ctx context.Context, scope memo.Scope, id int64) (memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return memo.Memo{}, err
	}
	m, err := scanMemo(s.pool.QueryRow(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = $1 AND owner_id = $2", id, scope.Owner()))
	if isNoRows(err) {
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
	tag, err := s.pool.Exec(ctx,
		"UPDATE memos SET title = $1, content = $2, priority = $3, is_pinned = $4, updated_at = $5 WHERE id = $6 AND owner_id = $7",
		m.Title, m.Content, string(m.Priority), m.IsPinned, m.UpdatedAt, m.ID, scope.Owner(),
	)
	if err != nil {
		return fmt.Errorf("update memo %d: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return memo.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteMemo(ctx context.Context, scope memo.Scope, id int64) error {
	if err := scope.Check(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM memos WHERE id = $1 AND owner_id = $2", id, scope.Owner())
	if err != nil {
		return fmt.Errorf("delete memo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return memo.ErrNotFound
	}
	return nil
}

func (s *Store) CountMemos(ctx context.Context, scope memo.Scope, search string) (int, error) {
	if err := scope.Check(); err != nil {
		return 0, err
	}
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM memos WHERE owner_id = $1"+searchClause,
		scope.Owner(), memo.Fold(search)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count memos: %w", err)
	}
	return n, nil
}

func (s *Store) ListMemos(ctx context.Context, scope memo.Scope, search string, limit, offset int) ([]memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	return s.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE owner_id = $1"+searchClause+
			" ORDER BY is_pinned DESC, created_at DESC, id DESC LIMIT $3 OFFSET $4",
		scope.Owner(), memo.Fold(search), limit, offset)
}

func (s *Store) RecentlyUpdated(ctx context.Context, scope memo.Scope, search string, limit int) ([]memo.Memo, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	return s.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE owner_id = $1"+searchClause+
			" ORDER BY updated_at DESC, id DESC LIMIT $3",
		scope.Owner(), memo.Fold(search), limit)
}

func (s *Store) queryMemos(ctx context.Context, query string, args ...any) ([]memo.Memo, error) {
	rows, err := s.pool.Query(ctx, query, args...)
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
	rows, err := s.pool.Query(ctx,
		"SELECT content, priority, is_pinned, created_at FROM memos WHERE owner_id = $1", scope.Owner())
	if err != nil {
		return nil, fmt.Errorf("stat rows: %w", err)
	}
	defer rows.Close()
	var out []memo.StatRow
	for rows.Next() {
		var (
			r        memo.StatRow
			priority string
		)
		if err := rows.Scan(&r.Content, &priority, &r.IsPinned, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Priority = memo.Priority(priority)
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
