// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmemo/internal/auth"
	"gmemo/internal/memo"
	"gmemo/internal/store"
)

// Opener returns an empty, initialized backend for one test.
type Opener func(t *testing.T) store.Backend

func Run(t *testing.T, open Opener) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("memo crud", func(t *testing.T) { testMemoCRUD(t, open(t)) })
	t.Run("owner isolation", func(t *testing.T) { testIsolation(t, open(t)) })
	t.Run("ordering", func(t *testing.T) { testOrdering(t, open(t)) })
	t.Run("search", func(t *testing.T) { testSearch(t, open(t)) })
	t.Run("stat rows", func(t *testing.T) { testStatRows(t, open(t)) })
	t.Run("service", func(t *testing.T) { testService(t, open(t)) })
	t.Run("delete user cascades", func(t *testing.T) { testCascade(t, open(t)) })
}

var base = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, b store.Backend, name string) memo.Scope {
	t.Helper()
	u, err := b.CreateUser(context.Background(), auth.User{
		Username:     name,
		PasswordHash: "$argon2id$v=19$m=1,t=1,p=1$c2FsdA$c3Vt",
		DateJoined:   base,
	})
	require.NoError(t, err)
	scope, err := memo.Authorize(memo.Identity{UserID: u.ID, Username: u.Username})
	require.NoError(t, err)
	return scope
}

func mustMemo(t *testing.T, b store.Backend, scope memo.Scope, title, content string, pinned bool, created time.Time) memo.Memo {
	t.Helper()
	m, err := b.InsertMemo(context.Background(), scope, memo.Memo{
		Title:     title,
		Content:   content,
		Priority:  memo.PriorityNormal,
		IsPinned:  pinned,
		CreatedAt: created,
		UpdatedAt: created,
	})
	require.NoError(t, err)
	require.NotZero(t, m.ID)
	return m
}

func titles(memos []memo.Memo) []string {
	out := make([]string, 0, len(memos))
	for _, m := range memos {
		out = append(out, m.Title)
	}
	return out
}

func testUsers(t *testing.T, b store.Backend) {
	ctx := context.Background()
	u, err := b.CreateUser(ctx, auth.User{Username: "alice", Email: "a@example.com", PasswordHash: "h1", DateJoined: base})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = b.CreateUser(ctx, auth.User{Username: "alice", PasswordHash: "h2"})
	assert.ErrorIs(t, err, auth.ErrUserExists)

	got, err := b.UserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@example.com", got.Email)
	assert.True(t, got.DateJoined.Equal(base))
	assert.Nil(t, got.LastLogin)

	byID, err := b.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	require.NoError(t, b.SetPasswordHash(ctx, "alice", "h3"))
	login := base.Add(time.Hour)
	require.NoError(t, b.TouchLastLogin(ctx, u.ID, login))
	got, err = b.UserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(login))

	_, err = b.UserByName(ctx, "nobody")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.ErrorIs(t, b.SetPasswordHash(ctx, "nobody", "x"), auth.ErrUserNotFound)

	_, err = b.CreateUser(ctx, auth.User{Username: "bob", PasswordHash: "h"})
	require.NoError(t, err)
	all, err := b.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Username)

	require.NoError(t, b.DeleteUser(ctx, "bob"))
	assert.ErrorIs(t, b.DeleteUser(ctx, "bob"), auth.ErrUserNotFound)
}

func testMemoCRUD(t *testing.T, b store.Backend) {
	ctx := context.Background()
	scope := mustUser(t, b, "alice")
	m := mustMemo(t, b, scope, "Groceries", "milk, eggs", false, base)
	assert.Equal(t, scope.Owner(), m.OwnerID)

	got, err := b.GetMemo(ctx, scope, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, memo.PriorityNormal, got.Priority)
	assert.True(t, got.CreatedAt.Equal(base))

	got.Title = "Groceries (weekend)"
	got.Priority = memo.PriorityUrgent
	got.IsPinned = true
	got.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, b.UpdateMemo(ctx, scope, got))

	again, err := b.GetMemo(ctx, scope, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries (weekend)", again.Title)
	assert.Equal(t, memo.PriorityUrgent, again.Priority)
	assert.True(t, again.IsPinned)
	assert.True(t, again.UpdatedAt.Equal(base.Add(time.Hour)))
	assert.True(t, again.CreatedAt.Equal(base))

	require.NoError(t, b.DeleteMemo(ctx, scope, m.ID))
	assert.ErrorIs(t, b.DeleteMemo(ctx, scope, m.ID), memo.ErrNotFound)
	_, err = b.GetMemo(ctx, scope, m.ID)
	assert.ErrorIs(t, err, memo.ErrNotFound)
	assert.ErrorIs(t, b.UpdateMemo(ctx, scope, again), memo.ErrNotFound)

	_, err = b.InsertMemo(ctx, memo.Scope{}, memo.Memo{Title: "x", Content: "y", Priority: memo.PriorityLow})
	assert.ErrorIs(t, err, memo.ErrUnauthenticated)
}

func testIsolation(t *testing.T, b store.Backend) {
	ctx := context.Background()
	alice := mustUser(t, b, "alice")
	bob := mustUser(t, b, "bob")
	am := mustMemo(t, b, alice, "alice secret", "only mine", false, base)
	mustMemo(t, b, bob, "bob note", "only bob", false, base)

	_, err := b.GetMemo(ctx, bob, am.ID)
	assert.ErrorIs(t, err, memo.ErrNotFound)

	hijack := am
	hijack.Title = "owned"
	hijack.UpdatedAt = base.Add(time.Minute)
	assert.ErrorIs(t, b.UpdateMemo(ctx, bob, hijack), memo.ErrNotFound)
	assert.ErrorIs(t, b.DeleteMemo(ctx, bob, am.ID), memo.ErrNotFound)

	still, err := b.GetMemo(ctx, alice, am.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice secret", still.Title)

	n, err := b.CountMemos(ctx, bob, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list, err := b.ListMemos(ctx, bob, "secret", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testOrdering(t *testing.T, b store.Backend) {
	ctx := context.Background()
	scope := mustUser(t, b, "alice")
	mustMemo(t, b, scope, "old", "c", false, base)
	mustMemo(t, b, scope, "new", "c", false, base.Add(2*time.Hour))
	mustMemo(t, b, scope, "pinned old", "c", true, base.Add(-time.Hour))
	mustMemo(t, b, scope, "tie a", "c", false, base.Add(time.Hour))
	mustMemo(t, b, scope, "tie b", "c", false, base.Add(time.Hour))

	list, err := b.ListMemos(ctx, scope, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned old", "new", "tie b", "tie a", "old"}, titles(list))

	page, err := b.ListMemos(ctx, scope, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"tie b", "tie a"}, titles(page))

	recent, err := b.RecentlyUpdated(ctx, scope, "c", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "tie b", "tie a"}, titles(recent))
}

func testSearch(t *testing.T, b store.Backend) {
	ctx := context.Background()
	scope := mustUser(t, b, "alice")
	mustMemo(t, b, scope, "Meeting notes", "discuss budget", false, base)
	mustMemo(t, b, scope, "Groceries", "buy MEETING snacks", false, base.Add(time.Minute))
	mustMemo(t, b, scope, "Discount", "save 50% today", false, base.Add(2*time.Minute))
	mustMemo(t, b, scope, "snake_case", "identifier style", false, base.Add(3*time.Minute))

	cases := []struct {
		query string
		want  []string
	}{
		{"meeting", []string{"Groceries", "Meeting notes"}},
		{"MEETING", []string{"Groceries", "Meeting notes"}},
		{"%", []string{"Discount"}},
		{"_", []string{"snake_case"}},
		{"absent", nil},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			n, err := b.CountMemos(ctx, scope, tc.query)
			require.NoError(t, err)
			assert.Equal(t, len(tc.want), n)
			list, err := b.ListMemos(ctx, scope, tc.query, 10, 0)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, list)
				return
			}
			assert.Equal(t, tc.want, titles(list))
		})
	}

	all, err := b.CountMemos(ctx, scope, "")
	require.NoError(t, err)
	assert.Equal(t, 4, all)
}

func testStatRows(t *testing.T, b store.Backend) {
	ctx := context.Background()
	scope := mustUser(t, b, "alice")
	other := mustUser(t, b, "bob")
	mustMemo(t, b, scope, "a", "one two three", true, base)
	mustMemo(t, b, scope, "b", "four", false, base.Add(time.Hour))
	mustMemo(t, b, other, "c", "not counted", false, base)

	rows, err := b.StatRows(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	words := 0
	pinned := 0
	for _, r := range rows {
		words += memo.WordCount(r.Content)
		if r.IsPinned {
			pinned++
		}
		assert.Equal(t, memo.PriorityNormal, r.Priority)
	}
	assert.Equal(t, 4, words)
	assert.Equal(t, 1, pinned)
}

// testService drives the memo service end to end over the backend.
func testService(t *testing.T, b store.Backend) {
	ctx := context.Background()
	u, err := b.CreateUser(ctx, auth.User{Username: "carol", PasswordHash: "h", DateJoined: base})
	require.NoError(t, err)
	id := memo.Identity{UserID: u.ID, Username: u.Username}

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	svc := memo.NewService(b, memo.WithClock(func() time.Time { return now }), memo.WithLocation(time.UTC))
	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, id, memo.Input{Title: fmt.Sprintf("memo %02d", i), Content: "word word"})
		require.NoError(t, err)
		now = now.Add(time.Minute)
	}
	page, err := svc.List(ctx, id, memo.Query{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, "memo 04", page.Items[0].Title)

	quick, err := svc.QuickSearch(ctx, id, "memo")
	require.NoError(t, err)
	assert.Equal(t, 10, quick.Count())
	assert.Equal(t, "memo 24", quick.Results[0].Title)

	stats, err := svc.Stats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalCount)
	assert.Equal(t, 50, stats.TotalWords)
	assert.Equal(t, 2, stats.AvgWordsPerMemo)
	assert.Equal(t, 25, stats.RecentCount)
	require.Len(t, stats.MonthlyStats, memo.MonthlyBucket)
	assert.Equal(t, memo.MonthCount{Month: "2024-03", Count: 25}, stats.MonthlyStats[memo.MonthlyBucket-1])

	_, err = svc.Create(ctx, id, memo.Input{Title: strings.Repeat("x", 201), Content: "x"})
	_, ok := memo.IsValidation(err)
	assert.True(t, ok)
	n, err := b.CountMemos(ctx, mustScope(t, id), "")
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func mustScope(t *testing.T, id memo.Identity) memo.Scope {
	t.Helper()
	scope, err := memo.Authorize(id)
	require.NoError(t, err)
	return scope
}

func testCascade(t *testing.T, b store.Backend) {
	ctx := context.Background()
	scope := mustUser(t, b, "dave")
	mustMemo(t, b, scope, "gone soon", "bye", false, base)
	require.NoError(t, b.DeleteUser(ctx, "dave"))
	n, err := b.CountMemos(ctx, scope, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
