package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"gmemo/internal/memo"
)

func TestMemoCreateAndDetail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	cookie := env.cookie(alice)

	rec := env.post("/memos/create", url.Values{
		"title":     {"Groceries"},
		"content":   {"buy **milk**\n\n```go\nfmt.Println(1)\n```"},
		"priority":  {"high"},
		"is_pinned": {"on"},
	}, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("create: expected 302, got %d", rec.Code)
	}
	id := idFromLocation(t, rec.Header().Get("Location"))

	m, err := env.memos.Get(context.Background(), identity(alice), id)
	if err != nil {
		t.Fatalf("get created memo: %v", err)
	}
	if m.Priority != memo.PriorityHigh || !m.IsPinned || m.OwnerID != alice.ID {
		t.Fatalf("unexpected memo: %+v", m)
	}

	rec = env.get(fmt.Sprintf("/memos/%d/", id), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<strong>milk</strong>", "fas fa-arrow-up text-warning", "Groceries"} {
		if !strings.Contains(body, want) {
			t.Fatalf("detail body missing %q", want)
		}
	}
}

func TestMemoCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	cookie := env.cookie(alice)

	rec := env.post("/memos/create", url.Values{
		"title":    {"   "},
		"content":  {"body"},
		"priority": {"critical"},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected form to re-render with 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "This field is required.") || !strings.Contains(body, "Select a valid choice.") {
		t.Fatalf("expected field errors in body")
	}
	page, err := env.memos.List(context.Background(), identity(alice), memo.Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 0 {
		t.Fatalf("invalid input must not create a memo")
	}
}

func TestMemoListPaginationAndSearch(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	cookie := env.cookie(alice)

	rec := env.get("/memos/", cookie)
	if !strings.Contains(rec.Body.String(), "You have not written any memos yet.") {
		t.Fatalf("expected empty state")
	}

	for i := 1; i <= 12; i++ {
		env.createMemo(alice, "memo "+strconv.Itoa(i), "content")
	}
	env.createMemo(alice, "Shopping list", "eggs")

	rec = env.get("/memos/", cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Page 1 of 2") {
		t.Fatalf("expected first of two pages, got %d", rec.Code)
	}
	rec = env.get("/memos/?page=99", cookie)
	if !strings.Contains(rec.Body.String(), "Page 2 of 2") {
		t.Fatalf("out of range page should clamp to the last page")
	}
	rec = env.get("/memos/?page=abc", cookie)
	if !strings.Contains(rec.Body.String(), "Page 1 of 2") {
		t.Fatalf("unparseable page should fall back to the first page")
	}

	rec = env.get("/memos/?q=SHOPPING", cookie)
	body := rec.Body.String()
	if !strings.Contains(body, "Shopping list") || strings.Contains(body, "memo 1<") {
		t.Fatalf("search should only list the matching memo")
	}
	if !strings.Contains(body, "Page 1 of 1") {
		t.Fatalf("search result should be a single page")
	}

	rec = env.get("/memos/?q=nothing-here", cookie)
	if !strings.Contains(rec.Body.String(), "No memos match") {
		t.Fatalf("expected empty search state")
	}
}

func TestMemoEditDeleteAndPin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	cookie := env.cookie(alice)
	m := env.createMemo(alice, "draft", "first")
	base := fmt.Sprintf("/memos/%d", m.ID)

	rec := env.get(base+"/edit", cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="draft"`) {
		t.Fatalf("edit form: got %d", rec.Code)
	}

	rec = env.post(base+"/edit", url.Values{"title": {""}, "content": {"x"}}, cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "This field is required.") {
		t.Fatalf("invalid edit: got %d", rec.Code)
	}

	rec = env.post(base+"/edit", url.Values{"title": {"final"}, "content": {"second"}, "priority": {"urgent"}}, cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != base {
		t.Fatalf("edit: got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	got, err := env.memos.Get(context.Background(), identity(alice), m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "final" || got.Content != "second" || got.Priority != memo.PriorityUrgent {
		t.Fatalf("edit not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Fatalf("edit must keep created_at")
	}

	rec = env.post(base+"/pin", url.Values{"next": {base}}, cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != base {
		t.Fatalf("pin: got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	got, _ = env.memos.Get(context.Background(), identity(alice), m.ID)
	if !got.IsPinned {
		t.Fatalf("expected memo to be pinned")
	}

	rec = env.get(base+"/delete", cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Are you sure you want to delete") {
		t.Fatalf("delete confirm: got %d", rec.Code)
	}
	rec = env.post(base+"/delete", url.Values{}, cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/memos/" {
		t.Fatalf("delete: got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := env.memos.Get(context.Background(), identity(alice), m.ID); !errors.Is(err, memo.ErrNotFound) {
		t.Fatalf("expected memo to be gone, got %v", err)
	}
}

func TestMemoOwnerIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	bob := env.register("bob")
	m := env.createMemo(bob, "bob's secret", "hidden")
	base := fmt.Sprintf("/memos/%d", m.ID)
	cookie := env.cookie(alice)

	checks := []struct {
		method string
		path   string
	}{
		{http.MethodGet, base + "/"},
		{http.MethodGet, base + "/edit"},
		{http.MethodPost, base + "/edit"},
		{http.MethodGet, base + "/delete"},
		{http.MethodPost, base + "/delete"},
		{http.MethodPost, base + "/pin"},
	}
	for _, c := range checks {
		var code int
		if c.method == http.MethodGet {
			code = env.get(c.path, cookie).Code
		} else {
			code = env.post(c.path, url.Values{"title": {"stolen"}, "content": {"x"}}, cookie).Code
		}
		if code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", c.method, c.path, code)
		}
	}

	got, err := env.memos.Get(context.Background(), identity(bob), m.ID)
	if err != nil {
		t.Fatalf("bob's memo must survive: %v", err)
	}
	if got.Title != "bob's secret" || got.IsPinned {
		t.Fatalf("bob's memo was modified: %+v", got)
	}

	rec := env.get("/memos/?q=secret", cookie)
	if strings.Contains(rec.Body.String(), "hidden") {
		t.Fatalf("alice must not see bob's memos in search")
	}
}

func TestMemoBadID(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	for _, p := range []string{"/memos/abc/", "/memos/0/", "/memos/-4/edit", "/memos/999/"} {
		if rec := env.get(p, env.cookie(alice)); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", p, rec.Code)
		}
	}
}
