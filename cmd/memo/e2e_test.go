//go:build e2e

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

const defaultBaseURL = "http://gmemo-e2e:8080"

func e2eEnv(t *testing.T) (baseURL, user, password string) {
	t.Helper()
	baseURL = os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	user = os.Getenv("E2E_USER")
	password = os.Getenv("E2E_PASSWORD")
	if user == "" || password == "" {
		t.Skip("E2E_USER and E2E_PASSWORD are required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := waitForHTTP(ctx, baseURL+"/healthz"); err != nil {
		t.Fatalf("base url not reachable: %v", err)
	}
	return baseURL, user, password
}

func newBrowserPage(t *testing.T) playwright.Page {
	t.Helper()
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("playwright run: %v", err)
	}
	t.Cleanup(func() { _ = pw.Stop() })

	browser, err := pw.Chromium.Launch()
	if err != nil {
		t.Fatalf("launch chromium: %v", err)
	}
	t.Cleanup(func() { _ = browser.Close() })

	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	return page
}

func TestLoginCreateAndSearch(t *testing.T) {
	baseURL, user, password := e2eEnv(t)
	page := newBrowserPage(t)

	if _, err := page.Goto(baseURL + "/memos/"); err != nil {
		t.Fatalf("goto list: %v", err)
	}
	if err := page.Locator("#username").Fill(user); err != nil {
		t.Fatalf("fill username: %v", err)
	}
	if err := page.Locator("#password").Fill(password); err != nil {
		t.Fatalf("fill password: %v", err)
	}
	if err := page.Locator("form button[type=submit]").Click(); err != nil {
		t.Fatalf("submit login: %v", err)
	}
	if err := page.Locator("input[name=q]").WaitFor(); err != nil {
		t.Fatalf("memo list missing after login: %v", err)
	}

	title := fmt.Sprintf("e2e memo %d", time.Now().UnixNano())
	if _, err := page.Goto(baseURL + "/memos/create"); err != nil {
		t.Fatalf("goto create: %v", err)
	}
	if err := page.Locator("#title").Fill(title); err != nil {
		t.Fatalf("fill title: %v", err)
	}
	if err := page.Locator("#content").Fill("created by the **browser** test"); err != nil {
		t.Fatalf("fill content: %v", err)
	}
	if err := page.Locator("form button[type=submit]").Click(); err != nil {
		t.Fatalf("submit memo: %v", err)
	}
	if err := page.Locator("article strong").WaitFor(); err != nil {
		t.Fatalf("rendered markdown missing on detail page: %v", err)
	}

	resp, err := page.Request().Get(baseURL + "/memos/search?q=" + title)
	if err != nil {
		t.Fatalf("quick search: %v", err)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := resp.JSON(&body); err != nil {
		t.Fatalf("decode quick search: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("expected the new memo in quick search, count=%d", body.Count)
	}
}

func waitForHTTP(ctx context.Context, rawURL string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 500 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}
