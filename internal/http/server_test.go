package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type testAPI struct {
	ts      *httptest.Server
	cookie  *http.Cookie
	srv     *Server
	baseURL string
}

func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithLimit(t, 1000)
}

func newTestAPIWithLimit(t *testing.T, rateLimit int) *testAPI {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	authSvc := auth.NewService(repo, time.Hour, logger)

	srv := NewServer(
		Config{Addr: ":0", RateLimitPerMinute: rateLimit},
		logger,
		authSvc,
		services.NewCategoryService(repo, logger),
		services.NewTransactionService(repo, nil, logger),
		services.NewBudgetService(repo, logger),
		nil,
	)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)

	api := &testAPI{ts: ts, srv: srv, baseURL: ts.URL}
	api.register(t, "alice", "alice@example.com", "secret1")
	api.login(t, "alice", "secret1")
	return api
}

func (a *testAPI) register(t *testing.T, username, email, password string) {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d", resp.StatusCode)
	}
}

func (a *testAPI) login(t *testing.T, username, password string) {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": username, "password": password,
	}, false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			a.cookie = c
			return
		}
	}
	t.Fatal("login did not set a session cookie")
}

func (a *testAPI) do(t *testing.T, method, path string, body any, authed bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if a.cookie == nil {
			t.Fatal("no session cookie available")
		}
		req.AddCookie(a.cookie)
	}

	resp, err := a.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (a *testAPI) createCategory(t *testing.T, name, typ string) categoryResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/categories", map[string]string{"name": name, "type": typ}, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category returned %d", resp.StatusCode)
	}
	return decodeBody[categoryResponse](t, resp)
}

func (a *testAPI) createTransaction(t *testing.T, categoryID int64, amount, typ, date string) transactionResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"category_id": categoryID, "amount": amount, "type": typ, "date": date,
	}, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction returned %d", resp.StatusCode)
	}
	return decodeBody[transactionResponse](t, resp)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	api := newTestAPI(t)

	paths := []string{"/api/categories", "/api/transactions", "/api/budgets"}
	for _, path := range paths {
		resp := api.do(t, http.MethodGet, path, nil, false)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without session returned %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestCategoryLifecycle(t *testing.T) {
	api := newTestAPI(t)

	cat := api.createCategory(t, "Food", "Expense")
	if cat.Name != "Food" || cat.Type != "Expense" {
		t.Fatalf("unexpected category: %+v", cat)
	}

	// Duplicate name conflicts regardless of type.
	resp := api.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Food", "type": "Income"}, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate category returned %d, want 409", resp.StatusCode)
	}

	resp = api.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), map[string]string{"name": "Groceries"}, true)
	renamed := decodeBody[categoryResponse](t, resp)
	if renamed.Name != "Groceries" {
		t.Fatalf("rename produced %+v", renamed)
	}

	// Once referenced, deletion is blocked.
	api.createTransaction(t, cat.ID, "12.50", "Expense", "2024-06-01")
	resp = api.do(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete of in-use category returned %d, want 409", resp.StatusCode)
	}
}

func TestTransactionValidationOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory(t, "Food", "Expense")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"type mismatch", map[string]any{"category_id": cat.ID, "amount": "10.00", "type": "Income", "date": "2024-06-01"}, http.StatusBadRequest},
		{"unknown category", map[string]any{"category_id": 9999, "amount": "10.00", "type": "Expense", "date": "2024-06-01"}, http.StatusBadRequest},
		{"bad amount", map[string]any{"category_id": cat.ID, "amount": "abc", "type": "Expense", "date": "2024-06-01"}, http.StatusBadRequest},
		{"zero amount", map[string]any{"category_id": cat.ID, "amount": "0", "type": "Expense", "date": "2024-06-01"}, http.StatusBadRequest},
		{"bad date", map[string]any{"category_id": cat.ID, "amount": "10.00", "type": "Expense", "date": "junk"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"category_id": cat.ID, "amount": "10.00", "type": "Expense", "date": "2024-06-01", "bogus": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/api/transactions", tt.body, true)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("returned %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestTransactionUpdateDescriptionNull(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory(t, "Food", "Expense")

	resp := api.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"category_id": cat.ID, "amount": "10.00", "type": "Expense",
		"description": "lunch", "date": "2024-06-01",
	}, true)
	tx := decodeBody[transactionResponse](t, resp)

	// Omitted description stays.
	resp = api.do(t, http.MethodPut, fmt.Sprintf("/api/transactions/%d", tx.ID), map[string]any{"amount": "11.00"}, true)
	updated := decodeBody[transactionResponse](t, resp)
	if updated.Description != "lunch" || updated.Amount != "11.00" {
		t.Fatalf("expected description kept, got %+v", updated)
	}

	// Explicit null clears.
	resp = api.do(t, http.MethodPut, fmt.Sprintf("/api/transactions/%d", tx.ID), map[string]any{"description": nil}, true)
	updated = decodeBody[transactionResponse](t, resp)
	if updated.Description != "" {
		t.Fatalf("expected cleared description, got %q", updated.Description)
	}
}

func TestBudgetProgressEndpoint(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory(t, "Food", "Expense")

	resp := api.do(t, http.MethodPost, "/api/budgets", map[string]any{
		"category_id": cat.ID, "amount": "1000000.00", "month": 6, "year": 2024,
	}, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create budget returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	api.createTransaction(t, cat.ID, "400000.00", "Expense", "2024-06-05")
	api.createTransaction(t, cat.ID, "700000.00", "Expense", "2024-06-20")

	resp = api.do(t, http.MethodGet, "/api/budgets/progress?month=6&year=2024", nil, true)
	progress := decodeBody[[]progressResponse](t, resp)
	if len(progress) != 1 {
		t.Fatalf("expected 1 progress row, got %d", len(progress))
	}
	p := progress[0]
	if p.SpentAmount != "1100000.00" {
		t.Errorf("expected spent 1100000.00, got %s", p.SpentAmount)
	}
	if p.ProgressPercent != 100 {
		t.Errorf("expected capped percent 100, got %v", p.ProgressPercent)
	}
	if !p.Exceeded || p.ExceedAmount != "100000.00" {
		t.Errorf("expected exceeded by 100000.00, got %+v", p)
	}
}

func TestPeriodSummaryEndpointAndCacheInvalidation(t *testing.T) {
	api := newTestAPI(t)
	food := api.createCategory(t, "Food", "Expense")
	salary := api.createCategory(t, "Salary", "Income")

	api.createTransaction(t, food.ID, "400000.00", "Expense", "2024-06-05")
	api.createTransaction(t, salary.ID, "2000000.00", "Income", "2024-06-10")

	resp := api.do(t, http.MethodGet, "/api/reports/summary?month=6&year=2024", nil, true)
	summary := decodeBody[summaryResponse](t, resp)
	if summary.TotalIncome != "2000000.00" || summary.TotalExpense != "400000.00" {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// A new write must be visible immediately despite the cache.
	api.createTransaction(t, food.ID, "700000.00", "Expense", "2024-06-20")

	resp = api.do(t, http.MethodGet, "/api/reports/summary?month=6&year=2024", nil, true)
	summary = decodeBody[summaryResponse](t, resp)
	if summary.TotalExpense != "1100000.00" {
		t.Fatalf("expected refreshed expense total 1100000.00, got %s", summary.TotalExpense)
	}
	if summary.NetAmount != "900000.00" {
		t.Fatalf("expected net 900000.00, got %s", summary.NetAmount)
	}
	if summary.TransactionCount != 3 {
		t.Fatalf("expected 3 transactions, got %d", summary.TransactionCount)
	}
	if len(summary.ExpensesByCategory) != 1 || summary.ExpensesByCategory[0].CategoryName != "Food" {
		t.Fatalf("unexpected breakdown: %+v", summary.ExpensesByCategory)
	}
}

func TestSummaryReflectsCategoryRename(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory(t, "Food", "Expense")
	api.createTransaction(t, cat.ID, "100.00", "Expense", "2024-06-05")

	// Prime the cache.
	resp := api.do(t, http.MethodGet, "/api/reports/summary?month=6&year=2024", nil, true)
	summary := decodeBody[summaryResponse](t, resp)
	if summary.ExpensesByCategory[0].CategoryName != "Food" {
		t.Fatalf("unexpected breakdown: %+v", summary.ExpensesByCategory)
	}

	resp = api.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), map[string]string{"name": "Groceries"}, true)
	resp.Body.Close()

	// The rename must show up immediately, not after the cache TTL.
	resp = api.do(t, http.MethodGet, "/api/reports/summary?month=6&year=2024", nil, true)
	summary = decodeBody[summaryResponse](t, resp)
	if summary.ExpensesByCategory[0].CategoryName != "Groceries" {
		t.Fatalf("expected renamed category in summary, got %+v", summary.ExpensesByCategory)
	}
}

func TestCrossTenantIsolation(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory(t, "Food", "Expense")
	tx := api.createTransaction(t, cat.ID, "10.00", "Expense", "2024-06-01")

	// Second user sees nothing of the first.
	api.register(t, "mallory", "mallory@example.com", "secret2")
	api.login(t, "mallory", "secret2")

	resp := api.do(t, http.MethodGet, fmt.Sprintf("/api/transactions/%d", tx.ID), nil, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign transaction returned %d, want 404", resp.StatusCode)
	}

	resp = api.do(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign category delete returned %d, want 404", resp.StatusCode)
	}
}

func TestRateLimitOnMutatingRequests(t *testing.T) {
	api := newTestAPIWithLimit(t, 2)

	// Login already consumed part of the budget; find the limit.
	var last int
	for i := 0; i < 5; i++ {
		resp := api.do(t, http.MethodPost, "/api/categories", map[string]string{
			"name": fmt.Sprintf("cat-%d", i), "type": "Expense",
		}, true)
		resp.Body.Close()
		last = resp.StatusCode
		if last == http.StatusTooManyRequests {
			break
		}
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected a 429 after exceeding the limit, got %d", last)
	}

	// Reads are not rate limited.
	resp := api.do(t, http.MethodGet, "/api/categories", nil, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read returned %d during rate limiting, want 200", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := api.do(t, http.MethodGet, path, nil, false)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s returned %d", path, resp.StatusCode)
		}
	}
}
