package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ledger := services.NewLedgerService(storage.NewTransactionStore(db), storage.NewCategoryStore(db), nil)
	authSvc := services.NewAuthService(storage.NewUserStore(db), auth.NewPBKDF2Hasher())

	srv := NewServer(":0", ledger, authSvc, Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func registerUser(t *testing.T, srv *Server, email string) int64 {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/auth/register",
		fmt.Sprintf(`{"email":%q,"password":"secret123","username":"tester"}`, email))
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rr, &resp)
	return resp.ID
}

func createCategory(t *testing.T, srv *Server, name string, typ core.TransactionType, owner int64) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q,"user_id":%d}`, name, typ, owner)
	rr := do(t, srv, http.MethodPost, "/categories", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Category struct {
			ID int64 `json:"id"`
		} `json:"category"`
	}
	decodeBody(t, rr, &resp)
	return resp.Category.ID
}

func createTransaction(t *testing.T, srv *Server, owner, categoryID int64, typ core.TransactionType, amount, date, desc string) {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"amount":%q,"category_id":%d,"description":%q,"date":%q,"user_id":%d}`,
		typ, amount, categoryID, desc, date, owner)
	rr := do(t, srv, http.MethodPost, "/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create transaction status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateTransactionAndList(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	cat := createCategory(t, srv, "Food", core.Expense, owner)

	createTransaction(t, srv, owner, cat, core.Expense, "12.34", "2025-07-10", "groceries")

	rr := do(t, srv, http.MethodGet, fmt.Sprintf("/transactions?user_id=%d", owner), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Count        int `json:"count"`
		Transactions []struct {
			Amount      string `json:"amount"`
			AmountCents int64  `json:"amount_cents"`
			Date        string `json:"date"`
			Category    struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"transactions"`
		Categories []string `json:"categories"`
	}
	decodeBody(t, rr, &resp)
	if resp.Count != 1 {
		t.Fatalf("expected one transaction, got %+v", resp)
	}
	tx := resp.Transactions[0]
	if tx.AmountCents != 1234 || tx.Amount != "12.34" {
		t.Fatalf("amount mismatch: %+v", tx)
	}
	if tx.Date != "2025-07-10" || tx.Category.Name != "Food" {
		t.Fatalf("hydration mismatch: %+v", tx)
	}
	if len(resp.Categories) != 2 || resp.Categories[0] != "All" || resp.Categories[1] != "Food" {
		t.Fatalf("category options should be All plus used names, got %v", resp.Categories)
	}
}

func TestCreateTransactionResolvesCategoryByName(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	createCategory(t, srv, "Salary", core.Income, owner)

	body := fmt.Sprintf(`{"type":"INCOME","amount":2500.00,"category":"Salary","description":"payday","date":"2025-07-01","user_id":%d}`, owner)
	rr := do(t, srv, http.MethodPost, "/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/transactions?user_id=%d", owner), "")
	var resp struct {
		Transactions []struct {
			AmountCents int64 `json:"amount_cents"`
			Category    struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"transactions"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Transactions) != 1 || resp.Transactions[0].Category.Name != "Salary" {
		t.Fatalf("expected resolved category, got %+v", resp)
	}
	if resp.Transactions[0].AmountCents != 250000 {
		t.Fatalf("numeric amount should parse to cents, got %+v", resp.Transactions[0])
	}
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	cat := createCategory(t, srv, "Food", core.Expense, owner)

	cases := []struct {
		name string
		body string
		want int
	}{
		{
			name: "zero amount",
			body: fmt.Sprintf(`{"type":"EXPENSE","amount":"0","category_id":%d,"date":"2025-07-10","user_id":%d}`, cat, owner),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "negative amount",
			body: fmt.Sprintf(`{"type":"EXPENSE","amount":"-5.00","category_id":%d,"date":"2025-07-10","user_id":%d}`, cat, owner),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown type",
			body: fmt.Sprintf(`{"type":"TRANSFER","amount":"5.00","category_id":%d,"date":"2025-07-10","user_id":%d}`, cat, owner),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "bad date",
			body: fmt.Sprintf(`{"type":"EXPENSE","amount":"5.00","category_id":%d,"date":"07/10/2025","user_id":%d}`, cat, owner),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unresolvable category id",
			body: fmt.Sprintf(`{"type":"EXPENSE","amount":"5.00","category_id":9999,"date":"2025-07-10","user_id":%d}`, owner),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "missing user",
			body: fmt.Sprintf(`{"type":"EXPENSE","amount":"5.00","category_id":%d,"date":"2025-07-10"}`, cat),
			want: http.StatusBadRequest,
		},
		{
			name: "malformed json",
			body: `{"type":`,
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/transactions", tc.body)
			if rr.Code != tc.want {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}

	// None of the rejected writes should have persisted.
	rr := do(t, srv, http.MethodGet, fmt.Sprintf("/transactions?user_id=%d", owner), "")
	var resp struct {
		Count int `json:"count"`
	}
	decodeBody(t, rr, &resp)
	if resp.Count != 0 {
		t.Fatalf("rejected writes must not persist, count=%d", resp.Count)
	}
}

func TestListTransactionsAppliesFilters(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	food := createCategory(t, srv, "Food", core.Expense, owner)
	salary := createCategory(t, srv, "Salary", core.Income, owner)

	createTransaction(t, srv, owner, salary, core.Income, "1000.00", "2025-07-01", "payday")
	createTransaction(t, srv, owner, food, core.Expense, "12.00", "2025-07-10", "groceries")
	createTransaction(t, srv, owner, food, core.Expense, "30.00", "2025-07-20", "dinner")

	type listResp struct {
		Count        int `json:"count"`
		Transactions []struct {
			Type string `json:"type"`
			Date string `json:"date"`
		} `json:"transactions"`
		Categories []string `json:"categories"`
	}
	list := func(query string) listResp {
		t.Helper()
		rr := do(t, srv, http.MethodGet, fmt.Sprintf("/transactions?user_id=%d%s", owner, query), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("list status=%d body=%s", rr.Code, rr.Body.String())
		}
		var resp listResp
		decodeBody(t, rr, &resp)
		return resp
	}

	if got := list("&type=EXPENSE"); got.Count != 2 {
		t.Fatalf("type filter: want 2, got %+v", got)
	}
	if got := list("&from=2025-07-10"); got.Count != 2 {
		t.Fatalf("from bound is inclusive: want 2, got %+v", got)
	}
	if got := list("&type=INCOME&category=Food"); got.Count != 0 {
		t.Fatalf("conjunctive criteria: want 0, got %+v", got)
	}
	// Malformed date text leaves the bound unset instead of matching nothing.
	if got := list("&from=garbage"); got.Count != 3 {
		t.Fatalf("malformed from must fail open, got %+v", got)
	}
	// Options always derive from the unfiltered list.
	got := list("&type=INCOME")
	if len(got.Categories) != 3 {
		t.Fatalf("options must ignore active criteria, got %v", got.Categories)
	}
}

func TestMonthlySummary(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	food := createCategory(t, srv, "Food", core.Expense, owner)

	createTransaction(t, srv, owner, food, core.Expense, "100.00", "2025-07-10", "a")
	createTransaction(t, srv, owner, food, core.Expense, "800.00", "2025-07-20", "b")
	createTransaction(t, srv, owner, food, core.Expense, "50.00", "2025-08-01", "next month")

	get := func() (string, int64) {
		rr := do(t, srv, http.MethodGet,
			fmt.Sprintf("/transactions/summary?user_id=%d&type=EXPENSE&year=2025&month=7", owner), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("summary status=%d body=%s", rr.Code, rr.Body.String())
		}
		var resp struct {
			Total       string `json:"total"`
			AmountCents int64  `json:"amount_cents"`
		}
		decodeBody(t, rr, &resp)
		return resp.Total, resp.AmountCents
	}

	if total, cents := get(); total != "900.00" || cents != 90000 {
		t.Fatalf("july total: got %s (%d cents)", total, cents)
	}

	// A new write in the same month must show up despite the cache.
	createTransaction(t, srv, owner, food, core.Expense, "1.00", "2025-07-21", "c")
	if total, cents := get(); total != "901.00" || cents != 90100 {
		t.Fatalf("summary should reflect the write, got %s (%d cents)", total, cents)
	}

	rr := do(t, srv, http.MethodGet,
		fmt.Sprintf("/transactions/summary?user_id=%d&type=EXPENSE&year=2025&month=13", owner), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("month 13 should be rejected, status=%d", rr.Code)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	id := createCategory(t, srv, "Food", core.Expense, owner)

	rr := do(t, srv, http.MethodGet, fmt.Sprintf("/categories?user_id=%d", owner), "")
	var listResp struct {
		Categories []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}
	decodeBody(t, rr, &listResp)
	if len(listResp.Categories) != 1 || listResp.Categories[0].ID != id {
		t.Fatalf("expected the created category, got %+v", listResp)
	}

	rr = do(t, srv, http.MethodPut, fmt.Sprintf("/categories/%d", id),
		fmt.Sprintf(`{"name":"Dining","type":"EXPENSE","user_id":%d}`, owner))
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/categories/%d", id), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/categories/%d", id), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete should 404, got %d", rr.Code)
	}
}

func TestDeleteCategoryInUseConflicts(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "alice@example.com")
	id := createCategory(t, srv, "Food", core.Expense, owner)
	createTransaction(t, srv, owner, id, core.Expense, "5.00", "2025-07-10", "x")

	rr := do(t, srv, http.MethodDelete, fmt.Sprintf("/categories/%d", id), "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("referenced category delete should 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice@example.com")

	rr := do(t, srv, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"secret123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, rr, &resp)
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user payload: %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password should 401, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"another","username":"dup"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate email should 409, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/auth/register",
		`{"email":"","password":"","username":""}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank credentials should 422, got %d", rr.Code)
	}
}

func TestMethodChecks(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		method, path string
	}{
		{http.MethodDelete, "/transactions"},
		{http.MethodPost, "/transactions/summary"},
		{http.MethodPut, "/categories"},
		{http.MethodGet, "/auth/login"},
		{http.MethodGet, "/auth/register"},
	}
	for _, tc := range cases {
		rr := do(t, srv, tc.method, tc.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", tc.method, tc.path, rr.Code)
		}
	}
}
