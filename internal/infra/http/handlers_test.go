package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/catalog"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/credentials"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/lockout"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/reports"
	httpx "github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/http"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/sessions"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := memory.New()

	led := ledger.NewService(m.Ledger(), log)
	lock := lockout.NewService(m.LoginAttempts(), log)
	creds := credentials.NewService(m.Credentials(), log)
	cat := catalog.NewService(m.Catalog(), led, log)
	rep := reports.NewService(led, cat)

	defaultCat, err := cat.EnsureDefault(t.Context())
	if err != nil {
		t.Fatalf("resolving default category: %v", err)
	}

	h := httpx.NewHandler(led, lock, creds, cat, rep, sessions.New(), defaultCat, log)
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func login(t *testing.T, srv *httptest.Server, username, password string) (*http.Response, map[string]any) {
	t.Helper()
	return doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"username": username, "password": password,
	})
}

func mustLogin(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	resp, body := login(t, srv, username, password)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d: %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func register(t *testing.T, srv *httptest.Server, username, password string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"username": username, "password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %v", resp.StatusCode, body)
	}
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "drsmith", "s3cret")

	// Wrong password and unknown username must produce the same message.
	resp, body := login(t, srv, "drsmith", "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", resp.StatusCode)
	}
	wrongPwMsg := body["error"]
	resp, body = login(t, srv, "nobody", "s3cret")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unknown user: expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != wrongPwMsg {
		t.Errorf("failure messages differ: %v vs %v", wrongPwMsg, body["error"])
	}

	token := mustLogin(t, srv, "drsmith", "s3cret")

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/items", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("token must be dead after logout, got %d", resp.StatusCode)
	}
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "drsmith", "s3cret")

	for i := 0; i < 5; i++ {
		resp, _ := login(t, srv, "drsmith", "wrong")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("failure %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}

	// Even the correct password is rejected while locked.
	resp, body := login(t, srv, "drsmith", "s3cret")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 while locked, got %d", resp.StatusCode)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "locked") {
		t.Errorf("expected lock message with remaining time, got %q", msg)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "drsmith", "s3cret")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"username": "drsmith", "password": "other",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "drsmith", "s3cret")
	token := mustLogin(t, srv, "drsmith", "s3cret")

	// Mutations require authentication.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/items", "", map[string]any{
		"name": "Gloves", "quantity": 3, "min_level": 5, "unit": "box",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: expected 401, got %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/items", token, map[string]any{
		"name": "Gloves", "quantity": 3, "min_level": 5, "unit": "box",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %v", resp.StatusCode, body)
	}
	id := int64(body["id"].(float64))

	// Deduct beyond stock clamps at zero.
	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/items/%d/deduct", srv.URL, id), token, map[string]any{"amount": 10})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deduct: expected 200, got %d: %v", resp.StatusCode, body)
	}
	if qty := body["quantity"].(float64); qty != 0 {
		t.Errorf("expected clamped quantity 0, got %v", qty)
	}

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/items/%d", srv.URL, id), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	if low := body["low_stock"].(bool); !low {
		t.Error("expected item flagged low stock")
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/transactions", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transactions: expected 200, got %d", resp.StatusCode)
	}
	txs := body["transactions"].([]any)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	first := txs[0].(map[string]any)
	if first["type"] != "DECREASE" || first["quantity"].(float64) != 3 {
		t.Errorf("expected DECREASE of 3 first, got %v", first)
	}
	if first["actor"] != "drsmith" {
		t.Errorf("expected actor drsmith, got %v", first["actor"])
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/items/%d", srv.URL, id), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/items/%d", srv.URL, id), token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "drsmith", "s3cret")
	token := mustLogin(t, srv, "drsmith", "s3cret")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/items", token, map[string]any{
		"name": "Gloves", "quantity": 40, "min_level": 10, "unit": "box",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer func() { _ = res.Body.Close() }()

	if ct := res.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	raw, _ := io.ReadAll(res.Body)
	want := "Item Name,Quantity,Min Level,Unit,Status\nGloves,40,10,box,Good\n"
	if string(raw) != want {
		t.Errorf("csv mismatch:\ngot:\n%s\nwant:\n%s", raw, want)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "drsmith", "s3cret")
	token := mustLogin(t, srv, "drsmith", "s3cret")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/categories", token, map[string]string{
		"name": "Instruments", "description": "reusable tools",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add category: expected 201, got %d", resp.StatusCode)
	}
	catID := int64(body["id"].(float64))

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/items", token, map[string]any{
		"name": "Probe", "quantity": 5, "min_level": 1, "unit": "piece", "category_id": catID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", srv.URL, catID), token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete in-use category: expected 409, got %d", resp.StatusCode)
	}
}
