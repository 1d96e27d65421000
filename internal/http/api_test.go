package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"beecommerce/internal/config"
	"beecommerce/internal/http/handlers"
	"beecommerce/internal/repos"
	"beecommerce/internal/services"
)

const password = "Sup3r$ecret"

type testEnv struct {
	app  *fiber.App
	deps *handlers.Deps
	db   *sqlx.DB
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		DBDriver:    "sqlite",
		DBDSN:       ":memory:",
		JWTSecret:   []byte("test-secret"),
		AccessTTL:   time.Minute,
		RefreshTTL:  time.Hour,
		CORSOrigins: "http://localhost:3000",
		PageSize:    5,
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	deps := handlers.NewDeps(db, cfg)
	return &testEnv{app: handlers.NewApp(cfg, deps), deps: deps, db: db}
}

// token registers a user (or admin) and returns a bearer access token.
func (e *testEnv) token(t *testing.T, username string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	var err error
	if admin {
		_, err = e.deps.AuthService.EnsureAdmin(ctx, username, password)
	} else {
		_, err = e.deps.AuthService.Register(ctx, services.RegisterInput{Username: username, Password: password})
	}
	if err != nil {
		t.Fatal(err)
	}
	pair, _, err := e.deps.AuthService.Login(ctx, username, password)
	if err != nil {
		t.Fatal(err)
	}
	return pair.Access
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("bad json %q: %v", raw, err)
		}
	}
	return resp, out
}

func (e *testEnv) product(t *testing.T, admin, name, price string, stock int) string {
	t.Helper()
	resp, body := e.do(t, "POST", "/api/products", admin, map[string]any{"name": name, "price": price, "stock": stock})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: %d %v", resp.StatusCode, body)
	}
	return body["id"].(string)
}

func TestCatalogWritesNeedAdmin(t *testing.T) {
	e := newEnv(t)
	user := e.token(t, "alice", false)
	admin := e.token(t, "root", true)
	payload := map[string]any{"name": "Widget", "price": "10.00", "stock": 3}

	if resp, body := e.do(t, "POST", "/api/products", "", payload); resp.StatusCode != http.StatusUnauthorized || body["code"] != "unauthorized" {
		t.Fatalf("anonymous write: %d %v", resp.StatusCode, body)
	}
	if resp, body := e.do(t, "POST", "/api/products", user, payload); resp.StatusCode != http.StatusForbidden || body["code"] != "forbidden" {
		t.Fatalf("user write: %d %v", resp.StatusCode, body)
	}
	resp, body := e.do(t, "POST", "/api/products", admin, payload)
	if resp.StatusCode != http.StatusCreated || body["price"] != "10.00" {
		t.Fatalf("admin write: %d %v", resp.StatusCode, body)
	}

	// Reads stay public.
	resp, body = e.do(t, "GET", "/api/products", "", nil)
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("public list: %d %v", resp.StatusCode, body)
	}
}

func TestCategorySlugOverHTTP(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "root", true)

	resp, body := e.do(t, "POST", "/api/categories", admin, map[string]any{"name": "Board Games"})
	if resp.StatusCode != http.StatusCreated || body["slug"] != "board-games" {
		t.Fatalf("create: %d %v", resp.StatusCode, body)
	}
	resp, body = e.do(t, "POST", "/api/categories", admin, map[string]any{"name": "board games"})
	if resp.StatusCode != http.StatusConflict || body["code"] != "conflict" {
		t.Fatalf("duplicate: %d %v", resp.StatusCode, body)
	}
}

func TestCartAndCheckoutFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "root", true)
	user := e.token(t, "alice", false)
	a := e.product(t, admin, "A", "10.00", 5)
	b := e.product(t, admin, "B", "3.50", 1)

	if resp, body := e.do(t, "POST", "/api/checkout", user, nil); resp.StatusCode != http.StatusBadRequest || body["code"] != "empty_cart" {
		t.Fatalf("empty checkout: %d %v", resp.StatusCode, body)
	}

	if resp, body := e.do(t, "POST", "/api/cart-items", user, map[string]any{"product_id": a, "quantity": 2}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add A: %d %v", resp.StatusCode, body)
	}
	if resp, body := e.do(t, "POST", "/api/cart-items", user, map[string]any{"product_id": b, "quantity": 1}); resp.StatusCode != http.StatusCreated || body["subtotal"] != "3.50" {
		t.Fatalf("add B: %d %v", resp.StatusCode, body)
	}
	resp, body := e.do(t, "POST", "/api/cart-items", user, map[string]any{"product_id": b, "quantity": 1})
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "insufficient_stock" || body["available"].(float64) != 1 {
		t.Fatalf("over-add: %d %v", resp.StatusCode, body)
	}

	resp, body = e.do(t, "GET", "/api/carts", user, nil)
	if resp.StatusCode != http.StatusOK || body["total"] != "23.50" {
		t.Fatalf("cart: %d %v", resp.StatusCode, body)
	}

	resp, body = e.do(t, "POST", "/api/checkout", user, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: %d %v", resp.StatusCode, body)
	}
	if body["total_amount"] != "23.50" || body["status"] != "pending" || body["status_display"] != "Pending" {
		t.Fatalf("order body: %v", body)
	}
	if items := body["items"].([]any); len(items) != 2 {
		t.Fatalf("want 2 items, got %v", items)
	}
	orderID := body["id"].(string)

	resp, body = e.do(t, "GET", "/api/carts", user, nil)
	if resp.StatusCode != http.StatusOK || len(body["items"].([]any)) != 0 {
		t.Fatalf("cart after checkout: %v", body)
	}

	// Another user cannot see the order; the admin can.
	other := e.token(t, "bob", false)
	if resp, _ := e.do(t, "GET", "/api/orders/"+orderID, other, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign order visible: %d", resp.StatusCode)
	}
	if resp, _ := e.do(t, "GET", "/api/orders/"+orderID, admin, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin read: %d", resp.StatusCode)
	}

	// Status workflow.
	if resp, _ := e.do(t, "PATCH", "/api/orders/"+orderID+"/status", user, map[string]any{"status": "shipped"}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user moved status: %d", resp.StatusCode)
	}
	resp, body = e.do(t, "PATCH", "/api/orders/"+orderID+"/status", admin, map[string]any{"status": "delivered"})
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "invalid_transition" {
		t.Fatalf("skip to delivered: %d %v", resp.StatusCode, body)
	}
	resp, body = e.do(t, "POST", "/api/orders/"+orderID+"/cancel", user, nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "cancelled" {
		t.Fatalf("cancel: %d %v", resp.StatusCode, body)
	}
	resp, body = e.do(t, "GET", "/api/products/"+b+"/availability", "", nil)
	if resp.StatusCode != http.StatusOK || body["qty"].(float64) != 1 {
		t.Fatalf("cancel must restock: %v", body)
	}
}

func TestCartNeedsLogin(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/api/carts", "/api/cart-items", "/api/orders", "/api/accounts/profile"} {
		if resp, _ := e.do(t, "GET", path, "", nil); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: want 401, got %d", path, resp.StatusCode)
		}
	}
	if resp, _ := e.do(t, "GET", "/api/carts", "not-a-jwt", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token accepted: %d", resp.StatusCode)
	}
}

func TestPaginationLinks(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "root", true)
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		e.product(t, admin, n, "1.00", 1)
	}
	resp, body := e.do(t, "GET", "/api/products?ordering=name", "", nil)
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 6 || len(body["results"].([]any)) != 5 {
		t.Fatalf("page 1: %v", body)
	}
	if body["next"] == nil || body["previous"] != nil {
		t.Fatalf("links on page 1: %v %v", body["next"], body["previous"])
	}
	resp, body = e.do(t, "GET", "/api/products?ordering=name&page=2", "", nil)
	if resp.StatusCode != http.StatusOK || len(body["results"].([]any)) != 1 || body["next"] != nil || body["previous"] == nil {
		t.Fatalf("page 2: %v", body)
	}
	if resp, body := e.do(t, "GET", "/api/products?ordering=color", "", nil); resp.StatusCode != http.StatusBadRequest || body["code"] != "invalid_input" {
		t.Fatalf("bad ordering: %d %v", resp.StatusCode, body)
	}
}
