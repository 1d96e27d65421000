package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"beecommerce/internal/http/handlers"
)

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var out []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if json.Unmarshal([]byte(line), &e) == nil && e.Action != "" {
			out = append(out, e)
		}
	}
	return out
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func TestAccessDeniedIsLogged(t *testing.T) {
	e := newEnv(t)
	user := e.token(t, "alice", false)

	entries := captureLogs(t, func() {
		resp, _ := e.do(t, "DELETE", "/api/categories/abc", user, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("want 403, got %d", resp.StatusCode)
		}
	})
	got, ok := findLog(entries, "access.denied")
	if !ok {
		t.Fatalf("access.denied not logged: %+v", entries)
	}
	if got.Level != "warn" || got.UserID == "" {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestFailedLoginIsLoggedWithoutPassword(t *testing.T) {
	e := newEnv(t)
	e.token(t, "alice", false)

	entries := captureLogs(t, func() {
		e.do(t, "POST", "/api/token", "", map[string]any{"username": "alice", "password": "Wr0ng$pass"})
	})
	got, ok := findLog(entries, "auth.login.fail")
	if !ok {
		t.Fatalf("auth.login.fail not logged: %+v", entries)
	}
	if got.Fields["username"] != "alice" {
		t.Fatalf("username missing: %+v", got)
	}
	for _, en := range entries {
		raw, _ := json.Marshal(en)
		if strings.Contains(string(raw), "Wr0ng$pass") {
			t.Fatal("password written to the log")
		}
	}
}

func TestCheckoutIsAudited(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "root", true)
	user := e.token(t, "alice", false)
	p := e.product(t, admin, "A", "4.00", 2)
	e.do(t, "POST", "/api/cart-items", user, map[string]any{"product_id": p})

	entries := captureLogs(t, func() {
		if resp, _ := e.do(t, "POST", "/api/checkout", user, nil); resp.StatusCode != http.StatusCreated {
			t.Fatalf("checkout: %d", resp.StatusCode)
		}
	})
	got, ok := findLog(entries, "order.checkout")
	if !ok || got.Level != "audit" {
		t.Fatalf("checkout audit missing: %+v", entries)
	}
}

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	var body string
	entries := captureLogs(t, func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/err", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("want 500, got %d", resp.StatusCode)
		}
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
	})
	if !strings.Contains(body, "Something went wrong") || strings.Contains(body, "secret") {
		t.Fatalf("bad 500 body: %s", body)
	}
	if got, ok := findLog(entries, "server.error"); !ok || !strings.Contains(got.Err, "secret trace") {
		t.Fatalf("internal error not logged: %+v", entries)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusTeapot || !strings.Contains(string(b), "short and stout") {
		t.Fatalf("client error rewritten: %d %s", resp.StatusCode, b)
	}
}

func TestBodySizeLimit(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "root", true)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := e.app.Test(req, -1)
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	if resp, body := e.do(t, "GET", "/healthz", "", nil); resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("healthz: %d %v", resp.StatusCode, body)
	}
	e.do(t, "GET", "/api/products", "", nil)

	resp, err := e.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(b), `handler="/api/products"`) {
		t.Fatalf("metrics: %d\n%s", resp.StatusCode, b)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, "GET", "/api/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound || body["code"] != "not_found" {
		t.Fatalf("got %d %v", resp.StatusCode, body)
	}
}
