package handlers_test

import (
	"net/http"
	"testing"
)

func TestRegisterTokenRefreshVerify(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, "POST", "/api/accounts/register", "", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": password,
	})
	if resp.StatusCode != http.StatusCreated || body["username"] != "alice" {
		t.Fatalf("register: %d %v", resp.StatusCode, body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Fatal("hash leaked in response")
	}

	resp, body = e.do(t, "POST", "/api/token", "", map[string]any{"username": "alice", "password": "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: %d %v", resp.StatusCode, body)
	}
	resp, body = e.do(t, "POST", "/api/token", "", map[string]any{"username": "alice", "password": password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %v", resp.StatusCode, body)
	}
	access, refresh := body["access"].(string), body["refresh"].(string)

	resp, body = e.do(t, "GET", "/api/accounts/profile", access, nil)
	if resp.StatusCode != http.StatusOK || body["username"] != "alice" || body["last_login"] == nil {
		t.Fatalf("profile: %d %v", resp.StatusCode, body)
	}

	if resp, _ := e.do(t, "POST", "/api/token/verify", "", map[string]any{"token": access}); resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: %d", resp.StatusCode)
	}
	if resp, _ := e.do(t, "POST", "/api/token/verify", "", map[string]any{"token": "junk"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("verify junk: %d", resp.StatusCode)
	}

	resp, body = e.do(t, "POST", "/api/token/refresh", "", map[string]any{"refresh": refresh})
	if resp.StatusCode != http.StatusOK || body["refresh"] == refresh {
		t.Fatalf("refresh: %d %v", resp.StatusCode, body)
	}
	if resp, _ := e.do(t, "POST", "/api/token/refresh", "", map[string]any{"refresh": refresh}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("rotated refresh token reused: %d", resp.StatusCode)
	}
	// A refresh token is not an access token.
	if resp, _ := e.do(t, "GET", "/api/accounts/profile", refresh, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted as bearer: %d", resp.StatusCode)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	cases := []map[string]any{
		{"username": "al", "password": password},
		{"username": "alice", "password": "short"},
		{"username": "alice", "email": "not-an-email", "password": password},
	}
	for _, in := range cases {
		resp, body := e.do(t, "POST", "/api/accounts/register", "", in)
		if resp.StatusCode != http.StatusBadRequest || body["code"] != "invalid_input" {
			t.Errorf("%v: want 400 invalid_input, got %d %v", in, resp.StatusCode, body)
		}
	}
}

func TestTokenEndpointRateLimited(t *testing.T) {
	e := newEnv(t)
	last := 0
	for i := 0; i < 6; i++ {
		resp, _ := e.do(t, "POST", "/api/token", "", map[string]any{"username": "x", "password": "y"})
		if i < 5 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("limited too early at %d", i)
		}
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", last)
	}
}
