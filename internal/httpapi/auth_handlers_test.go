package httpapi

import (
	"net/http"
	"testing"

	"supernova.org/internal/session"
)

func TestRegisterLoginMeLogoutFlow(t *testing.T) {
	env := newTestEnv(t)

	// Register.
	resp := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password-1",
		"fullName": map[string]string{"firstName": "Alice", "lastName": "Doe"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	token := sessionCookie(resp)
	if token == "" {
		t.Fatal("register must set the session cookie")
	}
	body := decodeBody(t, resp)
	if body["message"] != "User registered successfully" {
		t.Errorf("message = %v", body["message"])
	}
	u, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("user = %v", body["user"])
	}
	if u["username"] != "alice" || u["role"] != "user" {
		t.Errorf("user = %v", u)
	}
	if _, leaked := u["passwordHash"]; leaked {
		t.Error("password hash leaked in response")
	}

	// The fresh session works.
	resp = env.do(t, http.MethodGet, "/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "User details fetched successfully" {
		t.Errorf("message = %v", body["message"])
	}

	// Login issues a second, independent session.
	resp = env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	loginToken := sessionCookie(resp)
	if loginToken == "" {
		t.Fatal("login must set the session cookie")
	}
	body = decodeBody(t, resp)
	if body["message"] != "Login successful" {
		t.Errorf("message = %v", body["message"])
	}

	// Logout revokes the login session and clears the cookie.
	resp = env.do(t, http.MethodGet, "/logout", loginToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "Logout successful" {
		t.Errorf("message = %v", body["message"])
	}
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout must clear the session cookie")
	}

	// The revoked session is dead; the other session still works.
	resp = env.do(t, http.MethodGet, "/me", loginToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me with surviving session: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@example.com", "")

	resp := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password-1",
		"fullName": map[string]string{"firstName": "Alice", "lastName": "Doe"},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d, want 409", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "User already exists" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"username": "al",
		"email":    "not-an-email",
		"password": "short",
		"fullName": map[string]string{"firstName": "", "lastName": "Doe"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	raw, ok := body["errors"].([]any)
	if !ok || len(raw) == 0 {
		t.Fatalf("errors = %v", body["errors"])
	}
	paths := map[string]bool{}
	for _, e := range raw {
		entry, ok := e.(map[string]any)
		if !ok {
			t.Fatalf("entry = %v", e)
		}
		if entry["msg"] == "" || entry["path"] == "" {
			t.Errorf("entry missing msg/path: %v", entry)
		}
		paths[entry["path"].(string)] = true
	}
	for _, want := range []string{"username", "email", "password", "fullName.firstName"} {
		if !paths[want] {
			t.Errorf("missing validation error for %s (got %v)", want, paths)
		}
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@example.com", "")

	wrongPassword := env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-pass",
	})
	unknownAccount := env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "password-1",
	})

	if wrongPassword.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", wrongPassword.StatusCode)
	}
	if unknownAccount.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown account: status %d", unknownAccount.StatusCode)
	}

	// The two failure modes must be indistinguishable.
	b1 := decodeBody(t, wrongPassword)
	b2 := decodeBody(t, unknownAccount)
	if b1["message"] != "Invalid email or password" || b2["message"] != b1["message"] {
		t.Errorf("bodies differ: %v vs %v", b1, b2)
	}
}

func TestLoginByUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@example.com", "")

	resp := env.do(t, http.MethodPost, "/login", "", map[string]any{
		"username": "alice",
		"password": "password-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginRequiresIdentifier(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/login", "", map[string]any{
		"password": "password-1",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMeRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Unauthorized" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestMeRejectsForgedToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@example.com", "")

	resp := env.do(t, http.MethodGet, "/me", "not-a-real-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Unauthorized" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestLogoutWithoutSessionStillSucceeds(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/logout", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Logout successful" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestRegisterMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/register", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow = %q", allow)
	}
	resp.Body.Close()
}
