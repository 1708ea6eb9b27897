package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Randall0514/DormEase/internal/auth"
	"github.com/Randall0514/DormEase/internal/database"
	"github.com/Randall0514/DormEase/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	us := store.NewUserStore(db)
	ss := store.NewSessionStore(db)
	return NewAuthHandler(us, ss, testLogger()), ss
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

const signupJane = `{"full_name":"Jane Doe","username":"jane","email":"jane@x.com","password":"Secret123","platform":"web"}`

func TestSignup(t *testing.T) {
	h, ss := setupAuthHandler(t)

	rec := postJSON(t, h.Signup, "/auth/signup", signupJane)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	user, _ := body["user"].(map[string]any)
	if user == nil {
		t.Fatal("expected user in response")
	}
	if user["username"] != "jane" {
		t.Errorf("username = %v, want jane", user["username"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("response must not carry any password field")
	}
	if strings.Contains(rec.Body.String(), "Secret123") {
		t.Error("response must not leak the plaintext password")
	}

	// The issued token validates immediately.
	sess, err := ss.GetByToken(token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess == nil {
		t.Error("expected signup token to validate")
	}
}

func TestSignupMissingFields(t *testing.T) {
	h, _ := setupAuthHandler(t)

	payloads := []string{
		`{"username":"jane","email":"jane@x.com","password":"pw","platform":"web"}`,
		`{"full_name":"Jane","email":"jane@x.com","password":"pw","platform":"web"}`,
		`{"full_name":"Jane","username":"jane","password":"pw","platform":"web"}`,
		`{"full_name":"Jane","username":"jane","email":"jane@x.com","platform":"web"}`,
	}
	for _, payload := range payloads {
		rec := postJSON(t, h.Signup, "/auth/signup", payload)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: status = %d, want %d", payload, rec.Code, http.StatusBadRequest)
		}
		if decodeBody(t, rec)["message"] != "All fields are required" {
			t.Errorf("payload %s: unexpected message %s", payload, rec.Body.String())
		}
	}
}

func TestSignupInvalidPlatform(t *testing.T) {
	h, _ := setupAuthHandler(t)

	for _, platform := range []string{"", "desktop", "WEB"} {
		rec := postJSON(t, h.Signup, "/auth/signup",
			`{"full_name":"Jane","username":"jane","email":"jane@x.com","password":"pw","platform":"`+platform+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("platform %q: status = %d, want %d", platform, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestSignupDuplicate(t *testing.T) {
	h, _ := setupAuthHandler(t)

	if rec := postJSON(t, h.Signup, "/auth/signup", signupJane); rec.Code != http.StatusCreated {
		t.Fatalf("first signup: status = %d", rec.Code)
	}

	// Same username, different email — and vice versa. Other fields differing
	// changes nothing.
	dupes := []string{
		`{"full_name":"Other","username":"jane","email":"other@x.com","password":"pw2","platform":"mobile"}`,
		`{"full_name":"Other","username":"jane2","email":"jane@x.com","password":"pw2","platform":"mobile"}`,
	}
	for _, payload := range dupes {
		rec := postJSON(t, h.Signup, "/auth/signup", payload)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: status = %d, want %d", payload, rec.Code, http.StatusBadRequest)
		}
		if decodeBody(t, rec)["message"] != "Username or email already exists" {
			t.Errorf("payload %s: unexpected message %s", payload, rec.Body.String())
		}
	}
}

func TestLogin(t *testing.T) {
	h, _ := setupAuthHandler(t)
	postJSON(t, h.Signup, "/auth/signup", signupJane)

	// By username and by email.
	for _, identifier := range []string{"jane", "jane@x.com"} {
		rec := postJSON(t, h.Login, "/auth/login",
			`{"identifier":"`+identifier+`","password":"Secret123","platform":"web"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("identifier %q: status = %d, want %d: %s", identifier, rec.Code, http.StatusOK, rec.Body.String())
		}
		token, _ := decodeBody(t, rec)["token"].(string)
		if len(token) != 64 {
			t.Errorf("identifier %q: token length = %d, want 64", identifier, len(token))
		}
	}
}

func TestLoginIssuesFreshToken(t *testing.T) {
	h, ss := setupAuthHandler(t)

	rec := postJSON(t, h.Signup, "/auth/signup", signupJane)
	signupToken, _ := decodeBody(t, rec)["token"].(string)

	rec = postJSON(t, h.Login, "/auth/login", `{"identifier":"jane","password":"Secret123","platform":"web"}`)
	loginToken, _ := decodeBody(t, rec)["token"].(string)

	if signupToken == loginToken {
		t.Error("expected login to issue a new token")
	}
	// Logging in again does not revoke earlier sessions.
	for _, token := range []string{signupToken, loginToken} {
		sess, err := ss.GetByToken(token)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if sess == nil {
			t.Error("expected both tokens to stay valid")
		}
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h, _ := setupAuthHandler(t)

	rec := postJSON(t, h.Login, "/auth/login", `{"identifier":"ghost","password":"pw","platform":"web"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if decodeBody(t, rec)["message"] != "User not found" {
		t.Errorf("unexpected message %s", rec.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := setupAuthHandler(t)
	postJSON(t, h.Signup, "/auth/signup", signupJane)

	rec := postJSON(t, h.Login, "/auth/login", `{"identifier":"jane","password":"nope","platform":"web"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if decodeBody(t, rec)["message"] != "Wrong password" {
		t.Errorf("unexpected message %s", rec.Body.String())
	}
}

func TestLoginPlatformMismatch(t *testing.T) {
	h, _ := setupAuthHandler(t)
	postJSON(t, h.Signup, "/auth/signup", signupJane)

	// Correct credentials, wrong platform: refused, and distinguishable from
	// bad credentials.
	rec := postJSON(t, h.Login, "/auth/login", `{"identifier":"jane","password":"Secret123","platform":"mobile"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestLoginMissingFields(t *testing.T) {
	h, _ := setupAuthHandler(t)

	rec := postJSON(t, h.Login, "/auth/login", `{"identifier":"jane","platform":"web"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMe(t *testing.T) {
	h, ss := setupAuthHandler(t)

	rec := postJSON(t, h.Signup, "/auth/signup", signupJane)
	token, _ := decodeBody(t, rec)["token"].(string)
	sess, err := ss.GetByToken(token)
	if err != nil || sess == nil {
		t.Fatalf("get session: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/me", nil)
	ctx := auth.WithAuth(req.Context(), auth.AuthContext{UserID: sess.UserID, SessionID: sess.ID})
	rec2 := httptest.NewRecorder()
	h.Me(rec2, req.WithContext(ctx))

	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec2.Code, http.StatusOK)
	}
	user, _ := decodeBody(t, rec2)["user"].(map[string]any)
	if user == nil || user["username"] != "jane" {
		t.Errorf("unexpected user payload: %s", rec2.Body.String())
	}
}

func TestMeNoContext(t *testing.T) {
	h, _ := setupAuthHandler(t)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLogout(t *testing.T) {
	h, ss := setupAuthHandler(t)

	rec := postJSON(t, h.Signup, "/auth/signup", signupJane)
	token, _ := decodeBody(t, rec)["token"].(string)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec2 := httptest.NewRecorder()
	h.Logout(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec2.Code, http.StatusOK)
	}

	sess, err := ss.GetByToken(token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Error("expected token to be revoked after logout")
	}

	// Logging out again with the now-stale token still succeeds.
	rec3 := httptest.NewRecorder()
	h.Logout(rec3, req)
	if rec3.Code != http.StatusOK {
		t.Errorf("repeat logout: status = %d, want %d", rec3.Code, http.StatusOK)
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	h, _ := setupAuthHandler(t)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
