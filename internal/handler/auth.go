package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Randall0514/DormEase/internal/auth"
	"github.com/Randall0514/DormEase/internal/model"
	"github.com/Randall0514/DormEase/internal/store"
)

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		logger:       logger,
	}
}

// Signup registers a new account and issues its first session token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"full_name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Platform = strings.TrimSpace(req.Platform)

	if req.FullName == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if !model.ValidPlatform(req.Platform) {
		writeMessage(w, http.StatusBadRequest, `Platform must be "web" or "mobile"`)
		return
	}

	exists, err := h.userStore.UsernameOrEmailExists(req.Username, req.Email)
	if err != nil {
		h.logger.Error("signup uniqueness check", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		writeMessage(w, http.StatusBadRequest, "Username or email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}

	user, err := h.userStore.Create(req.FullName, req.Username, req.Email, hash, req.Platform)
	if err != nil {
		// Two signups can pass the check above concurrently; the UNIQUE
		// constraints decide the loser here.
		if store.IsConflict(err) {
			writeMessage(w, http.StatusBadRequest, "Username or email already exists")
			return
		}
		h.logger.Error("create user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
		"token":   sess.Token,
	})
}

// Login authenticates by username or email and issues a fresh session token.
// Existing sessions for the user stay valid.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		Platform   string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	req.Platform = strings.TrimSpace(req.Platform)

	if req.Identifier == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username/email and password are required")
		return
	}
	if !model.ValidPlatform(req.Platform) {
		writeMessage(w, http.StatusBadRequest, `Platform must be "web" or "mobile"`)
		return
	}

	user, err := h.userStore.GetByIdentifier(req.Identifier)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "User not found")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	// Correct credentials are not enough: accounts are pinned to the
	// platform they signed up on.
	if user.Platform != req.Platform {
		writeMessage(w, http.StatusForbidden, "Account is registered on a different platform")
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"token":   sess.Token,
	})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userStore.GetByID(ac.UserID)
	if err != nil {
		h.logger.Error("me lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout revokes the presented token. It succeeds even when the token is
// absent, invalid, or already revoked: logout is best-effort cleanup.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractBearer(r.Header.Get("Authorization"))
	if token != "" {
		if err := h.sessionStore.DeleteByToken(token); err != nil {
			h.logger.Error("delete session", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Database error")
			return
		}
	}
	writeMessage(w, http.StatusOK, "Logged out")
}
