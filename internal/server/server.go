package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Randall0514/DormEase/internal/handler"
	"github.com/Randall0514/DormEase/internal/middleware"
	"github.com/Randall0514/DormEase/internal/store"
	"github.com/Randall0514/DormEase/internal/upload"
)

type Server struct {
	db           *sql.DB
	authH        *handler.AuthHandler
	dormH        *handler.DormHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	uploadDir    string
	logger       *slog.Logger
}

func New(db *sql.DB, uploadDir string, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	dormStore := store.NewDormStore(db)
	uploads := upload.NewStore(uploadDir)

	return &Server{
		db:           db,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		dormH:        handler.NewDormHandler(dormStore, uploads, logger.With("component", "dorm")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		uploadDir:    uploadDir,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /auth/signup", s.rateLimitedHandler(s.authH.Signup))
	mux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	// Logout reads the bearer token itself; a missing or stale token still
	// gets a 200.
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))
	mux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	requireAuth := middleware.RequireAuth(s.sessionStore)
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(s.authH.Me)))
	mux.Handle("GET /dorms/me", requireAuth(http.HandlerFunc(s.dormH.GetMine)))
	mux.Handle("POST /dorms", requireAuth(http.HandlerFunc(s.dormH.Save)))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
