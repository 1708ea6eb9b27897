package model

import "time"

const (
	PlatformWeb    = "web"
	PlatformMobile = "mobile"
)

// ValidPlatform reports whether p is one of the supported client platforms.
func ValidPlatform(p string) bool {
	return p == PlatformWeb || p == PlatformMobile
}

type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Platform     string    `json:"platform"`
	CreatedAt    time.Time `json:"created_at"`
}
