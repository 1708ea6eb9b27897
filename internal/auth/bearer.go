package auth

import "strings"

const bearerPrefix = "Bearer "

// ExtractBearer returns the token from an Authorization header value of the
// form "Bearer <token>". It returns "" if the header is absent, uses a
// different scheme, or carries no token.
func ExtractBearer(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
