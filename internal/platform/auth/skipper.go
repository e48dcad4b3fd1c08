package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPaths bypass authentication.
var publicPaths = map[string]bool{
	"/health":            true,
	"/health/db":         true,
	"/api/v1/auth/login": true,
}

// AuthSkipper reports whether the matched route skips authentication.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

// IsPublicPath reports whether path is served without a bearer token.
// Uploaded photos are linked directly from <img> tags.
func IsPublicPath(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, "/uploads/")
}
