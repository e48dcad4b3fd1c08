package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const maxHeaderValueSize = 8192

var scriptPattern = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)

// Sanitize rejects requests carrying path traversal, null bytes, header
// injection or script fragments in query parameters. Search parameters end
// up in ILIKE patterns, so they are the main target.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			rawPath := req.URL.RawPath
			if rawPath == "" {
				rawPath = path
			}

			if containsPathTraversal(path) || containsPathTraversal(rawPath) {
				return reject(logger, c, "path traversal detected")
			}
			if containsNullByte(path) || containsNullByte(rawPath) {
				return reject(logger, c, "null byte detected in path")
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize {
						return reject(logger, c, "header value too large: "+name)
					}
					if strings.ContainsAny(v, "\r\n") {
						return reject(logger, c, "header injection detected: "+name)
					}
				}
			}

			for key, values := range req.URL.Query() {
				for _, v := range values {
					if containsNullByte(v) || containsNullByte(key) {
						return reject(logger, c, "null byte detected in query parameter")
					}
					if scriptPattern.MatchString(v) || scriptPattern.MatchString(key) {
						return reject(logger, c, "script content detected in query parameter")
					}
				}
			}

			return next(c)
		}
	}
}

func reject(logger zerolog.Logger, c echo.Context, reason string) error {
	rid, _ := c.Get("request_id").(string)
	logger.Warn().
		Str("request_id", rid).
		Str("path", c.Request().URL.Path).
		Str("remote_ip", c.RealIP()).
		Str("reason", reason).
		Msg("request rejected")
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func containsPathTraversal(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "..") ||
		strings.Contains(lower, "%2e%2e") ||
		strings.Contains(lower, "%252e")
}

func containsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}
