package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/barangay/records/internal/platform/auth"
)

// AuditEntry describes one change made to the registry.
type AuditEntry struct {
	Timestamp  time.Time
	RequestID  string
	UserID     string
	Username   string
	Role       string
	Resource   string // residents, households, deaths, ...
	RecordID   string
	Action     string // create, update, delete, restore, ...
	Method     string
	Path       string
	IPAddress  string
	StatusCode int
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordChange(entry AuditEntry) error
}

type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordChange(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every mutating request under /api/v1/ after it completes.
// Reads are covered by the request logger.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/v1/") || !isMutation(req.Method) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			ctx := req.Context()
			resource, recordID, action := describePath(req.Method, path)
			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				UserID:     auth.UserIDFromContext(ctx),
				Username:   auth.UsernameFromContext(ctx),
				Role:       auth.RoleFromContext(ctx),
				Resource:   resource,
				RecordID:   recordID,
				Action:     action,
				Method:     req.Method,
				Path:       path,
				IPAddress:  c.RealIP(),
				StatusCode: status,
			}
			entry.RequestID, _ = c.Get("request_id").(string)

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordChange(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "records_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("username", entry.Username).
				Str("role", entry.Role).
				Str("resource", entry.Resource).
				Str("record_id", entry.RecordID).
				Str("action", entry.Action).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_change")

			return err
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// describePath splits /api/v1/<resource>[/<id>[/<verb>]] into audit fields.
//
//	POST   /api/v1/residents               -> residents, "", create
//	PUT    /api/v1/residents/<id>          -> residents, <id>, update
//	DELETE /api/v1/residents/<id>          -> residents, <id>, delete
//	POST   /api/v1/residents/<id>/restore  -> residents, <id>, restore
//	POST   /api/v1/auth/login              -> auth, "", login
func describePath(method, path string) (resource, recordID, action string) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/v1/"), "/"), "/")
	resource = segments[0]
	if resource == "" {
		resource = "unknown"
	}

	action = methodAction(method)
	rest := segments[1:]
	if len(rest) > 0 {
		if _, err := uuid.Parse(rest[0]); err == nil {
			recordID = rest[0]
			rest = rest[1:]
		}
	}
	if len(rest) > 0 && method == http.MethodPost {
		action = rest[len(rest)-1]
	}
	return resource, recordID, action
}

func methodAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return "read"
}
