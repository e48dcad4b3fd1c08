// Package apiresp writes the JSON envelope every endpoint answers with:
// {"success": bool, "data": ..., "message": "..."}.
package apiresp

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/barangay/records/internal/platform/apperr"
)

// Envelope is the response body shape shared by all endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK writes a successful envelope around data.
func OK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Message writes a successful envelope that only carries a message.
func Message(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: true, Message: msg})
}

// Fail writes a failed envelope.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: false, Message: msg})
}

// StatusFor maps domain sentinels to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrIneligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicate), errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// FromError converts a service error into an *echo.HTTPError so handlers can
// simply `return apiresp.FromError(err)`.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status := StatusFor(err)
	return &echo.HTTPError{Code: status, Message: err.Error(), Internal: err}
}

// ErrorHandler renders every error returned by a handler or middleware as a
// failed envelope. Messages of 5xx errors are replaced by a generic text
// unless exposeInternal is set.
func ErrorHandler(logger zerolog.Logger, exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := http.StatusText(status)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = m
			case error:
				msg = m.Error()
			default:
				msg = http.StatusText(status)
			}
		} else {
			status = StatusFor(err)
			msg = err.Error()
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Int("status", status).
				Msg("request failed")
			if !exposeInternal && status != http.StatusGatewayTimeout {
				msg = "internal server error"
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = Fail(c, status, msg)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}
