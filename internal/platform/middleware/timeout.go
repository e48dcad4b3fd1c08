package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on the request context. Database calls made
// with that context are cancelled when it passes, and the request fails with
// 504. The handler runs on the calling goroutine, so nothing writes to the
// response after the middleware returns.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Response().Committed {
				return &echo.HTTPError{
					Code:     http.StatusGatewayTimeout,
					Message:  "request processing exceeded the allowed time limit",
					Internal: err,
				}
			}
			return err
		}
	}
}
