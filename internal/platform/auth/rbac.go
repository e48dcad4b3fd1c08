package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin        = "admin"
	RoleSecretary    = "secretary"
	RoleHealthWorker = "health_worker"
)

// Roles lists every role a user account may hold.
var Roles = []string{RoleAdmin, RoleSecretary, RoleHealthWorker}

var landingRoutes = map[string]string{
	RoleAdmin:        "/admin/dashboard",
	RoleSecretary:    "/secretary/residents",
	RoleHealthWorker: "/health/maternal",
}

func ValidRole(role string) bool {
	_, ok := landingRoutes[role]
	return ok
}

// LandingRoute is the page the front end opens after a successful login.
func LandingRoute(role string) string {
	if r, ok := landingRoutes[role]; ok {
		return r
	}
	return "/"
}

// RequireRole returns middleware that checks if the user holds one of the
// specified roles. Admins pass every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireAuthenticated accepts any signed-in role.
func RequireAuthenticated() echo.MiddlewareFunc {
	return RequireRole(Roles...)
}
