package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/barangay/records/internal/platform/apiresp"
	"github.com/barangay/records/internal/platform/auth"
	"github.com/barangay/records/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the auth and user routes. loginLimit guards the
// login endpoint against password guessing.
func (h *Handler) RegisterRoutes(api *echo.Group, loginLimit echo.MiddlewareFunc) {
	api.POST("/auth/login", h.Login, loginLimit)

	session := api.Group("/auth", auth.RequireAuthenticated())
	session.POST("/logout", h.Logout)
	session.GET("/me", h.Me)

	users := api.Group("/users", auth.RequireRole(auth.RoleAdmin))
	users.GET("", h.List)
	users.POST("", h.Create)
	users.GET("/:id", h.Get)
	users.PUT("/:id", h.Update)
}

func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := apiresp.Bind(c, &creds); err != nil {
		return err
	}
	sess, err := h.svc.Login(c.Request().Context(), creds)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, sess)
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	jti, exp, _ := auth.TokenFromContext(ctx)
	if err := h.svc.Logout(ctx, jti, exp); err != nil {
		return err
	}
	return apiresp.Message(c, http.StatusOK, "logged out")
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		// Development sessions have no backing account.
		return apiresp.OK(c, http.StatusOK, map[string]string{
			"username":      auth.UsernameFromContext(ctx),
			"role":          auth.RoleFromContext(ctx),
			"landing_route": auth.LandingRoute(auth.RoleFromContext(ctx)),
		})
	}
	u, err := h.svc.Get(ctx, id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, u)
}

func (h *Handler) Create(c echo.Context) error {
	var req NewUser
	if err := apiresp.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusCreated, u)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, u)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	var req UserUpdate
	if err := apiresp.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, u)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apiresp.FromError(err)
	}
	if users == nil {
		users = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg))
}
