package resident

import (
	"net/http"
	"strings"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/residents", auth.RequireAuthenticated())
	read.GET("", h.List)
	read.GET("/archived", h.ListArchived)
	read.GET("/:id", h.Get)
	read.POST("/check-duplicate", h.CheckDuplicate)

	write := api.Group("/residents", auth.RequireRole(auth.RoleSecretary))
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
	write.POST("/:id/restore", h.Restore)
	write.POST("/:id/deactivate", h.Deactivate)
	write.POST("/:id/activate", h.Activate)
	write.POST("/:id/photo", h.UploadPhoto)
}

func (h *Handler) Create(c echo.Context) error {
	var r Resident
	if err := apiresp.Bind(c, &r); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &r); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	var r Resident
	if err := apiresp.Bind(c, &r); err != nil {
		return err
	}
	r.ID = id
	if err := h.svc.Update(c.Request().Context(), &r); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.Message(c, http.StatusOK, "resident archived")
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Restore(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

func (h *Handler) Deactivate(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	var body StatusChange
	if err := apiresp.Bind(c, &body); err != nil {
		return err
	}
	r, err := h.svc.Deactivate(c.Request().Context(), id, body.NewAddress)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

func (h *Handler) Activate(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Activate(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

// UploadPhoto accepts a multipart "photo" field.
func (h *Handler) UploadPhoto(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded photo")
	}
	defer f.Close()

	path, err := h.svc.UploadPhoto(c.Request().Context(), id, f)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, map[string]string{"photo_path": path})
}

func (h *Handler) CheckDuplicate(c echo.Context) error {
	var req DuplicateCheck
	if err := apiresp.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.svc.CheckDuplicate(c.Request().Context(), req)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, result)
}

func (h *Handler) List(c echo.Context) error {
	return h.list(c, false)
}

func (h *Handler) ListArchived(c echo.Context) error {
	return h.list(c, true)
}

func (h *Handler) list(c echo.Context, archived bool) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search:   pg.Pattern(),
		Purok:    strings.TrimSpace(c.QueryParam("purok")),
		Status:   strings.ToLower(strings.TrimSpace(c.QueryParam("status"))),
		Gender:   strings.ToLower(strings.TrimSpace(c.QueryParam("gender"))),
		Archived: archived,
	}
	var err error
	if f.HouseholdID, err = apiresp.QueryUUID(c, "household_id"); err != nil {
		return err
	}
	for name, dst := range map[string]**bool{
		"senior": &f.Senior,
		"pwd":    &f.PWD,
		"4ps":    &f.FourPs,
		"voter":  &f.Voter,
	} {
		if *dst, err = apiresp.QueryBool(c, name); err != nil {
			return err
		}
	}

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apiresp.FromError(err)
	}
	if items == nil {
		items = []*Resident{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
